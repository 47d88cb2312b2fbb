package backup

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/harumemo/pkg/core"
)

// decodeDocument validates a generic keyed document (the result of decoding
// JSON or YAML into `any`) and turns it into a Batch.
//
// Rules per entry: the key must be a canonical date, the value a map whose
// "content" is a string. "images", when present, must be a list of strings.
// Missing emoji becomes "", missing or unparseable timestamps become now.
// Entries that are empty under the store's emptiness rule are skipped.
func decodeDocument(payload any, now time.Time) (Batch, error) {
	doc, ok := asMap(payload)
	if !ok {
		return Batch{}, fmt.Errorf("%w: top-level value is not a keyed document", core.ErrValidation)
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	batch := Batch{Notes: []core.Note{}}
	for _, key := range keys {
		n, reason := decodeEntry(key, doc[key], now)
		if reason != "" {
			batch.Skipped = append(batch.Skipped, Skip{Key: key, Reason: reason})
			continue
		}
		batch.Notes = append(batch.Notes, n)
	}
	return batch, nil
}

func decodeEntry(key string, raw any, now time.Time) (core.Note, string) {
	if _, err := core.ParseDate(key); err != nil {
		return core.Note{}, "invalid date key"
	}

	entry, ok := asMap(raw)
	if !ok {
		return core.Note{}, "entry is not an object"
	}

	content, ok := entry["content"].(string)
	if !ok {
		return core.Note{}, "content is missing or not text"
	}

	images := []string{}
	switch v := entry["images"].(type) {
	case nil:
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return core.Note{}, "images must be a list of strings"
			}
			images = append(images, s)
		}
	default:
		return core.Note{}, "images must be a list of strings"
	}

	if core.IsBlank(content, images) {
		return core.Note{}, "empty note"
	}

	emoji, _ := entry["emoji"].(string)

	return core.Note{
		ID:        key,
		Date:      key,
		Content:   content,
		Images:    images,
		Emoji:     emoji,
		CreatedAt: timestampOr(entry["createdAt"], now),
		UpdatedAt: timestampOr(entry["updatedAt"], now),
	}, ""
}

func timestampOr(v any, fallback time.Time) time.Time {
	switch t := v.(type) {
	case string:
		if parsed, err := core.ParseTimestamp(strings.TrimSpace(t)); err == nil {
			return parsed
		}
	case time.Time:
		return t.UTC()
	}
	return fallback.UTC().Truncate(time.Millisecond)
}

// asMap normalizes the map shapes produced by encoding/json and yaml.v3.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			switch key := k.(type) {
			case string:
				out[key] = val
			case time.Time:
				out[key.Format(core.DateLayout)] = val
			default:
				out[fmt.Sprint(key)] = val
			}
		}
		return out, true
	}
	return nil, false
}

// keyed indexes notes by date for the structured encoders. A later note
// replaces an earlier one with the same date.
func keyed(notes []core.Note) map[string]core.Note {
	out := make(map[string]core.Note, len(notes))
	for _, n := range notes {
		n = n.Clone()
		n.ID = n.Date
		out[n.Date] = n
	}
	return out
}
