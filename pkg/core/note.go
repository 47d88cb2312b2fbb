package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 form used for createdAt/updatedAt
// (millisecond precision, UTC), matching what browsers emit for toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Note is the central entity of the domain: the memo attached to one calendar day.
type Note struct {
	// ID mirrors Date. It exists because persisted blobs always carried it.
	ID        string
	Date      string
	Content   string
	Images    []string
	Emoji     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsEmpty reports whether the note would be removed by the store:
// blank content and no images.
func (n Note) IsEmpty() bool {
	return IsBlank(n.Content, n.Images)
}

// IsBlank applies the emptiness rule to raw save arguments.
func IsBlank(content string, images []string) bool {
	return strings.TrimSpace(content) == "" && len(images) == 0
}

// Clone returns a deep copy so callers never alias the store's image slice.
func (n Note) Clone() Note {
	n.Images = slices.Clone(n.Images)
	if n.Images == nil {
		n.Images = []string{}
	}
	return n
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts any RFC 3339 timestamp, with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// noteRecord is the wire shape shared by the persisted blob and the
// structured backup format.
type noteRecord struct {
	ID        string   `json:"id"`
	Date      string   `json:"date,omitempty"`
	Content   string   `json:"content"`
	Images    []string `json:"images"`
	Emoji     string   `json:"emoji"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

func (n Note) MarshalJSON() ([]byte, error) {
	rec := noteRecord{
		ID:      n.ID,
		Date:    n.Date,
		Content: n.Content,
		Images:  n.Images,
		Emoji:   n.Emoji,
	}
	if rec.Images == nil {
		rec.Images = []string{}
	}
	if !n.CreatedAt.IsZero() {
		rec.CreatedAt = FormatTimestamp(n.CreatedAt)
	}
	if !n.UpdatedAt.IsZero() {
		rec.UpdatedAt = FormatTimestamp(n.UpdatedAt)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON is strict about timestamps: a persisted record whose
// timestamps do not parse is reported rather than silently reset.
func (n *Note) UnmarshalJSON(data []byte) error {
	var rec noteRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	out := Note{
		ID:      rec.ID,
		Date:    rec.Date,
		Content: rec.Content,
		Images:  rec.Images,
		Emoji:   rec.Emoji,
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	if rec.CreatedAt != "" {
		t, err := ParseTimestamp(rec.CreatedAt)
		if err != nil {
			return fmt.Errorf("createdAt: %w", err)
		}
		out.CreatedAt = t
	}
	if rec.UpdatedAt != "" {
		t, err := ParseTimestamp(rec.UpdatedAt)
		if err != nil {
			return fmt.Errorf("updatedAt: %w", err)
		}
		out.UpdatedAt = t
	}

	*n = out
	return nil
}
