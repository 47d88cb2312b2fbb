package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/harumemo/pkg/core"
)

// JSONCodec is the historical Format A encoding: the store mapping
// pretty-printed with two-space indentation.
type JSONCodec struct{}

func (JSONCodec) Name() string       { return "json" }
func (JSONCodec) Format() Format     { return FormatStructured }
func (JSONCodec) Extension() string  { return ".json" }
func (JSONCodec) Patterns() []string { return []string{"*.json"} }

func (JSONCodec) Encode(notes []core.Note, _ time.Time) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(keyed(notes)); err != nil {
		return nil, fmt.Errorf("failed to encode json backup: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (JSONCodec) Decode(data []byte, now time.Time) (Batch, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return Batch{}, fmt.Errorf("%w: not a json document: %w", core.ErrValidation, err)
	}
	return decodeDocument(payload, now)
}
