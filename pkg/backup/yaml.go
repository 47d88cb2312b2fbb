package backup

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/harumemo/pkg/core"
)

// YAMLCodec writes Format A as YAML. It carries the same fields as the JSON
// encoding and decodes under the same rules.
type YAMLCodec struct{}

type yamlRecord struct {
	ID        string   `yaml:"id"`
	Content   string   `yaml:"content"`
	Images    []string `yaml:"images"`
	Emoji     string   `yaml:"emoji"`
	CreatedAt string   `yaml:"createdAt"`
	UpdatedAt string   `yaml:"updatedAt"`
}

func (YAMLCodec) Name() string       { return "yaml" }
func (YAMLCodec) Format() Format     { return FormatStructured }
func (YAMLCodec) Extension() string  { return ".yaml" }
func (YAMLCodec) Patterns() []string { return []string{"*.{yaml,yml}"} }

func (YAMLCodec) Encode(notes []core.Note, _ time.Time) ([]byte, error) {
	doc := make(map[string]yamlRecord, len(notes))
	for date, n := range keyed(notes) {
		doc[date] = yamlRecord{
			ID:        n.ID,
			Content:   n.Content,
			Images:    n.Images,
			Emoji:     n.Emoji,
			CreatedAt: core.FormatTimestamp(n.CreatedAt),
			UpdatedAt: core.FormatTimestamp(n.UpdatedAt),
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode yaml backup: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml backup: %w", err)
	}
	return buf.Bytes(), nil
}

func (YAMLCodec) Decode(data []byte, now time.Time) (Batch, error) {
	var payload any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return Batch{}, fmt.Errorf("%w: not a yaml document: %w", core.ErrValidation, err)
	}
	return decodeDocument(payload, now)
}
