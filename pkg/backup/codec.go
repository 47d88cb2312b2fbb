// Package backup converts the note store to and from backup files.
//
// Two incompatible generations exist. Format A is a structured document keyed
// by date that restores every field (images included); it is written as JSON,
// the historical encoding, or YAML. Format B is a human-readable text dump that
// only carries note text, so images are lost on round trip. Codecs are chosen
// explicitly by name; the file extension is only a fallback.
package backup

import (
	"time"

	"github.com/aretw0/harumemo/pkg/core"
)

// Format identifies a backup generation.
type Format string

const (
	// FormatStructured is Format A: a keyed document with full records.
	FormatStructured Format = "structured"
	// FormatText is Format B: dated text blocks, images not embedded.
	FormatText Format = "text"
)

// Codec encodes and decodes one backup encoding.
type Codec interface {
	// Name is the identifier used to select the codec ("json", "yaml", "text").
	Name() string
	Format() Format
	// Extension is the preferred file extension, including the dot.
	Extension() string
	// Patterns lists the file name globs this codec accepts on import.
	Patterns() []string

	// Encode renders notes. Implementations must not reorder the caller's slice.
	Encode(notes []core.Note, now time.Time) ([]byte, error)

	// Decode parses a backup body. Structural problems wrap core.ErrValidation;
	// individual bad records are reported in Batch.Skipped. Decode never
	// touches a store, which makes it usable as a dry run.
	Decode(data []byte, now time.Time) (Batch, error)
}

// Batch is the validated content of a backup file.
type Batch struct {
	Notes   []core.Note
	Skipped []Skip
}

// Skip records one entry excluded from a batch.
type Skip struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}
