package backup

import (
	"fmt"
	"time"

	"github.com/aretw0/harumemo/pkg/core"
)

// FileNamePrefix starts every suggested backup file name.
const FileNamePrefix = "하루메모_백업_"

// Source is the store an export reads from. *core.Service satisfies it.
type Source interface {
	Notes() []core.Note
}

// Export is a rendered backup file.
type Export struct {
	Codec    string
	FileName string
	Count    int
	Data     []byte
}

// FileName suggests the backup file name for a given day and extension.
func FileName(now time.Time, ext string) string {
	return FileNamePrefix + core.DateOf(now) + ext
}

// Render encodes every note of source with codec. An empty store is reported
// as core.ErrEmptyResult.
func Render(source Source, codec Codec, now time.Time) (Export, error) {
	notes := source.Notes()
	if len(notes) == 0 {
		return Export{}, fmt.Errorf("%w: there are no notes to export", core.ErrEmptyResult)
	}
	data, err := codec.Encode(notes, now)
	if err != nil {
		return Export{}, err
	}
	return Export{
		Codec:    codec.Name(),
		FileName: FileName(now, codec.Extension()),
		Count:    len(notes),
		Data:     data,
	}, nil
}
