package backup

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/harumemo/pkg/core"
)

const (
	// NoContentPlaceholder stands in for blank content in a text backup.
	NoContentPlaceholder = "(내용 없음)"

	textTitle = "하루메모 백업"
)

var (
	bannerPattern     = regexp.MustCompile(`(?m)^=== (\d{1,4})년 (\d{1,2})월 (\d{1,2})일 ===[ \t]*\r?$`)
	imageCountPattern = regexp.MustCompile(`^\[첨부 이미지 \d+개\]$`)
)

// TextCodec is Format B: one banner-headed block per note. Images are only
// counted, so a round trip restores content but not images.
type TextCodec struct{}

func (TextCodec) Name() string       { return "text" }
func (TextCodec) Format() Format     { return FormatText }
func (TextCodec) Extension() string  { return ".txt" }
func (TextCodec) Patterns() []string { return []string{"*.txt"} }

func (TextCodec) Encode(notes []core.Note, now time.Time) ([]byte, error) {
	sorted := make([]core.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", textTitle, core.DateOf(now))
	fmt.Fprintf(&b, "총 %d개의 메모\n", len(sorted))

	for _, n := range sorted {
		day, err := core.ParseDate(n.Date)
		if err != nil {
			return nil, err
		}
		b.WriteString("\n")
		b.WriteString(Banner(day))
		b.WriteString("\n")

		content := strings.TrimSpace(n.Content)
		if content == "" {
			content = NoContentPlaceholder
		}
		b.WriteString(content)
		b.WriteString("\n")

		if len(n.Images) > 0 {
			fmt.Fprintf(&b, "[첨부 이미지 %d개]\n", len(n.Images))
		}
	}
	return []byte(b.String()), nil
}

func (TextCodec) Decode(data []byte, now time.Time) (Batch, error) {
	text := string(data)
	stamp := now.UTC().Truncate(time.Millisecond)

	matches := bannerPattern.FindAllStringSubmatchIndex(text, -1)
	batch := Batch{Notes: []core.Note{}}
	index := make(map[string]int)

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		year, _ := strconv.Atoi(text[m[2]:m[3]])
		month, _ := strconv.Atoi(text[m[4]:m[5]])
		day, _ := strconv.Atoi(text[m[6]:m[7]])

		date, err := core.FormatDate(year, time.Month(month), day)
		if err != nil {
			batch.Skipped = append(batch.Skipped, Skip{
				Key:    fmt.Sprintf("%d-%d-%d", year, month, day),
				Reason: "invalid date",
			})
			continue
		}

		content := segmentContent(text[m[1]:end])
		if content == "" || content == NoContentPlaceholder {
			batch.Skipped = append(batch.Skipped, Skip{Key: date, Reason: "empty note"})
			continue
		}

		n := core.Note{
			ID:        date,
			Date:      date,
			Content:   content,
			Images:    []string{},
			CreatedAt: stamp,
			UpdatedAt: stamp,
		}
		if prev, dup := index[date]; dup {
			batch.Notes[prev] = n
			batch.Skipped = append(batch.Skipped, Skip{Key: date, Reason: "duplicate date, later block kept"})
			continue
		}
		index[date] = len(batch.Notes)
		batch.Notes = append(batch.Notes, n)
	}
	return batch, nil
}

// Banner renders the block header for a day, with unpadded month and day.
func Banner(day time.Time) string {
	return fmt.Sprintf("=== %d년 %d월 %d일 ===", day.Year(), int(day.Month()), day.Day())
}

// segmentContent trims a block and drops its trailing image-count line.
func segmentContent(segment string) string {
	segment = strings.ReplaceAll(segment, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(segment), "\n")
	if last := len(lines) - 1; last >= 0 && imageCountPattern.MatchString(strings.TrimSpace(lines[last])) {
		lines = lines[:last]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
