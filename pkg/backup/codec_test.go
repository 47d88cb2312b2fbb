package backup_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harumemo/pkg/backup"
	"github.com/aretw0/harumemo/pkg/core"
)

var importTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleNotes() []core.Note {
	created := time.Date(2025, 1, 10, 9, 30, 0, 123_000_000, time.UTC)
	updated := created.Add(time.Hour)
	return []core.Note{
		{
			ID: "2025-03-14", Date: "2025-03-14",
			Content:   "☐ 장보기\n☑ 운동",
			Images:    []string{},
			Emoji:     "🏃",
			CreatedAt: created, UpdatedAt: updated,
		},
		{
			ID: "2025-01-10", Date: "2025-01-10",
			Content:   "밥약속 <점심> & 커피",
			Images:    []string{"data:image/png;base64,AAAA", "data:image/png;base64,BBBB"},
			Emoji:     "",
			CreatedAt: created, UpdatedAt: updated,
		},
	}
}

func byDate(notes []core.Note) map[string]core.Note {
	out := make(map[string]core.Note, len(notes))
	for _, n := range notes {
		out[n.Date] = n
	}
	return out
}

func TestStructuredCodecs_RoundTrip(t *testing.T) {
	codecs := []backup.Codec{backup.JSONCodec{}, backup.YAMLCodec{}}

	for _, codec := range codecs {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Encode(sampleNotes(), importTime)
			require.NoError(t, err)

			batch, err := codec.Decode(data, importTime)
			require.NoError(t, err)
			assert.Empty(t, batch.Skipped)
			require.Len(t, batch.Notes, 2)

			got := byDate(batch.Notes)
			for _, want := range sampleNotes() {
				n, ok := got[want.Date]
				require.True(t, ok, "missing %s", want.Date)
				assert.Equal(t, want.ID, n.ID)
				assert.Equal(t, want.Content, n.Content)
				assert.Equal(t, want.Images, n.Images, "structured backups restore images")
				assert.Equal(t, want.Emoji, n.Emoji)
				assert.True(t, want.CreatedAt.Equal(n.CreatedAt))
				assert.True(t, want.UpdatedAt.Equal(n.UpdatedAt))
			}
		})
	}
}

func TestJSONCodec_EncodeShape(t *testing.T) {
	data, err := backup.JSONCodec{}.Encode(sampleNotes(), importTime)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "{\n  \"2025-01-10\": {\n    \"id\": \"2025-01-10\","), out)
	assert.Contains(t, out, `"createdAt": "2025-01-10T09:30:00.123Z"`)
	assert.Contains(t, out, "<점심> & 커피", "html characters are written verbatim")
	assert.Contains(t, out, `"images": []`)
	assert.False(t, strings.HasSuffix(out, "\n"))
	assert.Less(t, strings.Index(out, "2025-01-10"), strings.Index(out, "2025-03-14"), "keys are sorted")
}

func TestJSONCodec_MissingFieldsDefault(t *testing.T) {
	doc := `{"2025-02-01": {"id": "2025-02-01", "content": "hello", "updatedAt": "2025-02-01T08:00:00.000Z"}}`

	batch, err := backup.JSONCodec{}.Decode([]byte(doc), importTime)
	require.NoError(t, err)
	require.Len(t, batch.Notes, 1)

	n := batch.Notes[0]
	assert.Equal(t, "", n.Emoji)
	assert.Equal(t, []string{}, n.Images)
	assert.True(t, n.CreatedAt.Equal(importTime), "missing createdAt becomes import time")
	assert.True(t, n.UpdatedAt.Equal(time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)))
}

func TestJSONCodec_Validation(t *testing.T) {
	cases := map[string]string{
		"malformed": `{"2025-02-01": `,
		"array":     `[{"content": "x"}]`,
		"string":    `"hello"`,
		"null":      `null`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := backup.JSONCodec{}.Decode([]byte(doc), importTime)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrValidation), "got %v", err)
		})
	}
}

func TestJSONCodec_SkipsBadEntries(t *testing.T) {
	doc := `{
  "2025-02-01": {"content": "ok"},
  "2025-2-3": {"content": "unpadded key"},
  "2025-02-30": {"content": "no such day"},
  "2025-02-04": {"content": 42},
  "2025-02-05": {"content": "x", "images": "not-a-list"},
  "2025-02-06": {"content": "x", "images": [1, 2]},
  "2025-02-07": {"content": "   ", "images": []},
  "2025-02-08": "just text",
  "2025-02-09": {"content": "", "images": ["data:image/png;base64,AA"]},
  "2025-02-10": {"content": "bad stamp", "createdAt": "yesterday"}
}`
	batch, err := backup.JSONCodec{}.Decode([]byte(doc), importTime)
	require.NoError(t, err)

	got := byDate(batch.Notes)
	assert.Len(t, got, 3)
	assert.Contains(t, got, "2025-02-01")
	assert.Contains(t, got, "2025-02-09", "image-only notes are not empty")
	require.Contains(t, got, "2025-02-10")
	assert.True(t, got["2025-02-10"].CreatedAt.Equal(importTime))

	skipped := make(map[string]string)
	for _, s := range batch.Skipped {
		skipped[s.Key] = s.Reason
	}
	assert.Len(t, skipped, 7)
	assert.Equal(t, "invalid date key", skipped["2025-2-3"])
	assert.Equal(t, "invalid date key", skipped["2025-02-30"])
	assert.Equal(t, "empty note", skipped["2025-02-07"])
	assert.Equal(t, "entry is not an object", skipped["2025-02-08"])
}

func TestYAMLCodec_HandWritten(t *testing.T) {
	doc := `
2025-03-05:
  content: dentist
  emoji: 🦷
  images: [a.png]
  createdAt: 2025-03-01T10:00:00Z
"2025-03-06":
  content: |
    ☐ milk
    ☐ eggs
`
	batch, err := backup.YAMLCodec{}.Decode([]byte(doc), importTime)
	require.NoError(t, err)
	assert.Empty(t, batch.Skipped)

	got := byDate(batch.Notes)
	require.Len(t, got, 2)
	assert.Equal(t, "dentist", got["2025-03-05"].Content)
	assert.Equal(t, "🦷", got["2025-03-05"].Emoji)
	assert.Equal(t, []string{"a.png"}, got["2025-03-05"].Images)
	assert.True(t, got["2025-03-05"].CreatedAt.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "☐ milk\n☐ eggs\n", got["2025-03-06"].Content)
	assert.True(t, got["2025-03-06"].UpdatedAt.Equal(importTime))
}

func TestYAMLCodec_Validation(t *testing.T) {
	for _, doc := range []string{"- a\n- b\n", "", "key: [unclosed\n"} {
		_, err := backup.YAMLCodec{}.Decode([]byte(doc), importTime)
		assert.True(t, errors.Is(err, core.ErrValidation), "doc %q: got %v", doc, err)
	}
}

func TestTextCodec_Encode(t *testing.T) {
	notes := append(sampleNotes(), core.Note{
		ID: "2025-02-02", Date: "2025-02-02", Content: "  ", Images: []string{"x"},
	})
	data, err := backup.TextCodec{}.Encode(notes, importTime)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "하루메모 백업 (2025-06-01)\n총 3개의 메모\n"), out)
	assert.Contains(t, out, "=== 2025년 1월 10일 ===\n밥약속 <점심> & 커피\n[첨부 이미지 2개]\n")
	assert.Contains(t, out, "=== 2025년 2월 2일 ===\n(내용 없음)\n[첨부 이미지 1개]\n")
	assert.Contains(t, out, "=== 2025년 3월 14일 ===\n☐ 장보기\n☑ 운동\n")

	first := strings.Index(out, "1월 10일")
	second := strings.Index(out, "2월 2일")
	third := strings.Index(out, "3월 14일")
	assert.True(t, first < second && second < third, "blocks are sorted by date")
}

func TestTextCodec_RoundTripDropsImages(t *testing.T) {
	codec := backup.TextCodec{}
	data, err := codec.Encode(sampleNotes(), importTime)
	require.NoError(t, err)

	later := importTime.Add(24 * time.Hour)
	batch, err := codec.Decode(data, later)
	require.NoError(t, err)
	assert.Empty(t, batch.Skipped)

	got := byDate(batch.Notes)
	require.Len(t, got, 2)
	for _, want := range sampleNotes() {
		n := got[want.Date]
		assert.Equal(t, want.Content, n.Content)
		assert.Equal(t, []string{}, n.Images, "text backups cannot restore images")
		assert.Equal(t, "", n.Emoji)
		assert.True(t, n.CreatedAt.Equal(later), "text imports get fresh timestamps")
		assert.True(t, n.UpdatedAt.Equal(later))
	}
}

func TestTextCodec_Decode(t *testing.T) {
	doc := "하루메모 백업 (2025-06-01)\n" +
		"preamble is ignored\n\n" +
		"=== 2025년 4월 1일 ===\n" +
		"만우절\n[첨부 이미지 3개]\n\n" +
		"=== 2025년 4월 2일 ===\n(내용 없음)\n[첨부 이미지 1개]\n\n" +
		"=== 2025년 4월 3일 ===\n\n\n" +
		"=== 2025년 2월 30일 ===\nnot a day\n" +
		"=== 2025년 4월 1일 ===\r\n두 번째\r\n"

	batch, err := backup.TextCodec{}.Decode([]byte(doc), importTime)
	require.NoError(t, err)

	require.Len(t, batch.Notes, 1)
	assert.Equal(t, "2025-04-01", batch.Notes[0].Date)
	assert.Equal(t, "두 번째", batch.Notes[0].Content, "the later block for a date wins")

	reasons := make(map[string]string)
	for _, s := range batch.Skipped {
		reasons[s.Key] = s.Reason
	}
	assert.Equal(t, "empty note", reasons["2025-04-02"])
	assert.Equal(t, "empty note", reasons["2025-04-03"])
	assert.Equal(t, "invalid date", reasons["2025-2-30"])
	assert.Contains(t, reasons, "2025-04-01")
}

func TestTextCodec_NoBanners(t *testing.T) {
	batch, err := backup.TextCodec{}.Decode([]byte("just some notes\n"), importTime)
	require.NoError(t, err)
	assert.Empty(t, batch.Notes)
	assert.Empty(t, batch.Skipped)
}

func TestBanner(t *testing.T) {
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "=== 2025년 3월 5일 ===", backup.Banner(day))
}
