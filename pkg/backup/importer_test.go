package backup_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harumemo/pkg/adapters/memory"
	"github.com/aretw0/harumemo/pkg/backup"
	"github.com/aretw0/harumemo/pkg/core"
)

func newService(t *testing.T) (*core.Service, *memory.BlobStore) {
	t.Helper()
	blobs := memory.New()
	svc := core.NewService(blobs, core.ServiceConfig{})
	require.NoError(t, svc.Load(context.Background()))
	return svc, blobs
}

func newImporter() *backup.Importer {
	imp := backup.NewImporter(nil)
	imp.Clock = func() time.Time { return importTime }
	return imp
}

func TestRegistry(t *testing.T) {
	r := backup.DefaultRegistry()
	assert.Equal(t, []string{"json", "text", "yaml"}, r.Names())

	t.Run("ForFile", func(t *testing.T) {
		cases := map[string]string{
			"하루메모_백업_2025-01-10.json": "json",
			"/tmp/backups/notes.JSON":   "json",
			"notes.yml":                 "yaml",
			"notes.yaml":                "yaml",
			`C:\Users\me\notes.txt`:     "text",
		}
		for file, want := range cases {
			c, err := r.ForFile(file)
			require.NoError(t, err, file)
			assert.Equal(t, want, c.Name(), file)
		}

		_, err := r.ForFile("notes.csv")
		assert.True(t, errors.Is(err, core.ErrValidation))
	})

	t.Run("Resolve", func(t *testing.T) {
		c, err := r.Resolve("TEXT", "backup.txt")
		require.NoError(t, err)
		assert.Equal(t, "text", c.Name())

		c, err = r.Resolve("json", "")
		require.NoError(t, err)
		assert.Equal(t, "json", c.Name())

		_, err = r.Resolve("json", "backup.txt")
		assert.True(t, errors.Is(err, core.ErrValidation), "explicit codec rejects a foreign extension")

		_, err = r.Resolve("xml", "backup.xml")
		assert.True(t, errors.Is(err, core.ErrValidation))
	})
}

func TestImporter_DryRunLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newService(t)
	_, err := svc.SaveNote(ctx, "2025-01-10", "existing", nil)
	require.NoError(t, err)
	writes := blobs.Writes()

	doc := `{"2025-01-10": {"content": "replacement"}, "2025-01-11": {"content": "new"}, "bad": {"content": "x"}}`
	res, err := newImporter().Import(ctx, svc, backup.Request{Filename: "b.json", Data: []byte(doc), DryRun: true})
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, "json", res.Codec)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, []string{"2025-01-10"}, res.Overwritten)
	assert.Equal(t, []backup.Skip{{Key: "bad", Reason: "invalid date key"}}, res.Skipped)

	assert.Equal(t, writes, blobs.Writes())
	n, _ := svc.GetNote("2025-01-10")
	assert.Equal(t, "existing", n.Content)
	assert.Equal(t, 1, svc.Len())
}

func TestImporter_MergeOverwrites(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newService(t)
	_, err := svc.SaveNote(ctx, "2025-01-10", "existing", []string{"img"})
	require.NoError(t, err)
	_, err = svc.SaveNote(ctx, "2025-01-12", "untouched", nil)
	require.NoError(t, err)
	writes := blobs.Writes()

	doc := `{"2025-01-10": {"content": "replacement", "emoji": "🎉"}, "2025-01-11": {"content": "new"}}`
	res, err := newImporter().Import(ctx, svc, backup.Request{Format: "json", Filename: "b.json", Data: []byte(doc)})
	require.NoError(t, err)

	assert.False(t, res.DryRun)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, writes+1, blobs.Writes(), "import persists once")

	n, ok := svc.GetNote("2025-01-10")
	require.True(t, ok)
	assert.Equal(t, "replacement", n.Content)
	assert.Equal(t, "🎉", n.Emoji)
	assert.Equal(t, []string{}, n.Images, "an imported record fully replaces the stored one")

	_, ok = svc.GetNote("2025-01-11")
	assert.True(t, ok)
	n, _ = svc.GetNote("2025-01-12")
	assert.Equal(t, "untouched", n.Content)
}

func TestImporter_Failures(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newService(t)
	_, err := svc.SaveNote(ctx, "2025-01-10", "existing", nil)
	require.NoError(t, err)
	writes := blobs.Writes()
	blob, _, _ := blobs.ReadBlob(ctx, core.DefaultStorageKey)

	cases := []struct {
		name string
		req  backup.Request
		want error
	}{
		{"wrong extension", backup.Request{Format: "json", Filename: "b.csv", Data: []byte(`{}`)}, core.ErrValidation},
		{"unparseable", backup.Request{Filename: "b.json", Data: []byte(`{nope`)}, core.ErrValidation},
		{"not an object", backup.Request{Filename: "b.json", Data: []byte(`[1,2]`)}, core.ErrValidation},
		{"no valid records", backup.Request{Filename: "b.json", Data: []byte(`{"x": {"content": "a"}}`)}, core.ErrEmptyResult},
		{"empty document", backup.Request{Filename: "b.json", Data: []byte(`{}`)}, core.ErrEmptyResult},
		{"text without notes", backup.Request{Filename: "b.txt", Data: []byte("=== 2025년 1월 1일 ===\n(내용 없음)\n")}, core.ErrEmptyResult},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newImporter().Import(ctx, svc, tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.False(t, errors.Is(err, core.ErrStorage))
		})
	}

	after, _, _ := blobs.ReadBlob(ctx, core.DefaultStorageKey)
	assert.Equal(t, writes, blobs.Writes())
	assert.Equal(t, blob, after, "failed imports leave the persisted store unchanged")
}

func TestImporter_TextBackup(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	doc := "=== 2025년 5월 5일 ===\n어린이날\n[첨부 이미지 2개]\n"
	res, err := newImporter().Import(ctx, svc, backup.Request{Filename: "old.txt", Data: []byte(doc)})
	require.NoError(t, err)
	assert.Equal(t, "text", res.Codec)
	assert.Equal(t, 1, res.Imported)

	n, ok := svc.GetNote("2025-05-05")
	require.True(t, ok)
	assert.Equal(t, "어린이날", n.Content)
	assert.Empty(t, n.Images)
	assert.True(t, n.CreatedAt.Equal(importTime))
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	now := time.Date(2025, 1, 10, 23, 59, 0, 0, time.UTC)

	_, err := backup.Render(svc, backup.JSONCodec{}, now)
	assert.True(t, errors.Is(err, core.ErrEmptyResult), "exporting an empty store is a user error")

	_, err = svc.SaveNote(ctx, "2025-01-10", "밥약속", nil)
	require.NoError(t, err)

	exp, err := backup.Render(svc, backup.JSONCodec{}, now)
	require.NoError(t, err)
	assert.Equal(t, "하루메모_백업_2025-01-10.json", exp.FileName)
	assert.Equal(t, 1, exp.Count)
	assert.Equal(t, "json", exp.Codec)

	// Export then import into a fresh store reproduces the note.
	fresh, _ := newService(t)
	res, err := newImporter().Import(ctx, fresh, backup.Request{Filename: exp.FileName, Data: exp.Data})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	got, _ := fresh.GetNote("2025-01-10")
	want, _ := svc.GetNote("2025-01-10")
	assert.Equal(t, want.Content, got.Content)
	assert.Equal(t, want.Images, got.Images)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))

	exp, err = backup.Render(svc, backup.TextCodec{}, now)
	require.NoError(t, err)
	assert.Equal(t, "하루메모_백업_2025-01-10.txt", exp.FileName)
}
