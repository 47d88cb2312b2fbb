package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"
)

// StoreConfig holds the configuration for a Store.
type StoreConfig struct {
	Key    string // Blob key, defaults to DefaultStorageKey.
	Clock  func() time.Time
	Logger *slog.Logger
}

// Store owns the mapping from date key to Note and persists it as one blob.
//
// A Store is not safe for concurrent use; Service serializes access to it.
type Store struct {
	blobs  BlobStore
	config StoreConfig
	notes  map[string]Note
	loaded bool
}

// NewStore creates an empty, unloaded Store on top of a blob store.
func NewStore(blobs BlobStore, config StoreConfig) *Store {
	if config.Key == "" {
		config.Key = DefaultStorageKey
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	return &Store{
		blobs:  blobs,
		config: config,
		notes:  make(map[string]Note),
	}
}

// Load reads the persisted blob once and replaces the in-memory notes wholesale.
// A missing blob yields an empty store. A malformed blob is returned as an
// error and the store stays unloaded, refusing writes.
func (s *Store) Load(ctx context.Context) error {
	data, ok, err := s.blobs.ReadBlob(ctx, s.config.Key)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s: %w", ErrStorage, s.config.Key, err)
	}

	notes := make(map[string]Note)
	if ok && len(bytes.TrimSpace([]byte(data))) > 0 {
		if err := json.Unmarshal([]byte(data), &notes); err != nil {
			return fmt.Errorf("%w: malformed blob %s: %w", ErrStorage, s.config.Key, err)
		}
		if notes == nil {
			return fmt.Errorf("%w: malformed blob %s: top-level value is not an object", ErrStorage, s.config.Key)
		}
	}

	for key, n := range notes {
		if n.IsEmpty() {
			s.debug("dropping empty persisted note", "date", key)
			delete(notes, key)
			continue
		}
		// Older blobs carry no date field; the key is authoritative.
		n.ID = key
		n.Date = key
		if n.Images == nil {
			n.Images = []string{}
		}
		notes[key] = n
	}

	s.notes = notes
	s.loaded = true
	s.debug("store loaded", "key", s.config.Key, "notes", len(notes))
	return nil
}

// Persist serializes the entire store and writes it as one blob.
func (s *Store) Persist(ctx context.Context) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.notes); err != nil {
		return fmt.Errorf("failed to serialize store: %w", err)
	}

	if err := s.blobs.WriteBlob(ctx, s.config.Key, string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrStorage, s.config.Key, err)
	}
	s.debug("store persisted", "key", s.config.Key, "notes", len(s.notes))
	return nil
}

// Loaded reports whether Load completed successfully.
func (s *Store) Loaded() bool {
	return s.loaded
}

// Get returns the note for date. It has no side effects.
func (s *Store) Get(date string) (Note, bool) {
	n, ok := s.notes[date]
	if !ok {
		return Note{}, false
	}
	return n.Clone(), true
}

// Len returns the number of stored notes.
func (s *Store) Len() int {
	return len(s.notes)
}

// Snapshot returns deep copies of all notes, sorted by date.
func (s *Store) Snapshot() []Note {
	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Save upserts the note for date, or deletes it when content is blank and
// there are no images. Creating sets createdAt = updatedAt = now and an empty
// emoji; updating overwrites content and images and advances updatedAt.
// The whole store is persisted afterwards.
//
// If persisting fails the in-memory change is kept and the error wraps
// ErrStorage, so the caller can warn that the change may not be durable.
func (s *Store) Save(ctx context.Context, date, content string, images []string) (Change, error) {
	if err := s.writable(date); err != nil {
		return ChangeNone, err
	}
	if IsBlank(content, images) {
		return s.Delete(ctx, date)
	}

	images = slices.Clone(images)
	if images == nil {
		images = []string{}
	}

	// The key is retained; never alias a caller's buffer.
	date = strings.Clone(date)
	change := ChangeUpdated
	n, ok := s.notes[date]
	if ok {
		n.Content = content
		n.Images = images
		s.touch(&n)
	} else {
		change = ChangeCreated
		now := s.now()
		n = Note{
			ID:        date,
			Date:      date,
			Content:   content,
			Images:    images,
			Emoji:     "",
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	s.notes[date] = n

	return change, s.Persist(ctx)
}

// Delete removes the note for date. Deleting an absent date is a no-op and
// does not write.
func (s *Store) Delete(ctx context.Context, date string) (Change, error) {
	if err := s.writable(date); err != nil {
		return ChangeNone, err
	}
	if _, ok := s.notes[date]; !ok {
		return ChangeNone, nil
	}
	delete(s.notes, date)
	return ChangeDeleted, s.Persist(ctx)
}

// SetEmoji sets or clears the calendar marker of an existing note.
func (s *Store) SetEmoji(ctx context.Context, date, emoji string) (Change, error) {
	if err := s.writable(date); err != nil {
		return ChangeNone, err
	}
	n, ok := s.notes[date]
	if !ok {
		return ChangeNone, fmt.Errorf("%w: %s", ErrNotFound, date)
	}
	if n.Emoji == emoji {
		return ChangeNone, nil
	}
	n.Emoji = emoji
	s.touch(&n)
	s.notes[date] = n
	return ChangeUpdated, s.Persist(ctx)
}

// AddImage appends an image payload, creating the note when needed.
func (s *Store) AddImage(ctx context.Context, date, payload string) (Change, error) {
	if payload == "" {
		return ChangeNone, fmt.Errorf("%w: empty image payload", ErrValidation)
	}
	if err := s.writable(date); err != nil {
		return ChangeNone, err
	}
	n, _ := s.Get(date)
	return s.Save(ctx, date, n.Content, append(n.Images, payload))
}

// DeleteImage removes the image at index. The note is removed when it
// becomes empty.
func (s *Store) DeleteImage(ctx context.Context, date string, index int) (Change, error) {
	if err := s.writable(date); err != nil {
		return ChangeNone, err
	}
	n, ok := s.Get(date)
	if !ok {
		return ChangeNone, fmt.Errorf("%w: %s", ErrNotFound, date)
	}
	if index < 0 || index >= len(n.Images) {
		return ChangeNone, fmt.Errorf("%w: image index %d out of range (%d images)", ErrValidation, index, len(n.Images))
	}
	return s.Save(ctx, date, n.Content, slices.Delete(n.Images, index, index+1))
}

// ToggleChecklist flips the checklist marker on a 0-based line of the note.
func (s *Store) ToggleChecklist(ctx context.Context, date string, line int) (Change, error) {
	if err := s.writable(date); err != nil {
		return ChangeNone, err
	}
	n, ok := s.Get(date)
	if !ok {
		return ChangeNone, fmt.Errorf("%w: %s", ErrNotFound, date)
	}
	content, err := ToggleChecklistLine(n.Content, line)
	if err != nil {
		return ChangeNone, err
	}
	return s.Save(ctx, date, content, n.Images)
}

// Merge writes a batch of notes, each fully replacing whatever is stored at
// its date, and persists once. Notes are taken as-is (timestamps included);
// validation is the caller's job.
func (s *Store) Merge(ctx context.Context, notes []Note) (int, error) {
	if !s.loaded {
		return 0, ErrNotLoaded
	}
	for _, n := range notes {
		if _, err := ParseDate(n.Date); err != nil {
			return 0, err
		}
	}

	for _, n := range notes {
		n = n.Clone()
		n.Date = strings.Clone(n.Date)
		n.ID = n.Date
		s.notes[n.Date] = n
	}
	return len(notes), s.Persist(ctx)
}

func (s *Store) writable(date string) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	_, err := ParseDate(date)
	return err
}

func (s *Store) now() time.Time {
	return s.config.Clock().UTC().Truncate(time.Millisecond)
}

// touch advances updatedAt, strictly past its previous value even when the
// clock did not move.
func (s *Store) touch(n *Note) {
	now := s.now()
	if !now.After(n.UpdatedAt) {
		now = n.UpdatedAt.Add(time.Millisecond)
	}
	n.UpdatedAt = now
}

func (s *Store) debug(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, args...)
	}
}
