package core

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"
)

// Service is the application controller. It exclusively owns the Store and
// exposes explicit commands; every mutation is followed by an Event so the
// view layer can re-render.
type Service struct {
	mu              sync.RWMutex
	blobs           BlobStore
	store           *Store
	logger          *slog.Logger
	broker          *broker
	eventBufferSize int
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Store       StoreConfig
	Logger      *slog.Logger
	EventBuffer int // Per-subscriber buffer, zero means 100.
}

// NewService creates a new Service. Call Load before issuing commands.
func NewService(blobs BlobStore, config ServiceConfig) *Service {
	if config.EventBuffer <= 0 {
		config.EventBuffer = 100
	}
	if config.Store.Logger == nil {
		config.Store.Logger = config.Logger
	}
	return &Service{
		blobs:           blobs,
		store:           NewStore(blobs, config.Store),
		logger:          config.Logger,
		broker:          newBroker(config.EventBuffer, config.Logger),
		eventBufferSize: config.EventBuffer,
	}
}

// SaveResult is the outcome of SaveNote.
type SaveResult struct {
	Change Change
	// Note is the stored record; zero when the save deleted the date.
	Note Note
}

// Load reads the persisted store. It must succeed before any command.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// Reload re-reads the persisted store, replacing memory, and notifies
// subscribers. Used when the blob changed outside this process.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Load(ctx); err != nil {
		return err
	}
	s.broker.publish(newEvent(EventReload, "", s.store.Len()))
	return nil
}

// SaveNote saves content and images for date (deleting it when both are empty).
func (s *Service) SaveNote(ctx context.Context, date, content string, images []string) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change, err := s.store.Save(ctx, date, content, images)
	return s.result(date, change), s.notify(date, change, err)
}

// DeleteNote removes the note for date. It reports whether anything was removed.
func (s *Service) DeleteNote(ctx context.Context, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change, err := s.store.Delete(ctx, date)
	return change == ChangeDeleted, s.notify(date, change, err)
}

// SetEmoji sets the calendar marker for an existing note.
func (s *Service) SetEmoji(ctx context.Context, date, emoji string) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change, err := s.store.SetEmoji(ctx, date, emoji)
	return s.result(date, change), s.notify(date, change, err)
}

// AddImage appends an image payload to the note for date.
func (s *Service) AddImage(ctx context.Context, date, payload string) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change, err := s.store.AddImage(ctx, date, payload)
	return s.result(date, change), s.notify(date, change, err)
}

// DeleteImage removes the image at index from the note for date.
func (s *Service) DeleteImage(ctx context.Context, date string, index int) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change, err := s.store.DeleteImage(ctx, date, index)
	return s.result(date, change), s.notify(date, change, err)
}

// ToggleChecklist flips the checklist marker on a line of the note for date.
func (s *Service) ToggleChecklist(ctx context.Context, date string, line int) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change, err := s.store.ToggleChecklist(ctx, date, line)
	return s.result(date, change), s.notify(date, change, err)
}

// ImportBatch merges already-validated notes into the store, overwriting
// per date, with a single persistence write. Once called it runs to
// completion; ctx is only handed to the blob store.
func (s *Service) ImportBatch(ctx context.Context, notes []Note) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.store.Merge(context.WithoutCancel(ctx), notes)
	if n > 0 {
		s.broker.publish(newEvent(EventImport, "", n))
	}
	if err != nil && s.logger != nil {
		s.logger.Error("import failed", "error", err)
	}
	return n, err
}

// GetNote returns the note for date.
func (s *Service) GetNote(date string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Get(date)
}

// Lookup returns the note for a single calendar cell.
func (s *Service) Lookup(date string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Lookup(date)
}

// DatesWithNotesInMonth returns the days (1-based) of a 0-indexed month holding notes.
func (s *Service) DatesWithNotesInMonth(year, month0 int) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.DatesWithNotesInMonth(year, month0)
}

// MonthSummary returns the per-cell summaries of a 0-indexed month.
func (s *Service) MonthSummary(year, month0 int) []DaySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.MonthSummary(year, month0)
}

// Notes returns every note sorted by date.
func (s *Service) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Snapshot()
}

// Len returns the number of stored notes.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Len()
}

// Subscribe returns a channel of change notifications, closed when ctx ends.
// Slow subscribers lose events rather than blocking commands.
func (s *Service) Subscribe(ctx context.Context) <-chan Event {
	return s.broker.subscribe(ctx)
}

// Watch reloads the store whenever the blob store reports an external
// change, until ctx ends. It fails if the blob store cannot be watched.
func (s *Service) Watch(ctx context.Context) error {
	w, ok := s.blobs.(Watchable)
	if !ok {
		return ErrNotWatchable
	}
	events, err := w.Watch(ctx, s.store.config.Key)
	if err != nil {
		return err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				if e.Type != EventExternal {
					continue
				}
				// A broken external write keeps the last good state in memory.
				if err := s.Reload(ctx); err != nil && s.logger != nil {
					s.logger.Error("reload after external change failed", "error", err)
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		if s.logger != nil {
			s.logger.Error("watch loop panic", "error", err)
		}
	}))
	return nil
}

// Close releases the underlying blob store if it holds resources.
func (s *Service) Close() error {
	if c, ok := s.blobs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Service) result(date string, change Change) SaveResult {
	res := SaveResult{Change: change}
	if n, ok := s.store.Get(date); ok {
		res.Note = n
	}
	return res
}

// notify publishes the event for a completed change. Storage errors still
// notify, since memory already changed.
func (s *Service) notify(date string, change Change, err error) error {
	if change != ChangeNone {
		s.broker.publish(newEvent(change.eventType(), date, s.store.Len()))
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("command failed", "date", date, "change", change.String(), "error", err)
	}
	return err
}
