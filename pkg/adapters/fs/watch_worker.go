package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/harumemo/pkg/core"
)

// DebounceInterval coalesces the burst of events an atomic rename produces.
const DebounceInterval = 50 * time.Millisecond

// Watch reports changes to key's file made by anything other than this
// BlobStore. The channel is closed when ctx ends.
func (s *BlobStore) Watch(ctx context.Context, key string) (<-chan core.Event, error) {
	if _, err := s.FileFor(key); err != nil {
		return nil, err
	}

	events := make(chan core.Event)
	w := newWatchWorker(s, key, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := w.Stop(stopCtx)
		close(events)
		return err
	}, lifecycle.WithErrorHandler(s.reportError("watch shutdown")))

	return events, nil
}

type watchWorker struct {
	*worker.BaseWorker
	store     *BlobStore
	key       string
	events    chan<- core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

func newWatchWorker(store *BlobStore, key string, events chan<- core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		store:      store,
		key:        key,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// The directory, not the file: atomic writes replace the inode.
	if err := watcher.Add(w.store.Path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.store.Path, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(DebounceInterval)
	w.store.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"key":               w.key,
		}
	})
}

// relevant reports whether a filesystem event touches the watched blob file.
func (w *watchWorker) relevant(event fsnotify.Event) bool {
	if isTempFile(event.Name) {
		return false
	}
	if filepath.Base(event.Name) != w.key+FileExtension {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// settle runs once a burst of events has quiesced. Content identical to our
// last write is ours and is dropped.
func (w *watchWorker) settle(ctx context.Context, name string) {
	data, err := os.ReadFile(name)
	if err == nil && w.store.isOwnWrite(w.key, data) {
		return
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		w.store.log().Debug("watched file unreadable", "path", name, "error", err)
	}

	w.store.log().Debug("external change detected", "path", name)
	w.send(ctx, core.Event{
		Type:      core.EventExternal,
		Timestamp: time.Now().Unix(),
	})
}

// send delivers an event unless the worker is stopping. Watch closes the
// channel only after Stop has drained the debouncer.
func (w *watchWorker) send(ctx context.Context, e core.Event) {
	select {
	case w.events <- e:
	case <-ctx.Done():
	}
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			logger := w.store.log()
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer w.store.setWatcherActive(false)
	defer w.watcher.Close()

	err = w.loop(ctx)

	// In-flight timers may still send; wait for them before the channel can close.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			name := event.Name
			w.debouncer.add(w.key, func() { w.settle(ctx, name) })

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.store.log().Error("fsnotify error", "error", wErr)
			if w.store.config.ErrorHandler != nil {
				w.store.config.ErrorHandler(wErr)
			}
		}
	}
}

// debouncer delays a callback until no new call for the same key arrived
// within the interval.
type debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) add(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok && t.Stop() {
		// The pending callback will not run; release its slot.
		d.wg.Done()
	}
	d.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(d.interval, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[key] == timer {
			delete(d.timers, key)
		}
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			fn()
		}
	})
	d.timers[key] = timer
}

// stopAndWait cancels pending callbacks and waits for running ones.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
