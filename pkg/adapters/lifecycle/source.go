// Package lifecycle exposes note change events as a lifecycle.Source.
package lifecycle

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/harumemo/pkg/core"
)

// NoteSource forwards core.Event values from a Service subscription.
type NoteSource struct {
	events    <-chan core.Event
	out       chan lifecycle.Event
	forwarded atomic.Int64
}

// NewSource wraps a channel returned by core.Service.Subscribe.
// Events is closed once the input closes or the Start context ends.
func NewSource(events <-chan core.Event) *NoteSource {
	return &NoteSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

// Events implements lifecycle.Source.
func (s *NoteSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Forwarded returns how many events reached a consumer.
func (s *NoteSource) Forwarded() int64 {
	return s.forwarded.Load()
}

// Start implements lifecycle.Source.
func (s *NoteSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
					s.forwarded.Add(1)
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

var _ lifecycle.Source = (*NoteSource)(nil)
