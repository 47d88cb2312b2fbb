package core

import (
	"context"
	"log/slog"
	"sync"
)

// broker fans events out to subscribers without ever blocking the publisher.
type broker struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	next   int
	buffer int
	logger *slog.Logger
}

func newBroker(buffer int, logger *slog.Logger) *broker {
	return &broker{
		subs:   make(map[int]chan Event),
		buffer: buffer,
		logger: logger,
	}
}

func (b *broker) subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}

func (b *broker) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			if b.logger != nil {
				b.logger.Debug("subscriber buffer full, dropping event", "subscriber", id, "event", e.String())
			}
		}
	}
}

func (b *broker) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
