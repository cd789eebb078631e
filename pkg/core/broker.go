package core

import (
	"context"
	"log/slog"
	"sync"
)

// broker fans events out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type broker struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	size   int
	logger *slog.Logger
}

func newBroker(size int) *broker {
	return &broker{
		subs: make(map[chan Event]struct{}),
		size: size,
	}
}

func (b *broker) subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, b.size)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, ch)
		close(ch)
	}()

	return ch
}

func (b *broker) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			if b.logger != nil {
				b.logger.Debug("event dropped, subscriber buffer full", "type", e.Type, "id", e.ID)
			}
		}
	}
}

func (b *broker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
