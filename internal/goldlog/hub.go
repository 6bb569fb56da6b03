package goldlog

import (
	"context"
	"log/slog"
	"sync"
)

// subscriberBuffer bounds each subscriber's channel. A subscriber that falls
// this far behind starts losing entries instead of stalling the resolver.
const subscriberBuffer = 64

// Hub fans freshly appended entries out to live subscribers, typically the
// websocket tail endpoint. It implements [Sink] so it can be combined with a
// persistent sink via [MultiSink].
//
// Delivery is best-effort: slow subscribers drop entries, and the hub never
// blocks an append.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Entry]struct{}
}

var _ Sink = (*Hub)(nil)

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Entry]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel function
// unregisters it and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Entry, func()) {
	ch := make(chan Entry, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Append delivers e to every subscriber without blocking. Never returns an
// error.
func (h *Hub) Append(_ context.Context, e Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- e:
		default:
			slog.Debug("gold log subscriber lagging, entry dropped")
		}
	}
	return nil
}

// Subscribers reports the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
