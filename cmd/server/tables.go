package main

import (
	"context"
	"sync"

	"campfire/internal/config"
)

// tableHub fans reloaded tables out to every running session. Each
// subscriber holds at most one pending Tables; a newer one replaces it.
type tableHub struct {
	mu      sync.Mutex
	current *config.Tables
	subs    map[chan *config.Tables]struct{}
}

func newTableHub(initial *config.Tables) *tableHub {
	return &tableHub{
		current: initial,
		subs:    make(map[chan *config.Tables]struct{}),
	}
}

// Current returns the newest tables, used to start new sessions.
func (h *tableHub) Current() *config.Tables {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Subscribe registers a session. The returned cancel func must be called
// when the session ends.
func (h *tableHub) Subscribe() (<-chan *config.Tables, func()) {
	ch := make(chan *config.Tables, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Publish stores ts as current and offers it to every subscriber.
func (h *tableHub) Publish(ts *config.Tables) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = ts
	for ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		ch <- ts
	}
}

// Run forwards updates into the hub until ctx is cancelled or updates closes.
func (h *tableHub) Run(ctx context.Context, updates <-chan *config.Tables) {
	for {
		select {
		case <-ctx.Done():
			return
		case ts, ok := <-updates:
			if !ok {
				return
			}
			h.Publish(ts)
		}
	}
}
