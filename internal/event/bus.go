// Package event implements the in-process publish/subscribe bus that game
// components use to talk to each other.
//
// Dispatch is keyed on the exact static type of the published value: a
// handler registered with Subscribe[EquipChanged] only sees values published
// as Publish[EquipChanged]. Handlers run synchronously on the publishing
// goroutine in registration order. A bus belongs to one game session and is
// not safe for concurrent use.
package event

import (
	"fmt"
	"reflect"
	"slices"

	xlog "campfire/internal/log"
	"campfire/internal/metrics"

	"github.com/rs/zerolog"
)

// DefaultMaxDepth bounds how deeply handlers may publish from inside other
// handlers before further events are dropped.
const DefaultMaxDepth = 8

// Event is implemented by every payload type that travels over the bus.
type Event interface {
	EventName() string
}

// Subscription binds one handler to one event type. It is the identity used
// to unsubscribe.
type Subscription struct {
	bus    *Bus
	typ    reflect.Type
	id     uint64
	call   func(Event)
	active bool
}

// Unsubscribe removes the subscription from its bus. Calling it more than
// once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.Unsubscribe(s)
}

// Active reports whether the subscription is still registered.
func (s *Subscription) Active() bool { return s != nil && s.active }

// Bus is a type-keyed registry of handlers.
type Bus struct {
	handlers map[reflect.Type][]*Subscription
	nextID   uint64
	depth    int
	maxDepth int
	logger   zerolog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.maxDepth = n
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// NewBus returns an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[reflect.Type][]*Subscription),
		maxDepth: DefaultMaxDepth,
		logger:   xlog.WithComponent("event"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for events of exact type T. Subscribing the same
// function twice yields two independent subscriptions.
func Subscribe[T Event](b *Bus, handler func(T)) *Subscription {
	b.nextID++
	sub := &Subscription{
		bus:    b,
		typ:    reflect.TypeFor[T](),
		id:     b.nextID,
		call:   func(e Event) { handler(e.(T)) },
		active: true,
	}
	b.handlers[sub.typ] = append(b.handlers[sub.typ], sub)
	return sub
}

// Publish delivers ev to every handler currently registered for type T.
// A panicking handler is recovered and logged; the remaining handlers still run.
func Publish[T Event](b *Bus, ev T) {
	name := ev.EventName()
	if b.depth >= b.maxDepth {
		b.logger.Error().
			Str("event", "bus.depth_exceeded").
			Str("type", name).
			Int("max_depth", b.maxDepth).
			Msg("dropping event published too deep inside handlers")
		metrics.IncDropped(name, "depth")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(name).Inc()

	subs := b.handlers[reflect.TypeFor[T]()]
	if len(subs) == 0 {
		return
	}
	// Handlers may subscribe or unsubscribe while we dispatch.
	snapshot := slices.Clone(subs)

	b.depth++
	defer func() { b.depth-- }()
	for _, sub := range snapshot {
		if !sub.active {
			continue
		}
		b.invoke(sub, ev, name)
	}
}

func (b *Bus) invoke(sub *Subscription, ev Event, name string) {
	defer func() {
		if r := recover(); r != nil {
			metrics.EventHandlerPanicsTotal.WithLabelValues(name).Inc()
			b.logger.Error().
				Str("event", "bus.handler_panic").
				Str("type", name).
				Uint64("subscription", sub.id).
				Str("panic", fmt.Sprint(r)).
				Msg("event handler panicked")
		}
	}()
	sub.call(ev)
}

// Unsubscribe removes sub. It is a no-op for nil, foreign or already removed
// subscriptions.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil || sub.bus != b || !sub.active {
		return
	}
	sub.active = false
	subs := b.handlers[sub.typ]
	if i := slices.Index(subs, sub); i >= 0 {
		subs = slices.Delete(subs, i, i+1)
	}
	if len(subs) == 0 {
		delete(b.handlers, sub.typ)
		return
	}
	b.handlers[sub.typ] = subs
}

// HandlerCount returns the number of handlers registered for type T.
func HandlerCount[T Event](b *Bus) int {
	return len(b.handlers[reflect.TypeFor[T]()])
}

// Subscriptions collects handles owned by one component so they can be
// released together on teardown.
type Subscriptions []*Subscription

// Add records subscriptions for a later Close.
func (s *Subscriptions) Add(subs ...*Subscription) {
	*s = append(*s, subs...)
}

// Close unsubscribes everything that was added and empties the set.
func (s *Subscriptions) Close() {
	for _, sub := range *s {
		sub.Unsubscribe()
	}
	*s = nil
}
