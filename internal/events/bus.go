// Package events is the in-process event bridge between the backend and the
// views. Events are named, carry a JSON payload and are delivered to every
// listener of that name in emit order.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Wildcard subscribes to every event name.
const Wildcard = "*"

// DefaultBuffer is the per-listener queue size.
const DefaultBuffer = 64

// Errors returned by the bus.
var (
	ErrBusClosed = errors.New("event bus closed")
	ErrEmptyName = errors.New("event name is required")
)

// Event is a named payload.
type Event struct {
	Seq     uint64          `json:"seq"`
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Handler receives events from Listen.
type Handler func(Event)

// Unlisten removes a listener. Calling it more than once is a no-op.
type Unlisten func()

// Emitter publishes events by name.
type Emitter interface {
	Emit(name string, payload any) error
}

// Listener registers handlers for named events.
type Listener interface {
	Listen(name string, h Handler) (Unlisten, error)
}

type subscriber struct {
	name string
	ch   chan Event
}

// Bus is a buffered in-process pub-sub.
type Bus struct {
	logger *slog.Logger
	buffer int

	seq    atomic.Uint64
	nextID uint64
	subs   map[uint64]*subscriber
	closed bool
	mu     sync.RWMutex
}

// NewBus creates a bus with the given per-listener buffer size.
func NewBus(logger *slog.Logger, buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger: logger.With("component", "events.bus"),
		buffer: buffer,
		subs:   make(map[uint64]*subscriber),
	}
}

// Emit marshals payload and enqueues it for every matching listener without
// blocking. Listeners whose queue is full miss the event.
func (b *Bus) Emit(name string, payload any) error {
	if name == "" {
		return ErrEmptyName
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", name, err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	evt := Event{Seq: b.seq.Add(1), Name: name, Payload: data}
	for id, sub := range b.subs {
		if sub.name != name && sub.name != Wildcard {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			b.logger.Warn("listener queue full, event dropped",
				"event", name,
				"listener_id", id,
				"seq", evt.Seq,
			)
		}
	}

	return nil
}

// Subscribe returns a channel of events named name (or all events for
// Wildcard). The channel is closed by the returned Unlisten or by Close.
func (b *Bus) Subscribe(name string) (<-chan Event, Unlisten, error) {
	if name == "" {
		return nil, nil, ErrEmptyName
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, ErrBusClosed
	}

	b.nextID++
	id := b.nextID
	sub := &subscriber{name: name, ch: make(chan Event, b.buffer)}
	b.subs[id] = sub

	var once sync.Once
	unlisten := func() {
		once.Do(func() { b.remove(id) })
	}

	return sub.ch, unlisten, nil
}

// Listen runs h for each event named name on a dedicated goroutine, so a
// listener sees events in emit order.
func (b *Bus) Listen(name string, h Handler) (Unlisten, error) {
	ch, unlisten, err := b.Subscribe(name)
	if err != nil {
		return nil, err
	}

	go func() {
		for evt := range ch {
			h(evt)
		}
	}()

	return unlisten, nil
}

// ListenerCount reports the number of active listeners.
func (b *Bus) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close stops the bus and closes every listener channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.ch)
}
