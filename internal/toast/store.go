package toast

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Defaults for StoreOptions.
const (
	DefaultTTL      = 5 * time.Second
	DefaultCapacity = 32
)

// ErrToastNotFound is returned by Dismiss for unknown ids.
var ErrToastNotFound = errors.New("toast not found")

// Message is a toast held by the Store.
type Message struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Type        Level     `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// TTL after which Expire drops a toast. Zero keeps toasts until dismissed.
	TTL time.Duration
	// Capacity bounds the list; the oldest toast is evicted first.
	Capacity int
	// Now overrides the clock used by Add.
	Now func() time.Time
}

// Store is the ordered list of visible toasts. All mutations are serialized.
type Store struct {
	ttl      time.Duration
	capacity int
	now      func() time.Time

	mu      sync.Mutex
	entropy io.Reader
	items   []Message
	nextSub int
	subs    map[int]chan []Message
}

// NewStore creates an empty store.
func NewStore(opts StoreOptions) *Store {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		ttl:      opts.TTL,
		capacity: opts.Capacity,
		now:      opts.Now,
		entropy:  ulid.Monotonic(rand.Reader, 0),
		subs:     make(map[int]chan []Message),
	}
}

// Add appends a toast built from p and returns it with its assigned id.
func (s *Store) Add(p Payload) (Message, error) {
	if !p.Level.IsValid() {
		return Message{}, ErrInvalidLevel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:          id.String(),
		Title:       p.Title,
		Description: p.Description,
		Type:        p.Level,
		CreatedAt:   now,
	}
	s.items = append(s.items, msg)
	if over := len(s.items) - s.capacity; over > 0 {
		s.items = append([]Message(nil), s.items[over:]...)
	}
	s.notifyLocked()

	return msg, nil
}

// Dismiss removes the toast with the given id.
func (s *Store) Dismiss(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.items {
		if m.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			s.notifyLocked()
			return nil
		}
	}
	return ErrToastNotFound
}

// List returns a copy of the visible toasts, oldest first.
func (s *Store) List() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len reports the number of visible toasts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Expire drops toasts older than the TTL at now and returns how many were
// removed.
func (s *Store) Expire(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0:0]
	for _, m := range s.items {
		if now.Sub(m.CreatedAt) < s.ttl {
			kept = append(kept, m)
		}
	}
	removed := len(s.items) - len(kept)
	if removed > 0 {
		s.items = kept
		s.notifyLocked()
	}
	return removed
}

// Subscribe returns a channel receiving the full list after every change.
// Slow subscribers only see the latest list.
func (s *Store) Subscribe() (<-chan []Message, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	ch := make(chan []Message, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Store) snapshotLocked() []Message {
	out := make([]Message, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		list := s.snapshotLocked()
		select {
		case <-ch:
		default:
		}
		ch <- list
	}
}

// Run calls Expire every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Expire(now)
		}
	}
}
