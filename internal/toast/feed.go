package toast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gitchest/gitchest/internal/events"
	"github.com/gitchest/gitchest/internal/metrics"
)

// Errors returned by Mount.
var (
	ErrFeedClosed    = errors.New("toast feed closed")
	ErrListenerSetup = errors.New("toast listener setup failed")
)

// Feed listens for add-toast events and appends them to a Store.
//
// A Feed is mounted at most once. Unmount removes the listener exactly once
// and events still queued at that point are discarded.
type Feed struct {
	listener events.Listener
	store    *Store
	logger   *slog.Logger
	metrics  metrics.Recorder

	mu       sync.Mutex
	mounted  bool
	unlisten events.Unlisten
	stop     func() bool
	setupErr error

	closed   atomic.Bool
	teardown sync.Once
}

// NewFeed creates a feed delivering into store.
func NewFeed(listener events.Listener, store *Store, logger *slog.Logger, recorder metrics.Recorder) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Feed{
		listener: listener,
		store:    store,
		logger:   logger.With("component", "toast.feed"),
		metrics:  recorder,
	}
}

// Mount registers the listener. The feed unmounts itself when ctx is done.
// A listener setup failure is logged and returned; the store keeps working
// without live updates. Mounting twice is a no-op.
func (f *Feed) Mount(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed.Load() {
		return ErrFeedClosed
	}

	if f.mounted {
		return f.setupErr
	}
	f.mounted = true

	unlisten, err := f.listener.Listen(EventName, f.handle)
	if err != nil {
		f.setupErr = fmt.Errorf("%w: listen %s: %w", ErrListenerSetup, EventName, err)
		f.logger.Error("could not set up toast listener", "error", err)
		return f.setupErr
	}
	f.unlisten = unlisten
	f.stop = context.AfterFunc(ctx, f.Unmount)

	f.logger.Debug("toast feed mounted")
	return nil
}

// Unmount removes the listener. Only the first call has an effect.
func (f *Feed) Unmount() {
	f.teardown.Do(func() {
		f.closed.Store(true)

		f.mu.Lock()
		unlisten, stop := f.unlisten, f.stop
		f.unlisten, f.stop = nil, nil
		f.mu.Unlock()

		if stop != nil {
			stop()
		}
		if unlisten != nil {
			unlisten()
		}
		f.logger.Debug("toast feed unmounted")
	})
}

// Err returns the listener setup error, if any.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setupErr
}

// Store returns the store the feed delivers into.
func (f *Feed) Store() *Store {
	return f.store
}

func (f *Feed) handle(evt events.Event) {
	if f.closed.Load() {
		return
	}

	var p Payload
	if err := evt.Decode(&p); err != nil {
		f.metrics.IncToastDropped()
		f.logger.Warn("malformed toast payload", "seq", evt.Seq, "error", err)
		return
	}

	msg, err := f.store.Add(p)
	if err != nil {
		f.metrics.IncToastDropped()
		f.logger.Warn("toast rejected", "seq", evt.Seq, "level", p.Level, "error", err)
		return
	}

	f.metrics.IncToastEmitted(string(msg.Type))
	f.logger.Debug("added toast", "id", msg.ID, "title", msg.Title, "level", msg.Type)
}
