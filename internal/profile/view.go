// Package profile drives the user profile page: it loads a user through the
// backend and renders the profile card.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/service"
)

// ErrSuperseded is returned by Load when a newer load replaced it before
// the backend answered. Its result was discarded.
var ErrSuperseded = errors.New("profile load superseded")

// Fetcher is the get_user call.
type Fetcher interface {
	GetUser(ctx context.Context, id int64) (*model.FullUser, error)
}

// State is what the page shows. A nil User with Loading false after a
// failure is the silent "not loaded" state; Err records why.
type State struct {
	ID      int64
	HasID   bool
	Loading bool
	User    *model.FullUser
	Err     service.ErrorKind
}

// View holds the profile page state. Loads are generation-tagged so a
// response for an id that is no longer selected never overwrites the state.
type View struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	state    State
	onChange func(State)
	wg       sync.WaitGroup
}

// NewView creates a view in the initial loading state.
func NewView(fetcher Fetcher, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		fetcher: fetcher,
		logger:  logger.With("component", "profile"),
		state:   State{Loading: true},
	}
}

// OnChange registers fn to be called after every applied state change.
func (v *View) OnChange(fn func(State)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// State returns the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Load fetches id once and blocks until the result is applied or discarded.
// Any in-flight load is cancelled and its result discarded.
func (v *View) Load(ctx context.Context, id int64) (State, error) {
	ctx, gen, _ := v.begin(ctx, id, false)
	return v.fetch(ctx, gen, id)
}

// Select loads id in the background unless it is already the selected id.
// Wait blocks until background loads finish.
func (v *View) Select(ctx context.Context, id int64) {
	ctx, gen, started := v.begin(ctx, id, true)
	if !started {
		return
	}

	go func() {
		defer v.wg.Done()
		_, _ = v.fetch(ctx, gen, id)
	}()
}

// SelectParam selects the id given as a query parameter. A missing or
// non-numeric value issues no request and leaves the view loading.
func (v *View) SelectParam(ctx context.Context, raw string) bool {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return false
	}
	v.Select(ctx, id)
	return true
}

// Wait blocks until background loads started by Select finish.
func (v *View) Wait() {
	v.wg.Wait()
}

// Close cancels any in-flight load.
func (v *View) Close() {
	v.mu.Lock()
	cancel := v.cancel
	v.cancel = nil
	v.gen++
	v.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	v.wg.Wait()
}

// begin starts a new generation for id. With keepSame set it does nothing
// when id is already selected. A started Select-style load is counted in wg.
func (v *View) begin(ctx context.Context, id int64, keepSame bool) (context.Context, uint64, bool) {
	v.mu.Lock()
	if keepSame && v.state.HasID && v.state.ID == id {
		v.mu.Unlock()
		return nil, 0, false
	}

	ctx, cancel := context.WithCancel(ctx)
	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	gen := v.gen
	v.cancel = cancel
	v.state = State{ID: id, HasID: true, Loading: true}
	if keepSame {
		v.wg.Add(1)
	}
	notify, state := v.onChange, v.state
	v.mu.Unlock()

	if notify != nil {
		notify(state)
	}
	return ctx, gen, true
}

func (v *View) fetch(ctx context.Context, gen uint64, id int64) (State, error) {
	user, err := v.fetcher.GetUser(ctx, id)

	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		v.logger.Debug("discarded stale profile response", "user_id", id)
		return State{}, ErrSuperseded
	}

	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.state.Loading = false
	if err != nil {
		v.state.Err = service.KindOf(err)
	} else {
		v.state.User = user
	}
	notify, state := v.onChange, v.state
	v.mu.Unlock()

	if err != nil {
		v.logger.Error("failed to load user", "user_id", id, "kind", state.Err, "error", err)
	}
	if notify != nil {
		notify(state)
	}
	return state, nil
}
