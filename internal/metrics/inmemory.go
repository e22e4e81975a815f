package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UserCacheHits    uint64
	UserCacheMisses  uint64
	UserFetchCount   uint64
	UserFetchTotalNs int64
	UsersAdded       uint64
	UsersRemoved     uint64
	ToastsEmitted    map[string]uint64
	ToastsDropped    uint64
}

// InMemoryRecorder stores metrics in memory for tests and /metrics.
type InMemoryRecorder struct {
	userCacheHits    uint64
	userCacheMisses  uint64
	userFetchCount   uint64
	userFetchTotalNs int64
	usersAdded       uint64
	usersRemoved     uint64
	toastsDropped    uint64

	mu            sync.Mutex
	toastsEmitted map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{toastsEmitted: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	emitted := make(map[string]uint64, len(m.toastsEmitted))
	for level, n := range m.toastsEmitted {
		emitted[level] = n
	}
	m.mu.Unlock()

	return Snapshot{
		UserCacheHits:    atomic.LoadUint64(&m.userCacheHits),
		UserCacheMisses:  atomic.LoadUint64(&m.userCacheMisses),
		UserFetchCount:   atomic.LoadUint64(&m.userFetchCount),
		UserFetchTotalNs: atomic.LoadInt64(&m.userFetchTotalNs),
		UsersAdded:       atomic.LoadUint64(&m.usersAdded),
		UsersRemoved:     atomic.LoadUint64(&m.usersRemoved),
		ToastsEmitted:    emitted,
		ToastsDropped:    atomic.LoadUint64(&m.toastsDropped),
	}
}

// IncUserCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncUserCacheHit() {
	atomic.AddUint64(&m.userCacheHits, 1)
}

// IncUserCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncUserCacheMiss() {
	atomic.AddUint64(&m.userCacheMisses, 1)
}

// ObserveUserFetchDuration records get_user duration.
func (m *InMemoryRecorder) ObserveUserFetchDuration(duration time.Duration) {
	atomic.AddUint64(&m.userFetchCount, 1)
	atomic.AddInt64(&m.userFetchTotalNs, duration.Nanoseconds())
}

// IncUserAdded increments user added counter.
func (m *InMemoryRecorder) IncUserAdded() {
	atomic.AddUint64(&m.usersAdded, 1)
}

// IncUserRemoved increments user removed counter.
func (m *InMemoryRecorder) IncUserRemoved() {
	atomic.AddUint64(&m.usersRemoved, 1)
}

// IncToastEmitted counts an emitted toast by level.
func (m *InMemoryRecorder) IncToastEmitted(level string) {
	m.mu.Lock()
	m.toastsEmitted[level]++
	m.mu.Unlock()
}

// IncToastDropped increments the dropped toast counter.
func (m *InMemoryRecorder) IncToastDropped() {
	atomic.AddUint64(&m.toastsDropped, 1)
}
