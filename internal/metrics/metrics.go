// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// User lookup metrics
	IncUserCacheHit()
	IncUserCacheMiss()
	ObserveUserFetchDuration(duration time.Duration)

	// User lifecycle metrics
	IncUserAdded()
	IncUserRemoved()

	// Toast pipeline metrics
	IncToastEmitted(level string)
	IncToastDropped()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
