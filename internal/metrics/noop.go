package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserCacheHit is a no-op.
func (n *NoopRecorder) IncUserCacheHit() {}

// IncUserCacheMiss is a no-op.
func (n *NoopRecorder) IncUserCacheMiss() {}

// ObserveUserFetchDuration is a no-op.
func (n *NoopRecorder) ObserveUserFetchDuration(duration time.Duration) {}

// IncUserAdded is a no-op.
func (n *NoopRecorder) IncUserAdded() {}

// IncUserRemoved is a no-op.
func (n *NoopRecorder) IncUserRemoved() {}

// IncToastEmitted is a no-op.
func (n *NoopRecorder) IncToastEmitted(level string) {}

// IncToastDropped is a no-op.
func (n *NoopRecorder) IncToastDropped() {}
