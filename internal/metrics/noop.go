package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}

// IncSummaryCreated is a no-op.
func (n *NoopRecorder) IncSummaryCreated(sourceType string) {}

// IncSummaryDeleted is a no-op.
func (n *NoopRecorder) IncSummaryDeleted() {}

// IncExtractionError is a no-op.
func (n *NoopRecorder) IncExtractionError(sourceType string) {}

// IncSummarizationError is a no-op.
func (n *NoopRecorder) IncSummarizationError() {}

// ObserveSummarizeDuration is a no-op.
func (n *NoopRecorder) ObserveSummarizeDuration(duration time.Duration) {}
