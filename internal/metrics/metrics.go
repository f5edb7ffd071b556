// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLoginSuccess()
	IncLoginFailure()

	// Summarization pipeline metrics
	IncSummaryCreated(sourceType string)
	IncSummaryDeleted()
	IncExtractionError(sourceType string)
	IncSummarizationError()
	ObserveSummarizeDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
