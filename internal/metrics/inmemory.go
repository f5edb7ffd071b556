package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered          uint64
	LoginSuccesses           uint64
	LoginFailures            uint64
	SummariesCreated         map[string]uint64
	SummariesDeleted         uint64
	ExtractionErrors         map[string]uint64
	SummarizationErrors      uint64
	SummarizeDurationCount   uint64
	SummarizeDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered          uint64
	loginSuccesses           uint64
	loginFailures            uint64
	summariesDeleted         uint64
	summarizationErrors      uint64
	summarizeDurationCount   uint64
	summarizeDurationTotalNs int64

	mu               sync.Mutex
	summariesCreated map[string]uint64
	extractionErrors map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		summariesCreated: make(map[string]uint64),
		extractionErrors: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	created := make(map[string]uint64, len(m.summariesCreated))
	for k, v := range m.summariesCreated {
		created[k] = v
	}
	extErrs := make(map[string]uint64, len(m.extractionErrors))
	for k, v := range m.extractionErrors {
		extErrs[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		UsersRegistered:          atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:           atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:            atomic.LoadUint64(&m.loginFailures),
		SummariesCreated:         created,
		SummariesDeleted:         atomic.LoadUint64(&m.summariesDeleted),
		ExtractionErrors:         extErrs,
		SummarizationErrors:      atomic.LoadUint64(&m.summarizationErrors),
		SummarizeDurationCount:   atomic.LoadUint64(&m.summarizeDurationCount),
		SummarizeDurationTotalNs: atomic.LoadInt64(&m.summarizeDurationTotalNs),
	}
}

// IncUserRegistered increments registered user counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginSuccess increments successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncSummaryCreated increments the created counter for a source type.
func (m *InMemoryRecorder) IncSummaryCreated(sourceType string) {
	m.mu.Lock()
	m.summariesCreated[sourceType]++
	m.mu.Unlock()
}

// IncSummaryDeleted increments the deleted summary counter.
func (m *InMemoryRecorder) IncSummaryDeleted() {
	atomic.AddUint64(&m.summariesDeleted, 1)
}

// IncExtractionError increments the extraction error counter for a source type.
func (m *InMemoryRecorder) IncExtractionError(sourceType string) {
	m.mu.Lock()
	m.extractionErrors[sourceType]++
	m.mu.Unlock()
}

// IncSummarizationError increments the summarization error counter.
func (m *InMemoryRecorder) IncSummarizationError() {
	atomic.AddUint64(&m.summarizationErrors, 1)
}

// ObserveSummarizeDuration records end-to-end summarize duration.
func (m *InMemoryRecorder) ObserveSummarizeDuration(duration time.Duration) {
	atomic.AddUint64(&m.summarizeDurationCount, 1)
	atomic.AddInt64(&m.summarizeDurationTotalNs, duration.Nanoseconds())
}
