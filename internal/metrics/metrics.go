package metrics

import (
	"log/slog"
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched        int64
	FeedFailures        int64
	CandidatesEvaluated int64
	DuplicatesFiltered  int64
	PaywallsDetected    int64
	ExtractionFailures  int64
	ModelCalls          int64
	ModelFailures       int64
	ArticlesSelected    int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) add(counter *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter++
}

func (m *Metrics) IncrementFeedsFetched()        { m.add(&m.FeedsFetched) }
func (m *Metrics) IncrementFeedFailures()        { m.add(&m.FeedFailures) }
func (m *Metrics) IncrementCandidatesEvaluated() { m.add(&m.CandidatesEvaluated) }
func (m *Metrics) IncrementDuplicatesFiltered()  { m.add(&m.DuplicatesFiltered) }
func (m *Metrics) IncrementPaywallsDetected()    { m.add(&m.PaywallsDetected) }
func (m *Metrics) IncrementExtractionFailures()  { m.add(&m.ExtractionFailures) }
func (m *Metrics) IncrementModelCalls()          { m.add(&m.ModelCalls) }
func (m *Metrics) IncrementModelFailures()       { m.add(&m.ModelFailures) }
func (m *Metrics) IncrementArticlesSelected()    { m.add(&m.ArticlesSelected) }

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":              m.FeedsFetched,
		"feed_failures":              m.FeedFailures,
		"candidates_evaluated":       m.CandidatesEvaluated,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"paywalls_detected":          m.PaywallsDetected,
		"extraction_failures":        m.ExtractionFailures,
		"model_calls":                m.ModelCalls,
		"model_failures":             m.ModelFailures,
		"articles_selected":          m.ArticlesSelected,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}

// LogSummary writes the run counters as one structured log line.
func (m *Metrics) LogSummary() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	slog.Info("Run summary",
		"feeds_fetched", m.FeedsFetched,
		"feed_failures", m.FeedFailures,
		"candidates", m.CandidatesEvaluated,
		"duplicates", m.DuplicatesFiltered,
		"paywalls", m.PaywallsDetected,
		"extraction_failures", m.ExtractionFailures,
		"model_calls", m.ModelCalls,
		"model_failures", m.ModelFailures,
		"selected", m.ArticlesSelected,
		"duration", m.LastProcessingTime,
	)
}
