package ingestion

import (
	"sync"
	"time"
)

// IngestMetrics tracks ingestion throughput and outcomes
type IngestMetrics struct {
	MessagesReceived      int64         `json:"messages_received"`
	MessagesProcessed     int64         `json:"messages_processed"`
	MessagesFailed        int64         `json:"messages_failed"`
	MessagesDropped       int64         `json:"messages_dropped"`
	FixesSaved            int64         `json:"fixes_saved"`
	FixesThrottled        int64         `json:"fixes_throttled"`
	FixesStale            int64         `json:"fixes_stale"`
	LastProcessedAt       time.Time     `json:"last_processed_at"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
	BufferSize            int           `json:"buffer_size"`
}

// MetricsTracker provides a goroutine-safe wrapper around IngestMetrics.
type MetricsTracker struct {
	mu      sync.RWMutex
	metrics IngestMetrics
}

func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{}
}

func (t *MetricsTracker) Update(fn func(*IngestMetrics)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.metrics)
}

func (t *MetricsTracker) Snapshot() IngestMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.metrics
}
