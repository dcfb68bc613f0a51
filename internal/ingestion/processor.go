// Package ingestion feeds device GPS fixes from MQTT into the tracking
// service through a bounded worker pool.
package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	"rigor-logistics/internal/logger"
	"rigor-logistics/internal/usecase/tracking"

	"go.uber.org/zap"
)

var ErrProcessorStopped = errors.New("ingestion processor is stopped")

// Reporter stores a fix. tracking.Service satisfies it.
type Reporter interface {
	Report(ctx context.Context, fix tracking.Fix) (tracking.ReportResult, error)
}

type Processor struct {
	reporter    Reporter
	workerCount int
	timeout     time.Duration

	queue   chan *LocationMessage
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool

	metrics *MetricsTracker
	now     func() time.Time
}

func NewProcessor(reporter Reporter, workerCount, bufferSize int) *Processor {
	if workerCount <= 0 {
		workerCount = 1
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		reporter:    reporter,
		workerCount: workerCount,
		timeout:     5 * time.Second,
		queue:       make(chan *LocationMessage, bufferSize),
		ctx:         ctx,
		cancel:      cancel,
		metrics:     NewMetricsTracker(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (p *Processor) Start() {
	logger.Info("Starting ingestion processor",
		zap.Int("workers", p.workerCount),
		zap.Int("buffer_size", cap(p.queue)),
	)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop refuses new messages, lets the workers drain the queue and waits for
// them.
func (p *Processor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
	logger.Info("Ingestion processor stopped")
}

// Process validates msg and queues it. It never blocks. A full queue drops
// the message.
func (p *Processor) Process(msg *LocationMessage) error {
	if err := ValidateLocationMessage(msg, p.now()); err != nil {
		p.metrics.Update(func(m *IngestMetrics) { m.MessagesFailed++ })
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrProcessorStopped
	}

	select {
	case p.queue <- msg:
		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesReceived++
			m.BufferSize = len(p.queue)
		})
		return nil
	default:
		logger.Warn("Location buffer full, dropping message",
			zap.Int64("trip_id", msg.TripID),
			zap.String("device_id", msg.DeviceID),
		)
		p.metrics.Update(func(m *IngestMetrics) { m.MessagesDropped++ })
		return nil
	}
}

func (p *Processor) worker(id int) {
	defer p.wg.Done()

	for msg := range p.queue {
		start := time.Now()
		result, err := p.report(msg)
		if err != nil {
			logger.Warn("Failed to store location fix",
				zap.Int("worker", id),
				zap.Int64("trip_id", msg.TripID),
				zap.Error(err),
			)
			p.metrics.Update(func(m *IngestMetrics) { m.MessagesFailed++ })
			continue
		}

		elapsed := time.Since(start)
		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesProcessed++
			m.LastProcessedAt = p.now()
			m.BufferSize = len(p.queue)
			switch result {
			case tracking.ReportSaved:
				m.FixesSaved++
			case tracking.ReportThrottled:
				m.FixesThrottled++
			case tracking.ReportStale:
				m.FixesStale++
			}
			if m.AverageProcessingTime == 0 {
				m.AverageProcessingTime = elapsed
			} else {
				m.AverageProcessingTime = (m.AverageProcessingTime + elapsed) / 2
			}
		})
	}
}

func (p *Processor) report(msg *LocationMessage) (tracking.ReportResult, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	return p.reporter.Report(ctx, tracking.Fix{
		TripID:    msg.TripID,
		Latitude:  msg.Latitude,
		Longitude: msg.Longitude,
		Timestamp: msg.Timestamp,
	})
}

func (p *Processor) GetMetrics() IngestMetrics {
	return p.metrics.Snapshot()
}
