package notification

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"rigor-logistics/internal/logger"

	"go.uber.org/zap"
)

const defaultSendTimeout = 30 * time.Second

// Stats counts dispatcher outcomes since start.
type Stats struct {
	Queued  int64
	Sent    int64
	Failed  int64
	Dropped int64
}

// Dispatcher queues messages and sends them from a fixed pool of workers.
// A full queue drops the message instead of blocking the caller.
type Dispatcher struct {
	sender      Sender
	queue       chan Message
	workerCount int
	sendTimeout time.Duration

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup

	queued  atomic.Int64
	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

func NewDispatcher(sender Sender, workerCount, queueSize int) *Dispatcher {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Dispatcher{
		sender:      sender,
		queue:       make(chan Message, queueSize),
		workerCount: workerCount,
		sendTimeout: defaultSendTimeout,
	}
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	logger.Info("Notification dispatcher started", zap.Int("workers", d.workerCount), zap.Int("queue_size", cap(d.queue)))
}

// Stop stops accepting messages, drains the queue and waits for workers.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	logger.Info("Notification dispatcher stopped")
}

func (d *Dispatcher) Notify(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherStopped
	}

	select {
	case d.queue <- msg:
		d.queued.Add(1)
		return nil
	default:
		d.dropped.Add(1)
		logger.Warn("Notification queue full, dropping message",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return ErrQueueFull
	}
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Queued:  d.queued.Load(),
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Dropped: d.dropped.Load(),
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err := d.sender.Send(ctx, msg)
		cancel()

		if err != nil {
			d.failed.Add(1)
			logger.Warn("Notification delivery failed",
				zap.Int("worker", id),
				zap.Strings("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
			continue
		}
		d.sent.Add(1)
	}
}
