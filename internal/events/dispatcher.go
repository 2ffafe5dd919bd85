package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nkiryanov/crownplay/internal/logger"
)

const (
	DefaultDispatchWorkers = 4
	DefaultQueueSize       = 1024

	publishTimeout = 5 * time.Second
	failureBackoff = time.Second
)

var (
	ErrDispatcherClosed = errors.New("event dispatcher closed")
	ErrQueueFull        = errors.New("event queue is full")
)

// Dispatcher publishes events in background workers, so callers never wait for the broker.
// Events failed to publish are logged and dropped; workers pause for a while after a failure
type Dispatcher struct {
	next   Publisher
	queue  chan Event
	logger logger.Logger

	// Unix nano time workers wait until after the broker failed
	waitUntil atomic.Int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(next Publisher, workers int, queueSize int, l logger.Logger) *Dispatcher {
	if workers <= 0 {
		workers = DefaultDispatchWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	d := &Dispatcher{
		next:   next,
		queue:  make(chan Event, queueSize),
		logger: l,
	}

	for range workers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.worker()
		}()
	}

	return d
}

// Enqueue event. Never blocks: ErrQueueFull if workers fall behind
func (d *Dispatcher) Publish(_ context.Context, e Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop accepting events, publish queued ones and close underlying publisher
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Debug("Event dispatcher stopped")

	return d.next.Close()
}

func (d *Dispatcher) worker() {
	for e := range d.queue {
		// Wait until backoff is passed
		if until := time.Unix(0, d.waitUntil.Load()); until.After(time.Now()) {
			time.Sleep(time.Until(until))
		}

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := d.next.Publish(ctx, e)
		cancel()

		if err != nil {
			d.logger.Error("Event dropped", "type", e.Type, "user_id", e.UserID, "error", err)
			d.waitUntil.Store(time.Now().Add(failureBackoff).UnixNano())
		}
	}
}
