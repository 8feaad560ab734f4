package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopfront/catalog-api/internal/core/domain"
	"github.com/shopfront/catalog-api/internal/core/ports"
	"github.com/shopfront/catalog-api/internal/pkg/metrics"
)

const (
	defaultWorkers        = 4
	channelBuffer         = 256
	defaultPublishTimeout = 5 * time.Second
)

// Dispatcher fans catalog events out to a fixed set of workers using consistent
// hashing on the event key, so events about one product or category reach the
// publisher in commit order.
type Dispatcher struct {
	workers   []chan domain.CatalogEvent
	publisher ports.EventPublisher
	timeout   time.Duration
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.EventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.CatalogEvent, numWorkers),
		publisher: publisher,
		timeout:   defaultPublishTimeout,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.CatalogEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Shutdown has drained their queues.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Emit queues an event for its shard without blocking. When the shard is full
// or the dispatcher is shut down the event is dropped and counted.
func (d *Dispatcher) Emit(event domain.CatalogEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher closed")
		return
	}

	idx := d.shardIndex(event.Key())
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(event, "worker queue full")
	}
}

// Shutdown stops accepting events and waits until workers have drained their
// queues or ctx expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps an event key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) drop(event domain.CatalogEvent, reason string) {
	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), "dropped").Inc()
	d.log.Warn().
		Str("event", string(event.Type)).
		Int64("aggregate_id", event.AggregateID).
		Str("reason", reason).
		Msg("catalog event dropped")
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.CatalogEvent) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.EventsQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			d.publish(ctx, id, event)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, workerID int, event domain.CatalogEvent) {
	pubCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := d.publisher.Publish(pubCtx, event)
	metrics.EventPublishDuration.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), "error").Inc()
		d.log.Error().Err(err).
			Str("event", string(event.Type)).
			Int64("aggregate_id", event.AggregateID).
			Int("worker_id", workerID).
			Msg("catalog event publish failed")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), "ok").Inc()
}
