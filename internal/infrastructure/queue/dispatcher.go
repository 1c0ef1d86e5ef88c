package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/api/metrics"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

const (
	defaultWorkers         = 4
	defaultBuffer          = 256
	defaultDeliveryTimeout = 10 * time.Second
)

type Config struct {
	Workers         int
	Buffer          int
	DeliveryTimeout time.Duration
}

// Dispatcher fans notifications out to a fixed set of workers using
// consistent hashing on the entity ID, so events about one ticket or
// portabilite are delivered in the order they happened.
type Dispatcher struct {
	workers   []chan domain.Notification
	deliverer ports.NotificationDeliverer
	timeout   time.Duration
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Zero config values fall back to defaults.
func NewDispatcher(cfg Config, deliverer ports.NotificationDeliverer, log zerolog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = defaultDeliveryTimeout
	}
	d := &Dispatcher{
		workers:   make([]chan domain.Notification, cfg.Workers),
		deliverer: deliverer,
		timeout:   cfg.DeliveryTimeout,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, cfg.Buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Close has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Notify enqueues without blocking. A full worker channel drops the
// notification.
func (d *Dispatcher) Notify(_ context.Context, n domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(n, "dispatcher closed")
		return
	}
	idx := d.shardIndex(n.EntityID)
	ch := d.workers[idx]
	select {
	case ch <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(ch)))
	default:
		d.drop(n, "queue full")
	}
}

// Close stops accepting notifications and waits for the queued ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) drop(n domain.Notification, reason string) {
	metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "dropped").Inc()
	d.log.Warn().
		Str("kind", string(n.Kind)).
		Str("entity_id", n.EntityID).
		Str("reason", reason).
		Msg("notification dropped")
}

// shardIndex maps an entity ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(entityID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(entityID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	defer d.wg.Done()
	depth := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.deliver(ctx, id, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, worker int, n domain.Notification) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	delivered, err := d.deliverer.Deliver(ctx, n)
	result := "sent"
	switch {
	case err != nil:
		result = "failed"
		d.log.Error().Err(err).
			Str("kind", string(n.Kind)).
			Str("entity_id", n.EntityID).
			Int("worker_id", worker).
			Msg("notification delivery failed")
	case !delivered:
		result = "skipped"
	}
	metrics.NotificationsTotal.WithLabelValues(string(n.Kind), result).Inc()
	metrics.NotificationDeliveryDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
