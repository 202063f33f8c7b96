package notify

import (
	"context"
	"time"

	"lab-inventory/pkg/events"
	"lab-inventory/pkg/logger"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Broadcaster is the websocket side of a dispatch.
type Broadcaster interface {
	Send(message []byte) bool
}

// Dispatcher delivers committed events to websocket clients and the event
// topic on a bounded worker pool. A full pool drops the event.
type Dispatcher struct {
	pool      *ants.Pool
	hub       Broadcaster
	publisher events.Publisher
	counter   *prometheus.CounterVec
}

func New(size int, hub Broadcaster, publisher events.Publisher, reg prometheus.Registerer) (*Dispatcher, error) {
	if size <= 0 {
		size = ants.DefaultAntsPoolSize
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(true), ants.WithExpiryDuration(10*time.Second))
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "labinv_events_total",
		Help: "Inventory events by type and delivery outcome.",
	}, []string{"type", "outcome"})
	if reg != nil {
		if err := reg.Register(counter); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				counter = are.ExistingCollector.(*prometheus.CounterVec)
			} else {
				pool.Release()
				return nil, err
			}
		}
	}

	return &Dispatcher{pool: pool, hub: hub, publisher: publisher, counter: counter}, nil
}

// Notify never blocks the caller.
func (d *Dispatcher) Notify(ctx context.Context, ev events.Event) {
	body, err := ev.Marshal()
	if err != nil {
		logger.Error(ctx).Err(err).Str("type", ev.Type).Msg("Failed to encode event")
		return
	}

	ctx = context.WithoutCancel(ctx)
	err = d.pool.Submit(func() {
		if d.hub != nil && !d.hub.Send(body) {
			d.counter.WithLabelValues(ev.Type, "ws_dropped").Inc()
		}
		if err := d.publisher.Publish(ctx, ev); err != nil {
			d.counter.WithLabelValues(ev.Type, "publish_failed").Inc()
			return
		}
		d.counter.WithLabelValues(ev.Type, "delivered").Inc()
	})
	if err != nil {
		d.counter.WithLabelValues(ev.Type, "pool_full").Inc()
		logger.Warn(ctx).Err(err).Str("type", ev.Type).Msg("Notification dropped")
	}
}

// Close waits briefly for in-flight deliveries.
func (d *Dispatcher) Close() error {
	return d.pool.ReleaseTimeout(5 * time.Second)
}
