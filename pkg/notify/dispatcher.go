package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/phasewatch/phasewatch/pkg/alerting"
	"github.com/phasewatch/phasewatch/pkg/storage"
)

const (
	queueSize       = 64
	deliveryTimeout = 15 * time.Second
	recordTimeout   = 5 * time.Second
)

// Dispatcher decouples monitor state updates from delivery. Events are
// queued and a single worker renders, records, and fans them out, so a slow
// or failing notifier can never stall ingestion. Delivery is best-effort:
// failures are logged and the triggering state transition stands.
type Dispatcher struct {
	renderer  alerting.Renderer
	notifiers []Notifier
	store     storage.Storage // nil disables history recording
	logger    *slog.Logger
	queue     chan alerting.Event
	done      chan struct{}
}

// NewDispatcher creates a dispatcher. Run must be started for published
// events to be delivered.
func NewDispatcher(renderer alerting.Renderer, notifiers []Notifier, store storage.Storage, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		renderer:  renderer,
		notifiers: notifiers,
		store:     store,
		logger:    logger,
		queue:     make(chan alerting.Event, queueSize),
		done:      make(chan struct{}),
	}
}

// Publish enqueues ev for delivery. It never blocks: when the queue is full
// the event is dropped with a warning rather than stalling the reading path.
func (d *Dispatcher) Publish(ev alerting.Event) {
	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("notification queue full, dropping event",
			"channel", ev.Channel,
			"kind", ev.Kind,
		)
	}
}

// Run consumes the queue until ctx is canceled, then drains whatever is
// already queued before returning.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case ev := <-d.queue:
					d.deliver(ev)
				default:
					return
				}
			}
		case ev := <-d.queue:
			d.deliver(ev)
		}
	}
}

// Wait blocks until Run has returned.
func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) deliver(ev alerting.Event) {
	content := d.renderer.Render(ev)
	msg := Message{
		Channel: ev.Channel,
		Kind:    string(ev.Kind),
		Level:   ev.NewLevel.String(),
		Value:   ev.Value,
		Content: content,
	}

	d.logger.Info("alert",
		"channel", ev.Channel,
		"kind", ev.Kind,
		"level", ev.NewLevel.String(),
		"value", ev.Value,
	)

	if d.store != nil {
		record := &storage.AlertRecord{
			Channel:   ev.Channel,
			Kind:      string(ev.Kind),
			OldLevel:  ev.OldLevel.String(),
			NewLevel:  ev.NewLevel.String(),
			Value:     ev.Value,
			Message:   content,
			Timestamp: ev.At,
		}
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := d.store.RecordAlert(ctx, record); err != nil {
			d.logger.Error("record alert", "channel", ev.Channel, "error", err)
		}
		cancel()
	}

	for _, n := range d.notifiers {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		if err := n.Send(ctx, msg); err != nil {
			d.logger.Error("send alert failed",
				"notifier", n.Name(),
				"channel", ev.Channel,
				"error", err,
			)
		}
		cancel()
	}
}
