package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/bio33/TeleShare/internal/metrics"
	"github.com/bio33/TeleShare/internal/model"
)

const topic = "teleshare.notifications"

// Dispatcher publishes events on an in-process channel and delivers them
// to a Sender from a background goroutine, so Notify returns immediately.
type Dispatcher struct {
	pubsub  *gochannel.GoChannel
	sender  Sender
	logger  *slog.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

// NewDispatcher starts delivering to sender. buffer sizes the subscriber's
// output channel. It does not cap memory: when the channel is full each
// Publish parks the event in its own goroutine until the sender catches up.
// Call Close to stop.
func NewDispatcher(sender Sender, logger *slog.Logger, m *metrics.Metrics, buffer int) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(buffer),
	}, &slogAdapter{log: logger})

	msgs, err := pubsub.Subscribe(context.Background(), topic)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	d := &Dispatcher{pubsub: pubsub, sender: sender, logger: logger, metrics: m}
	d.wg.Add(1)
	go d.run(msgs)
	return d, nil
}

// Notify queues ev for delivery.
func (d *Dispatcher) Notify(ctx context.Context, ev model.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		d.logger.ErrorContext(ctx, "encoding notification", "kind", ev.Kind, "error", err)
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := d.pubsub.Publish(topic, msg); err != nil {
		d.logger.InfoContext(ctx, "notification dropped", "user_id", ev.UserID, "kind", ev.Kind, "error", err)
		d.metrics.Notification(string(ev.Kind), false)
	}
}

// Close stops accepting events and waits for the delivery goroutine.
func (d *Dispatcher) Close() error {
	err := d.pubsub.Close()
	d.wg.Wait()
	return err
}

func (d *Dispatcher) run(msgs <-chan *message.Message) {
	defer d.wg.Done()

	for msg := range msgs {
		var ev model.Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			d.logger.Error("decoding notification", "message_uuid", msg.UUID, "error", err)
			msg.Ack()
			continue
		}

		err := d.sender.Send(context.Background(), ev.UserID, ev.Kind, Render(ev))
		if err != nil {
			// Recipients without a session are expected; this is not an error.
			d.logger.Info("could not notify user", "user_id", ev.UserID, "kind", ev.Kind, "error", err)
		}
		d.metrics.Notification(string(ev.Kind), err == nil)
		// Redelivery is not attempted.
		msg.Ack()
	}
}

type slogAdapter struct{ log *slog.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
