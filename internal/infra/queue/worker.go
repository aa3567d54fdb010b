package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/lead-capture/internal/workflow"
)

// NotificationSink delivers operator alerts. Implementations must be
// best-effort: the worker never retries a failed delivery.
type NotificationSink interface {
	NotifyNewLead(ctx context.Context, event workflow.Event) error
	NotifyHotLead(ctx context.Context, event workflow.Event) error
}

type Worker struct {
	Channel *amqp.Channel
	Sink    NotificationSink
}

func NewWorker(ch *amqp.Channel, sink NotificationSink) *Worker {
	return &Worker{
		Channel: ch,
		Sink:    sink,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual is safer)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("[worker] failed to register consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var event workflow.Event
			if err := json.Unmarshal(d.Body, &event); err != nil {
				log.Printf("[worker] invalid JSON: %s", err)
				// Malformed message. Reject without requeue so it cannot jam the queue.
				d.Nack(false, false)
				continue
			}

			log.Printf("[worker] processing %s for tenant %s", event.Kind, event.TenantID)

			if err := w.processEvent(context.Background(), event); err != nil {
				log.Printf("[worker] delivery failed for %s: %s", event.Kind, err)
				// No retry: the event goes to the DLQ for inspection.
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf("[worker] waiting on queue %q", queueName)
	<-forever
}

func (w *Worker) processEvent(ctx context.Context, event workflow.Event) error {
	switch event.Kind {
	case workflow.EventLeadCreated:
		return w.Sink.NotifyNewLead(ctx, event)

	case workflow.EventLeadBecameHot:
		return w.Sink.NotifyHotLead(ctx, event)

	case workflow.EventNewMessage:
		// Nothing to deliver for ordinary messages.
		return nil

	default:
		log.Printf("[worker] unknown event kind %q, acking to drop", event.Kind)
		return nil
	}
}
