package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/lead-capture/internal/infra/http/middleware"
	"github.com/xavierca1/lead-capture/internal/workflow"
)

// EventPublisher is a workflow.Handler that hands events to RabbitMQ so
// notification delivery happens off the request path. Losing an event on a
// broker outage is acceptable: workflow dispatch is fire-and-forget.
type EventPublisher struct {
	Ch *amqp.Channel
}

func NewEventPublisher(ch *amqp.Channel) *EventPublisher {
	return &EventPublisher{Ch: ch}
}

var _ workflow.Handler = (*EventPublisher)(nil)

func (p *EventPublisher) Handle(ctx context.Context, event workflow.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Kind, err)
	}

	middleware.RecordWorkflowEvent(string(event.Kind))
	return nil
}
