package kafka

import (
	"context"
	"strconv"

	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/kafka-go"
)

type sink interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error
}

// Publisher turns store activity into envelopes on the activity topic,
// keyed by order id.
type Publisher struct {
	out     sink
	service string
}

func NewPublisher(p *Producer, service string) *Publisher {
	return &Publisher{out: p, service: service}
}

func (p *Publisher) OrderCreated(ctx context.Context, o orders.Order, customerID string) error {
	return p.publish(ctx, orders.EventOrderCreated, o.ID, orders.OrderCreatedPayload{
		OrderID:    o.ID,
		CustomerID: customerID,
		Amount:     o.Amount,
		State:      o.CurrentState,
		Lines:      len(o.ProductDetails),
	})
}

func (p *Publisher) OrderTransitioned(ctx context.Context, previous orders.State, o orders.Order, req orders.TransitionRequest) error {
	return p.publish(ctx, orders.EventOrderTransitioned, o.ID, orders.OrderTransitionedPayload{
		OrderID:       o.ID,
		PreviousState: previous,
		NewState:      o.CurrentState,
		Action:        req.Action,
		Reason:        req.CancellationReason,
	})
}

func (p *Publisher) publish(ctx context.Context, eventType, orderID string, payload any) error {
	b, err := encodeEnvelope(eventType, p.service, middleware.GetReqID(ctx), orderID, payload)
	if err != nil {
		return err
	}
	return p.out.Publish(ctx, orders.PartitionKey(orderID), b,
		kafka.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafka.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(eventVersion))},
	)
}
