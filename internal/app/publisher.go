package app

import (
	"context"

	"github.com/ariefcatur/go-order-console/internal/orders"
)

// Publisher receives activity after a mutation succeeds. Its errors are
// logged and never fail the mutation.
type Publisher interface {
	OrderCreated(ctx context.Context, o orders.Order, customerID string) error
	OrderTransitioned(ctx context.Context, previous orders.State, o orders.Order, req orders.TransitionRequest) error
}

type NopPublisher struct{}

func (NopPublisher) OrderCreated(context.Context, orders.Order, string) error { return nil }

func (NopPublisher) OrderTransitioned(context.Context, orders.State, orders.Order, orders.TransitionRequest) error {
	return nil
}
