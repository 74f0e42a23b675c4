package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ariefcatur/go-order-console/internal/orders"
)

func (c *Client) ListOrders(ctx context.Context) ([]orders.Order, error) {
	var ws []orderWire
	if err := c.do(ctx, call{method: http.MethodGet, route: "/orders", path: "/orders", out: &ws}); err != nil {
		return nil, err
	}
	return mapSlice(ws, orderWire.model), nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (orders.Order, error) {
	var w orderWire
	err := c.do(ctx, call{method: http.MethodGet, route: "/orders/{id}", path: path("orders", id), out: &w})
	if err != nil {
		return orders.Order{}, err
	}
	return w.model(), nil
}

// CreateOrder always sends current_state "pending".
func (c *Client) CreateOrder(ctx context.Context, o orders.NewOrder) (orders.Order, error) {
	var w orderWire
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/orders",
		path:   "/orders",
		in:     newOrderWire(o),
		out:    &w,
	})
	if err != nil {
		return orders.Order{}, err
	}
	return w.model(), nil
}

// Transition validates the request locally first; a *orders.ValidationError
// means nothing was sent.
func (c *Client) Transition(ctx context.Context, orderID string, req orders.TransitionRequest) (orders.Order, error) {
	if err := req.Validate(); err != nil {
		return orders.Order{}, err
	}
	req = req.Normalized()

	var w orderWire
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/orders/{id}/transition",
		path:   path("orders", orderID, "transition"),
		in:     transitionWire{Action: string(req.Action), CancellationReason: req.CancellationReason},
		out:    &w,
	})
	if err != nil {
		return orders.Order{}, err
	}
	return w.model(), nil
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, route: "/orders/{id}", path: path("orders", id)})
}

func (c *Client) OrderLogs(ctx context.Context, orderID string) ([]orders.TransitionLog, error) {
	var ws []logWire
	err := c.do(ctx, call{method: http.MethodGet, route: "/orders/{id}/logs", path: path("orders", orderID, "logs"), out: &ws})
	if err != nil {
		return nil, err
	}
	return mapSlice(ws, logWire.model), nil
}

// RecentLogs lists the latest transition logs across all orders.
func (c *Client) RecentLogs(ctx context.Context, limit int) ([]orders.TransitionLog, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var ws []logWire
	err := c.do(ctx, call{method: http.MethodGet, route: "/orders/logs", path: "/orders/logs", query: q, out: &ws})
	if err != nil {
		return nil, err
	}
	return mapSlice(ws, logWire.model), nil
}

// AllowedActions is the server's own view of the legal actions for an order.
func (c *Client) AllowedActions(ctx context.Context, orderID string) ([]orders.Action, error) {
	var ws []string
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/orders/{id}/allowed-actions",
		path:   path("orders", orderID, "allowed-actions"),
		out:    &ws,
	})
	if err != nil {
		return nil, err
	}
	return mapSlice(ws, func(s string) orders.Action { return orders.Action(s) }), nil
}
