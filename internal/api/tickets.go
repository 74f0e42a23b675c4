package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-order-console/internal/orders"
)

func (c *Client) ListTickets(ctx context.Context) ([]orders.Ticket, error) {
	var ws []ticketWire
	if err := c.do(ctx, call{method: http.MethodGet, route: "/tickets", path: "/tickets", out: &ws}); err != nil {
		return nil, err
	}
	return mapSlice(ws, ticketWire.model), nil
}

func (c *Client) GetTicket(ctx context.Context, id string) (orders.Ticket, error) {
	var w ticketWire
	err := c.do(ctx, call{method: http.MethodGet, route: "/tickets/{id}", path: path("tickets", id), out: &w})
	if err != nil {
		return orders.Ticket{}, err
	}
	return w.model(), nil
}

// TicketForOrder returns nil, nil when the order has no cancellation ticket.
func (c *Client) TicketForOrder(ctx context.Context, orderID string) (*orders.Ticket, error) {
	var w ticketWire
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/tickets/order/{id}",
		path:   path("tickets", "order", orderID),
		out:    &w,
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := w.model()
	return &t, nil
}
