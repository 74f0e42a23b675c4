package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/shopspring/decimal"
)

// timestamp accepts RFC 3339 and the zone-less ISO form the service emits
// for its naive UTC columns.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	for _, layout := range timestampLayouts {
		if v, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", s)
}

// number is a decimal that encodes as a bare JSON number, the form the
// service reads and writes amounts in. It decodes from either form.
type number struct {
	decimal.Decimal
}

func num(d decimal.Decimal) number { return number{d} }

func (n number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *number) UnmarshalJSON(b []byte) error {
	return n.Decimal.UnmarshalJSON(b)
}

type customerWire struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type productWire struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	UnitPrice number `json:"unit_price"`
}

type orderProductWire struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice number `json:"unit_price"`
}

type orderWire struct {
	ID           string             `json:"id"`
	Amount       number             `json:"amount"`
	CurrentState string             `json:"current_state"`
	CreationDate timestamp          `json:"creation_date"`
	Customer     customerWire       `json:"customer"`
	Products     []orderProductWire `json:"products"`
	Notes        *string            `json:"notes"`
}

type createOrderWire struct {
	Amount       number             `json:"amount"`
	CurrentState string             `json:"current_state"`
	CustomerID   string             `json:"customer_id"`
	Products     []orderProductWire `json:"products"`
	Notes        string             `json:"notes,omitempty"`
}

type transitionWire struct {
	Action             string `json:"action"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
}

type logWire struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	PreviousState  *string   `json:"previous_state"`
	NewState       string    `json:"new_state"`
	ActionTaken    string    `json:"action_taken"`
	TransitionDate timestamp `json:"transition_date"`
}

type ticketWire struct {
	ID                 string    `json:"id"`
	OrderID            string    `json:"order_id"`
	CancellationReason string    `json:"cancellation_reason"`
	CreationDate       timestamp `json:"creation_date"`
}

func (w customerWire) model() orders.Customer {
	return orders.Customer{ID: w.ID, Name: w.Name, Email: w.Email}
}

func (w productWire) model() orders.Product {
	return orders.Product{ID: w.ID, Name: w.Name, UnitPrice: w.UnitPrice.Decimal}
}

func (w orderWire) model() orders.Order {
	o := orders.Order{
		ID:             w.ID,
		Amount:         w.Amount.Decimal,
		CurrentState:   orders.State(w.CurrentState),
		CreationDate:   w.CreationDate.Time,
		Customer:       w.Customer.model(),
		ProductDetails: make([]orders.ProductDetail, 0, len(w.Products)),
	}
	for _, p := range w.Products {
		o.ProductDetails = append(o.ProductDetails, orders.ProductDetail{
			Name:      p.Name,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice.Decimal,
		})
	}
	if w.Notes != nil {
		o.Notes = *w.Notes
	}
	return o
}

func (w logWire) model() orders.TransitionLog {
	l := orders.TransitionLog{
		ID:             w.ID,
		OrderID:        w.OrderID,
		NewState:       orders.State(w.NewState),
		ActionTaken:    orders.Action(w.ActionTaken),
		TransitionDate: w.TransitionDate.Time,
	}
	if w.PreviousState != nil {
		prev := orders.State(*w.PreviousState)
		l.PreviousState = &prev
	}
	return l
}

func (w ticketWire) model() orders.Ticket {
	return orders.Ticket{
		ID:                 w.ID,
		OrderID:            w.OrderID,
		CancellationReason: w.CancellationReason,
		CreationDate:       w.CreationDate.Time,
	}
}

func newOrderWire(o orders.NewOrder) createOrderWire {
	w := createOrderWire{
		Amount:       num(o.Amount),
		CurrentState: string(orders.StatePending),
		CustomerID:   o.CustomerID,
		Products:     make([]orderProductWire, 0, len(o.Products)),
		Notes:        o.Notes,
	}
	for _, p := range o.Products {
		w.Products = append(w.Products, orderProductWire{
			ProductID: p.ProductID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			UnitPrice: num(p.UnitPrice),
		})
	}
	return w
}

func mapSlice[W any, M any](ws []W, f func(W) M) []M {
	out := make([]M, 0, len(ws))
	for _, w := range ws {
		out = append(out, f(w))
	}
	return out
}
