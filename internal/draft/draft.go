// Package draft builds a new order line by line. Each line must be confirmed,
// which persists it as a product, before the order can be submitted.
package draft

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/shopspring/decimal"
)

var (
	ErrNoSuchLine    = errors.New("no such line")
	ErrLineConfirmed = errors.New("line already confirmed")
	ErrLineBusy      = errors.New("line confirmation in progress")
	ErrLastLine      = errors.New("at least one line must remain")
	ErrInvalidInput  = errors.New("invalid input for field")
	ErrUnknownField  = errors.New("unknown field")
	ErrSubmitting    = errors.New("draft submission in progress")
)

type ProductCreator interface {
	CreateProduct(ctx context.Context, p orders.NewProduct) (orders.Product, error)
}

type Backend interface {
	ProductCreator
	CreateCustomer(ctx context.Context, c orders.NewCustomer) (orders.Customer, error)
	CreateOrder(ctx context.Context, o orders.NewOrder) (orders.Order, error)
}

type Draft struct {
	backend Backend

	mu         sync.Mutex
	lines      []*line
	customer   orders.NewCustomer
	notes      string
	submitting bool
}

// New starts a draft with one empty editing line.
func New(b Backend) *Draft {
	return &Draft{backend: b, lines: []*line{newLine()}}
}

// AddLine appends an empty editing line and returns its index.
func (d *Draft) AddLine() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = append(d.lines, newLine())
	return len(d.lines) - 1
}

func (d *Draft) UpdateLine(i int, f Field, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, err := d.editable(i)
	if err != nil {
		return err
	}
	return l.set(f, value)
}

func (d *Draft) RemoveLine(i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, err := d.line(i)
	if err != nil {
		return err
	}
	if len(d.lines) == 1 {
		return ErrLastLine
	}
	if _, busy := l.state.(Confirming); busy {
		return ErrLineBusy
	}
	d.lines = append(d.lines[:i], d.lines[i+1:]...)
	return nil
}

// ConfirmLine validates the line and persists it as a product. The line stays
// editable on any failure. Edits and removal of the line are refused while
// the request is outstanding.
func (d *Draft) ConfirmLine(ctx context.Context, i int) error {
	d.mu.Lock()
	l, err := d.editable(i)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	name, qty, price, err := l.validate()
	if err != nil {
		d.mu.Unlock()
		return err
	}
	l.state = Confirming{}
	d.mu.Unlock()

	p, err := d.backend.CreateProduct(ctx, orders.NewProduct{Name: name, UnitPrice: price})
	if err == nil && p.ID == "" {
		err = errors.New("product created without id")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		l.state = Editing{}
		return &orders.ProductCreationError{Name: name, Err: err}
	}
	l.state = Confirmed{ProductID: p.ID, Quantity: qty, UnitPrice: price}
	return nil
}

// Total sums confirmed lines only.
func (d *Draft) Total() decimal.Decimal {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.total()
}

func (d *Draft) total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range d.lines {
		if c, ok := l.state.(Confirmed); ok {
			sum = sum.Add(c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity))))
		}
	}
	return sum
}

func (d *Draft) SetCustomer(name, email string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.customer = orders.NewCustomer{Name: name, Email: email}
}

func (d *Draft) SetNotes(notes string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes = notes
}

// Submit creates the customer and then the order. Nothing is sent when a
// precondition fails. A customer created before an order failure is reported
// on the returned *orders.OrderCreationError and left in place.
func (d *Draft) Submit(ctx context.Context) (orders.Order, error) {
	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return orders.Order{}, ErrSubmitting
	}
	customer, req, err := d.request()
	if err != nil {
		d.mu.Unlock()
		return orders.Order{}, err
	}
	d.submitting = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.submitting = false
		d.mu.Unlock()
	}()

	c, err := d.backend.CreateCustomer(ctx, customer)
	if err != nil {
		return orders.Order{}, &orders.OrderCreationError{Err: err}
	}
	req.CustomerID = c.ID
	o, err := d.backend.CreateOrder(ctx, req)
	if err != nil {
		return orders.Order{}, &orders.OrderCreationError{CustomerID: c.ID, Err: err}
	}
	return o, nil
}

func (d *Draft) request() (orders.NewCustomer, orders.NewOrder, error) {
	customer := orders.NewCustomer{
		Name:  strings.TrimSpace(d.customer.Name),
		Email: strings.TrimSpace(d.customer.Email),
	}
	if customer.Name == "" {
		return customer, orders.NewOrder{}, orders.Invalid("customer name required")
	}
	if customer.Email == "" {
		return customer, orders.NewOrder{}, orders.Invalid("customer email required")
	}

	var items []orders.LineItem
	for _, l := range d.lines {
		c, ok := l.state.(Confirmed)
		if !ok {
			continue
		}
		if c.ProductID == "" {
			return customer, orders.NewOrder{}, orders.Invalid("confirmed product %q has no product id", l.name)
		}
		items = append(items, orders.LineItem{
			ProductID: c.ProductID,
			Name:      strings.TrimSpace(l.name),
			Quantity:  c.Quantity,
			UnitPrice: c.UnitPrice,
		})
	}
	if len(items) == 0 {
		return customer, orders.NewOrder{}, orders.Invalid("at least one confirmed product required")
	}

	return customer, orders.NewOrder{
		Amount:   d.total(),
		Products: items,
		Notes:    strings.TrimSpace(d.notes),
	}, nil
}

type View struct {
	Customer   orders.NewCustomer `json:"customer"`
	Notes      string             `json:"notes,omitempty"`
	Lines      []LineView         `json:"lines"`
	Total      decimal.Decimal    `json:"total"`
	Submitting bool               `json:"submitting"`
}

func (d *Draft) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := View{
		Customer:   d.customer,
		Notes:      d.notes,
		Lines:      make([]LineView, 0, len(d.lines)),
		Total:      d.total(),
		Submitting: d.submitting,
	}
	for i, l := range d.lines {
		v.Lines = append(v.Lines, l.view(i))
	}
	return v
}

func (d *Draft) line(i int) (*line, error) {
	if i < 0 || i >= len(d.lines) {
		return nil, ErrNoSuchLine
	}
	return d.lines[i], nil
}

func (d *Draft) editable(i int) (*line, error) {
	l, err := d.line(i)
	if err != nil {
		return nil, err
	}
	switch l.state.(type) {
	case Confirmed:
		return nil, ErrLineConfirmed
	case Confirming:
		return nil, ErrLineBusy
	}
	return l, nil
}
