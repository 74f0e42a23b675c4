package draft

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/shopspring/decimal"
)

type Field string

const (
	FieldName      Field = "name"
	FieldQuantity  Field = "quantity"
	FieldUnitPrice Field = "unitPrice"
)

// LineState is one of Editing, Confirming or Confirmed. A line only moves
// forward; leaving Confirming without a product id puts it back to Editing.
type LineState interface {
	status() Status
}

type Editing struct{}

// Confirming means a product-creation request for the line is in flight.
type Confirming struct{}

// Confirmed holds the values persisted for the line. It cannot exist without
// a product id.
type Confirmed struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (Editing) status() Status    { return StatusEditing }
func (Confirming) status() Status { return StatusConfirming }
func (Confirmed) status() Status  { return StatusConfirmed }

type Status string

const (
	StatusEditing    Status = "editing"
	StatusConfirming Status = "confirming"
	StatusConfirmed  Status = "confirmed"
)

var (
	quantityInput = regexp.MustCompile(`^\d*$`)
	priceInput    = regexp.MustCompile(`^\d*\.?\d*$`)
)

type line struct {
	name      string
	quantity  string
	unitPrice string
	state     LineState
}

func newLine() *line {
	return &line{quantity: "1", state: Editing{}}
}

func (l *line) set(f Field, value string) error {
	switch f {
	case FieldName:
		l.name = value
	case FieldQuantity:
		if !quantityInput.MatchString(value) {
			return ErrInvalidInput
		}
		l.quantity = value
	case FieldUnitPrice:
		if !priceInput.MatchString(value) {
			return ErrInvalidInput
		}
		l.unitPrice = value
	default:
		return ErrUnknownField
	}
	return nil
}

// validate parses the editable text into the values a confirmation stores.
func (l *line) validate() (string, int, decimal.Decimal, error) {
	name := strings.TrimSpace(l.name)
	if name == "" {
		return "", 0, decimal.Zero, orders.Invalid("product name required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(l.unitPrice))
	if err != nil || !price.IsPositive() {
		return "", 0, decimal.Zero, orders.Invalid("unit price must be a positive number")
	}
	qty, err := strconv.Atoi(strings.TrimSpace(l.quantity))
	if err != nil || qty <= 0 {
		return "", 0, decimal.Zero, orders.Invalid("quantity must be a positive whole number")
	}
	return name, qty, price, nil
}

// LineView is a read-only snapshot of one line.
type LineView struct {
	Index     int              `json:"index"`
	Name      string           `json:"name"`
	Quantity  string           `json:"quantity"`
	UnitPrice string           `json:"unitPrice"`
	Status    Status           `json:"status"`
	ProductID string           `json:"productId,omitempty"`
	Subtotal  *decimal.Decimal `json:"subtotal,omitempty"`
}

func (l *line) view(i int) LineView {
	v := LineView{
		Index:     i,
		Name:      l.name,
		Quantity:  l.quantity,
		UnitPrice: l.unitPrice,
		Status:    l.state.status(),
	}
	if c, ok := l.state.(Confirmed); ok {
		v.ProductID = c.ProductID
		sub := c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
		v.Subtotal = &sub
	}
	return v
}
