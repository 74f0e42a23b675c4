package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ProductDetail struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Subtotal is quantity * unit price.
func (p ProductDetail) Subtotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

type Order struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	CurrentState   State           `json:"currentState"`
	CreationDate   time.Time       `json:"creationDate"`
	Customer       Customer        `json:"customer"`
	ProductDetails []ProductDetail `json:"productDetails"`
	Notes          string          `json:"notes,omitempty"`
}

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// TransitionLog is an append-only audit record owned by the server.
// PreviousState is nil only for the creation entry.
type TransitionLog struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	PreviousState  *State    `json:"previousState"`
	NewState       State     `json:"newState"`
	ActionTaken    Action    `json:"actionTaken"`
	TransitionDate time.Time `json:"transitionDate"`
}

// Ticket is created by the server as a side effect of a cancel transition.
type Ticket struct {
	ID                 string    `json:"id"`
	OrderID            string    `json:"orderId"`
	CancellationReason string    `json:"cancellationReason"`
	CreationDate       time.Time `json:"creationDate"`
}

// NewOrder is the order-creation request. Every new order starts in StatePending.
type NewOrder struct {
	Amount     decimal.Decimal
	CustomerID string
	Products   []LineItem
	Notes      string
}

type LineItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

type NewProduct struct {
	Name      string
	UnitPrice decimal.Decimal
}

type NewCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
