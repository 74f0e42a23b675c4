package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated      = "OrderCreated"
	EventOrderTransitioned = "OrderTransitioned"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	State      State           `json:"state"`
	Lines      int             `json:"lines"`
}

type OrderTransitionedPayload struct {
	OrderID       string `json:"order_id"`
	PreviousState State  `json:"previous_state,omitempty"`
	NewState      State  `json:"new_state"`
	Action        Action `json:"action"`
	Reason        string `json:"reason,omitempty"`
}
