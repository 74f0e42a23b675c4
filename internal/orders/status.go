package orders

import (
	"strings"

	"github.com/shopspring/decimal"
)

type State string

const (
	StatePending       State = "pending"
	StateReview        State = "review"
	StateInPreparation State = "in_preparation"
	StateShipped       State = "shipped"
	StateDelivered     State = "delivered"
	StateCancelled     State = "cancelled"
)

type Action string

const (
	ActionSubmitForReview  Action = "submit_for_review"
	ActionStartPreparation Action = "start_preparation"
	ActionApprove          Action = "approve"
	ActionShip             Action = "ship"
	ActionDeliver          Action = "deliver"
	ActionCancel           Action = "cancel"
)

// Severity is the display weight of an action button.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityAccent  Severity = "accent"
	SeveritySuccess Severity = "success"
	SeverityDanger  Severity = "danger"
)

// ReviewThreshold splits pending orders between review and the fast path.
// Only evaluated while an order is pending.
var ReviewThreshold = decimal.NewFromInt(1000)

type AllowedAction struct {
	Action   Action   `json:"action"`
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
	To       State    `json:"to"`
}

type guard func(amount decimal.Decimal) bool

type rule struct {
	when    guard // nil matches any amount
	actions []AllowedAction
}

var (
	submitForReview  = AllowedAction{ActionSubmitForReview, "Submit for Review", SeverityWarning, StateReview}
	startPreparation = AllowedAction{ActionStartPreparation, "Start Preparation", SeverityInfo, StateInPreparation}
	approve          = AllowedAction{ActionApprove, "Approve & Start Preparation", SeverityInfo, StateInPreparation}
	ship             = AllowedAction{ActionShip, "Ship Order", SeverityAccent, StateShipped}
	deliver          = AllowedAction{ActionDeliver, "Confirm Delivery", SeveritySuccess, StateDelivered}
	cancel           = AllowedAction{ActionCancel, "Cancel Order", SeverityDanger, StateCancelled}
)

func overThreshold(amount decimal.Decimal) bool { return amount.GreaterThan(ReviewThreshold) }
func withinThreshold(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(ReviewThreshold)
}

// transitions is evaluated top to bottom per state; the first matching rule wins.
var transitions = map[State][]rule{
	StatePending: {
		{when: overThreshold, actions: []AllowedAction{submitForReview, cancel}},
		{when: withinThreshold, actions: []AllowedAction{startPreparation, cancel}},
	},
	StateReview:        {{actions: []AllowedAction{approve, cancel}}},
	StateInPreparation: {{actions: []AllowedAction{ship, cancel}}},
	StateShipped:       {{actions: []AllowedAction{deliver}}},
	StateDelivered:     {},
	StateCancelled:     {},
}

// States lists every lifecycle state in display order.
func States() []State {
	return []State{StatePending, StateReview, StateInPreparation, StateShipped, StateDelivered, StateCancelled}
}

func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s State) Terminal() bool {
	return s == StateDelivered || s == StateCancelled
}

func (a Action) Valid() bool {
	switch a {
	case ActionSubmitForReview, ActionStartPreparation, ActionApprove, ActionShip, ActionDeliver, ActionCancel:
		return true
	}
	return false
}

func ParseState(s string) (State, bool) {
	st := State(strings.TrimSpace(strings.ToLower(s)))
	return st, st.Valid()
}

func ParseAction(s string) (Action, bool) {
	a := Action(strings.TrimSpace(strings.ToLower(s)))
	return a, a.Valid()
}

// Actions returns the advisory action list for a state and amount.
// Unknown states yield nothing.
func Actions(state State, amount decimal.Decimal) []AllowedAction {
	for _, r := range transitions[state] {
		if r.when == nil || r.when(amount) {
			out := make([]AllowedAction, len(r.actions))
			copy(out, r.actions)
			return out
		}
	}
	return []AllowedAction{}
}

func AllowedActions(o Order) []AllowedAction {
	return Actions(o.CurrentState, o.Amount)
}

// Next reports the state an action leads to, if the guard table allows it.
func Next(state State, amount decimal.Decimal, action Action) (State, bool) {
	for _, a := range Actions(state, amount) {
		if a.Action == action {
			return a.To, true
		}
	}
	return "", false
}

func CanTransition(o Order, action Action) bool {
	_, ok := Next(o.CurrentState, o.Amount, action)
	return ok
}
