package orders

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionsOf(list []AllowedAction) []Action {
	out := make([]Action, 0, len(list))
	for _, a := range list {
		out = append(out, a.Action)
	}
	return out
}

func TestAllowedActions(t *testing.T) {
	tests := []struct {
		name   string
		state  State
		amount string
		want   []Action
	}{
		{"pending over threshold", StatePending, "1500", []Action{ActionSubmitForReview, ActionCancel}},
		{"pending just over threshold", StatePending, "1000.01", []Action{ActionSubmitForReview, ActionCancel}},
		{"pending at threshold", StatePending, "1000", []Action{ActionStartPreparation, ActionCancel}},
		{"pending cheap", StatePending, "29.97", []Action{ActionStartPreparation, ActionCancel}},
		{"pending zero", StatePending, "0", []Action{ActionStartPreparation, ActionCancel}},
		{"review", StateReview, "1500", []Action{ActionApprove, ActionCancel}},
		{"review cheap does not regain fast path", StateReview, "10", []Action{ActionApprove, ActionCancel}},
		{"in preparation", StateInPreparation, "10", []Action{ActionShip, ActionCancel}},
		{"shipped", StateShipped, "5000", []Action{ActionDeliver}},
		{"delivered", StateDelivered, "10", []Action{}},
		{"cancelled", StateCancelled, "5000", []Action{}},
		{"unknown state", State("lost"), "10", []Action{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{CurrentState: tt.state, Amount: decimal.RequireFromString(tt.amount)}
			got := AllowedActions(o)
			assert.Equal(t, tt.want, actionsOf(got))
		})
	}
}

func TestAllowedActionsDeterministic(t *testing.T) {
	o := Order{CurrentState: StatePending, Amount: decimal.NewFromInt(1500)}
	first := AllowedActions(o)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, AllowedActions(o))
	}

	// callers mutating the result must not corrupt the table
	first[0].Label = "changed"
	assert.Equal(t, "Submit for Review", AllowedActions(o)[0].Label)
}

func TestAllowedActionsLabelsAndSeverity(t *testing.T) {
	got := Actions(StatePending, decimal.NewFromInt(10))
	require.Len(t, got, 2)
	assert.Equal(t, "Start Preparation", got[0].Label)
	assert.Equal(t, SeverityInfo, got[0].Severity)
	assert.Equal(t, StateInPreparation, got[0].To)
	assert.Equal(t, "Cancel Order", got[1].Label)
	assert.Equal(t, SeverityDanger, got[1].Severity)
	assert.Equal(t, StateCancelled, got[1].To)
}

func TestTerminalStatesHaveNoActions(t *testing.T) {
	for _, s := range States() {
		got := Actions(s, decimal.NewFromInt(10))
		assert.Equal(t, s.Terminal(), len(got) == 0, "state %s", s)
	}
}

func TestNext(t *testing.T) {
	to, ok := Next(StatePending, decimal.NewFromInt(1500), ActionSubmitForReview)
	require.True(t, ok)
	assert.Equal(t, StateReview, to)

	_, ok = Next(StatePending, decimal.NewFromInt(1500), ActionStartPreparation)
	assert.False(t, ok)

	_, ok = Next(StateDelivered, decimal.Zero, ActionCancel)
	assert.False(t, ok)

	// a review order reaching the client with the review action list
	reviewed := Order{CurrentState: to, Amount: decimal.NewFromInt(1500)}
	assert.Equal(t, []Action{ActionApprove, ActionCancel}, actionsOf(AllowedActions(reviewed)))
	assert.True(t, CanTransition(reviewed, ActionApprove))
	assert.False(t, CanTransition(reviewed, ActionShip))
}

func TestParse(t *testing.T) {
	s, ok := ParseState(" In_Preparation ")
	assert.True(t, ok)
	assert.Equal(t, StateInPreparation, s)

	_, ok = ParseState("In Preparation")
	assert.False(t, ok)

	a, ok := ParseAction("CANCEL")
	assert.True(t, ok)
	assert.Equal(t, ActionCancel, a)

	_, ok = ParseAction("refund")
	assert.False(t, ok)
}

func TestTransitionRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     TransitionRequest
		wantErr string
	}{
		{"cancel with reason", TransitionRequest{Action: ActionCancel, CancellationReason: "customer asked"}, ""},
		{"cancel without reason", TransitionRequest{Action: ActionCancel}, "cancellation reason required"},
		{"cancel whitespace reason", TransitionRequest{Action: ActionCancel, CancellationReason: " \t\n "}, "cancellation reason required"},
		{"ship without reason", TransitionRequest{Action: ActionShip}, ""},
		{"unknown action", TransitionRequest{Action: "teleport"}, `unknown action "teleport"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantErr, verr.Message)
		})
	}
}

func TestTransitionRequestNormalized(t *testing.T) {
	r := TransitionRequest{Action: ActionShip, CancellationReason: "ignored"}.Normalized()
	assert.Empty(t, r.CancellationReason)

	r = TransitionRequest{Action: ActionCancel, CancellationReason: "  damaged  "}.Normalized()
	assert.Equal(t, "damaged", r.CancellationReason)
}

func TestErrorsUnwrap(t *testing.T) {
	base := errors.New("boom")

	var err error = &OrderCreationError{CustomerID: "c-1", Err: base}
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "customer c-1 already created")

	err = &ProductCreationError{Name: "Widget", Err: base}
	assert.ErrorIs(t, err, base)

	err = &TransitionError{OrderID: "o-1", Action: ActionShip, Err: base}
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "o-1")
}

func TestFilterAndSortLogs(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	logs := []TransitionLog{
		{ID: "1", OrderID: "ABC-1", TransitionDate: t0},
		{ID: "2", OrderID: "xyz-2", TransitionDate: t0.Add(2 * time.Hour)},
		{ID: "3", OrderID: "abc-3", TransitionDate: t0.Add(time.Hour)},
	}

	filtered := FilterLogs(logs, "abc")
	require.Len(t, filtered, 2)

	sorted := SortLogsByDate(filtered, true)
	assert.Equal(t, "3", sorted[0].ID)
	assert.Equal(t, "1", sorted[1].ID)

	asc := SortLogsByDate(logs, false)
	assert.Equal(t, []string{"1", "3", "2"}, []string{asc[0].ID, asc[1].ID, asc[2].ID})
	// input untouched
	assert.Equal(t, "1", logs[0].ID)

	assert.Len(t, FilterLogs(logs, "  "), 3)
	assert.Len(t, LogsForOrder(logs, "xyz-2"), 1)
}
