package orders

import "strings"

// TransitionRequest is the body of a transition call. CancellationReason is
// only meaningful for ActionCancel.
type TransitionRequest struct {
	Action             Action
	CancellationReason string
}

// Validate runs before anything reaches the network. Whether the transition
// is legal for the order's actual state is decided by the server.
func (r TransitionRequest) Validate() error {
	if !r.Action.Valid() {
		return Invalid("unknown action %q", r.Action)
	}
	if r.Action == ActionCancel && strings.TrimSpace(r.CancellationReason) == "" {
		return Invalid("cancellation reason required")
	}
	return nil
}

// Normalized drops the reason for non-cancel actions and trims it for cancel.
func (r TransitionRequest) Normalized() TransitionRequest {
	if r.Action != ActionCancel {
		return TransitionRequest{Action: r.Action}
	}
	return TransitionRequest{Action: r.Action, CancellationReason: strings.TrimSpace(r.CancellationReason)}
}
