package orders

import "fmt"

// ValidationError is a client-side precondition failure. It is never sent over the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type ProductCreationError struct {
	Name string
	Err  error
}

func (e *ProductCreationError) Error() string {
	return fmt.Sprintf("create product %q: %v", e.Name, e.Err)
}

func (e *ProductCreationError) Unwrap() error { return e.Err }

// OrderCreationError carries CustomerID when the customer record was created
// before the order request failed. That customer is not rolled back.
type OrderCreationError struct {
	CustomerID string
	Err        error
}

func (e *OrderCreationError) Error() string {
	if e.CustomerID != "" {
		return fmt.Sprintf("create order (customer %s already created): %v", e.CustomerID, e.Err)
	}
	return fmt.Sprintf("create order: %v", e.Err)
}

func (e *OrderCreationError) Unwrap() error { return e.Err }

type TransitionError struct {
	OrderID string
	Action  Action
	Err     error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition order %s via %s: %v", e.OrderID, e.Action, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }
