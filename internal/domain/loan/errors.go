package loan

import "errors"

// Closed error taxonomy. Callers branch with errors.Is; messages carry
// detail but are never the contract.
var (
	ErrNotFound     = errors.New("loan not found")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("operation not allowed in current status")
	ErrOverpayment  = errors.New("repayment exceeds remaining obligation")
)
