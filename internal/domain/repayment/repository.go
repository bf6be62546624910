package repayment

import "context"

type Repository interface {
	// Append a history record (only ever called inside the loan tx)
	Create(ctx context.Context, r *Repayment) error

	// Full history in application order
	ListByLoanID(ctx context.Context, loanID uint64) ([]Repayment, error)

	// Most recently applied repayment, if any
	GetLatestByLoanID(ctx context.Context, loanID uint64) (*Repayment, error)
}
