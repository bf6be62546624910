package uow

import (
	"context"

	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/domain/repayment"
)

type Repos struct {
	Loans      loan.Repository
	Repayments repayment.Repository
}

// UnitOfWork serializes read-modify-write sequences per loan: the loan
// row is locked for the duration of the transaction, so a failing flow
// rolls back with no partial application.
type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
