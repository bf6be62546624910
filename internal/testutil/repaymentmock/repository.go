package repaymentmock

import (
	"context"

	domain "loan-ledger/internal/domain/repayment"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn            func(ctx context.Context, r *domain.Repayment) error
	ListByLoanIDFn      func(ctx context.Context, loanID uint64) ([]domain.Repayment, error)
	GetLatestByLoanIDFn func(ctx context.Context, loanID uint64) (*domain.Repayment, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Repayment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID uint64) ([]domain.Repayment, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetLatestByLoanID(ctx context.Context, loanID uint64) (*domain.Repayment, error) {
	if m.GetLatestByLoanIDFn != nil {
		return m.GetLatestByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}
