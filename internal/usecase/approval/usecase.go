package approval

import (
	"context"
	"errors"
	"time"

	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/domain/uow"

	"gorm.io/gorm"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx} }

type ApproveInput struct {
	LoanID string
	// The caller's clock; the ledger never reads wall-clock time.
	AsOfDate time.Time
}

type ApprovalDTO struct {
	LoanID      string    `json:"loan_id"`
	Status      string    `json:"status"`
	StartDate   time.Time `json:"start_date"`
	Outstanding float64   `json:"outstanding_balance"`
}

// Approve moves pending -> active under a row lock, so two concurrent
// approvals cannot both succeed.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*ApprovalDTO, error) {
	var dto *ApprovalDTO

	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.Approve(in.AsOfDate); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = &ApprovalDTO{
			LoanID:      l.LoanID,
			Status:      string(l.Status),
			StartDate:   *l.StartDate,
			Outstanding: l.Outstanding,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrNotFound
		}
		return nil, err
	}
	return dto, nil
}
