package repayment

import (
	"context"
	"errors"
	"time"

	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/domain/repayment"
	"loan-ledger/internal/domain/uow"
	"loan-ledger/pkg/id"

	"gorm.io/gorm"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx} }

type MakeRepaymentInput struct {
	LoanID      string
	PaymentDate time.Time
	Amount      float64
}

type RepaymentDTO struct {
	RepaymentID      string    `json:"repayment_id"`
	LoanID           string    `json:"loan_id"`
	PaymentDate      time.Time `json:"payment_date"`
	Amount           float64   `json:"amount"`
	InterestPortion  float64   `json:"interest_portion"`
	PrincipalPortion float64   `json:"principal_portion"`
	Outstanding      float64   `json:"outstanding_balance"`
	Status           string    `json:"status"`
}

// MakeRepayment applies a dated payment under a row lock. The balance
// update and the history append commit together or not at all; a
// rejected payment rolls back with the loan unchanged.
func (u *Usecase) MakeRepayment(ctx context.Context, in MakeRepaymentInput) (*RepaymentDTO, error) {
	var dto *RepaymentDTO

	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		alloc, err := l.ApplyRepayment(in.PaymentDate, in.Amount)
		if err != nil {
			return err
		}

		rec := &repayment.Repayment{
			RepaymentID:      id.NewID32(),
			LoanID:           l.ID,
			PaymentDate:      in.PaymentDate.UTC(),
			Amount:           in.Amount,
			InterestPortion:  alloc.Interest,
			PrincipalPortion: alloc.Principal,
		}
		if err := r.Repayments.Create(ctx, rec); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		dto = &RepaymentDTO{
			RepaymentID:      rec.RepaymentID,
			LoanID:           l.LoanID,
			PaymentDate:      rec.PaymentDate,
			Amount:           rec.Amount,
			InterestPortion:  rec.InterestPortion,
			PrincipalPortion: rec.PrincipalPortion,
			Outstanding:      l.Outstanding,
			Status:           string(l.Status),
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
