package repayment

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"loan-ledger/internal/domain/loan"
	domain "loan-ledger/internal/domain/repayment"
	"loan-ledger/internal/domain/uow"
	"loan-ledger/internal/testutil/loanmock"
	"loan-ledger/internal/testutil/repaymentmock"
	"loan-ledger/internal/testutil/uowmock"

	"gorm.io/gorm"
)

func activeLoan(t *testing.T, principal float64, termMonths int, rate float64) *loan.Loan {
	t.Helper()
	l, err := loan.New(principal, termMonths, rate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.ID = 42
	l.LoanID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	if err := l.Approve(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	return l
}

func TestMakeRepayment_Success(t *testing.T) {
	l := activeLoan(t, 12000, 12, 0.06)
	paidAt := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)

	var created *domain.Repayment
	var saved *loan.Loan
	repays := &repaymentmock.Repo{
		CreateFn: func(ctx context.Context, r *domain.Repayment) error {
			created = r
			return nil
		},
	}
	loans := &loanmock.Repo{
		SaveFn: func(ctx context.Context, l *loan.Loan) error {
			saved = l
			return nil
		},
	}
	uc := NewUsecase(uowmock.Passthrough(uow.Repos{Loans: loans, Repayments: repays}, l))

	dto, err := uc.MakeRepayment(context.Background(), MakeRepaymentInput{
		LoanID:      l.LoanID,
		PaymentDate: paidAt,
		Amount:      1032.80,
	})
	if err != nil {
		t.Fatalf("MakeRepayment: %v", err)
	}
	if created == nil || saved == nil {
		t.Fatalf("history append and loan save must both happen")
	}
	if created.LoanID != 42 || !created.PaymentDate.Equal(paidAt) || created.Amount != 1032.80 {
		t.Fatalf("history record mismatch: %+v", created)
	}
	if len(created.RepaymentID) != 32 {
		t.Fatalf("RepaymentID length: %d", len(created.RepaymentID))
	}
	if math.Abs(dto.InterestPortion-60.00) > 0.01 {
		t.Fatalf("interest = %.4f, want 60.00", dto.InterestPortion)
	}
	if math.Abs(dto.Outstanding-(12000-(1032.80-60.00))) > 0.01 {
		t.Fatalf("outstanding = %.4f", dto.Outstanding)
	}
	if dto.Status != string(loan.StatusActive) {
		t.Fatalf("status = %s, want active", dto.Status)
	}
}

func TestMakeRepayment_PayoffFlipsStatus(t *testing.T) {
	l := activeLoan(t, 1000, 1, 0.06)
	uc := NewUsecase(uowmock.Passthrough(uow.Repos{Loans: &loanmock.Repo{}, Repayments: &repaymentmock.Repo{}}, l))

	dto, err := uc.MakeRepayment(context.Background(), MakeRepaymentInput{
		LoanID:      l.LoanID,
		PaymentDate: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		Amount:      1005,
	})
	if err != nil {
		t.Fatalf("MakeRepayment: %v", err)
	}
	if dto.Status != string(loan.StatusPaidOff) {
		t.Fatalf("status = %s, want paid_off", dto.Status)
	}
	if dto.Outstanding != 0 {
		t.Fatalf("outstanding = %v, want 0", dto.Outstanding)
	}
}

func TestMakeRepayment_OverpaymentNothingWritten(t *testing.T) {
	l := activeLoan(t, 500, 6, 0)
	repays := &repaymentmock.Repo{
		CreateFn: func(ctx context.Context, r *domain.Repayment) error {
			t.Fatalf("history must not be appended for a rejected payment")
			return nil
		},
	}
	loans := &loanmock.Repo{
		SaveFn: func(ctx context.Context, l *loan.Loan) error {
			t.Fatalf("loan must not be saved for a rejected payment")
			return nil
		},
	}
	uc := NewUsecase(uowmock.Passthrough(uow.Repos{Loans: loans, Repayments: repays}, l))

	_, err := uc.MakeRepayment(context.Background(), MakeRepaymentInput{
		LoanID:      l.LoanID,
		PaymentDate: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		Amount:      1000,
	})
	if !errors.Is(err, loan.ErrOverpayment) {
		t.Fatalf("err = %v, want ErrOverpayment", err)
	}
	if l.Outstanding != 500 {
		t.Fatalf("outstanding = %.2f, want 500", l.Outstanding)
	}
}

func TestMakeRepayment_PendingLoan(t *testing.T) {
	l, err := loan.New(1000, 6, 0.06)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	uc := NewUsecase(uowmock.Passthrough(uow.Repos{Loans: &loanmock.Repo{}, Repayments: &repaymentmock.Repo{}}, l))

	_, err = uc.MakeRepayment(context.Background(), MakeRepaymentInput{
		LoanID:      "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		PaymentDate: time.Now().UTC(),
		Amount:      100,
	})
	if !errors.Is(err, loan.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestMakeRepayment_LoanMissing(t *testing.T) {
	tx := &uowmock.UoW{
		WithinLoanTxFn: func(ctx context.Context, loanID string, fn func(uow.Repos, *loan.Loan) error) error {
			return gorm.ErrRecordNotFound
		},
	}
	uc := NewUsecase(tx)

	_, err := uc.MakeRepayment(context.Background(), MakeRepaymentInput{
		LoanID:      "ffffffffffffffffffffffffffffffff",
		PaymentDate: time.Now().UTC(),
		Amount:      100,
	})
	if !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
