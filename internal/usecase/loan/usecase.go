package loan

import (
	"context"
	"errors"
	"time"

	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/domain/repayment"
	"loan-ledger/pkg/id"

	"gorm.io/gorm"
)

type Usecase struct {
	loans      loan.Repository
	repayments repayment.Repository
}

func NewUsecase(loans loan.Repository, repayments repayment.Repository) *Usecase {
	return &Usecase{loans: loans, repayments: repayments}
}

type CreateLoanInput struct {
	Principal  float64 `json:"principal"`
	TermMonths int     `json:"term_months"`
	AnnualRate float64 `json:"annual_rate"`
}

type LoanDTO struct {
	LoanID      string     `json:"loan_id"`
	Principal   float64    `json:"principal"`
	TermMonths  int        `json:"term_months"`
	AnnualRate  float64    `json:"annual_rate"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	Outstanding float64    `json:"outstanding_balance"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SummaryDTO struct {
	TotalPaid     float64 `json:"total_paid"`
	InterestPaid  float64 `json:"interest_paid"`
	PrincipalPaid float64 `json:"principal_paid"`
	Remaining     float64 `json:"remaining"`
}

type NextDueDTO struct {
	DueDate        time.Time `json:"due_date"`
	ExpectedAmount float64   `json:"expected_amount"`
}

type PayoffDTO struct {
	PayoffAmount float64 `json:"payoff_amount"`
}

func toDTO(l *loan.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:      l.LoanID,
		Principal:   l.Principal,
		TermMonths:  l.TermMonths,
		AnnualRate:  l.AnnualRate,
		Status:      string(l.Status),
		StartDate:   l.StartDate,
		Outstanding: l.Outstanding,
		CreatedAt:   l.CreatedAt,
	}
}

func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	l, err := loan.New(in.Principal, in.TermMonths, in.AnnualRate)
	if err != nil {
		return nil, err
	}
	l.LoanID = id.NewID32()
	l.StatusUpdatedAt = time.Now().UTC()

	if err := u.loans.Create(ctx, l); err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.find(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

func (u *Usecase) GetStatus(ctx context.Context, loanID string) (loan.Status, error) {
	l, err := u.find(ctx, loanID)
	if err != nil {
		return "", err
	}
	return l.Status, nil
}

// Schedule is the theoretical amortization plan; it never reflects
// repayment history.
func (u *Usecase) Schedule(ctx context.Context, loanID string) ([]loan.SchedulePeriod, error) {
	l, err := u.find(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return l.Schedule()
}

func (u *Usecase) Summary(ctx context.Context, loanID string) (*SummaryDTO, error) {
	l, err := u.find(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return &SummaryDTO{
		TotalPaid:     l.InterestPaid + l.PrincipalPaid,
		InterestPaid:  l.InterestPaid,
		PrincipalPaid: l.PrincipalPaid,
		Remaining:     l.Outstanding,
	}, nil
}

func (u *Usecase) NextDue(ctx context.Context, loanID string) (*NextDueDTO, error) {
	l, err := u.find(ctx, loanID)
	if err != nil {
		return nil, err
	}
	var lastAt *time.Time
	last, err := u.repayments.GetLatestByLoanID(ctx, l.ID)
	switch {
	case err == nil:
		lastAt = &last.PaymentDate
	case !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, repayment.ErrNotFound):
		return nil, err
	}
	due, expected, err := l.NextDue(lastAt)
	if err != nil {
		return nil, err
	}
	return &NextDueDTO{DueDate: due, ExpectedAmount: expected}, nil
}

func (u *Usecase) Payoff(ctx context.Context, loanID string) (*PayoffDTO, error) {
	l, err := u.find(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != loan.StatusActive {
		return nil, loan.ErrInvalidState
	}
	return &PayoffDTO{PayoffAmount: l.PayoffQuote()}, nil
}

func (u *Usecase) ListRepayments(ctx context.Context, loanID string) ([]repayment.Repayment, error) {
	l, err := u.find(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return u.repayments.ListByLoanID(ctx, l.ID)
}

func (u *Usecase) find(ctx context.Context, loanID string) (*loan.Loan, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}
