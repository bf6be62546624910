package loan

import (
	"fmt"
	"math"
	"time"
)

// Balances within this distance of zero count as fully repaid; the
// residue is folded into principal so the totals reconcile exactly.
const paidOffTolerance = 0.01

// New builds a pending loan from its fixed terms. Terms never change
// after construction.
func New(principal float64, termMonths int, annualRate float64) (*Loan, error) {
	if principal <= 0 {
		return nil, fmt.Errorf("%w: principal must be positive, got %.2f", ErrValidation, principal)
	}
	if termMonths <= 0 {
		return nil, fmt.Errorf("%w: term must be a positive number of months, got %d", ErrValidation, termMonths)
	}
	if annualRate < 0 {
		return nil, fmt.Errorf("%w: annual rate must not be negative, got %.4f", ErrValidation, annualRate)
	}
	return &Loan{
		Principal:   principal,
		TermMonths:  termMonths,
		AnnualRate:  annualRate,
		Status:      StatusPending,
		Outstanding: principal,
	}, nil
}

// Approve moves a pending loan to active and stamps the start date.
// asOf comes from the caller's clock; the ledger never reads wall-clock
// time itself.
func (l *Loan) Approve(asOf time.Time) error {
	if l.Status != StatusPending {
		return fmt.Errorf("%w: cannot approve a %s loan", ErrInvalidState, l.Status)
	}
	d := asOf.UTC()
	l.Status = StatusActive
	l.StartDate = &d
	l.Outstanding = l.Principal
	l.StatusUpdatedAt = d
	return nil
}

// Allocation is the interest-first split of a single repayment.
type Allocation struct {
	Interest  float64 `json:"interest_portion"`
	Principal float64 `json:"principal_portion"`
}

// AccruedInterest is one month of interest against the current balance.
// Accrual is simple monthly, matching the amortization convention; the
// payment date is recorded but does not prorate interest by days.
func (l *Loan) AccruedInterest() float64 { return l.Outstanding * l.MonthlyRate() }

// PayoffQuote is the amount that settles the loan in full: the
// outstanding balance plus one month of accrued interest.
func (l *Loan) PayoffQuote() float64 { return l.Outstanding + l.AccruedInterest() }

// ApplyRepayment validates and applies a dated payment: interest first,
// the remainder against principal. A failing call leaves the loan
// untouched. Appending the matching history record is the caller's
// duty, inside the same transaction as the balance update.
func (l *Loan) ApplyRepayment(paymentDate time.Time, amount float64) (Allocation, error) {
	if l.Status != StatusActive {
		return Allocation{}, fmt.Errorf("%w: cannot repay a %s loan", ErrInvalidState, l.Status)
	}
	if amount <= 0 {
		return Allocation{}, fmt.Errorf("%w: repayment amount must be positive, got %.2f", ErrValidation, amount)
	}
	if l.Outstanding <= 0 {
		return Allocation{}, fmt.Errorf("%w: balance is already zero", ErrOverpayment)
	}
	accrued := l.AccruedInterest()
	if amount > l.Outstanding+accrued+paidOffTolerance {
		return Allocation{}, fmt.Errorf("%w: %.2f is more than the %.2f due",
			ErrOverpayment, amount, l.Outstanding+accrued)
	}

	alloc := Allocation{Interest: math.Min(amount, accrued)}
	alloc.Principal = math.Min(amount-alloc.Interest, l.Outstanding)
	// Sub-cent slack the guard admits settles as interest, so the
	// recorded amount always equals interest + principal.
	if excess := amount - alloc.Interest - alloc.Principal; excess > 0 {
		alloc.Interest += excess
	}

	l.InterestPaid += alloc.Interest
	l.PrincipalPaid += alloc.Principal
	l.Outstanding -= alloc.Principal
	if l.Outstanding < paidOffTolerance {
		l.PrincipalPaid += l.Outstanding
		alloc.Principal += l.Outstanding
		l.Outstanding = 0
		l.Status = StatusPaidOff
		l.StatusUpdatedAt = paymentDate.UTC()
	}
	return alloc, nil
}

// NextDue reports the next scheduled due date and the expected amount:
// one calendar month after the later of the start date and the last
// repayment, for the fixed monthly payment or the payoff quote when
// less than a full payment remains.
func (l *Loan) NextDue(lastRepaymentAt *time.Time) (time.Time, float64, error) {
	if l.Status != StatusActive {
		return time.Time{}, 0, fmt.Errorf("%w: no payment due on a %s loan", ErrInvalidState, l.Status)
	}
	anchor := *l.StartDate
	if lastRepaymentAt != nil && lastRepaymentAt.After(anchor) {
		anchor = *lastRepaymentAt
	}
	expected := FixedMonthlyPayment(l.Principal, l.TermMonths, l.AnnualRate)
	if q := l.PayoffQuote(); q < expected {
		expected = q
	}
	return addMonths(anchor, 1), expected, nil
}
