package loan

import (
	"fmt"
	"math"
	"time"
)

// SchedulePeriod is one row of the theoretical amortization plan.
type SchedulePeriod struct {
	Period    int        `json:"period"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Payment   float64    `json:"payment"`
	Principal float64    `json:"principal_portion"`
	Interest  float64    `json:"interest_portion"`
	Remaining float64    `json:"remaining_balance"`
}

// FixedMonthlyPayment is the standard annuity payment for the given
// terms. A zero rate degenerates to straight-line principal.
func FixedMonthlyPayment(principal float64, termMonths int, annualRate float64) float64 {
	r := annualRate / 12
	if r == 0 {
		return principal / float64(termMonths)
	}
	return principal * r / (1 - math.Pow(1+r, -float64(termMonths)))
}

// AmortizationSchedule produces the full fixed-payment plan for the
// given terms. The last period absorbs the rounding residue so the
// principal portions sum exactly to the principal. The plan is
// advisory: actual repayments are free to deviate from it.
func AmortizationSchedule(principal float64, termMonths int, annualRate float64) []SchedulePeriod {
	r := annualRate / 12
	payment := FixedMonthlyPayment(principal, termMonths, annualRate)
	rows := make([]SchedulePeriod, 0, termMonths)
	remaining := principal
	for k := 1; k <= termMonths; k++ {
		interest := remaining * r
		principalPart := payment - interest
		pay := payment
		if k == termMonths {
			principalPart = remaining
			pay = principalPart + interest
		}
		remaining -= principalPart
		if remaining < 0 {
			remaining = 0
		}
		rows = append(rows, SchedulePeriod{
			Period:    k,
			Payment:   pay,
			Principal: principalPart,
			Interest:  interest,
			Remaining: remaining,
		})
	}
	return rows
}

// Schedule is the plan for this loan's fixed terms with due dates laid
// out monthly from the start date. It ignores repayment history and is
// re-derivable at any time; a pending loan has no start date yet, so
// there is nothing to anchor the dates to.
func (l *Loan) Schedule() ([]SchedulePeriod, error) {
	if l.Status == StatusPending {
		return nil, fmt.Errorf("%w: schedule requires an approved loan", ErrInvalidState)
	}
	rows := AmortizationSchedule(l.Principal, l.TermMonths, l.AnnualRate)
	for i := range rows {
		d := addMonths(*l.StartDate, rows[i].Period)
		rows[i].DueDate = &d
	}
	return rows, nil
}

// addMonths steps calendar months, clamping to day 28 so the arithmetic
// never rolls into the next month.
func addMonths(from time.Time, months int) time.Time {
	y := from.Year() + (int(from.Month())+months-1)/12
	m := time.Month((int(from.Month())+months-1)%12 + 1)
	d := from.Day()
	if d > 28 {
		d = 28
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
