package loan

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusPaidOff Status = "paid_off"
)

type Loan struct {
	ID              uint64         `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string         `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	Principal       float64        `gorm:"type:decimal(18,2)" json:"principal"`
	TermMonths      int            `gorm:"column:term_months" json:"term_months"`
	AnnualRate      float64        `gorm:"column:annual_rate;type:decimal(6,4)" json:"annual_rate"`
	Status          Status         `gorm:"type:enum('pending','active','paid_off');default:'pending'" json:"status"`
	StartDate       *time.Time     `gorm:"column:start_date;type:date" json:"start_date,omitempty"`
	Outstanding     float64        `gorm:"column:outstanding_balance;type:decimal(18,2)" json:"outstanding_balance"`
	InterestPaid    float64        `gorm:"column:interest_paid;type:decimal(18,2)" json:"interest_paid"`
	PrincipalPaid   float64        `gorm:"column:principal_paid;type:decimal(18,2)" json:"principal_paid"`
	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// MonthlyRate is the per-period rate shared by the amortization schedule
// and repayment accrual. AnnualRate is a decimal fraction (0.06 = 6%).
func (l *Loan) MonthlyRate() float64 { return l.AnnualRate / 12 }
