package repayment

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("repayment not found")

// Table: repayments. Append-only history; rows are never updated,
// removed, or reordered — insertion order is application order.
type Repayment struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	RepaymentID string `gorm:"column:repayment_id;type:char(32);not null;uniqueIndex:ux_repayments_repayment_id" json:"repayment_id"`
	// FK to loans.id (numeric)
	LoanID           uint64    `gorm:"column:loan_id;not null;index" json:"-"`
	PaymentDate      time.Time `gorm:"column:payment_date;type:date;not null" json:"payment_date"`
	Amount           float64   `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	InterestPortion  float64   `gorm:"column:interest_portion;type:decimal(18,2);not null" json:"interest_portion"`
	PrincipalPortion float64   `gorm:"column:principal_portion;type:decimal(18,2);not null" json:"principal_portion"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Repayment) TableName() string { return "repayments" }
