package mysql

import (
	"context"

	repayDomain "loan-ledger/internal/domain/repayment"

	"gorm.io/gorm"
)

type RepaymentRepository struct{ db *gorm.DB }

func NewRepaymentRepository(db *gorm.DB) *RepaymentRepository {
	return &RepaymentRepository{db: db}
}

func (r *RepaymentRepository) Create(ctx context.Context, rec *repayDomain.Repayment) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// ListByLoanID returns history in application order (insertion order).
func (r *RepaymentRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]repayDomain.Repayment, error) {
	var out []repayDomain.Repayment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *RepaymentRepository) GetLatestByLoanID(ctx context.Context, loanID uint64) (*repayDomain.Repayment, error) {
	var out repayDomain.Repayment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id DESC").
		First(&out)
	return &out, res.Error
}
