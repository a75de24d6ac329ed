package repository

import (
	"context"

	"calhaforte/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FinancialRepository interface {
	CreateTx(tx *gorm.DB, rec *model.FinancialRecord) error
	// DeleteByQuoteTx removes the receivable when a paid quote is cancelled
	// or reopened. The activity log keeps the audit trail.
	DeleteByQuoteTx(tx *gorm.DB, quoteID uuid.UUID) error
	FindByQuote(ctx context.Context, quoteID uuid.UUID) (*model.FinancialRecord, error)
}

type financialRepo struct{ db *gorm.DB }

func NewFinancialRepository(db *gorm.DB) FinancialRepository { return &financialRepo{db: db} }

func (r *financialRepo) CreateTx(tx *gorm.DB, rec *model.FinancialRecord) error {
	return tx.Create(rec).Error
}

func (r *financialRepo) DeleteByQuoteTx(tx *gorm.DB, quoteID uuid.UUID) error {
	return tx.Where("quote_id = ?", quoteID).Delete(&model.FinancialRecord{}).Error
}

func (r *financialRepo) FindByQuote(ctx context.Context, quoteID uuid.UUID) (*model.FinancialRecord, error) {
	var rec model.FinancialRecord
	err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).First(&rec).Error
	return &rec, err
}
