package repository

import (
	"context"

	"calhaforte/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
	CreateTx(tx *gorm.DB, entry *model.ActivityLog) error
	ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]model.ActivityLog, error)
}

type activityRepo struct{ db *gorm.DB }

func NewActivityRepository(db *gorm.DB) ActivityRepository { return &activityRepo{db: db} }

func (r *activityRepo) Create(ctx context.Context, entry *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityRepo) CreateTx(tx *gorm.DB, entry *model.ActivityLog) error {
	return tx.Create(entry).Error
}

func (r *activityRepo) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).
		Order("created_at ASC").Find(&entries).Error
	return entries, err
}
