package repository

import (
	"context"

	"calhaforte/internal/dto"
	"calhaforte/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteRepository defines the data access contract for quotes.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type QuoteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, q *model.Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	// FindByIDTx reloads the quote inside a transaction, locking the row so
	// two concurrent status changes serialize.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Quote, error)
	List(ctx context.Context, filter dto.QuoteFilter) ([]model.Quote, int64, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	Update(ctx context.Context, q *model.Quote) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type quoteRepo struct{ db *gorm.DB }

func NewQuoteRepository(db *gorm.DB) QuoteRepository { return &quoteRepo{db: db} }

func (r *quoteRepo) DB() *gorm.DB { return r.db }

func (r *quoteRepo) Create(ctx context.Context, tx *gorm.DB, q *model.Quote) error {
	return tx.WithContext(ctx).Create(q).Error
}

func (r *quoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var q model.Quote
	err := r.db.WithContext(ctx).
		Preload("Bends", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Bends.Segments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Bends.Lengths", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&q, id).Error
	return &q, err
}

func (r *quoteRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Quote, error) {
	var q model.Quote
	err := tx.Clauses(forUpdate()).First(&q, id).Error
	return &q, err
}

func (r *quoteRepo) List(ctx context.Context, filter dto.QuoteFilter) ([]model.Quote, int64, error) {
	var quotes []model.Quote
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Quote{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Bends", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Bends.Segments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Bends.Lengths", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&quotes).Error
	return quotes, total, err
}

func (r *quoteRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Quote{}).Where("id = ?", id).Update("status", status).Error
}

func (r *quoteRepo) Update(ctx context.Context, q *model.Quote) error {
	return r.db.WithContext(ctx).Save(q).Error
}
