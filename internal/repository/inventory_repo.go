package repository

import (
	"context"
	"time"

	"calhaforte/internal/dto"
	"calhaforte/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate is the row-lock clause shared by every transactional read that
// participates in the consume/restore path.
func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

type InventoryRepository interface {
	CreateBatchTx(tx *gorm.DB, b *model.InventoryBatch) error
	FindBatchByID(ctx context.Context, id uuid.UUID) (*model.InventoryBatch, error)
	ListBatches(ctx context.Context) ([]model.InventoryBatch, error)
	DeleteBatch(ctx context.Context, id uuid.UUID) error

	// ListAvailableBatchesTx returns batches with available material, locked
	// FOR UPDATE, in FIFO order (purchased_at, then id). The lock serializes
	// concurrent consume/restore operations on the same batches.
	ListAvailableBatchesTx(tx *gorm.DB) ([]model.InventoryBatch, error)
	// LockBatchesTx locks and returns the given batches in FIFO order.
	LockBatchesTx(tx *gorm.DB, ids []uuid.UUID) ([]model.InventoryBatch, error)
	UpdateAvailableTx(tx *gorm.DB, id uuid.UUID, availableM2 interface{}) error

	CreateMovementTx(tx *gorm.DB, m *model.InventoryMovement) error
	// OutstandingConsumptionTx returns the consumption movements of a quote
	// that no restoration/reversal row offsets yet.
	OutstandingConsumptionTx(tx *gorm.DB, quoteID uuid.UUID) ([]model.InventoryMovement, error)
	ListMovements(ctx context.Context, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error)
	CountMovementsByBatch(ctx context.Context, batchID uuid.UUID, types []string) (int64, error)

	// TotalAvailableM2 sums available material across all batches.
	TotalAvailableM2(ctx context.Context) (decimal.Decimal, error)

	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) CreateBatchTx(tx *gorm.DB, b *model.InventoryBatch) error {
	return tx.Create(b).Error
}

func (r *inventoryRepo) FindBatchByID(ctx context.Context, id uuid.UUID) (*model.InventoryBatch, error) {
	var b model.InventoryBatch
	err := r.db.WithContext(ctx).First(&b, id).Error
	return &b, err
}

func (r *inventoryRepo) ListBatches(ctx context.Context) ([]model.InventoryBatch, error) {
	var batches []model.InventoryBatch
	err := r.db.WithContext(ctx).Order("purchased_at ASC, id ASC").Find(&batches).Error
	return batches, err
}

func (r *inventoryRepo) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.InventoryBatch{}, id).Error
}

func (r *inventoryRepo) ListAvailableBatchesTx(tx *gorm.DB) ([]model.InventoryBatch, error) {
	var batches []model.InventoryBatch
	err := tx.Clauses(forUpdate()).
		Where("available_m2 > 0").
		Order("purchased_at ASC, id ASC").
		Find(&batches).Error
	return batches, err
}

func (r *inventoryRepo) LockBatchesTx(tx *gorm.DB, ids []uuid.UUID) ([]model.InventoryBatch, error) {
	var batches []model.InventoryBatch
	err := tx.Clauses(forUpdate()).
		Where("id IN ?", ids).
		Order("purchased_at ASC, id ASC").
		Find(&batches).Error
	return batches, err
}

func (r *inventoryRepo) UpdateAvailableTx(tx *gorm.DB, id uuid.UUID, availableM2 interface{}) error {
	return tx.Model(&model.InventoryBatch{}).Where("id = ?", id).
		Update("available_m2", availableM2).Error
}

func (r *inventoryRepo) CreateMovementTx(tx *gorm.DB, m *model.InventoryMovement) error {
	return tx.Create(m).Error
}

func (r *inventoryRepo) OutstandingConsumptionTx(tx *gorm.DB, quoteID uuid.UUID) ([]model.InventoryMovement, error) {
	var movements []model.InventoryMovement
	offset := tx.Model(&model.InventoryMovement{}).
		Select("reverses_id").
		Where("quote_id = ? AND type IN ? AND reverses_id IS NOT NULL",
			quoteID, []string{model.MovementRestoration, model.MovementReversal})
	err := tx.
		Where("quote_id = ? AND type = ?", quoteID, model.MovementConsumption).
		Where("id NOT IN (?)", offset).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

func (r *inventoryRepo) ListMovements(ctx context.Context, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryMovement{})
	if filter.QuoteID != "" {
		q = q.Where("quote_id = ?", filter.QuoteID)
	}
	if filter.BatchID != "" {
		q = q.Where("batch_id = ?", filter.BatchID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.From != "" {
		q = q.Where("created_at >= ?", filter.From)
	}
	if filter.To != "" {
		if t, err := time.Parse("2006-01-02", filter.To); err == nil {
			q = q.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movements []model.InventoryMovement
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}

func (r *inventoryRepo) CountMovementsByBatch(ctx context.Context, batchID uuid.UUID, types []string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.InventoryMovement{}).
		Where("batch_id = ? AND type IN ?", batchID, types).
		Count(&n).Error
	return n, err
}

func (r *inventoryRepo) TotalAvailableM2(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.InventoryBatch{}).
		Select("COALESCE(SUM(available_m2), 0)").Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}
