package service

import (
	"context"
	"time"

	"calhaforte/internal/dto"
	"calhaforte/internal/model"
	"calhaforte/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryService owns the raw-material ledger. Consumption and restoration
// run INSIDE the status transition's transaction — the ...Tx methods require
// a live *gorm.DB so the whole transition commits or rolls back as one unit.
//
// Batch selection during consume is FIFO by purchased_at (ties broken by id):
// the oldest coil is exhausted first. The order is deterministic and covered
// by tests; changing it is a business decision, not a refactor.
type InventoryService interface {
	ConsumeTx(tx *gorm.DB, quoteID uuid.UUID, amountM2 decimal.Decimal) error
	// RestoreTx puts a quote's outstanding consumption back (cancellation):
	// history keeps both the consumption and the restoration rows.
	RestoreTx(tx *gorm.DB, quoteID uuid.UUID) error
	// ReverseTx neutralises a quote's outstanding consumption (reopen): each
	// reversal row references the consumption it voids, so a re-pay starts
	// from a clean slate while the ledger stays append-only.
	ReverseTx(tx *gorm.DB, quoteID uuid.UUID) error

	AddBatches(ctx context.Context, req dto.AddBatchesRequest) ([]dto.BatchResponse, error)
	ListBatches(ctx context.Context) ([]dto.BatchResponse, error)
	DeleteBatch(ctx context.Context, id uuid.UUID) error
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	StockAlert(ctx context.Context) (*dto.StockAlertResponse, error)
}

type inventoryService struct {
	repo     repository.InventoryRepository
	settings SettingsService
}

func NewInventoryService(repo repository.InventoryRepository, settings SettingsService) InventoryService {
	return &inventoryService{repo: repo, settings: settings}
}

// ── Consume / restore (transactional core) ───────────────────────────────────

func (s *inventoryService) ConsumeTx(tx *gorm.DB, quoteID uuid.UUID, amountM2 decimal.Decimal) error {
	if !amountM2.IsPositive() {
		return nil
	}

	batches, err := s.repo.ListAvailableBatchesTx(tx)
	if err != nil {
		return err
	}

	available := decimal.Zero
	for _, b := range batches {
		available = available.Add(b.AvailableM2)
	}
	if available.LessThan(amountM2) {
		// Whole transition fails — the surrounding transaction rolls back,
		// leaving no partial Movement rows and the quote untouched.
		return &InsufficientStockError{RequiredM2: amountM2, AvailableM2: available}
	}

	remaining := amountM2
	for _, b := range batches {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(b.AvailableM2, remaining)
		if err := s.repo.UpdateAvailableTx(tx, b.ID, b.AvailableM2.Sub(take)); err != nil {
			return err
		}
		qid := quoteID
		mov := &model.InventoryMovement{
			BatchID:  b.ID,
			QuoteID:  &qid,
			Type:     model.MovementConsumption,
			M2Amount: take,
		}
		if err := s.repo.CreateMovementTx(tx, mov); err != nil {
			return err
		}
		remaining = remaining.Sub(take)
	}
	return nil
}

func (s *inventoryService) RestoreTx(tx *gorm.DB, quoteID uuid.UUID) error {
	return s.offsetOutstanding(tx, quoteID, model.MovementRestoration)
}

func (s *inventoryService) ReverseTx(tx *gorm.DB, quoteID uuid.UUID) error {
	return s.offsetOutstanding(tx, quoteID, model.MovementReversal)
}

// offsetOutstanding writes one offsetting movement per outstanding
// consumption and puts the material back on the batch it came from, capped
// at the batch's original capacity.
func (s *inventoryService) offsetOutstanding(tx *gorm.DB, quoteID uuid.UUID, movementType string) error {
	outstanding, err := s.repo.OutstandingConsumptionTx(tx, quoteID)
	if err != nil {
		return err
	}
	if len(outstanding) == 0 {
		return nil
	}

	batchIDs := make([]uuid.UUID, 0, len(outstanding))
	seen := make(map[uuid.UUID]bool)
	for _, m := range outstanding {
		if !seen[m.BatchID] {
			seen[m.BatchID] = true
			batchIDs = append(batchIDs, m.BatchID)
		}
	}
	batches, err := s.repo.LockBatchesTx(tx, batchIDs)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*model.InventoryBatch, len(batches))
	for i := range batches {
		byID[batches[i].ID] = &batches[i]
	}

	for _, m := range outstanding {
		b, ok := byID[m.BatchID]
		if !ok {
			continue // batch deleted out from under the ledger — skip, do not fail the reversal
		}
		restored := b.AvailableM2.Add(m.M2Amount)
		if capacity := b.CapacityM2(); restored.GreaterThan(capacity) {
			restored = capacity
		}
		if err := s.repo.UpdateAvailableTx(tx, b.ID, restored); err != nil {
			return err
		}
		b.AvailableM2 = restored

		qid := quoteID
		ref := m.ID
		offset := &model.InventoryMovement{
			BatchID:    m.BatchID,
			QuoteID:    &qid,
			Type:       movementType,
			M2Amount:   m.M2Amount,
			ReversesID: &ref,
		}
		if err := s.repo.CreateMovementTx(tx, offset); err != nil {
			return err
		}
	}
	return nil
}

// ── Batch CRUD ───────────────────────────────────────────────────────────────

func (s *inventoryService) AddBatches(ctx context.Context, req dto.AddBatchesRequest) ([]dto.BatchResponse, error) {
	if !req.WidthM.IsPositive() || !req.LengthM.IsPositive() || req.CostPerUnit.IsNegative() {
		return nil, ErrInvalidInput
	}

	created := make([]*model.InventoryBatch, 0, req.Quantity)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		now := time.Now()
		for i := 0; i < req.Quantity; i++ {
			b := &model.InventoryBatch{
				WidthM:      req.WidthM,
				LengthM:     req.LengthM,
				CostPerUnit: req.CostPerUnit,
				PurchasedAt: now,
				AvailableM2: req.WidthM.Mul(req.LengthM),
			}
			if err := s.repo.CreateBatchTx(tx, b); err != nil {
				return err
			}
			mov := &model.InventoryMovement{
				BatchID:  b.ID,
				Type:     model.MovementEntry,
				M2Amount: b.AvailableM2,
			}
			if err := s.repo.CreateMovementTx(tx, mov); err != nil {
				return err
			}
			created = append(created, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.BatchResponse, 0, len(created))
	for _, b := range created {
		out = append(out, batchToResponse(b))
	}
	return out, nil
}

func (s *inventoryService) ListBatches(ctx context.Context) ([]dto.BatchResponse, error) {
	batches, err := s.repo.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BatchResponse, 0, len(batches))
	for i := range batches {
		out = append(out, batchToResponse(&batches[i]))
	}
	return out, nil
}

func (s *inventoryService) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindBatchByID(ctx, id); err != nil {
		return ErrNotFound
	}
	touched, err := s.repo.CountMovementsByBatch(ctx, id, []string{
		model.MovementConsumption, model.MovementRestoration, model.MovementReversal,
	})
	if err != nil {
		return err
	}
	if touched > 0 {
		return ErrBatchInUse
	}
	return s.repo.DeleteBatch(ctx, id)
}

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	movements, total, err := s.repo.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		item := dto.MovementResponse{
			ID:        m.ID.String(),
			BatchID:   m.BatchID.String(),
			Type:      m.Type,
			M2Amount:  m.M2Amount,
			CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if m.QuoteID != nil {
			qid := m.QuoteID.String()
			item.QuoteID = &qid
		}
		if m.ReversesID != nil {
			rid := m.ReversesID.String()
			item.ReversesID = &rid
		}
		items = append(items, item)
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return &dto.MovementListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

// StockAlert is purely informational — nothing blocks on it.
func (s *inventoryService) StockAlert(ctx context.Context) (*dto.StockAlertResponse, error) {
	total, err := s.repo.TotalAvailableM2(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StockAlertResponse{
		TotalAvailableM2: total,
		ThresholdM2:      st.LowStockThresholdM2,
		LowStock:         total.LessThan(st.LowStockThresholdM2),
	}, nil
}

func batchToResponse(b *model.InventoryBatch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:          b.ID.String(),
		WidthM:      b.WidthM,
		LengthM:     b.LengthM,
		CostPerUnit: b.CostPerUnit,
		PurchasedAt: b.PurchasedAt.Format("2006-01-02T15:04:05Z"),
		AvailableM2: b.AvailableM2,
		CapacityM2:  b.CapacityM2(),
	}
}
