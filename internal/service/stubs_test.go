package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"calhaforte/internal/dto"
	"calhaforte/internal/model"
	"calhaforte/internal/profile"
	"calhaforte/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory stubs so services can be unit-tested without postgres. The tx
// argument is always nil here — runTx falls back to calling fn(nil) when the
// repository reports no database.

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ── Quote repo ────────────────────────────────────────────────────────────────

type stubQuoteRepo struct {
	quotes map[uuid.UUID]*model.Quote
}

func newStubQuoteRepo() *stubQuoteRepo {
	return &stubQuoteRepo{quotes: make(map[uuid.UUID]*model.Quote)}
}

func (r *stubQuoteRepo) Create(_ context.Context, _ *gorm.DB, q *model.Quote) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	for i := range q.Bends {
		if q.Bends[i].ID == uuid.Nil {
			q.Bends[i].ID = uuid.New()
		}
		q.Bends[i].QuoteID = q.ID
	}
	q.CreatedAt = time.Now()
	r.quotes[q.ID] = q
	return nil
}

func (r *stubQuoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Quote, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return q, nil
}

func (r *stubQuoteRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Quote, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubQuoteRepo) List(_ context.Context, filter dto.QuoteFilter) ([]model.Quote, int64, error) {
	var out []model.Quote
	for _, q := range r.quotes {
		if filter.Status != "" && filter.Status != "all" && q.Status != filter.Status {
			continue
		}
		if filter.CustomerID != "" {
			if q.CustomerID == nil || q.CustomerID.String() != filter.CustomerID {
				continue
			}
		}
		out = append(out, *q)
	}
	return out, int64(len(out)), nil
}

func (r *stubQuoteRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	q, ok := r.quotes[id]
	if !ok {
		return errors.New("not found")
	}
	q.Status = status
	return nil
}

func (r *stubQuoteRepo) Update(_ context.Context, q *model.Quote) error {
	r.quotes[q.ID] = q
	return nil
}

func (r *stubQuoteRepo) DB() *gorm.DB { return nil }

var _ repository.QuoteRepository = (*stubQuoteRepo)(nil)

// ── Inventory repo ────────────────────────────────────────────────────────────

type stubInventoryRepo struct {
	batches   []*model.InventoryBatch
	movements []*model.InventoryMovement
}

func newStubInventoryRepo() *stubInventoryRepo { return &stubInventoryRepo{} }

func (r *stubInventoryRepo) CreateBatchTx(_ *gorm.DB, b *model.InventoryBatch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	r.batches = append(r.batches, b)
	return nil
}

func (r *stubInventoryRepo) FindBatchByID(_ context.Context, id uuid.UUID) (*model.InventoryBatch, error) {
	for _, b := range r.batches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubInventoryRepo) ListBatches(_ context.Context) ([]model.InventoryBatch, error) {
	out := make([]model.InventoryBatch, 0, len(r.batches))
	for _, b := range r.fifo() {
		out = append(out, *b)
	}
	return out, nil
}

func (r *stubInventoryRepo) DeleteBatch(_ context.Context, id uuid.UUID) error {
	for i, b := range r.batches {
		if b.ID == id {
			r.batches = append(r.batches[:i], r.batches[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

// fifo mirrors the SQL ordering: purchased_at ascending, id as tiebreak.
func (r *stubInventoryRepo) fifo() []*model.InventoryBatch {
	out := make([]*model.InventoryBatch, len(r.batches))
	copy(out, r.batches)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PurchasedAt.Equal(out[j].PurchasedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].PurchasedAt.Before(out[j].PurchasedAt)
	})
	return out
}

func (r *stubInventoryRepo) ListAvailableBatchesTx(_ *gorm.DB) ([]model.InventoryBatch, error) {
	var out []model.InventoryBatch
	for _, b := range r.fifo() {
		if b.AvailableM2.IsPositive() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *stubInventoryRepo) LockBatchesTx(_ *gorm.DB, ids []uuid.UUID) ([]model.InventoryBatch, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.InventoryBatch
	for _, b := range r.fifo() {
		if want[b.ID] {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *stubInventoryRepo) UpdateAvailableTx(_ *gorm.DB, id uuid.UUID, availableM2 interface{}) error {
	v, ok := availableM2.(decimal.Decimal)
	if !ok {
		return errors.New("unexpected available_m2 type")
	}
	for _, b := range r.batches {
		if b.ID == id {
			b.AvailableM2 = v
			return nil
		}
	}
	return errors.New("not found")
}

func (r *stubInventoryRepo) CreateMovementTx(_ *gorm.DB, m *model.InventoryMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, m)
	return nil
}

func (r *stubInventoryRepo) OutstandingConsumptionTx(_ *gorm.DB, quoteID uuid.UUID) ([]model.InventoryMovement, error) {
	offset := make(map[uuid.UUID]bool)
	for _, m := range r.movements {
		if m.QuoteID != nil && *m.QuoteID == quoteID && m.ReversesID != nil &&
			(m.Type == model.MovementRestoration || m.Type == model.MovementReversal) {
			offset[*m.ReversesID] = true
		}
	}
	var out []model.InventoryMovement
	for _, m := range r.movements {
		if m.QuoteID != nil && *m.QuoteID == quoteID &&
			m.Type == model.MovementConsumption && !offset[m.ID] {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubInventoryRepo) ListMovements(_ context.Context, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error) {
	var out []model.InventoryMovement
	for _, m := range r.movements {
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.QuoteID != "" && (m.QuoteID == nil || m.QuoteID.String() != filter.QuoteID) {
			continue
		}
		if filter.BatchID != "" && m.BatchID.String() != filter.BatchID {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *stubInventoryRepo) CountMovementsByBatch(_ context.Context, batchID uuid.UUID, types []string) (int64, error) {
	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	var n int64
	for _, m := range r.movements {
		if m.BatchID == batchID && wanted[m.Type] {
			n++
		}
	}
	return n, nil
}

func (r *stubInventoryRepo) TotalAvailableM2(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range r.batches {
		total = total.Add(b.AvailableM2)
	}
	return total, nil
}

func (r *stubInventoryRepo) DB() *gorm.DB { return nil }

var _ repository.InventoryRepository = (*stubInventoryRepo)(nil)

// ── Financial / activity / settings repos ────────────────────────────────────

type stubFinancialRepo struct {
	records map[uuid.UUID]*model.FinancialRecord
}

func newStubFinancialRepo() *stubFinancialRepo {
	return &stubFinancialRepo{records: make(map[uuid.UUID]*model.FinancialRecord)}
}

func (r *stubFinancialRepo) CreateTx(_ *gorm.DB, rec *model.FinancialRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.records[rec.QuoteID] = rec
	return nil
}

func (r *stubFinancialRepo) DeleteByQuoteTx(_ *gorm.DB, quoteID uuid.UUID) error {
	delete(r.records, quoteID)
	return nil
}

func (r *stubFinancialRepo) FindByQuote(_ context.Context, quoteID uuid.UUID) (*model.FinancialRecord, error) {
	rec, ok := r.records[quoteID]
	if !ok {
		return nil, errors.New("not found")
	}
	return rec, nil
}

var _ repository.FinancialRepository = (*stubFinancialRepo)(nil)

type stubActivityRepo struct {
	entries []model.ActivityLog
}

func (r *stubActivityRepo) Create(_ context.Context, e *model.ActivityLog) error {
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubActivityRepo) CreateTx(_ *gorm.DB, e *model.ActivityLog) error {
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubActivityRepo) ListByQuote(_ context.Context, quoteID uuid.UUID) ([]model.ActivityLog, error) {
	var out []model.ActivityLog
	for _, e := range r.entries {
		if e.QuoteID != nil && *e.QuoteID == quoteID {
			out = append(out, e)
		}
	}
	return out, nil
}

var _ repository.ActivityRepository = (*stubActivityRepo)(nil)

type stubSettingsRepo struct {
	settings *model.Settings
}

func (r *stubSettingsRepo) Get(_ context.Context) (*model.Settings, error) {
	if r.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.settings, nil
}

func (r *stubSettingsRepo) Save(_ context.Context, s *model.Settings) error {
	r.settings = s
	return nil
}

var _ repository.SettingsRepository = (*stubSettingsRepo)(nil)

// ── Collaborator stubs ───────────────────────────────────────────────────────

type stubRenderer struct {
	ref  string
	err  error
	hits int
}

func (r *stubRenderer) Render(_ context.Context, _ []profile.Segment) (string, error) {
	r.hits++
	return r.ref, r.err
}

type notifierEvent struct {
	quoteID  uuid.UUID
	from, to string
}

type stubNotifier struct {
	events []notifierEvent
}

func (n *stubNotifier) QuoteStatusChanged(quoteID uuid.UUID, _ string, from, to string) {
	n.events = append(n.events, notifierEvent{quoteID: quoteID, from: from, to: to})
}

// ── Common fixtures ──────────────────────────────────────────────────────────

func testSettingsService() SettingsService {
	repo := &stubSettingsRepo{settings: &model.Settings{
		ID:                  1,
		PricePerM2:          d("50.00"),
		MaxWidthCm:          d("120"),
		LowStockThresholdM2: d("20"),
	}}
	return NewSettingsService(repo, nil)
}

func addBatch(r *stubInventoryRepo, widthM, lengthM string, purchasedAt time.Time) *model.InventoryBatch {
	b := &model.InventoryBatch{
		ID:          uuid.New(),
		WidthM:      d(widthM),
		LengthM:     d(lengthM),
		CostPerUnit: d("100.00"),
		PurchasedAt: purchasedAt,
	}
	b.AvailableM2 = b.CapacityM2()
	r.batches = append(r.batches, b)
	return b
}
