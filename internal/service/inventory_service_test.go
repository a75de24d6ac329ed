package service

import (
	"context"
	"testing"
	"time"

	"calhaforte/internal/dto"
	"calhaforte/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInventorySvc() (InventoryService, *stubInventoryRepo) {
	repo := newStubInventoryRepo()
	return NewInventoryService(repo, testSettingsService()), repo
}

func TestConsumeTx_FIFOAcrossBatches(t *testing.T) {
	svc, repo := buildInventorySvc()
	t0 := time.Now().Add(-48 * time.Hour)
	oldest := addBatch(repo, "1", "2", t0)              // 2 m²
	middle := addBatch(repo, "1", "3", t0.Add(time.Hour)) // 3 m²
	newest := addBatch(repo, "1", "10", t0.Add(2*time.Hour))

	quoteID := uuid.New()
	require.NoError(t, svc.ConsumeTx(nil, quoteID, d("4")))

	// Oldest batch fully drained, second partially, newest untouched.
	assert.True(t, oldest.AvailableM2.IsZero(), "oldest: %s", oldest.AvailableM2)
	assert.True(t, middle.AvailableM2.Equal(d("1")), "middle: %s", middle.AvailableM2)
	assert.True(t, newest.AvailableM2.Equal(d("10")))

	// One consumption movement per touched batch, amounts in FIFO order.
	require.Len(t, repo.movements, 2)
	assert.Equal(t, oldest.ID, repo.movements[0].BatchID)
	assert.True(t, repo.movements[0].M2Amount.Equal(d("2")))
	assert.Equal(t, middle.ID, repo.movements[1].BatchID)
	assert.True(t, repo.movements[1].M2Amount.Equal(d("2")))
	for _, m := range repo.movements {
		assert.Equal(t, model.MovementConsumption, m.Type)
		require.NotNil(t, m.QuoteID)
		assert.Equal(t, quoteID, *m.QuoteID)
	}
}

func TestConsumeTx_InsufficientStockTouchesNothing(t *testing.T) {
	svc, repo := buildInventorySvc()
	b := addBatch(repo, "1", "3", time.Now())

	err := svc.ConsumeTx(nil, uuid.New(), d("5"))
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.RequiredM2.Equal(d("5")))
	assert.True(t, stockErr.AvailableM2.Equal(d("3")))

	assert.True(t, b.AvailableM2.Equal(d("3")))
	assert.Empty(t, repo.movements)
}

func TestConsumeTx_ZeroAmountIsNoop(t *testing.T) {
	svc, repo := buildInventorySvc()
	addBatch(repo, "1", "3", time.Now())
	require.NoError(t, svc.ConsumeTx(nil, uuid.New(), d("0")))
	assert.Empty(t, repo.movements)
}

func TestRestoreTx_PutsConsumptionBack(t *testing.T) {
	svc, repo := buildInventorySvc()
	t0 := time.Now().Add(-time.Hour)
	a := addBatch(repo, "1", "2", t0)
	b := addBatch(repo, "1", "5", t0.Add(time.Minute))

	quoteID := uuid.New()
	require.NoError(t, svc.ConsumeTx(nil, quoteID, d("4")))
	require.NoError(t, svc.RestoreTx(nil, quoteID))

	// Material conserved: both batches back at capacity.
	assert.True(t, a.AvailableM2.Equal(a.CapacityM2()))
	assert.True(t, b.AvailableM2.Equal(b.CapacityM2()))

	// Ledger is append-only: 2 consumptions + 2 restorations, each
	// restoration referencing the consumption it offsets.
	require.Len(t, repo.movements, 4)
	restorations := 0
	for _, m := range repo.movements {
		if m.Type == model.MovementRestoration {
			restorations++
			require.NotNil(t, m.ReversesID)
		}
	}
	assert.Equal(t, 2, restorations)
}

func TestRestoreTx_IsIdempotentPerConsumption(t *testing.T) {
	svc, repo := buildInventorySvc()
	b := addBatch(repo, "1", "5", time.Now())

	quoteID := uuid.New()
	require.NoError(t, svc.ConsumeTx(nil, quoteID, d("3")))
	require.NoError(t, svc.RestoreTx(nil, quoteID))
	// Second restore finds nothing outstanding and writes nothing.
	require.NoError(t, svc.RestoreTx(nil, quoteID))

	assert.True(t, b.AvailableM2.Equal(d("5")))
	assert.Len(t, repo.movements, 2)
}

func TestReverseTx_AllowsCleanRePay(t *testing.T) {
	svc, repo := buildInventorySvc()
	b := addBatch(repo, "1", "5", time.Now())

	quoteID := uuid.New()
	require.NoError(t, svc.ConsumeTx(nil, quoteID, d("3")))
	require.NoError(t, svc.ReverseTx(nil, quoteID))
	assert.True(t, b.AvailableM2.Equal(d("5")))

	// Re-pay after reopen: only the fresh consumption is outstanding.
	require.NoError(t, svc.ConsumeTx(nil, quoteID, d("2")))
	outstanding, err := repo.OutstandingConsumptionTx(nil, quoteID)
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.True(t, outstanding[0].M2Amount.Equal(d("2")))
	assert.True(t, b.AvailableM2.Equal(d("3")))
}

func TestAddBatches_CreatesEntryMovements(t *testing.T) {
	svc, repo := buildInventorySvc()
	resp, err := svc.AddBatches(context.Background(), dto.AddBatchesRequest{
		WidthM: d("1.2"), LengthM: d("30"), CostPerUnit: d("450.00"), Quantity: 3,
	})
	require.NoError(t, err)
	require.Len(t, resp, 3)
	assert.True(t, resp[0].AvailableM2.Equal(d("36")))

	require.Len(t, repo.movements, 3)
	for _, m := range repo.movements {
		assert.Equal(t, model.MovementEntry, m.Type)
		assert.True(t, m.M2Amount.Equal(d("36")))
		assert.Nil(t, m.QuoteID)
	}
}

func TestAddBatches_RejectsNonPositiveDimensions(t *testing.T) {
	svc, _ := buildInventorySvc()
	_, err := svc.AddBatches(context.Background(), dto.AddBatchesRequest{
		WidthM: d("0"), LengthM: d("30"), CostPerUnit: d("450.00"), Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteBatch_BlockedOnceConsumed(t *testing.T) {
	svc, repo := buildInventorySvc()
	b := addBatch(repo, "1", "5", time.Now())
	require.NoError(t, svc.ConsumeTx(nil, uuid.New(), d("1")))

	assert.ErrorIs(t, svc.DeleteBatch(context.Background(), b.ID), ErrBatchInUse)

	// Untouched batches delete fine.
	fresh := addBatch(repo, "1", "2", time.Now())
	assert.NoError(t, svc.DeleteBatch(context.Background(), fresh.ID))
}

func TestStockAlert_ComparesAgainstThreshold(t *testing.T) {
	svc, repo := buildInventorySvc()
	addBatch(repo, "1", "5", time.Now()) // 5 m² < 20 m² threshold

	alert, err := svc.StockAlert(context.Background())
	require.NoError(t, err)
	assert.True(t, alert.LowStock)
	assert.True(t, alert.TotalAvailableM2.Equal(d("5")))

	addBatch(repo, "1", "30", time.Now()) // now 35 m²
	alert, err = svc.StockAlert(context.Background())
	require.NoError(t, err)
	assert.False(t, alert.LowStock)
}
