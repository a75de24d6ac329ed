package service

import (
	"context"
	"testing"

	"calhaforte/internal/dto"
	"calhaforte/internal/model"
	"calhaforte/internal/profile"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildQuoteSvc(renderer DiagramRenderer) (QuoteService, *stubQuoteRepo, *stubActivityRepo) {
	quotes := newStubQuoteRepo()
	activity := &stubActivityRepo{}
	return NewQuoteService(quotes, activity, testSettingsService(), renderer), quotes, activity
}

func customer() Actor { return Actor{ID: uuid.New(), Role: model.RoleCustomer} }

// One bend: E 40 + S 30 → raw 70 (already a multiple of 5), 3.5 m running
// length, 0.70 * 3.5 = 2.45 m², at 50.00/m² = 122.50.
func singleBendRequest() dto.SubmitQuoteRequest {
	return dto.SubmitQuoteRequest{
		ClientName: "Maria Silva",
		Bends: []dto.BendRequest{{
			Segments: []dto.SegmentRequest{
				{Direction: "E", SizeCm: d("40")},
				{Direction: "S", SizeCm: d("30")},
			},
			LengthsM: []decimal.Decimal{d("2"), d("1.5")},
		}},
	}
}

func TestSubmit_PricesAndPersistsPendingQuote(t *testing.T) {
	svc, quotes, _ := buildQuoteSvc(&stubRenderer{ref: "diagrams/abc.png"})
	actor := customer()

	resp, err := svc.Submit(context.Background(), actor, singleBendRequest())
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, resp.Status)
	assert.True(t, resp.TotalAreaM2.Equal(d("2.45")))
	assert.True(t, resp.PricePerM2.Equal(d("50.00")))
	assert.True(t, resp.TotalValue.Equal(d("122.50")))
	assert.True(t, resp.FinalValue.Equal(d("122.50")))
	require.NotNil(t, resp.CustomerID)
	assert.Equal(t, actor.ID.String(), *resp.CustomerID)

	require.Len(t, resp.Bends, 1)
	bend := resp.Bends[0]
	assert.True(t, bend.TotalWidthCm.Equal(d("70")))
	assert.True(t, bend.RoundedWidthCm.Equal(d("70")))
	assert.True(t, bend.TotalLengthM.Equal(d("3.5")))
	require.NotNil(t, bend.DiagramRef)
	assert.Equal(t, "diagrams/abc.png", *bend.DiagramRef)

	assert.Len(t, quotes.quotes, 1)
}

func TestSubmit_BillsRoundedWidthNotRaw(t *testing.T) {
	svc, _, _ := buildQuoteSvc(nil)
	req := dto.SubmitQuoteRequest{
		ClientName: "Maria Silva",
		Bends: []dto.BendRequest{{
			Segments: []dto.SegmentRequest{
				{Direction: "E", SizeCm: d("33.5")}, // rounds up to 35
			},
			LengthsM: []decimal.Decimal{d("2")},
		}},
	}
	resp, err := svc.Submit(context.Background(), customer(), req)
	require.NoError(t, err)
	assert.True(t, resp.Bends[0].RoundedWidthCm.Equal(d("35")))
	// 0.35 * 2 = 0.70 m²
	assert.True(t, resp.TotalAreaM2.Equal(d("0.7")))
	assert.True(t, resp.TotalValue.Equal(d("35.00")))
}

func TestSubmit_RejectsReversalSegment(t *testing.T) {
	svc, quotes, _ := buildQuoteSvc(nil)
	req := dto.SubmitQuoteRequest{
		ClientName: "Maria Silva",
		Bends: []dto.BendRequest{{
			Segments: []dto.SegmentRequest{
				{Direction: "N", SizeCm: d("20")},
				{Direction: "S", SizeCm: d("20")},
			},
			LengthsM: []decimal.Decimal{d("2")},
		}},
	}
	_, err := svc.Submit(context.Background(), customer(), req)
	assert.ErrorIs(t, err, profile.ErrReversal)
	assert.Empty(t, quotes.quotes)
}

func TestSubmit_RejectsWidthOverCeiling(t *testing.T) {
	svc, _, _ := buildQuoteSvc(nil)
	req := dto.SubmitQuoteRequest{
		ClientName: "Maria Silva",
		Bends: []dto.BendRequest{{
			Segments: []dto.SegmentRequest{
				{Direction: "E", SizeCm: d("100")},
				{Direction: "N", SizeCm: d("21")},
			},
			LengthsM: []decimal.Decimal{d("2")},
		}},
	}
	_, err := svc.Submit(context.Background(), customer(), req)
	var widthErr *profile.WidthError
	assert.ErrorAs(t, err, &widthErr)
}

func TestSubmit_RequiresOnePositiveLength(t *testing.T) {
	svc, _, _ := buildQuoteSvc(nil)
	req := singleBendRequest()
	req.Bends[0].LengthsM = []decimal.Decimal{d("0"), d("-1")}
	_, err := svc.Submit(context.Background(), customer(), req)
	assert.ErrorIs(t, err, ErrNoPositiveLength)
}

func TestSubmit_RendererFailureIsNotFatal(t *testing.T) {
	svc, _, _ := buildQuoteSvc(&stubRenderer{err: assert.AnError})
	resp, err := svc.Submit(context.Background(), customer(), singleBendRequest())
	require.NoError(t, err)
	assert.Nil(t, resp.Bends[0].DiagramRef)
}

func TestManualCreate_AdminOnly(t *testing.T) {
	svc, _, _ := buildQuoteSvc(nil)
	req := dto.ManualQuoteRequest{ClientName: "Walk-in", Status: model.StatusDraft}
	_, err := svc.ManualCreate(context.Background(), customer(), req)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestManualCreate_AllowsZeroBendsWithTypedArea(t *testing.T) {
	svc, _, activity := buildQuoteSvc(nil)
	area := d("3.0000")
	req := dto.ManualQuoteRequest{
		ClientName:  "Walk-in",
		Status:      model.StatusPaid,
		TotalAreaM2: &area,
	}
	resp, err := svc.ManualCreate(context.Background(), admin(), req)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, resp.Status)
	assert.Empty(t, resp.Bends)
	assert.True(t, resp.TotalValue.Equal(d("150.00")))

	require.Len(t, activity.entries, 1)
	assert.Equal(t, "manual_entry", activity.entries[0].Action)
}

func TestGet_CustomerSeesOnlyOwnQuotes(t *testing.T) {
	svc, _, _ := buildQuoteSvc(nil)
	owner := customer()
	resp, err := svc.Submit(context.Background(), owner, singleBendRequest())
	require.NoError(t, err)
	quoteID := uuid.MustParse(resp.ID)

	_, err = svc.Get(context.Background(), owner, quoteID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), customer(), quoteID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Get(context.Background(), staff(), quoteID)
	assert.NoError(t, err)
}

func TestList_CustomerFilterIsForced(t *testing.T) {
	svc, _, _ := buildQuoteSvc(nil)
	owner := customer()
	_, err := svc.Submit(context.Background(), owner, singleBendRequest())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), customer(), singleBendRequest())
	require.NoError(t, err)

	list, err := svc.List(context.Background(), owner, dto.QuoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	list, err = svc.List(context.Background(), admin(), dto.QuoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
}

func TestApplyDiscount_ReducesFinalValueAndLogs(t *testing.T) {
	svc, _, activity := buildQuoteSvc(nil)
	resp, err := svc.Submit(context.Background(), customer(), singleBendRequest())
	require.NoError(t, err)
	quoteID := uuid.MustParse(resp.ID)

	updated, err := svc.ApplyDiscount(context.Background(), admin(), quoteID, dto.DiscountRequest{
		Amount: d("22.50"), Reason: "returning customer",
	})
	require.NoError(t, err)
	assert.True(t, updated.TotalValue.Equal(d("122.50")))
	assert.True(t, updated.DiscountValue.Equal(d("22.50")))
	assert.True(t, updated.FinalValue.Equal(d("100.00")))

	require.Len(t, activity.entries, 1)
	assert.Equal(t, "discount_applied", activity.entries[0].Action)
}

func TestApplyDiscount_Validation(t *testing.T) {
	svc, _, _ := buildQuoteSvc(nil)
	resp, err := svc.Submit(context.Background(), customer(), singleBendRequest())
	require.NoError(t, err)
	quoteID := uuid.MustParse(resp.ID)

	_, err = svc.ApplyDiscount(context.Background(), customer(), quoteID, dto.DiscountRequest{Amount: d("10"), Reason: "because"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ApplyDiscount(context.Background(), admin(), quoteID, dto.DiscountRequest{Amount: d("0"), Reason: "because"})
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	// More than the quote total.
	_, err = svc.ApplyDiscount(context.Background(), admin(), quoteID, dto.DiscountRequest{Amount: d("122.51"), Reason: "because"})
	assert.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestApplyDiscount_OnlyBeforePayment(t *testing.T) {
	svc, quotes, _ := buildQuoteSvc(nil)
	resp, err := svc.Submit(context.Background(), customer(), singleBendRequest())
	require.NoError(t, err)
	quoteID := uuid.MustParse(resp.ID)
	quotes.quotes[quoteID].Status = model.StatusPaid

	_, err = svc.ApplyDiscount(context.Background(), admin(), quoteID, dto.DiscountRequest{Amount: d("10"), Reason: "too late"})
	assert.ErrorIs(t, err, ErrQuoteNotEditable)
}

func TestAttachPaymentProof_PendingOnly(t *testing.T) {
	svc, quotes, _ := buildQuoteSvc(nil)
	owner := customer()
	resp, err := svc.Submit(context.Background(), owner, singleBendRequest())
	require.NoError(t, err)
	quoteID := uuid.MustParse(resp.ID)

	updated, err := svc.AttachPaymentProof(context.Background(), owner, quoteID, "uploads/proof-1.pdf")
	require.NoError(t, err)
	require.NotNil(t, updated.PaymentProofRef)
	assert.Equal(t, "uploads/proof-1.pdf", *updated.PaymentProofRef)

	quotes.quotes[quoteID].Status = model.StatusPaid
	_, err = svc.AttachPaymentProof(context.Background(), owner, quoteID, "uploads/proof-2.pdf")
	assert.ErrorIs(t, err, ErrQuoteNotEditable)
}

func TestPreview_MeasuresWithoutPersisting(t *testing.T) {
	svc, quotes, _ := buildQuoteSvc(nil)
	resp, err := svc.Preview(context.Background(), dto.ProfilePreviewRequest{
		Segments: []dto.SegmentRequest{
			{Direction: "E", SizeCm: d("40")},
			{Direction: "S", SizeCm: d("30")},
		},
		LengthsM: []decimal.Decimal{d("3.5")},
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalWidthCm.Equal(d("70")))
	assert.True(t, resp.RoundedWidthCm.Equal(d("70")))
	assert.True(t, resp.RemainingWidthCm.Equal(d("50")))
	assert.True(t, resp.AreaM2.Equal(d("2.45")))
	assert.Empty(t, quotes.quotes)
}

func TestPreview_SurfacesProfileErrors(t *testing.T) {
	svc, _, _ := buildQuoteSvc(nil)
	_, err := svc.Preview(context.Background(), dto.ProfilePreviewRequest{
		Segments: []dto.SegmentRequest{
			{Direction: "N", SizeCm: d("10")},
			{Direction: "S", SizeCm: d("10")},
		},
	})
	assert.ErrorIs(t, err, profile.ErrReversal)
}
