package service

import (
	"context"
	"fmt"

	"calhaforte/internal/dto"
	"calhaforte/internal/model"
	"calhaforte/internal/profile"
	"calhaforte/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiagramRenderer is the external collaborator that turns a confirmed profile
// into a stored visual. Rendering is best-effort — a quote is valid without
// its diagram.
type DiagramRenderer interface {
	Render(ctx context.Context, segments []profile.Segment) (string, error)
}

type QuoteService interface {
	// Submit is the customer path: bends are validated through the profile
	// core, measured, priced with the CURRENT unit price (snapshotted onto
	// the quote), and the quote lands in "pending".
	Submit(ctx context.Context, actor Actor, req dto.SubmitQuoteRequest) (*dto.QuoteResponse, error)
	// ManualCreate is the administrative entry path: operator-chosen initial
	// status, bends optional (the only way a zero-bend quote may exist).
	ManualCreate(ctx context.Context, actor Actor, req dto.ManualQuoteRequest) (*dto.QuoteResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.QuoteResponse, error)
	List(ctx context.Context, actor Actor, filter dto.QuoteFilter) (*dto.QuoteListResponse, error)
	ApplyDiscount(ctx context.Context, actor Actor, id uuid.UUID, req dto.DiscountRequest) (*dto.QuoteResponse, error)
	AttachPaymentProof(ctx context.Context, actor Actor, id uuid.UUID, documentRef string) (*dto.QuoteResponse, error)
	// Preview validates and measures an in-progress profile without
	// persisting anything, so the quote-builder UI can gate each segment.
	Preview(ctx context.Context, req dto.ProfilePreviewRequest) (*dto.ProfilePreviewResponse, error)
}

type quoteService struct {
	repo         repository.QuoteRepository
	activityRepo repository.ActivityRepository
	settings     SettingsService
	renderer     DiagramRenderer
}

func NewQuoteService(
	repo repository.QuoteRepository,
	activityRepo repository.ActivityRepository,
	settings SettingsService,
	renderer DiagramRenderer,
) QuoteService {
	return &quoteService{
		repo:         repo,
		activityRepo: activityRepo,
		settings:     settings,
		renderer:     renderer,
	}
}

// ── Submit ───────────────────────────────────────────────────────────────────

func (s *quoteService) Submit(ctx context.Context, actor Actor, req dto.SubmitQuoteRequest) (*dto.QuoteResponse, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	bends, totalArea, err := s.buildBends(ctx, st.MaxWidthCm, req.Bends)
	if err != nil {
		return nil, err
	}

	totalValue := totalArea.Mul(st.PricePerM2).Round(2)
	customerID := actor.ID
	quote := &model.Quote{
		CustomerID:  &customerID,
		ClientName:  req.ClientName,
		Notes:       req.Notes,
		Status:      model.StatusPending,
		PricePerM2:  st.PricePerM2, // snapshot — later price changes never touch this quote
		TotalAreaM2: totalArea,
		TotalValue:  totalValue,
		FinalValue:  totalValue,
		Bends:       bends,
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, quote)
	}); err != nil {
		return nil, err
	}
	return quoteToResponse(quote), nil
}

// ── ManualCreate ─────────────────────────────────────────────────────────────

func (s *quoteService) ManualCreate(ctx context.Context, actor Actor, req dto.ManualQuoteRequest) (*dto.QuoteResponse, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrUnauthorized
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	var bends []model.Bend
	totalArea := decimal.Zero
	if len(req.Bends) > 0 {
		bends, totalArea, err = s.buildBends(ctx, st.MaxWidthCm, req.Bends)
		if err != nil {
			return nil, err
		}
	} else if req.TotalAreaM2 != nil {
		if req.TotalAreaM2.IsNegative() {
			return nil, ErrInvalidInput
		}
		totalArea = req.TotalAreaM2.Round(4)
	}

	totalValue := totalArea.Mul(st.PricePerM2).Round(2)
	quote := &model.Quote{
		ClientName:  req.ClientName,
		Notes:       req.Notes,
		Status:      req.Status,
		PricePerM2:  st.PricePerM2,
		TotalAreaM2: totalArea,
		TotalValue:  totalValue,
		FinalValue:  totalValue,
		Bends:       bends,
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, quote); err != nil {
			return err
		}
		entry := &model.ActivityLog{
			UserID:  actor.ID,
			QuoteID: &quote.ID,
			Action:  "manual_entry",
			Detail:  fmt.Sprintf("manual quote created in status %q for %s", req.Status, req.ClientName),
		}
		return s.activityRepo.CreateTx(tx, entry)
	}); err != nil {
		return nil, err
	}
	return quoteToResponse(quote), nil
}

// ── Get / List ───────────────────────────────────────────────────────────────

func (s *quoteService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.QuoteResponse, error) {
	quote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if !canSeeQuote(actor, quote) {
		return nil, ErrUnauthorized
	}
	return quoteToResponse(quote), nil
}

func (s *quoteService) List(ctx context.Context, actor Actor, filter dto.QuoteFilter) (*dto.QuoteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	// Customers only ever see their own quotes, whatever the filter says.
	if actor.Role == model.RoleCustomer {
		filter.CustomerID = actor.ID.String()
	}
	quotes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.QuoteResponse, 0, len(quotes))
	for i := range quotes {
		items = append(items, *quoteToResponse(&quotes[i]))
	}
	return &dto.QuoteListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── ApplyDiscount ────────────────────────────────────────────────────────────
// Administrator-only; amount must be positive and within the quote total, and
// the reason lands in the activity log (who, when, why).

func (s *quoteService) ApplyDiscount(ctx context.Context, actor Actor, id uuid.UUID, req dto.DiscountRequest) (*dto.QuoteResponse, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ErrUnauthorized
	}
	quote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if quote.Status != model.StatusDraft && quote.Status != model.StatusPending {
		return nil, ErrQuoteNotEditable
	}
	if !req.Amount.IsPositive() || req.Amount.GreaterThan(quote.TotalValue) {
		return nil, ErrInvalidDiscount
	}

	quote.DiscountValue = req.Amount.Round(2)
	quote.DiscountReason = &req.Reason
	quote.FinalValue = quote.TotalValue.Sub(quote.DiscountValue)
	if quote.FinalValue.IsNegative() {
		quote.FinalValue = decimal.Zero
	}

	if err := s.repo.Update(ctx, quote); err != nil {
		return nil, err
	}
	entry := &model.ActivityLog{
		UserID:  actor.ID,
		QuoteID: &quote.ID,
		Action:  "discount_applied",
		Detail:  fmt.Sprintf("discount of %s applied: %s", req.Amount.StringFixed(2), req.Reason),
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("quote_id", id.String()).Msg("failed to record discount in activity log")
	}
	return quoteToResponse(quote), nil
}

// ── AttachPaymentProof ───────────────────────────────────────────────────────

func (s *quoteService) AttachPaymentProof(ctx context.Context, actor Actor, id uuid.UUID, documentRef string) (*dto.QuoteResponse, error) {
	quote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if !canSeeQuote(actor, quote) {
		return nil, ErrUnauthorized
	}
	if quote.Status != model.StatusPending {
		return nil, ErrQuoteNotEditable
	}
	quote.PaymentProofRef = &documentRef
	if err := s.repo.Update(ctx, quote); err != nil {
		return nil, err
	}
	return quoteToResponse(quote), nil
}

// ── Preview ──────────────────────────────────────────────────────────────────

func (s *quoteService) Preview(ctx context.Context, req dto.ProfilePreviewRequest) (*dto.ProfilePreviewResponse, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	builder := profile.NewBuilder(st.MaxWidthCm)
	for _, seg := range req.Segments {
		if err := builder.Append(profile.Direction(seg.Direction), seg.SizeCm); err != nil {
			return nil, err
		}
	}

	rawWidth := builder.TotalWidthCm()
	rounded := profile.RoundWidthCm(rawWidth)
	totalLen := profile.TotalLengthM(req.LengthsM)
	return &dto.ProfilePreviewResponse{
		TotalWidthCm:     rawWidth,
		RoundedWidthCm:   rounded,
		RemainingWidthCm: builder.RemainingWidthCm(),
		TotalLengthM:     totalLen,
		AreaM2:           profile.AreaM2(rounded, totalLen),
	}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// buildBends runs every requested bend through the profile core and returns
// the persisted shape plus the summed billable area.
func (s *quoteService) buildBends(ctx context.Context, maxWidthCm decimal.Decimal, reqs []dto.BendRequest) ([]model.Bend, decimal.Decimal, error) {
	bends := make([]model.Bend, 0, len(reqs))
	totalArea := decimal.Zero

	for i, br := range reqs {
		builder := profile.NewBuilder(maxWidthCm)
		for _, seg := range br.Segments {
			if err := builder.Append(profile.Direction(seg.Direction), seg.SizeCm); err != nil {
				return nil, decimal.Zero, fmt.Errorf("bend %d: %w", i+1, err)
			}
		}
		segments, err := builder.Confirm()
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("bend %d: %w", i+1, err)
		}

		totalLen := profile.TotalLengthM(br.LengthsM)
		if !totalLen.IsPositive() {
			return nil, decimal.Zero, fmt.Errorf("bend %d: %w", i+1, ErrNoPositiveLength)
		}

		rawWidth := builder.TotalWidthCm()
		rounded := profile.RoundWidthCm(rawWidth)
		area := profile.AreaM2(rounded, totalLen)
		totalArea = totalArea.Add(area)

		bend := model.Bend{
			Position:       i,
			TotalWidthCm:   rawWidth,
			RoundedWidthCm: rounded,
			TotalLengthM:   totalLen,
			AreaM2:         area,
		}
		for j, seg := range segments {
			bend.Segments = append(bend.Segments, model.Segment{
				Position:  j,
				Direction: string(seg.Direction),
				SizeCm:    seg.SizeCm,
			})
		}
		for j, l := range br.LengthsM {
			bend.Lengths = append(bend.Lengths, model.BendLength{Position: j, Meters: l})
		}

		if s.renderer != nil {
			if ref, rErr := s.renderer.Render(ctx, segments); rErr == nil {
				bend.DiagramRef = &ref
			} else {
				log.Warn().Err(rErr).Int("bend", i+1).Msg("diagram render failed — continuing without diagram")
			}
		}
		bends = append(bends, bend)
	}
	return bends, totalArea.Round(4), nil
}

func canSeeQuote(actor Actor, q *model.Quote) bool {
	if actor.Role == model.RoleAdmin || actor.Role == model.RoleStaff {
		return true
	}
	return q.CustomerID != nil && *q.CustomerID == actor.ID
}

func quoteToResponse(q *model.Quote) *dto.QuoteResponse {
	resp := &dto.QuoteResponse{
		ID:              q.ID.String(),
		ClientName:      q.ClientName,
		Notes:           q.Notes,
		Status:          q.Status,
		TotalAreaM2:     q.TotalAreaM2,
		PricePerM2:      q.PricePerM2,
		TotalValue:      q.TotalValue,
		DiscountValue:   q.DiscountValue,
		DiscountReason:  q.DiscountReason,
		FinalValue:      q.FinalValue,
		PaymentProofRef: q.PaymentProofRef,
		CreatedAt:       q.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if q.CustomerID != nil {
		cid := q.CustomerID.String()
		resp.CustomerID = &cid
	}
	resp.Bends = make([]dto.BendResponse, 0, len(q.Bends))
	for _, b := range q.Bends {
		br := dto.BendResponse{
			ID:             b.ID.String(),
			Position:       b.Position,
			TotalWidthCm:   b.TotalWidthCm,
			RoundedWidthCm: b.RoundedWidthCm,
			TotalLengthM:   b.TotalLengthM,
			AreaM2:         b.AreaM2,
			DiagramRef:     b.DiagramRef,
		}
		for _, seg := range b.Segments {
			br.Segments = append(br.Segments, dto.SegmentResponse{
				Direction: seg.Direction,
				SizeCm:    seg.SizeCm,
			})
		}
		for _, l := range b.Lengths {
			br.LengthsM = append(br.LengthsM, l.Meters)
		}
		resp.Bends = append(resp.Bends, br)
	}
	return resp
}
