package service

import (
	"context"
	"fmt"

	"calhaforte/internal/dto"
	"calhaforte/internal/model"
	"calhaforte/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StatusNotifier receives status-change events after the transition commits.
// The worker pool implements this; delivery is best-effort and must never
// affect the transition's outcome.
type StatusNotifier interface {
	QuoteStatusChanged(quoteID uuid.UUID, clientName, from, to string)
}

// StatusService drives the quote lifecycle. Every transition — status write,
// inventory side effects, financial record, activity log — commits or rolls
// back as a single transaction.
type StatusService interface {
	ChangeStatus(ctx context.Context, actor Actor, quoteID uuid.UUID, req dto.ChangeStatusRequest) (*dto.QuoteResponse, error)
}

type statusService struct {
	quoteRepo     repository.QuoteRepository
	financialRepo repository.FinancialRepository
	activityRepo  repository.ActivityRepository
	inventory     InventoryService
	notifier      StatusNotifier
}

func NewStatusService(
	quoteRepo repository.QuoteRepository,
	financialRepo repository.FinancialRepository,
	activityRepo repository.ActivityRepository,
	inventory InventoryService,
	notifier StatusNotifier,
) StatusService {
	return &statusService{
		quoteRepo:     quoteRepo,
		financialRepo: financialRepo,
		activityRepo:  activityRepo,
		inventory:     inventory,
		notifier:      notifier,
	}
}

// allowedTransitions is the full edge table. Anything absent is rejected.
// paid/in_production/finished share the same outgoing edges: production
// statuses move freely among themselves, and all three can be cancelled or
// reopened back to pending.
var allowedTransitions = map[string][]string{
	model.StatusDraft:        {model.StatusPending, model.StatusCancelled},
	model.StatusPending:      {model.StatusPaid, model.StatusCancelled},
	model.StatusPaid:         {model.StatusInProduction, model.StatusFinished, model.StatusCancelled, model.StatusPending},
	model.StatusInProduction: {model.StatusPaid, model.StatusFinished, model.StatusCancelled, model.StatusPending},
	model.StatusFinished:     {model.StatusPaid, model.StatusInProduction, model.StatusCancelled, model.StatusPending},
	model.StatusCancelled:    {},
}

func transitionAllowed(from, to string) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// isPostPayment reports whether material has already been committed for the
// quote in this status.
func isPostPayment(status string) bool {
	switch status {
	case model.StatusPaid, model.StatusInProduction, model.StatusFinished:
		return true
	}
	return false
}

func (s *statusService) ChangeStatus(ctx context.Context, actor Actor, quoteID uuid.UUID, req dto.ChangeStatusRequest) (*dto.QuoteResponse, error) {
	// Cheap pre-check outside the transaction; authoritative state is
	// re-read under lock below.
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, ErrNotFound
	}
	if err := s.authorize(actor, quote, req.Status); err != nil {
		return nil, err
	}

	var from string
	err = runTx(ctx, s.quoteRepo.DB(), func(tx *gorm.DB) error {
		locked, err := s.quoteRepo.FindByIDTx(tx, quoteID)
		if err != nil {
			return ErrNotFound
		}
		from = locked.Status

		// The pre-check above raced with other writers; the quote may have
		// moved between the two reads, and the role gates depend on the
		// current status. The locked row is authoritative.
		if err := s.authorize(actor, locked, req.Status); err != nil {
			return err
		}

		if !transitionAllowed(from, req.Status) {
			return &InvalidTransitionError{From: from, To: req.Status}
		}

		switch {
		case from == model.StatusPending && req.Status == model.StatusPaid:
			if err := s.onPaid(tx, locked); err != nil {
				return err
			}
		case isPostPayment(from) && req.Status == model.StatusCancelled:
			if err := s.onUnpaid(tx, locked, model.MovementRestoration); err != nil {
				return err
			}
		case isPostPayment(from) && req.Status == model.StatusPending:
			// Reopening a paid quote rewinds payment and consumption; it is
			// destructive enough to require the caller to say so twice.
			if !req.Confirm {
				return ErrConfirmationRequired
			}
			if err := s.onUnpaid(tx, locked, model.MovementReversal); err != nil {
				return err
			}
		}

		if err := s.quoteRepo.UpdateStatusTx(tx, quoteID, req.Status); err != nil {
			return err
		}

		action := "status_changed"
		if isPostPayment(from) && req.Status == model.StatusPending {
			action = "quote_reopened"
		}
		entry := &model.ActivityLog{
			UserID:  actor.ID,
			QuoteID: &quoteID,
			Action:  action,
			Detail:  fmt.Sprintf("status changed from %q to %q", from, req.Status),
		}
		return s.activityRepo.CreateTx(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.QuoteStatusChanged(quoteID, quote.ClientName, from, req.Status)
	}

	updated, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return quoteToResponse(updated), nil
}

// onPaid commits the quote's material and opens the receivable.
func (s *statusService) onPaid(tx *gorm.DB, quote *model.Quote) error {
	if quote.TotalAreaM2.IsPositive() {
		if err := s.inventory.ConsumeTx(tx, quote.ID, quote.TotalAreaM2); err != nil {
			return err
		}
	}
	rec := &model.FinancialRecord{
		QuoteID: quote.ID,
		Amount:  quote.FinalValue,
	}
	return s.financialRepo.CreateTx(tx, rec)
}

// onUnpaid rewinds a post-payment quote: puts the outstanding material back
// (as a restoration on cancel, a reversal on reopen) and closes the
// receivable.
func (s *statusService) onUnpaid(tx *gorm.DB, quote *model.Quote, movementType string) error {
	var err error
	if movementType == model.MovementReversal {
		err = s.inventory.ReverseTx(tx, quote.ID)
	} else {
		err = s.inventory.RestoreTx(tx, quote.ID)
	}
	if err != nil {
		return err
	}
	if err := s.financialRepo.DeleteByQuoteTx(tx, quote.ID); err != nil {
		return err
	}
	log.Info().
		Str("quote_id", quote.ID.String()).
		Str("movement_type", movementType).
		Msg("payment rewound, receivable closed")
	return nil
}

// authorize enforces the role gates:
//   - admins may perform any valid transition;
//   - staff may move quotes between the production statuses;
//   - customers may only cancel their own pending quote.
func (s *statusService) authorize(actor Actor, quote *model.Quote, to string) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleStaff:
		if isPostPayment(quote.Status) && (to == model.StatusInProduction || to == model.StatusFinished) {
			return nil
		}
		return ErrUnauthorized
	case model.RoleCustomer:
		if quote.Status == model.StatusPending && to == model.StatusCancelled &&
			quote.CustomerID != nil && *quote.CustomerID == actor.ID {
			return nil
		}
		return ErrUnauthorized
	}
	return ErrUnauthorized
}
