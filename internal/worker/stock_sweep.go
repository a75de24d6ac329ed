package worker

// stock_sweep.go
// Background goroutine that periodically totals available material and mails
// the shop when it drops below the configured threshold. One email per
// crossing — it re-arms only after stock recovers above the threshold.

import (
	"context"
	"fmt"
	"time"

	"calhaforte/internal/infra"
	"calhaforte/internal/service"

	"github.com/rs/zerolog/log"
)

const sweepTickInterval = 10 * time.Minute

// StockSweepConfig holds all dependencies for the sweep goroutine.
type StockSweepConfig struct {
	Inventory  service.InventoryService
	Mailer     *infra.Mailer
	AlertEmail string
}

// StartStockSweep launches a background goroutine that ticks every 10min and
// checks total stock against the low-stock threshold. It respects the context
// for graceful shutdown.
func StartStockSweep(ctx context.Context, cfg StockSweepConfig) {
	go func() {
		ticker := time.NewTicker(sweepTickInterval)
		defer ticker.Stop()

		log.Info().Msg("stock_sweep: started")

		alerted := false
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stock_sweep: shutting down")
				return
			case <-ticker.C:
				alerted = sweep(ctx, cfg, alerted)
			}
		}
	}()
}

func sweep(ctx context.Context, cfg StockSweepConfig, alerted bool) bool {
	alert, err := cfg.Inventory.StockAlert(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stock_sweep: failed to total stock")
		return alerted
	}

	if !alert.LowStock {
		return false // re-arm once stock recovers
	}
	if alerted {
		return true // already notified for this crossing
	}

	if cfg.AlertEmail == "" {
		log.Warn().Msg("stock_sweep: low stock but no alert email configured")
		return true
	}

	subject := "Low raw-material stock"
	body := fmt.Sprintf(
		"Total available material is %s m², below the %s m² threshold.\nAdd batches before accepting more paid quotes.",
		alert.TotalAvailableM2.String(), alert.ThresholdM2.String(),
	)
	if err := cfg.Mailer.Send(cfg.AlertEmail, subject, body); err != nil {
		log.Error().Err(err).Msg("stock_sweep: failed to send low-stock email")
		return false // retry on next tick
	}

	log.Warn().
		Str("total_m2", alert.TotalAvailableM2.String()).
		Str("threshold_m2", alert.ThresholdM2.String()).
		Msg("stock_sweep: low-stock alert sent")
	return true
}
