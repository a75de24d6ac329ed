package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"calhaforte/internal/config"
	"calhaforte/internal/dto"
	"calhaforte/internal/model"
	"calhaforte/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	settingsCacheKey = "settings:current"
	settingsCacheTTL = 4 * time.Hour
)

// SettingsService serves the shop-configurable business values with a redis
// read-through cache. Display reads tolerate staleness; anything
// contract-bearing (price snapshots) is copied onto the quote at submission,
// so a stale cache never rewrites history.
type SettingsService interface {
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, req dto.UpdateSettingsRequest) (*model.Settings, error)
	// Seed creates the settings row on first boot from config defaults.
	Seed(ctx context.Context, cfg *config.Config) error
}

type settingsService struct {
	repo repository.SettingsRepository
	rdb  *redis.Client
}

func NewSettingsService(repo repository.SettingsRepository, rdb *redis.Client) SettingsService {
	return &settingsService{repo: repo, rdb: rdb}
}

func (s *settingsService) Get(ctx context.Context) (*model.Settings, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, settingsCacheKey).Bytes(); err == nil {
			var st model.Settings
			if jsonErr := json.Unmarshal(cached, &st); jsonErr == nil {
				return &st, nil
			}
		}
	}

	st, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if b, jsonErr := json.Marshal(st); jsonErr == nil {
			_ = s.rdb.Set(ctx, settingsCacheKey, b, settingsCacheTTL).Err()
		}
	}
	return st, nil
}

func (s *settingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (*model.Settings, error) {
	st, err := s.repo.Get(ctx)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.PricePerM2 != nil {
		if !req.PricePerM2.IsPositive() {
			return nil, ErrInvalidInput
		}
		st.PricePerM2 = *req.PricePerM2
	}
	if req.MaxWidthCm != nil {
		if !req.MaxWidthCm.IsPositive() {
			return nil, ErrInvalidInput
		}
		st.MaxWidthCm = *req.MaxWidthCm
	}
	if req.LowStockThresholdM2 != nil {
		if req.LowStockThresholdM2.IsNegative() {
			return nil, ErrInvalidInput
		}
		st.LowStockThresholdM2 = *req.LowStockThresholdM2
	}

	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return st, nil
}

func (s *settingsService) Seed(ctx context.Context, cfg *config.Config) error {
	_, err := s.repo.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	price, err := decimal.NewFromString(cfg.DefaultPricePerM2)
	if err != nil {
		return err
	}
	maxWidth, err := decimal.NewFromString(cfg.DefaultMaxWidthCm)
	if err != nil {
		return err
	}
	lowStock, err := decimal.NewFromString(cfg.DefaultLowStockM2)
	if err != nil {
		return err
	}

	st := &model.Settings{
		ID:                  1,
		PricePerM2:          price,
		MaxWidthCm:          maxWidth,
		LowStockThresholdM2: lowStock,
	}
	log.Info().
		Str("price_per_m2", price.String()).
		Str("max_width_cm", maxWidth.String()).
		Msg("seeding settings row from config defaults")
	return s.repo.Save(ctx, st)
}

func (s *settingsService) invalidate(ctx context.Context) {
	if s.rdb != nil {
		_ = s.rdb.Del(ctx, settingsCacheKey).Err()
	}
}
