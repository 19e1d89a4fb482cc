package rates

import (
	"context"
	"errors"
	"fmt"

	"hallbook/internal/shared/constants"
	"hallbook/pkg/cache"

	"gorm.io/gorm"
)

var ErrRateNotFound = errors.New("rate not found")

type Service interface {
	ListRates(ctx context.Context) ([]RateResponse, error)
	GetRate(id string) (*RateResponse, error)
	GetRateModel(id string) (*Rate, error)
	CreateRate(ctx context.Context, req CreateRateRequest) (*RateResponse, error)
}

type CreateRateRequest struct {
	ID          string  `json:"id" binding:"required,min=1,max=64"`
	Description string  `json:"description" binding:"required,max=255"`
	HourlyRate  float64 `json:"hourly_rate" binding:"min=0"`
	DiscountTiers []struct {
		ThresholdHours float64 `json:"threshold_hours" binding:"min=0"`
		Value          float64 `json:"value" binding:"min=0"`
	} `json:"discount_tiers"`
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{repo: repo, cacheService: cacheService}
}

// ListRates serves the admin rate picker, cached; rates change a few times a
// year at most.
func (s *service) ListRates(ctx context.Context) ([]RateResponse, error) {
	var responses []RateResponse
	err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_RATES_LIST, constants.TTL_RATES, func() (interface{}, error) {
		rates, err := s.repo.GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list rates: %w", err)
		}

		result := make([]RateResponse, len(rates))
		for i, rate := range rates {
			result[i] = rate.ToResponse()
		}
		return result, nil
	}, &responses)
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *service) GetRate(id string) (*RateResponse, error) {
	rate, err := s.GetRateModel(id)
	if err != nil {
		return nil, err
	}
	response := rate.ToResponse()
	return &response, nil
}

// GetRateModel returns the full rate row with ordered tiers, for callers
// that need the tier list rather than the API shape.
func (s *service) GetRateModel(id string) (*Rate, error) {
	rate, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateNotFound
		}
		return nil, fmt.Errorf("failed to get rate: %w", err)
	}
	return rate, nil
}

func (s *service) CreateRate(ctx context.Context, req CreateRateRequest) (*RateResponse, error) {
	rate := &Rate{
		ID:          req.ID,
		Description: req.Description,
		HourlyRate:  req.HourlyRate,
	}
	for i, tier := range req.DiscountTiers {
		rate.DiscountTiers = append(rate.DiscountTiers, DiscountTier{
			Position:       i,
			ThresholdHours: tier.ThresholdHours,
			Kind:           "flat",
			Value:          tier.Value,
		})
	}

	if err := s.repo.Create(rate); err != nil {
		return nil, fmt.Errorf("failed to create rate: %w", err)
	}

	// Best effort; the list cache expires on its own anyway.
	_ = s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_RATES_ALL)

	response := rate.ToResponse()
	return &response, nil
}
