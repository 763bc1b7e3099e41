package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dkruglov/family_budget_app/internal/apperrors"
	portsrepo "github.com/dkruglov/family_budget_app/internal/core/ports/repositories"
	portssvc "github.com/dkruglov/family_budget_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// rateService resolves currency pairs through a fallback chain: a TTL-bounded
// in-memory cache, then a direct-pair lookup, then a cross rate through a
// bridge currency, then the last known cached value. An exhausted chain
// yields ErrRateUnavailable; there is deliberately no 1:1 fallback, so a
// missing rate surfaces instead of misrepresenting a figure.
type rateService struct {
	BaseService
	rateRepo     portsrepo.RateRepositoryFacade
	bridgeCode   string
	cacheTTL     time.Duration
	fetchTimeout time.Duration

	mu    sync.RWMutex
	cache map[string]cachedRate
}

type cachedRate struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

// RateServiceOption is a functional option for configuring the rate service
type RateServiceOption func(*rateService)

// WithBridgeCurrency sets the currency used for cross-rate fallback.
func WithBridgeCurrency(code string) RateServiceOption {
	return func(s *rateService) {
		s.bridgeCode = strings.ToUpper(code)
	}
}

// WithRateCacheTTL sets how long a cached rate counts as fresh.
func WithRateCacheTTL(ttl time.Duration) RateServiceOption {
	return func(s *rateService) {
		s.cacheTTL = ttl
	}
}

// WithRateFetchTimeout bounds each repository lookup so a slow rate store
// never stalls a budget computation beyond the one conversion it feeds.
func WithRateFetchTimeout(timeout time.Duration) RateServiceOption {
	return func(s *rateService) {
		s.fetchTimeout = timeout
	}
}

// NewRateService creates a new rate service with the provided options.
func NewRateService(rateRepo portsrepo.RateRepositoryFacade, options ...RateServiceOption) portssvc.RateSvcFacade {
	svc := &rateService{
		rateRepo:     rateRepo,
		bridgeCode:   "USD",
		cacheTTL:     time.Hour,
		fetchTimeout: 5 * time.Second,
		cache:        make(map[string]cachedRate),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.RateSvcFacade = (*rateService)(nil)

// GetRate returns the from->to conversion rate effective at asOf.
func (s *rateService) GetRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (decimal.Decimal, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if len(fromCode) != 3 || len(toCode) != 3 {
		return decimal.Zero, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	if fromCode == toCode {
		return decimal.NewFromInt(1), nil
	}

	key := fromCode + "/" + toCode
	if rate, ok := s.freshCached(key); ok {
		return rate, nil
	}

	rate, err := s.lookup(ctx, fromCode, toCode, asOf)
	if err == nil {
		s.store(key, rate)
		return rate, nil
	}

	// Last resort: whatever made the lookup fail, a stale cache entry beats
	// no answer at all, but is logged as such.
	if stale, ok := s.staleCached(key); ok {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Rate lookup failed, serving stale exchange rate",
				slog.String("pair", key))
		} else {
			s.LogDebug(ctx, "Serving stale exchange rate",
				slog.String("pair", key))
		}
		return stale, nil
	}

	if errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s", apperrors.ErrRateUnavailable, key)
	}
	return decimal.Zero, fmt.Errorf("%w: lookup failed for %s: %w", apperrors.ErrRateUnavailable, key, err)
}

// SaveRate records a rate for the pair effective on the given date. The
// cached entries for the pair and its inverse are evicted so the next lookup
// reads the updated store.
func (s *rateService) SaveRate(ctx context.Context, fromCode, toCode string, rate decimal.Decimal, dateEffective time.Time) error {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if len(fromCode) != 3 || len(toCode) != 3 {
		return fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	if fromCode == toCode {
		return fmt.Errorf("%w: from and to currencies cannot be the same", apperrors.ErrValidation)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}

	saveCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	if err := s.rateRepo.SaveRate(saveCtx, fromCode, toCode, rate, dateEffective); err != nil {
		return fmt.Errorf("failed to save rate %s/%s: %w", fromCode, toCode, err)
	}

	s.evict(fromCode + "/" + toCode)
	s.evict(toCode + "/" + fromCode)
	s.LogInfo(ctx, "Exchange rate saved",
		slog.String("pair", fromCode+"/"+toCode),
		slog.String("date_effective", dateEffective.Format("2006-01-02")))
	return nil
}

// lookup tries the direct pair, then a cross rate through the bridge
// currency. Each repository call is individually time-bounded.
func (s *rateService) lookup(ctx context.Context, fromCode, toCode string, asOf time.Time) (decimal.Decimal, error) {
	direct, err := s.findRate(ctx, fromCode, toCode, asOf)
	if err == nil {
		return direct, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to fetch rate %s/%s: %w", fromCode, toCode, err)
	}

	if s.bridgeCode == "" || fromCode == s.bridgeCode || toCode == s.bridgeCode {
		return decimal.Zero, apperrors.ErrNotFound
	}

	toBridge, err := s.findRate(ctx, fromCode, s.bridgeCode, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to fetch bridge rate %s/%s: %w", fromCode, s.bridgeCode, err)
	}
	fromBridge, err := s.findRate(ctx, s.bridgeCode, toCode, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to fetch bridge rate %s/%s: %w", s.bridgeCode, toCode, err)
	}
	return toBridge.Mul(fromBridge), nil
}

func (s *rateService) findRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	return s.rateRepo.FindRate(ctx, fromCode, toCode, asOf)
}

func (s *rateService) freshCached(key string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	if !ok || time.Since(entry.fetchedAt) > s.cacheTTL {
		return decimal.Zero, false
	}
	return entry.rate, true
}

func (s *rateService) staleCached(key string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	if !ok {
		return decimal.Zero, false
	}
	return entry.rate, true
}

func (s *rateService) store(key string, rate decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cachedRate{rate: rate, fetchedAt: time.Now()}
}

func (s *rateService) evict(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, key)
}
