package client

import (
	"context"
	"errors"
	"time"

	domain "credapp/internal/domain/client"
	"credapp/internal/infrastructure/logging"
	"credapp/internal/infrastructure/metrics"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const statsCacheKey = "institution"

// Cache is the JSON document cache the dashboard is kept in.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Usecase struct {
	repo     domain.Repository
	cache    Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewUsecase wires the client registry. cache and m may be nil; a nil cache
// or a zero ttl computes the dashboard on every call.
func NewUsecase(r domain.Repository, cache Cache, ttl time.Duration, m *metrics.Metrics) *Usecase {
	return &Usecase{
		repo:     r,
		cache:    cache,
		cacheTTL: ttl,
		metrics:  m,
		log:      logging.Component(log.Logger, "clients"),
	}
}

func (u *Usecase) List(ctx context.Context, in ListInput) (*PageDTO, error) {
	q, err := domain.NewQuery(in.Filter, domain.Status(in.Status), in.OrderBy, in.Direction, in.Page, in.Limit)
	if err != nil {
		return nil, err
	}
	clients, total, err := u.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &PageDTO{Page: q.Page, Limit: q.Limit, Total: total, Clients: clients}, nil
}

func (u *Usecase) Get(ctx context.Context, id int64) (*domain.Client, error) {
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (u *Usecase) Random(ctx context.Context) (*ApplicantDTO, error) {
	c, err := u.repo.Random(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return toApplicant(c), nil
}

// RandomClient is Random without the DTO projection.
func (u *Usecase) RandomClient(ctx context.Context) (*domain.Client, error) {
	c, err := u.repo.Random(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (u *Usecase) Defaulters(ctx context.Context) ([]DefaulterDTO, error) {
	clients, err := u.repo.Defaulters(ctx, domain.MaxDefaulters)
	if err != nil {
		return nil, err
	}
	out := make([]DefaulterDTO, 0, len(clients))
	for _, c := range clients {
		out = append(out, toDefaulter(c))
	}
	return out, nil
}

// InstitutionStats returns the dashboard, from cache when fresh.
func (u *Usecase) InstitutionStats(ctx context.Context) (*StatsDTO, error) {
	if u.cacheEnabled() {
		var cached StatsDTO
		hit, err := u.cache.Get(ctx, statsCacheKey, &cached)
		if err != nil {
			u.log.Warn().Err(err).Msg("stats cache read failed")
		}
		u.metrics.IncrementStatsCache(hit)
		if hit {
			return &cached, nil
		}
	}

	stats, err := u.computeStats(ctx)
	if err != nil {
		return nil, err
	}

	if u.cacheEnabled() {
		if err := u.cache.Set(ctx, statsCacheKey, stats, u.cacheTTL); err != nil {
			u.log.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return stats, nil
}

// InvalidateStats drops the cached dashboard.
func (u *Usecase) InvalidateStats(ctx context.Context) error {
	if u.cache == nil {
		return nil
	}
	return u.cache.Delete(ctx, statsCacheKey)
}

func (u *Usecase) cacheEnabled() bool { return u.cache != nil && u.cacheTTL > 0 }

func (u *Usecase) computeStats(ctx context.Context) (*StatsDTO, error) {
	var (
		ind    domain.Indicators
		byJob  []domain.OccupationScore
		byAge  []domain.AgeBandCount
		result StatsDTO
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ind, err = u.repo.Indicators(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		byJob, err = u.repo.ScoreByOccupation(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		byAge, err = u.repo.CountByAgeBand(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Indicators = IndicatorsDTO{
		TotalClients:  ind.TotalClients,
		AverageScore:  round2(ind.AverageScore),
		AverageIncome: round2(ind.AverageIncome),
	}
	if ind.TotalClients > 0 {
		pct := decimal.NewFromInt(ind.Defaulters).
			Mul(decimal.NewFromInt(100)).
			DivRound(decimal.NewFromInt(ind.TotalClients), 2)
		result.Indicators.DefaulterPercent = pct.InexactFloat64()
	}
	result.ScoreByOccupation = make([]domain.OccupationScore, 0, len(byJob))
	for _, o := range byJob {
		o.AverageScore = round2(o.AverageScore)
		result.ScoreByOccupation = append(result.ScoreByOccupation, o)
	}
	result.AgeBands = byAge
	result.PaymentStatus = PaymentStatusDTO{
		Compliant:  ind.TotalClients - ind.Defaulters,
		Defaulters: ind.Defaulters,
	}
	return &result, nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
