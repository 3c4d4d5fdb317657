package client

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "credapp/internal/domain/client"
	"credapp/internal/infrastructure/cache"
	"credapp/internal/infrastructure/metrics"
	"credapp/internal/testutil/clientmock"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func statsRepo(calls *int) *clientmock.Repo {
	return &clientmock.Repo{
		IndicatorsFn: func(ctx context.Context) (domain.Indicators, error) {
			*calls++
			return domain.Indicators{TotalClients: 3, Defaulters: 1, AverageScore: 616.666666, AverageIncome: 48000.004}, nil
		},
		ScoreByOccupationFn: func(ctx context.Context) ([]domain.OccupationScore, error) {
			return []domain.OccupationScore{{Occupation: "Dev", AverageScore: 712.3456}}, nil
		},
		CountByAgeBandFn: func(ctx context.Context) ([]domain.AgeBandCount, error) {
			return []domain.AgeBandCount{{Band: "0-25", Clients: 2}, {Band: "26-35", Clients: 1}}, nil
		},
	}
}

func TestList_AppliesDefaults(t *testing.T) {
	var got domain.Query
	uc := NewUsecase(&clientmock.Repo{
		ListFn: func(ctx context.Context, q domain.Query) ([]domain.Client, int64, error) {
			got = q
			return []domain.Client{{ID: 1}}, 42, nil
		},
	}, nil, 0, nil)

	page, err := uc.List(context.Background(), ListInput{Filter: " ana "})
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if page.Page != 1 || page.Limit != domain.DefaultLimit || page.Total != 42 || len(page.Clients) != 1 {
		t.Fatalf("page = %+v", page)
	}
	if got.Filter != "ana" || got.OrderBy != domain.DefaultOrderBy || got.Ascending || got.Status != domain.StatusAll {
		t.Fatalf("query = %+v", got)
	}
}

func TestList_InvalidQuery(t *testing.T) {
	uc := NewUsecase(&clientmock.Repo{
		ListFn: func(ctx context.Context, q domain.Query) ([]domain.Client, int64, error) {
			t.Fatalf("List must not reach the repository")
			return nil, 0, nil
		},
	}, nil, 0, nil)

	for _, in := range []ListInput{
		{OrderBy: "senha"},
		{Status: "quase"},
		{Direction: "up"},
		{Limit: 101},
		{Page: -1},
	} {
		if _, err := uc.List(context.Background(), in); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Fatalf("List(%+v) err = %v, want ErrInvalidQuery", in, err)
		}
	}
}

func TestGet_MapsNotFound(t *testing.T) {
	uc := NewUsecase(&clientmock.Repo{
		GetByIDFn: func(ctx context.Context, id int64) (*domain.Client, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}, nil, 0, nil)

	if _, err := uc.Get(context.Background(), 9); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get err = %v, want ErrNotFound", err)
	}
}

func TestGet_PassesOtherErrors(t *testing.T) {
	boom := errors.New("db down")
	uc := NewUsecase(&clientmock.Repo{
		GetByIDFn: func(ctx context.Context, id int64) (*domain.Client, error) { return nil, boom },
	}, nil, 0, nil)

	if _, err := uc.Get(context.Background(), 9); !errors.Is(err, boom) {
		t.Fatalf("Get err = %v", err)
	}
}

func TestRandom_ProjectsApplicant(t *testing.T) {
	uc := NewUsecase(&clientmock.Repo{
		RandomFn: func(ctx context.Context) (*domain.Client, error) {
			return &domain.Client{ID: 5, Name: "Ana", NationalID: "123", Age: 30, Occupation: "Dev", AnnualSalary: 60000, Email: "a@x"}, nil
		},
	}, nil, 0, nil)

	a, err := uc.Random(context.Background())
	if err != nil {
		t.Fatalf("Random err: %v", err)
	}
	want := ApplicantDTO{ID: 5, Name: "Ana", NationalID: "123", Age: 30, Occupation: "Dev", AnnualSalary: 60000}
	if *a != want {
		t.Fatalf("Random = %+v, want %+v", *a, want)
	}
}

func TestRandom_EmptyRegistry(t *testing.T) {
	uc := NewUsecase(&clientmock.Repo{
		RandomFn: func(ctx context.Context) (*domain.Client, error) { return nil, gorm.ErrRecordNotFound },
	}, nil, 0, nil)

	if _, err := uc.Random(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Random err = %v", err)
	}
	if _, err := uc.RandomClient(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("RandomClient err = %v", err)
	}
}

func TestDefaulters(t *testing.T) {
	var gotLimit int
	uc := NewUsecase(&clientmock.Repo{
		DefaultersFn: func(ctx context.Context, limit int) ([]domain.Client, error) {
			gotLimit = limit
			return []domain.Client{{ID: 2, Name: "Bruno", ScoreLabel: "Ruim", ScoreNumeric: 450, MonthsLate: 7, TotalDebt: 1200.5}}, nil
		},
	}, nil, 0, nil)

	out, err := uc.Defaulters(context.Background())
	if err != nil {
		t.Fatalf("Defaulters err: %v", err)
	}
	if gotLimit != domain.MaxDefaulters {
		t.Fatalf("limit = %d", gotLimit)
	}
	if len(out) != 1 || out[0].MonthsLate != 7 || out[0].ScoreNumeric != 450 || out[0].TotalDebt != 1200.5 {
		t.Fatalf("out = %+v", out)
	}
}

func TestInstitutionStats_Computes(t *testing.T) {
	calls := 0
	uc := NewUsecase(statsRepo(&calls), nil, 0, nil)

	s, err := uc.InstitutionStats(context.Background())
	if err != nil {
		t.Fatalf("InstitutionStats err: %v", err)
	}
	if s.Indicators.TotalClients != 3 || s.Indicators.AverageScore != 616.67 || s.Indicators.AverageIncome != 48000 {
		t.Fatalf("indicators = %+v", s.Indicators)
	}
	if s.Indicators.DefaulterPercent != 33.33 {
		t.Fatalf("defaulter percent = %v", s.Indicators.DefaulterPercent)
	}
	if s.PaymentStatus != (PaymentStatusDTO{Compliant: 2, Defaulters: 1}) {
		t.Fatalf("payment = %+v", s.PaymentStatus)
	}
	if len(s.ScoreByOccupation) != 1 || s.ScoreByOccupation[0].AverageScore != 712.35 {
		t.Fatalf("by occupation = %+v", s.ScoreByOccupation)
	}
	if len(s.AgeBands) != 2 {
		t.Fatalf("age bands = %+v", s.AgeBands)
	}
}

func TestInstitutionStats_EmptyRegistry(t *testing.T) {
	uc := NewUsecase(&clientmock.Repo{
		IndicatorsFn: func(ctx context.Context) (domain.Indicators, error) { return domain.Indicators{}, nil },
		ScoreByOccupationFn: func(ctx context.Context) ([]domain.OccupationScore, error) {
			return nil, nil
		},
		CountByAgeBandFn: func(ctx context.Context) ([]domain.AgeBandCount, error) { return nil, nil },
	}, nil, 0, nil)

	s, err := uc.InstitutionStats(context.Background())
	if err != nil {
		t.Fatalf("InstitutionStats err: %v", err)
	}
	if s.Indicators != (IndicatorsDTO{}) || s.PaymentStatus != (PaymentStatusDTO{}) {
		t.Fatalf("want zeros, got %+v", s)
	}
	if s.ScoreByOccupation == nil {
		t.Fatalf("score_por_profissao must encode as an empty list")
	}
}

func TestInstitutionStats_AggregationError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	repo := statsRepo(&calls)
	repo.CountByAgeBandFn = func(ctx context.Context) ([]domain.AgeBandCount, error) { return nil, boom }

	if _, err := NewUsecase(repo, nil, 0, nil).InstitutionStats(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestInstitutionStats_Cached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	calls := 0
	uc := NewUsecase(statsRepo(&calls), cache.NewJSONCache(rdb, "stats:"), time.Minute, m)
	ctx := context.Background()

	first, err := uc.InstitutionStats(ctx)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := uc.InstitutionStats(ctx)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("repository hit %d times, want 1", calls)
	}
	if second.Indicators != first.Indicators {
		t.Fatalf("cached indicators differ: %+v vs %+v", second.Indicators, first.Indicators)
	}
	if !mr.Exists("stats:" + statsCacheKey) {
		t.Fatalf("stats not stored under prefix")
	}
	if got := testutil.ToFloat64(m.StatsCache.WithLabelValues("hit")); got != 1 {
		t.Fatalf("hits = %v", got)
	}
	if got := testutil.ToFloat64(m.StatsCache.WithLabelValues("miss")); got != 1 {
		t.Fatalf("misses = %v", got)
	}

	if err := uc.InvalidateStats(ctx); err != nil {
		t.Fatalf("InvalidateStats: %v", err)
	}
	if _, err := uc.InstitutionStats(ctx); err != nil {
		t.Fatalf("after invalidate: %v", err)
	}
	if calls != 2 {
		t.Fatalf("repository hit %d times after invalidate, want 2", calls)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := uc.InstitutionStats(ctx); err != nil {
		t.Fatalf("after expiry: %v", err)
	}
	if calls != 3 {
		t.Fatalf("repository hit %d times after expiry, want 3", calls)
	}
}

func TestInstitutionStats_CacheDownStillServes(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	calls := 0
	uc := NewUsecase(statsRepo(&calls), cache.NewJSONCache(rdb, "stats:"), time.Minute, nil)
	if _, err := uc.InstitutionStats(context.Background()); err != nil {
		t.Fatalf("InstitutionStats err: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
}
