package clientmock

import (
	"context"
	"errors"

	domain "credapp/internal/domain/client"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("clientmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset functions return errUnimplemented.
type Repo struct {
	CreateBatchFn       func(ctx context.Context, clients []domain.Client, batchSize int) error
	CountFn             func(ctx context.Context) (int64, error)
	ListFn              func(ctx context.Context, q domain.Query) ([]domain.Client, int64, error)
	GetByIDFn           func(ctx context.Context, id int64) (*domain.Client, error)
	RandomFn            func(ctx context.Context) (*domain.Client, error)
	DefaultersFn        func(ctx context.Context, limit int) ([]domain.Client, error)
	IndicatorsFn        func(ctx context.Context) (domain.Indicators, error)
	ScoreByOccupationFn func(ctx context.Context) ([]domain.OccupationScore, error)
	CountByAgeBandFn    func(ctx context.Context) ([]domain.AgeBandCount, error)
}

func (m *Repo) CreateBatch(ctx context.Context, clients []domain.Client, batchSize int) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, clients, batchSize)
	}
	return errUnimplemented
}

func (m *Repo) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, errUnimplemented
}

func (m *Repo) List(ctx context.Context, q domain.Query) ([]domain.Client, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, q)
	}
	return nil, 0, errUnimplemented
}

func (m *Repo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) Random(ctx context.Context) (*domain.Client, error) {
	if m.RandomFn != nil {
		return m.RandomFn(ctx)
	}
	return nil, errUnimplemented
}

func (m *Repo) Defaulters(ctx context.Context, limit int) ([]domain.Client, error) {
	if m.DefaultersFn != nil {
		return m.DefaultersFn(ctx, limit)
	}
	return nil, errUnimplemented
}

func (m *Repo) Indicators(ctx context.Context) (domain.Indicators, error) {
	if m.IndicatorsFn != nil {
		return m.IndicatorsFn(ctx)
	}
	return domain.Indicators{}, errUnimplemented
}

func (m *Repo) ScoreByOccupation(ctx context.Context) ([]domain.OccupationScore, error) {
	if m.ScoreByOccupationFn != nil {
		return m.ScoreByOccupationFn(ctx)
	}
	return nil, errUnimplemented
}

func (m *Repo) CountByAgeBand(ctx context.Context) ([]domain.AgeBandCount, error) {
	if m.CountByAgeBandFn != nil {
		return m.CountByAgeBandFn(ctx)
	}
	return nil, errUnimplemented
}
