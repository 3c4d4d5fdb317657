package client

import "context"

type Repository interface {
	CreateBatch(ctx context.Context, clients []Client, batchSize int) error
	Count(ctx context.Context) (int64, error)

	List(ctx context.Context, q Query) ([]Client, int64, error)
	GetByID(ctx context.Context, id int64) (*Client, error)
	Random(ctx context.Context) (*Client, error)
	Defaulters(ctx context.Context, limit int) ([]Client, error)

	// aggregates
	Indicators(ctx context.Context) (Indicators, error)
	ScoreByOccupation(ctx context.Context) ([]OccupationScore, error)
	CountByAgeBand(ctx context.Context) ([]AgeBandCount, error)
}
