package uow

import (
	"context"

	"credapp/internal/domain/client"
)

type Repos struct {
	Clients client.Repository
}

type UnitOfWork interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
