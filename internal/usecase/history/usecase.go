package history

import (
	"context"
	"time"

	domain "credapp/internal/domain/history"
	"credapp/pkg/id"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Usecase is the session-scoped credit history.
type Usecase struct {
	store  domain.Store
	budget decimal.Decimal
	now    func() time.Time
}

func NewUsecase(s domain.Store, budget decimal.Decimal) *Usecase {
	return &Usecase{store: s, budget: budget, now: time.Now}
}

// NewSession issues a fresh session id.
func (u *Usecase) NewSession() string { return id.NewID32() }

// Record stamps e with an id and the current time and appends it to its
// session.
func (u *Usecase) Record(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	if err := domain.ValidateSession(e.SessionID); err != nil {
		return domain.Entry{}, err
	}
	e.ID = uuid.NewString()
	e.CreatedAt = u.now().UTC()
	if err := u.store.Append(ctx, e); err != nil {
		return domain.Entry{}, err
	}
	return e, nil
}

// List returns the session's entries, oldest first, optionally keeping only
// the names that contain name.
func (u *Usecase) List(ctx context.Context, session, name string) ([]domain.Entry, error) {
	if err := domain.ValidateSession(session); err != nil {
		return nil, err
	}
	entries, err := u.store.List(ctx, session)
	if err != nil {
		return nil, err
	}
	return domain.FilterByName(entries, name), nil
}

func (u *Usecase) Clear(ctx context.Context, session string) error {
	if err := domain.ValidateSession(session); err != nil {
		return err
	}
	return u.store.Clear(ctx, session)
}

func (u *Usecase) Summary(ctx context.Context, session string) (domain.Summary, error) {
	if err := domain.ValidateSession(session); err != nil {
		return domain.Summary{}, err
	}
	entries, err := u.store.List(ctx, session)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(entries, u.budget), nil
}
