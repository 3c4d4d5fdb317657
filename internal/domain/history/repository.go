package history

import "context"

// Store keeps entries per session, oldest first.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, sessionID string) ([]Entry, error)
	Clear(ctx context.Context, sessionID string) error
}
