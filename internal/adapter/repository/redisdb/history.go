package redisdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"credapp/internal/domain/history"

	"github.com/redis/go-redis/v9"
)

var _ history.Store = (*HistoryStore)(nil)

const historyKeyPrefix = "history:"

// HistoryStore keeps each session's entries in a Redis list. Every read or
// write pushes the expiry back by ttl.
type HistoryStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewHistoryStore(rdb *redis.Client, ttl time.Duration) *HistoryStore {
	return &HistoryStore{rdb: rdb, ttl: ttl}
}

func historyKey(sessionID string) string { return historyKeyPrefix + sessionID }

func (s *HistoryStore) Append(ctx context.Context, e history.Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := historyKey(e.SessionID)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, payload)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

func (s *HistoryStore) List(ctx context.Context, sessionID string) ([]history.Entry, error) {
	key := historyKey(sessionID)
	raw, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]history.Entry, 0, len(raw))
	for i, v := range raw {
		var e history.Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("history entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	if len(raw) > 0 {
		if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *HistoryStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, historyKey(sessionID)).Err()
}
