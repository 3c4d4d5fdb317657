package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// anonymousSession stands in for requests made without Cr-Session-Id.
const anonymousSession = "anon"

func buildKey(method, path, sessionID, requestID string) string {
	if sessionID == "" {
		sessionID = anonymousSession
	}
	return "idemp:cr:" + strings.ToLower(method) + ":" + path + ":" + sessionID + ":" + requestID
}

// validReqID accepts lowercase request ids as 32 hex characters or as a
// hyphenated RFC 4122 UUID of version 1 to 5.
func validReqID(id string) bool {
	if id != strings.ToLower(id) {
		return false
	}
	u, err := uuid.Parse(id)
	switch {
	case err != nil:
		return false
	case len(id) == 32:
		return true
	case len(id) == 36:
		return u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 5
	}
	return false
}

// parseRequestAt reads Cr-Request-At as epoch seconds, epoch milliseconds or
// a zoned RFC3339 timestamp. Values above 1e12 are taken as milliseconds.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

// provisionalSet claims key for the in-flight request; false means another
// request holds it.
func provisionalSet(ctx context.Context, rdb *redis.Client, key string, entry idempEntry) (bool, error) {
	payload, _ := json.Marshal(entry)
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func loadEntry(ctx context.Context, rdb *redis.Client, key string) (idempEntry, error) {
	var e idempEntry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(v, &e)
	return e, err
}

func saveFinal(ctx context.Context, rdb *redis.Client, key string, entry idempEntry, ttl time.Duration) error {
	payload, _ := json.Marshal(entry)
	return rdb.Set(ctx, key, payload, ttl).Err()
}

func release(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err()
}
