package redis

import (
	"context"
	"fmt"
	"time"

	"casino-platform/pkg/apperror"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const lockRetryInterval = 50 * time.Millisecond

// unlockScript deletes the lock only when the caller still owns it, so
// a lock that expired and was re-acquired by another request is never
// released by the original holder.
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// GameLock implements ports.GameLocker using Redis SET NX. One lock
// key per user serializes actions on that user's active game;
// different users never contend. Acquisition retries until maxWait
// and then fails with a concurrency conflict rather than blocking.
type GameLock struct {
	client  *goredis.Client
	prefix  string
	ttl     time.Duration
	maxWait time.Duration
}

// NewGameLock creates a Redis-backed per-user game lock.
func NewGameLock(client *goredis.Client, ttl, maxWait time.Duration) *GameLock {
	return &GameLock{
		client:  client,
		prefix:  "gamelock:",
		ttl:     ttl,
		maxWait: maxWait,
	}
}

// Acquire takes the user's lock, waiting with bounded retries. The
// returned release function is safe to call exactly once via defer.
func (l *GameLock) Acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	key := l.prefix + userID.String()
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("acquire game lock: %w", err))
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, apperror.ErrConcurrencyConflict()
		}
		select {
		case <-ctx.Done():
			return nil, apperror.ErrLockTimeout(ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}

	release := func() {
		// Best-effort: the TTL reclaims the lock if this fails.
		_ = unlockScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}
	return release, nil
}
