package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
)

// JobLocker lock distribuido con redislock: una sola réplica ejecuta el job de alertas por ciclo.
type JobLocker struct {
	locker *redislock.Client
}

// NewJobLocker construye el locker sobre un cliente existente.
func NewJobLocker(client goredis.UniversalClient) *JobLocker {
	return &JobLocker{locker: redislock.New(client)}
}

// TryLock no reintenta: si otra réplica tiene el lock devuelve ok=false.
func (l *JobLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	lock, err := l.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("obtener lock %s: %w", key, err)
	}
	release := func(ctx context.Context) error {
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			// expiró el TTL antes de liberar
			return nil
		}
		return err
	}
	return release, true, nil
}
