package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

const defaultIdempotencyPrefix = "dotacion:idempotency:"

var _ repository.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore claves Idempotency-Key compartidas entre réplicas.
type IdempotencyStore struct {
	client    goredis.UniversalClient
	keyPrefix string
}

// NewIdempotencyStore construye el store sobre un cliente existente.
func NewIdempotencyStore(client goredis.UniversalClient, keyPrefix string) *IdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultIdempotencyPrefix
	}
	return &IdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed SET NX con TTL en una sola operación atómica.
func (s *IdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("marcar idempotency key: %w", err)
	}
	return ok, nil
}

// Forget libera la clave para permitir el reintento.
func (s *IdempotencyStore) Forget(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("liberar idempotency key: %w", err)
	}
	return nil
}
