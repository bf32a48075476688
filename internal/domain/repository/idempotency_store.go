package repository

import (
	"context"
	"time"
)

// IdempotencyStore registra claves Idempotency-Key ya procesadas.
type IdempotencyStore interface {
	// MarkProcessed devuelve true si la clave se registró por primera vez.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Forget libera la clave (la operación falló y puede reintentarse).
	Forget(ctx context.Context, key string) error
}
