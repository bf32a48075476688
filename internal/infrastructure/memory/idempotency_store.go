package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// IdempotencyStore claves Idempotency-Key en memoria con expiración.
// Las entradas vencidas se sobrescriben al volver a marcarse.
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewIdempotencyStore crea el store vacío.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{entries: make(map[string]time.Time), now: time.Now}
}

var _ repository.IdempotencyStore = (*IdempotencyStore)(nil)

func (s *IdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if exp, ok := s.entries[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	// limpieza oportunista de claves vencidas
	if len(s.entries) > 1024 {
		for k, exp := range s.entries {
			if !now.Before(exp) {
				delete(s.entries, k)
			}
		}
	}
	return true, nil
}

func (s *IdempotencyStore) Forget(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// JobLocker lock local de proceso para el job de alertas cuando no hay Redis.
type JobLocker struct {
	mu sync.Mutex
}

// NewJobLocker crea el lock local.
func NewJobLocker() *JobLocker {
	return &JobLocker{}
}

// TryLock no bloquea: ok=false si otra ejecución del mismo proceso tiene el lock.
// El ttl no aplica en memoria; el lock vive hasta release.
func (l *JobLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if !l.mu.TryLock() {
		return nil, false, nil
	}
	return func(context.Context) error {
		l.mu.Unlock()
		return nil
	}, true, nil
}
