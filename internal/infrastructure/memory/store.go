// Package memory implementa los puertos de persistencia en memoria.
// Sirve para tests y despliegues de una sola instancia sin Postgres (STORAGE_DRIVER=memory).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// Store estado compartido de los repositorios en memoria.
// Una transacción retiene mu en exclusiva desde que empieza hasta el commit o el rollback,
// así que las lecturas fuera de tx solo ven estado confirmado.
type Store struct {
	mu sync.RWMutex

	items      map[string]*entity.Item
	movements  map[string][]*entity.Movement // por ítem, en orden de seq
	movByID    map[string]*entity.Movement
	deliveries []*entity.Delivery
	delByID    map[string]*entity.Delivery
	seq        int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		items:     make(map[string]*entity.Item),
		movements: make(map[string][]*entity.Movement),
		movByID:   make(map[string]*entity.Movement),
		delByID:   make(map[string]*entity.Delivery),
	}
}

// tx transacción en curso: guarda las operaciones inversas para el rollback.
type tx struct {
	undo []func()
}

func (t *tx) onRollback(fn func()) {
	if t != nil {
		t.undo = append(t.undo, fn)
	}
}

// write ejecuta fn en exclusiva. Dentro de una tx el lock ya está tomado.
func (s *Store) write(t *tx, fn func() error) error {
	if t == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn()
}

// read igual que write pero compartido; la tx lee sus propias escrituras sin bloquear.
func (s *Store) read(t *tx, fn func()) {
	if t == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn()
}

// TxRunner ejecuta fn en una transacción serializable. Mientras dura, nadie más lee
// ni escribe; si fn falla se deshacen sus escrituras en orden inverso antes de soltar el lock.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run implementa inventory.TxRunner.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	deliveryRepo repository.DeliveryRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t := &tx{}
	err := fn(
		&ItemRepository{store: r.store, tx: t},
		&MovementRepository{store: r.store, tx: t},
		&DeliveryRepository{store: r.store, tx: t},
	)
	if err != nil {
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
		return err
	}
	return nil
}
