package memory

import (
	"context"

	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// MovementRepository libro de movimientos en memoria: solo inserción y lectura.
type MovementRepository struct {
	store *Store
	tx    *tx
}

// NewMovementRepository crea el repositorio fuera de transacción.
func NewMovementRepository(store *Store) *MovementRepository {
	return &MovementRepository{store: store}
}

var _ repository.MovementRepository = (*MovementRepository)(nil)

func cloneMovement(m *entity.Movement) *entity.Movement {
	c := *m
	if m.UnitCost != nil {
		u := *m.UnitCost
		c.UnitCost = &u
	}
	return &c
}

// Append asigna seq y persiste. Replica las restricciones de la tabla:
// el ítem debe existir y new_quantity no puede ser negativa.
func (r *MovementRepository) Append(ctx context.Context, m *entity.Movement) error {
	return r.store.write(r.tx, func() error {
		if _, ok := r.store.items[m.ItemID]; !ok {
			return domain.ErrNotFound
		}
		if m.NewQuantity < 0 || m.PreviousQuantity < 0 {
			return domain.ErrNegativeStock
		}
		if _, ok := r.store.movByID[m.ID]; ok {
			return domain.ErrDuplicate
		}
		r.store.seq++
		m.Seq = r.store.seq
		stored := cloneMovement(m)
		r.store.movements[m.ItemID] = append(r.store.movements[m.ItemID], stored)
		r.store.movByID[m.ID] = stored
		r.tx.onRollback(func() {
			list := r.store.movements[m.ItemID]
			r.store.movements[m.ItemID] = list[:len(list)-1]
			delete(r.store.movByID, m.ID)
		})
		return nil
	})
}

func (r *MovementRepository) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	r.store.read(r.tx, func() {
		if m, ok := r.store.movByID[id]; ok {
			out = cloneMovement(m)
		}
	})
	return out, nil
}

func (r *MovementRepository) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Movement, error) {
	var list []*entity.Movement
	r.store.read(r.tx, func() {
		page := paginate(r.store.movements[itemID], limit, offset)
		list = make([]*entity.Movement, 0, len(page))
		for _, m := range page {
			list = append(list, cloneMovement(m))
		}
	})
	return list, nil
}

func (r *MovementRepository) ListAllByItem(ctx context.Context, itemID string) ([]*entity.Movement, error) {
	return r.ListByItem(ctx, itemID, 0, 0)
}

func (r *MovementRepository) CountByItem(ctx context.Context, itemID string) (int, error) {
	var n int
	r.store.read(r.tx, func() {
		n = len(r.store.movements[itemID])
	})
	return n, nil
}
