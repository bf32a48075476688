package memory

import (
	"context"

	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// DeliveryRepository entregas en memoria: solo inserción y lectura.
type DeliveryRepository struct {
	store *Store
	tx    *tx
}

// NewDeliveryRepository crea el repositorio fuera de transacción.
func NewDeliveryRepository(store *Store) *DeliveryRepository {
	return &DeliveryRepository{store: store}
}

var _ repository.DeliveryRepository = (*DeliveryRepository)(nil)

func cloneDelivery(d *entity.Delivery) *entity.Delivery {
	c := *d
	if d.NextReplacementDate != nil {
		t := *d.NextReplacementDate
		c.NextReplacementDate = &t
	}
	return &c
}

// Create exige que el movimiento de salida exista y pertenezca al mismo ítem.
func (r *DeliveryRepository) Create(ctx context.Context, d *entity.Delivery) error {
	return r.store.write(r.tx, func() error {
		mov, ok := r.store.movByID[d.MovementID]
		if !ok || mov.ItemID != d.ItemID {
			return domain.ErrInvalidInput
		}
		if _, ok := r.store.delByID[d.ID]; ok {
			return domain.ErrDuplicate
		}
		stored := cloneDelivery(d)
		r.store.deliveries = append(r.store.deliveries, stored)
		r.store.delByID[d.ID] = stored
		r.tx.onRollback(func() {
			r.store.deliveries = r.store.deliveries[:len(r.store.deliveries)-1]
			delete(r.store.delByID, d.ID)
		})
		return nil
	})
}

func (r *DeliveryRepository) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	var out *entity.Delivery
	r.store.read(r.tx, func() {
		if d, ok := r.store.delByID[id]; ok {
			out = cloneDelivery(d)
		}
	})
	return out, nil
}

// List historial por persona y/o ítem, más reciente primero.
func (r *DeliveryRepository) List(ctx context.Context, filter entity.DeliveryFilter) ([]*entity.Delivery, error) {
	var matched []*entity.Delivery
	r.store.read(r.tx, func() {
		for i := len(r.store.deliveries) - 1; i >= 0; i-- {
			d := r.store.deliveries[i]
			if filter.PersonID != "" && d.PersonID != filter.PersonID {
				continue
			}
			if filter.ItemID != "" && d.ItemID != filter.ItemID {
				continue
			}
			matched = append(matched, cloneDelivery(d))
		}
	})
	return paginate(matched, filter.Limit, filter.Offset), nil
}

func (r *DeliveryRepository) ListWithReplacement(ctx context.Context) ([]*entity.Delivery, error) {
	var list []*entity.Delivery
	r.store.read(r.tx, func() {
		for _, d := range r.store.deliveries {
			if d.NextReplacementDate == nil {
				continue
			}
			if it, ok := r.store.items[d.ItemID]; !ok || !it.IsActive() {
				continue
			}
			list = append(list, cloneDelivery(d))
		}
	})
	return list, nil
}
