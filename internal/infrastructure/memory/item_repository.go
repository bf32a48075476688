package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// ItemRepository implementación en memoria de repository.ItemRepository.
type ItemRepository struct {
	store *Store
	tx    *tx
}

// NewItemRepository crea el repositorio fuera de transacción.
func NewItemRepository(store *Store) *ItemRepository {
	return &ItemRepository{store: store}
}

var _ repository.ItemRepository = (*ItemRepository)(nil)

func cloneItem(i *entity.Item) *entity.Item {
	c := *i
	if i.CertificateExpiration != nil {
		t := *i.CertificateExpiration
		c.CertificateExpiration = &t
	}
	if i.ReplacementCycleDays != nil {
		d := *i.ReplacementCycleDays
		c.ReplacementCycleDays = &d
	}
	return &c
}

func (r *ItemRepository) skuTaken(sku, exceptID string) bool {
	if sku == "" {
		return false
	}
	for _, it := range r.store.items {
		if it.SKU == sku && it.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *ItemRepository) Create(ctx context.Context, item *entity.Item) error {
	return r.store.write(r.tx, func() error {
		if _, ok := r.store.items[item.ID]; ok || r.skuTaken(item.SKU, item.ID) {
			return domain.ErrDuplicate
		}
		r.store.items[item.ID] = cloneItem(item)
		r.tx.onRollback(func() { delete(r.store.items, item.ID) })
		return nil
	})
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	var out *entity.Item
	r.store.read(r.tx, func() {
		if it, ok := r.store.items[id]; ok {
			out = cloneItem(it)
		}
	})
	return out, nil
}

func (r *ItemRepository) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	var out *entity.Item
	r.store.read(r.tx, func() {
		for _, it := range r.store.items {
			if it.SKU == sku {
				out = cloneItem(it)
				return
			}
		}
	})
	return out, nil
}

func (r *ItemRepository) ListActive(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var list []*entity.Item
	r.store.read(r.tx, func() {
		for _, it := range r.store.items {
			if !it.IsActive() {
				continue
			}
			if filter.Category != "" && it.Category != filter.Category {
				continue
			}
			if filter.LowStock && it.QuantityAvailable > it.MinStock {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(it.Name), search) &&
				!strings.Contains(strings.ToLower(it.SKU), search) {
				continue
			}
			list = append(list, cloneItem(it))
		}
	})
	sortItems(list)
	return paginate(list, filter.Limit, filter.Offset), nil
}

func (r *ItemRepository) ListAll(ctx context.Context) ([]*entity.Item, error) {
	var list []*entity.Item
	r.store.read(r.tx, func() {
		for _, it := range r.store.items {
			list = append(list, cloneItem(it))
		}
	})
	sortItems(list)
	return list, nil
}

func (r *ItemRepository) UpdateMetadata(ctx context.Context, item *entity.Item) error {
	return r.store.write(r.tx, func() error {
		cur, ok := r.store.items[item.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if r.skuTaken(item.SKU, item.ID) {
			return domain.ErrDuplicate
		}
		prev := cur
		next := cloneItem(item)
		// la cantidad, el estado y el bloqueo no se tocan desde aquí
		next.QuantityAvailable = cur.QuantityAvailable
		next.Status = cur.Status
		next.IntegrityHold = cur.IntegrityHold
		next.CreatedAt = cur.CreatedAt
		r.store.items[item.ID] = next
		r.tx.onRollback(func() { r.store.items[item.ID] = prev })
		return nil
	})
}

func (r *ItemRepository) Deactivate(ctx context.Context, id string) error {
	return r.store.write(r.tx, func() error {
		cur, ok := r.store.items[id]
		if !ok {
			return domain.ErrNotFound
		}
		prev := cur.Status
		cur.Status = entity.ItemStatusInactive
		r.tx.onRollback(func() { r.store.items[id].Status = prev })
		return nil
	})
}

func (r *ItemRepository) SetIntegrityHold(ctx context.Context, id string, hold bool) error {
	return r.store.write(r.tx, func() error {
		cur, ok := r.store.items[id]
		if !ok {
			return domain.ErrNotFound
		}
		prev := cur.IntegrityHold
		cur.IntegrityHold = hold
		r.tx.onRollback(func() { r.store.items[id].IntegrityHold = prev })
		return nil
	})
}

func (r *ItemRepository) CompareAndSwapQuantity(ctx context.Context, id string, expected, next int) (bool, error) {
	swapped := false
	err := r.store.write(r.tx, func() error {
		cur, ok := r.store.items[id]
		if !ok || cur.QuantityAvailable != expected {
			return nil
		}
		cur.QuantityAvailable = next
		swapped = true
		r.tx.onRollback(func() { r.store.items[id].QuantityAvailable = expected })
		return nil
	})
	return swapped, err
}

func sortItems(list []*entity.Item) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}

// paginate limit <= 0 devuelve todo desde offset.
func paginate[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
