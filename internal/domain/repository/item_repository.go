package repository

import (
	"context"

	"github.com/jhoicas/dotacion-api/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para Item (DIP).
// No expone ninguna escritura directa de QuantityAvailable salvo CompareAndSwapQuantity,
// reservada al mutador de stock.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Item, error)
	ListActive(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error)
	// ListAll incluye inactivos; usado por auditorías de integridad.
	ListAll(ctx context.Context) ([]*entity.Item, error)
	// UpdateMetadata actualiza los campos descriptivos (nunca la cantidad).
	UpdateMetadata(ctx context.Context, item *entity.Item) error
	// Deactivate marca el ítem como inactivo. Idempotente.
	Deactivate(ctx context.Context, id string) error
	SetIntegrityHold(ctx context.Context, id string, hold bool) error

	// CompareAndSwapQuantity fija quantity_available = next solo si el valor almacenado
	// sigue siendo expected. Devuelve false si otro escritor ganó la carrera.
	CompareAndSwapQuantity(ctx context.Context, id string, expected, next int) (bool, error)
}
