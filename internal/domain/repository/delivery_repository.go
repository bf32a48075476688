package repository

import (
	"context"

	"github.com/jhoicas/dotacion-api/internal/domain/entity"
)

// DeliveryRepository define el puerto de persistencia para entregas (solo inserción y lectura).
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *entity.Delivery) error
	GetByID(ctx context.Context, id string) (*entity.Delivery, error)
	List(ctx context.Context, filter entity.DeliveryFilter) ([]*entity.Delivery, error)
	// ListWithReplacement devuelve las entregas con next_replacement_date definido
	// cuyo ítem sigue activo.
	ListWithReplacement(ctx context.Context) ([]*entity.Delivery, error)
}
