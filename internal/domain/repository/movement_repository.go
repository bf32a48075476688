package repository

import (
	"context"

	"github.com/jhoicas/dotacion-api/internal/domain/entity"
)

// MovementRepository define el puerto del libro de movimientos. Solo inserción y lectura:
// un movimiento nunca se actualiza ni se elimina.
type MovementRepository interface {
	Append(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// ListByItem devuelve los movimientos en orden de creación (seq ascendente).
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Movement, error)
	// ListAllByItem devuelve el libro completo del ítem para replay.
	ListAllByItem(ctx context.Context, itemID string) ([]*entity.Movement, error)
	// CountByItem número de movimientos confirmados del ítem. Crece con cada movimiento.
	CountByItem(ctx context.Context, itemID string) (int, error)
}
