package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/dotacion-api/internal/domain/inventory"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// MovementLedger libro de movimientos: inserción pura y replay.
// No toca Item.QuantityAvailable; eso lo hace el StockMutator en la misma transacción.
type MovementLedger struct {
	movRepo repository.MovementRepository
	log     zerolog.Logger
}

// NewMovementLedger construye el libro. movRepo es el repositorio fuera de transacción (lecturas).
func NewMovementLedger(movRepo repository.MovementRepository, log zerolog.Logger) *MovementLedger {
	return &MovementLedger{movRepo: movRepo, log: log.With().Str("component", "ledger").Logger()}
}

// AppendMovement calcula el efecto según el tipo, valida NuevaCantidad >= 0 y persiste el movimiento
// con los snapshots previous/new. movRepo debe estar atado a la transacción del caller.
func (l *MovementLedger) AppendMovement(
	ctx context.Context,
	movRepo repository.MovementRepository,
	itemID string,
	kind entity.MovementKind,
	quantity int,
	expectedPrevious int,
	meta entity.MovementMetadata,
	now time.Time,
) (*entity.Movement, error) {
	effect, next, err := domaininv.Apply(expectedPrevious, kind, quantity)
	if err != nil {
		if errors.Is(err, domain.ErrNegativeStock) {
			l.log.Error().
				Str("item_id", itemID).
				Str("kind", string(kind)).
				Int("quantity", quantity).
				Int("previous_quantity", expectedPrevious).
				Msg("incidente de integridad: el movimiento dejaría stock negativo")
		}
		return nil, err
	}
	mov := &entity.Movement{
		ID:               uuid.New().String(),
		ItemID:           itemID,
		Kind:             kind,
		Quantity:         quantity,
		Effect:           effect,
		PreviousQuantity: expectedPrevious,
		NewQuantity:      next,
		PersonID:         meta.PersonID,
		DeliveryID:       meta.DeliveryID,
		Reason:           meta.Reason,
		DocumentNumber:   meta.DocumentNumber,
		UnitCost:         meta.UnitCost,
		CreatedBy:        meta.CreatedBy,
		CreatedAt:        now,
	}
	if err := movRepo.Append(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ReplayQuantity reconstruye la cantidad del ítem plegando todo su libro en orden.
// Solo para auditorías y tests; el camino rápido es Item.QuantityAvailable.
func (l *MovementLedger) ReplayQuantity(ctx context.Context, itemID string) (int, int, error) {
	movs, err := l.movRepo.ListAllByItem(ctx, itemID)
	if err != nil {
		return 0, 0, fmt.Errorf("listar libro: %w", err)
	}
	qty, err := domaininv.Replay(movs)
	return qty, len(movs), err
}

// MovementCount número de movimientos confirmados del ítem.
func (l *MovementLedger) MovementCount(ctx context.Context, itemID string) (int, error) {
	return l.movRepo.CountByItem(ctx, itemID)
}

// History devuelve el historial paginado de movimientos de un ítem (orden de creación).
func (l *MovementLedger) History(ctx context.Context, itemID string, limit, offset int) ([]*entity.Movement, error) {
	return l.movRepo.ListByItem(ctx, itemID, limit, offset)
}
