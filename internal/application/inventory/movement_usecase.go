package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// MovementUseCase movimientos directos de stock (reposición, ajuste, pérdida, devolución)
// e historial del libro. Siempre pasa por el StockMutator.
type MovementUseCase struct {
	mutator  *StockMutator
	ledger   *MovementLedger
	itemRepo repository.ItemRepository
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(mutator *StockMutator, ledger *MovementLedger, itemRepo repository.ItemRepository) *MovementUseCase {
	return &MovementUseCase{mutator: mutator, ledger: ledger, itemRepo: itemRepo}
}

// ResolveKind traduce kind/direction del request al tipo cerrado del libro.
// "adjustment" exige direction increase|decrease.
func ResolveKind(kind, direction string) (entity.MovementKind, error) {
	if kind == "adjustment" {
		switch direction {
		case "increase":
			return entity.MovementAdjustmentIncrease, nil
		case "decrease":
			return entity.MovementAdjustmentDecrease, nil
		}
		return "", domain.ErrInvalidInput
	}
	k := entity.MovementKind(kind)
	if !k.Valid() {
		return "", domain.ErrInvalidInput
	}
	return k, nil
}

// RecordMovement registra un movimiento directo sobre un ítem.
func (uc *MovementUseCase) RecordMovement(ctx context.Context, itemID, userID string, in dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	kind, err := ResolveKind(in.Kind, in.Direction)
	if err != nil {
		return nil, err
	}
	if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	mov, err := uc.mutator.Apply(ctx, MutationInput{
		ItemID:   itemID,
		Kind:     kind,
		Quantity: in.Quantity,
		Meta: entity.MovementMetadata{
			PersonID:       in.PersonID,
			Reason:         in.Reason,
			DocumentNumber: in.DocumentNumber,
			UnitCost:       in.UnitCost,
			CreatedBy:      userID,
		},
	})
	if err != nil {
		return nil, err
	}
	out := toMovementResponse(mov)
	return &out, nil
}

// GetMovementHistory historial del libro de un ítem en orden de creación.
func (uc *MovementUseCase) GetMovementHistory(ctx context.Context, itemID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	page.Normalize()
	list, err := uc.ledger.History(ctx, itemID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	}, nil
}
