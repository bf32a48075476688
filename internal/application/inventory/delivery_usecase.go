package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/domain"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/dotacion-api/internal/domain/inventory"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// DeliveryScheduler entrega dotación a una persona: salida del libro + registro de entrega
// + próxima fecha de reemplazo, todo o nada.
type DeliveryScheduler struct {
	mutator      *StockMutator
	itemRepo     repository.ItemRepository
	deliveryRepo repository.DeliveryRepository
	metrics      Metrics
	now          Clock
	log          zerolog.Logger
}

// NewDeliveryScheduler construye el caso de uso.
func NewDeliveryScheduler(
	mutator *StockMutator,
	itemRepo repository.ItemRepository,
	deliveryRepo repository.DeliveryRepository,
	metrics Metrics,
	now Clock,
	log zerolog.Logger,
) *DeliveryScheduler {
	if metrics == nil {
		metrics = NopMetrics()
	}
	if now == nil {
		now = time.Now
	}
	return &DeliveryScheduler{
		mutator:      mutator,
		itemRepo:     itemRepo,
		deliveryRepo: deliveryRepo,
		metrics:      metrics,
		now:          now,
		log:          log.With().Str("component", "delivery_scheduler").Logger(),
	}
}

// IssueDelivery entrega quantity unidades del ítem a la persona.
//  1. Ítem inactivo → ErrItemInactive.
//  2. Salida vía StockMutator (propaga ErrInsufficientStock / ErrConcurrentModification).
//  3. Congela el número de certificado vigente.
//  4. next_replacement_date = delivery_date + replacement_cycle_days (si hay ciclo).
//  5. Persiste la entrega ligada al movimiento, en la misma transacción.
func (uc *DeliveryScheduler) IssueDelivery(ctx context.Context, userID string, in dto.IssueDeliveryRequest) (*dto.DeliveryResponse, error) {
	personID := strings.TrimSpace(in.PersonID)
	if personID == "" || in.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	item, err := uc.itemRepo.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if !item.IsActive() {
		return nil, domain.ErrItemInactive
	}

	deliveryDate := in.DeliveryDate
	if deliveryDate.IsZero() {
		deliveryDate = uc.now()
	}
	deliveryDate = domaininv.DateOnly(deliveryDate)
	deliveryID := uuid.New().String()

	var delivery *entity.Delivery
	_, err = uc.mutator.apply(ctx, MutationInput{
		ItemID:   in.ItemID,
		Kind:     entity.MovementExit,
		Quantity: in.Quantity,
		Meta: entity.MovementMetadata{
			PersonID:   personID,
			DeliveryID: deliveryID,
			Reason:     "entrega de dotación",
			CreatedBy:  userID,
		},
	}, func(ctx context.Context, current *entity.Item, mov *entity.Movement, deliveryRepo repository.DeliveryRepository) error {
		// current es la lectura dentro de la transacción: el certificado vigente al momento de la entrega.
		d := &entity.Delivery{
			ID:                  deliveryID,
			PersonID:            personID,
			ItemID:              current.ID,
			MovementID:          mov.ID,
			Quantity:            in.Quantity,
			Size:                strings.TrimSpace(in.Size),
			DeliveryDate:        deliveryDate,
			CertificateNumber:   current.CertificateNumber,
			NextReplacementDate: domaininv.NextReplacementDate(current, deliveryDate),
			Acknowledged:        in.ConfirmedByPerson,
			Notes:               in.Notes,
			CreatedBy:           userID,
			CreatedAt:           mov.CreatedAt,
		}
		if err := deliveryRepo.Create(ctx, d); err != nil {
			return err
		}
		delivery = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.DeliveryIssued()
	uc.log.Info().
		Str("delivery_id", delivery.ID).
		Str("item_id", delivery.ItemID).
		Str("person_id", delivery.PersonID).
		Int("quantity", delivery.Quantity).
		Msg("dotación entregada")
	out := toDeliveryResponse(delivery)
	return &out, nil
}

// GetDeliveryHistory historial de entregas por persona o por ítem.
func (uc *DeliveryScheduler) GetDeliveryHistory(ctx context.Context, in dto.ListDeliveriesRequest) (*dto.DeliveryListResponse, error) {
	if in.PersonID == "" && in.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	page := dto.PageRequest{Limit: in.Limit, Offset: in.Offset}
	page.Normalize()
	list, err := uc.deliveryRepo.List(ctx, entity.DeliveryFilter{
		PersonID: in.PersonID,
		ItemID:   in.ItemID,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.DeliveryResponse, 0, len(list))
	for _, d := range list {
		items = append(items, toDeliveryResponse(d))
	}
	return &dto.DeliveryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	}, nil
}
