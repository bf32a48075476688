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
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// CatalogUseCase casos de uso del catálogo de ítems. La cantidad nunca se modifica aquí
// salvo el stock inicial, que se registra como movimiento de entrada en la misma transacción.
type CatalogUseCase struct {
	txRunner TxRunner
	itemRepo repository.ItemRepository
	ledger   *MovementLedger
	metrics  Metrics
	now      Clock
	log      zerolog.Logger
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	ledger *MovementLedger,
	metrics Metrics,
	now Clock,
	log zerolog.Logger,
) *CatalogUseCase {
	if metrics == nil {
		metrics = NopMetrics()
	}
	if now == nil {
		now = time.Now
	}
	return &CatalogUseCase{
		txRunner: txRunner,
		itemRepo: itemRepo,
		ledger:   ledger,
		metrics:  metrics,
		now:      now,
		log:      log.With().Str("component", "catalog").Logger(),
	}
}

// CreateItem valida y crea un ítem activo. Si trae stock inicial se asienta como entrada.
func (uc *CatalogUseCase) CreateItem(ctx context.Context, userID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.MinStock < 0 || !entity.ValidCategory(in.Category) || !entity.ValidUnitMeasure(in.UnitMeasure) {
		return nil, domain.ErrInvalidInput
	}
	if in.QuantityAvailable < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.ReplacementCycleDays != nil && *in.ReplacementCycleDays <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.SKU != "" {
		existing, err := uc.itemRepo.GetBySKU(ctx, in.SKU)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	}

	now := uc.now()
	item := &entity.Item{
		ID:                    uuid.New().String(),
		SKU:                   in.SKU,
		Name:                  in.Name,
		Description:           in.Description,
		Category:              in.Category,
		UnitMeasure:           in.UnitMeasure,
		QuantityAvailable:     in.QuantityAvailable,
		MinStock:              in.MinStock,
		CertificateNumber:     strings.TrimSpace(in.CertificateNumber),
		CertificateExpiration: dateOnlyPtr(in.CertificateExpiration),
		ReplacementCycleDays:  in.ReplacementCycleDays,
		Status:                entity.ItemStatusActive,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		_ repository.DeliveryRepository,
	) error {
		if err := itemRepo.Create(ctx, item); err != nil {
			return err
		}
		if item.QuantityAvailable == 0 {
			return nil
		}
		_, err := uc.ledger.AppendMovement(ctx, movRepo, item.ID, entity.MovementEntry, item.QuantityAvailable, 0,
			entity.MovementMetadata{Reason: "stock inicial", CreatedBy: userID}, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	if item.QuantityAvailable > 0 {
		uc.metrics.MovementRecorded(entity.MovementEntry)
	}
	uc.log.Info().Str("item_id", item.ID).Str("sku", item.SKU).Int("quantity", item.QuantityAvailable).Msg("ítem creado")
	return toItemResponse(item), nil
}

// GetItem obtiene un ítem por ID (activo o no).
func (uc *CatalogUseCase) GetItem(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return toItemResponse(item), nil
}

// ListActiveItems lista ítems activos con filtros y paginación.
func (uc *CatalogUseCase) ListActiveItems(ctx context.Context, in dto.ListItemsRequest) (*dto.ItemListResponse, error) {
	page := dto.PageRequest{Limit: in.Limit, Offset: in.Offset}
	page.Normalize()
	list, err := uc.itemRepo.ListActive(ctx, entity.ItemFilter{
		Category: in.Category,
		Search:   strings.TrimSpace(in.Search),
		LowStock: in.LowStock,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	}, nil
}

// UpdateItem actualiza metadatos del ítem. Nunca la cantidad.
func (uc *CatalogUseCase) UpdateItem(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if !item.IsActive() {
		return nil, domain.ErrItemInactive
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku != "" && sku != item.SKU {
			existing, err := uc.itemRepo.GetBySKU(ctx, sku)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != item.ID {
				return nil, domain.ErrDuplicate
			}
		}
		item.SKU = sku
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		item.Name = name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Category != nil {
		if !entity.ValidCategory(*in.Category) {
			return nil, domain.ErrInvalidInput
		}
		item.Category = *in.Category
	}
	if in.UnitMeasure != nil {
		if !entity.ValidUnitMeasure(*in.UnitMeasure) {
			return nil, domain.ErrInvalidInput
		}
		item.UnitMeasure = *in.UnitMeasure
	}
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return nil, domain.ErrInvalidInput
		}
		item.MinStock = *in.MinStock
	}
	if in.CertificateNumber != nil {
		item.CertificateNumber = strings.TrimSpace(*in.CertificateNumber)
	}
	if in.CertificateExpiration != nil {
		item.CertificateExpiration = dateOnlyPtr(in.CertificateExpiration)
	}
	if in.ReplacementCycleDays != nil {
		if *in.ReplacementCycleDays <= 0 {
			return nil, domain.ErrInvalidInput
		}
		item.ReplacementCycleDays = in.ReplacementCycleDays
	}
	item.UpdatedAt = uc.now()
	if err := uc.itemRepo.UpdateMetadata(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// DeactivateItem baja lógica. Idempotente: un ítem ya inactivo no es error.
// Nunca borra filas referenciadas por movimientos o entregas.
func (uc *CatalogUseCase) DeactivateItem(ctx context.Context, id string) error {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if !item.IsActive() {
		return nil
	}
	if err := uc.itemRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("item_id", id).Msg("ítem desactivado")
	return nil
}

// ReleaseIntegrityHold libera el bloqueo tras la conciliación manual.
func (uc *CatalogUseCase) ReleaseIntegrityHold(ctx context.Context, id, userID string) error {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if !item.IntegrityHold {
		return nil
	}
	if err := uc.itemRepo.SetIntegrityHold(ctx, id, false); err != nil {
		return err
	}
	uc.log.Warn().Str("item_id", id).Str("user_id", userID).Msg("bloqueo de integridad liberado")
	return nil
}
