package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/domain"
	domaininv "github.com/jhoicas/dotacion-api/internal/domain/inventory"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// auditReadAttempts lecturas consecutivas permitidas cuando entra un movimiento durante el replay.
const auditReadAttempts = 3

// IntegrityAuditor compara Item.QuantityAvailable con el replay de su libro.
// Una discrepancia bloquea el ítem hasta conciliación manual.
type IntegrityAuditor struct {
	itemRepo repository.ItemRepository
	ledger   *MovementLedger
	metrics  Metrics
	log      zerolog.Logger
}

// NewIntegrityAuditor construye el auditor.
func NewIntegrityAuditor(itemRepo repository.ItemRepository, ledger *MovementLedger, metrics Metrics, log zerolog.Logger) *IntegrityAuditor {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &IntegrityAuditor{
		itemRepo: itemRepo,
		ledger:   ledger,
		metrics:  metrics,
		log:      log.With().Str("component", "integrity_audit").Logger(),
	}
}

// AuditItem reconstruye la cantidad del ítem y la compara con la almacenada.
// La comparación solo vale si ningún movimiento se confirmó entre la primera lectura del ítem
// y la última: se sella con (cantidad, número de movimientos) antes y después del replay.
// Comparar solo la cantidad no basta, dos movimientos pueden dejarla igual (A-B-A).
func (a *IntegrityAuditor) AuditItem(ctx context.Context, itemID string) (*dto.AuditResponse, error) {
	for i := 0; i < auditReadAttempts; i++ {
		before, err := a.itemRepo.GetByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if before == nil {
			return nil, domain.ErrNotFound
		}
		replayed, count, replayErr := a.ledger.ReplayQuantity(ctx, itemID)
		var chainErr *domaininv.ReplayError
		if replayErr != nil && !errors.As(replayErr, &chainErr) {
			return nil, replayErr
		}
		after, err := a.itemRepo.GetByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if after == nil {
			return nil, domain.ErrNotFound
		}
		countAfter, err := a.ledger.MovementCount(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if after.QuantityAvailable != before.QuantityAvailable || countAfter != count {
			a.log.Debug().Str("item_id", itemID).Int("attempt", i+1).Msg("el ítem cambió durante el replay, se repite la lectura")
			continue
		}

		out := &dto.AuditResponse{
			ItemID:            itemID,
			QuantityAvailable: after.QuantityAvailable,
			ReplayedQuantity:  replayed,
			MovementCount:     count,
			Consistent:        chainErr == nil && replayed == after.QuantityAvailable,
		}
		switch {
		case chainErr != nil:
			out.Detail = chainErr.Error()
		case !out.Consistent:
			out.Detail = fmt.Sprintf("quantity_available=%d, replay=%d", after.QuantityAvailable, replayed)
		}
		if !out.Consistent {
			a.flag(ctx, out, after.IntegrityHold)
		}
		return out, nil
	}
	return nil, domain.ErrConcurrentModification
}

// AuditAll audita todos los ítems (activos e inactivos).
func (a *IntegrityAuditor) AuditAll(ctx context.Context) (*dto.AuditReportResponse, error) {
	items, err := a.itemRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	report := &dto.AuditReportResponse{Items: make([]dto.AuditResponse, 0)}
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := a.AuditItem(ctx, it.ID)
		if err != nil {
			return nil, fmt.Errorf("auditar ítem %s: %w", it.ID, err)
		}
		report.Checked++
		if !res.Consistent {
			report.Inconsistent++
			report.Items = append(report.Items, *res)
		}
	}
	a.log.Info().Int("checked", report.Checked).Int("inconsistent", report.Inconsistent).Msg("auditoría de integridad completada")
	return report, nil
}

func (a *IntegrityAuditor) flag(ctx context.Context, res *dto.AuditResponse, alreadyHeld bool) {
	a.log.Error().
		Str("item_id", res.ItemID).
		Int("quantity_available", res.QuantityAvailable).
		Int("replayed_quantity", res.ReplayedQuantity).
		Str("detail", res.Detail).
		Msg("incidente de integridad: la cantidad no coincide con el libro")
	if alreadyHeld {
		return
	}
	a.metrics.IntegrityIncident("replay_mismatch")
	if err := a.itemRepo.SetIntegrityHold(context.WithoutCancel(ctx), res.ItemID, true); err != nil {
		a.log.Error().Err(err).Str("item_id", res.ItemID).Msg("no se pudo bloquear el ítem")
	}
}
