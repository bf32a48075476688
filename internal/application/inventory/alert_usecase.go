package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/dotacion-api/internal/domain/inventory"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
)

// AlertGenerator calcula las alertas al vuelo; no persiste nada.
type AlertGenerator struct {
	itemRepo     repository.ItemRepository
	deliveryRepo repository.DeliveryRepository
	thresholds   domaininv.Thresholds
	location     *time.Location
	metrics      Metrics
	now          Clock
	log          zerolog.Logger
}

// NewAlertGenerator construye el generador. loc define qué es "hoy"; nil usa UTC.
func NewAlertGenerator(
	itemRepo repository.ItemRepository,
	deliveryRepo repository.DeliveryRepository,
	thresholds domaininv.Thresholds,
	loc *time.Location,
	metrics Metrics,
	now Clock,
	log zerolog.Logger,
) *AlertGenerator {
	if thresholds.WarningDays <= 0 && thresholds.CriticalDays <= 0 {
		thresholds = domaininv.DefaultThresholds()
	}
	if loc == nil {
		loc = time.UTC
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if now == nil {
		now = time.Now
	}
	return &AlertGenerator{
		itemRepo:     itemRepo,
		deliveryRepo: deliveryRepo,
		thresholds:   thresholds,
		location:     loc,
		metrics:      metrics,
		now:          now,
		log:          log.With().Str("component", "alerts").Logger(),
	}
}

// today fecha civil actual en la zona configurada, expresada como medianoche UTC.
func (g *AlertGenerator) today() time.Time {
	y, m, d := g.now().In(g.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compute devuelve las alertas ordenadas: critical primero, luego por días restantes.
func (g *AlertGenerator) Compute(ctx context.Context) ([]entity.Alert, error) {
	today := g.today()
	items, err := g.itemRepo.ListActive(ctx, entity.ItemFilter{})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Item, len(items))
	alerts := make([]entity.Alert, 0)
	for _, it := range items {
		byID[it.ID] = it
		if a := domaininv.LowStockAlert(it); a != nil {
			alerts = append(alerts, *a)
		}
		if a := g.thresholds.CertificateAlert(it, today); a != nil {
			alerts = append(alerts, *a)
		}
	}

	deliveries, err := g.deliveryRepo.ListWithReplacement(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range deliveries {
		item, ok := byID[d.ItemID]
		if !ok {
			// ítem inactivo: sus entregas no generan alertas
			continue
		}
		if a := g.thresholds.ReplacementAlert(d, item, today); a != nil {
			alerts = append(alerts, *a)
		}
	}

	domaininv.SortAlerts(alerts)
	g.metrics.AlertsComputed(alerts)
	return alerts, nil
}

// ListAlerts alertas en formato de respuesta HTTP con totales por severidad.
func (g *AlertGenerator) ListAlerts(ctx context.Context) (*dto.AlertListResponse, error) {
	alerts, err := g.Compute(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.AlertListResponse{Alerts: make([]dto.AlertDTO, 0, len(alerts))}
	for _, a := range alerts {
		switch a.Severity {
		case entity.SeverityCritical:
			out.Critical++
		case entity.SeverityWarning:
			out.Warning++
		}
		out.Alerts = append(out.Alerts, toAlertDTO(a))
	}
	out.Total = len(out.Alerts)
	return out, nil
}
