package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/dotacion-api/internal/domain/entity"
)

// Thresholds umbrales en días para las alertas con fecha.
type Thresholds struct {
	CriticalDays int // días_restantes <= CriticalDays → critical
	WarningDays  int // CriticalDays < días_restantes <= WarningDays → warning
}

// DefaultThresholds 7 días crítico, 30 días advertencia.
func DefaultThresholds() Thresholds {
	return Thresholds{CriticalDays: 7, WarningDays: 30}
}

// DateOnly trunca un instante a la fecha civil en UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil días calendario entre today y due (negativo si due ya pasó).
func DaysUntil(today, due time.Time) int {
	return int(DateOnly(due).Sub(DateOnly(today)).Hours() / 24)
}

// DateSeverity severidad para una fecha límite; "" si no hay alerta.
// Una fecha vencida siempre es critical.
func (t Thresholds) DateSeverity(daysRemaining int) string {
	switch {
	case daysRemaining <= t.CriticalDays:
		return entity.SeverityCritical
	case daysRemaining <= t.WarningDays:
		return entity.SeverityWarning
	}
	return ""
}

// LowStockSeverity critical si no hay unidades, warning si 0 < cantidad <= mínimo.
func LowStockSeverity(quantity, minStock int) string {
	switch {
	case quantity == 0:
		return entity.SeverityCritical
	case quantity <= minStock:
		return entity.SeverityWarning
	}
	return ""
}

// LowStockAlert evalúa un ítem activo; nil si no corresponde alerta.
func LowStockAlert(item *entity.Item) *entity.Alert {
	if !item.IsActive() {
		return nil
	}
	sev := LowStockSeverity(item.QuantityAvailable, item.MinStock)
	if sev == "" {
		return nil
	}
	return &entity.Alert{
		Kind:              entity.AlertLowStock,
		Severity:          sev,
		ItemID:            item.ID,
		ItemName:          item.Name,
		SKU:               item.SKU,
		QuantityAvailable: item.QuantityAvailable,
		MinStock:          item.MinStock,
	}
}

// CertificateAlert evalúa el vencimiento del certificado de un ítem activo.
func (t Thresholds) CertificateAlert(item *entity.Item, today time.Time) *entity.Alert {
	if !item.IsActive() || item.CertificateExpiration == nil {
		return nil
	}
	days := DaysUntil(today, *item.CertificateExpiration)
	sev := t.DateSeverity(days)
	if sev == "" {
		return nil
	}
	due := DateOnly(*item.CertificateExpiration)
	return &entity.Alert{
		Kind:          entity.AlertCertificateExpiring,
		Severity:      sev,
		ItemID:        item.ID,
		ItemName:      item.Name,
		SKU:           item.SKU,
		DueDate:       &due,
		DaysRemaining: &days,
	}
}

// ReplacementAlert evalúa el reemplazo pendiente de una entrega.
func (t Thresholds) ReplacementAlert(d *entity.Delivery, item *entity.Item, today time.Time) *entity.Alert {
	if d.NextReplacementDate == nil {
		return nil
	}
	days := DaysUntil(today, *d.NextReplacementDate)
	sev := t.DateSeverity(days)
	if sev == "" {
		return nil
	}
	due := DateOnly(*d.NextReplacementDate)
	a := &entity.Alert{
		Kind:          entity.AlertReplacementDue,
		Severity:      sev,
		ItemID:        d.ItemID,
		DueDate:       &due,
		DaysRemaining: &days,
		DeliveryID:    d.ID,
		PersonID:      d.PersonID,
	}
	if item != nil {
		a.ItemName = item.Name
		a.SKU = item.SKU
	}
	return a
}

// SortAlerts ordena critical antes que warning y luego por días restantes ascendentes.
// Una alerta sin fecha (stock bajo) vale como día 0: un vencimiento ya pasado la precede
// y uno futuro la sigue. Con el mismo día, la de stock bajo va primero.
func SortAlerts(alerts []entity.Alert) {
	rank := func(s string) int {
		if s == entity.SeverityCritical {
			return 0
		}
		return 1
	}
	day := func(a entity.Alert) int {
		if a.DaysRemaining == nil {
			return 0
		}
		return *a.DaysRemaining
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if rank(a.Severity) != rank(b.Severity) {
			return rank(a.Severity) < rank(b.Severity)
		}
		if day(a) != day(b) {
			return day(a) < day(b)
		}
		return a.DaysRemaining == nil && b.DaysRemaining != nil
	})
}
