package inventory

import (
	"time"

	"github.com/jhoicas/dotacion-api/internal/domain/entity"
)

// NextReplacementDate fecha_entrega + ciclo_de_reemplazo; nil si el ítem no define ciclo.
func NextReplacementDate(item *entity.Item, deliveryDate time.Time) *time.Time {
	if !item.HasReplacementCycle() {
		return nil
	}
	next := DateOnly(deliveryDate).AddDate(0, 0, *item.ReplacementCycleDays)
	return &next
}
