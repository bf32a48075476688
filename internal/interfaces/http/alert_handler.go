package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dotacion-api/internal/application/inventory"
)

// AlertHandler alertas calculadas y auditoría global del libro.
type AlertHandler struct {
	base
	alerts  *inventory.AlertGenerator
	auditor *inventory.IntegrityAuditor
}

// NewAlertHandler construye el handler.
func NewAlertHandler(b base, alerts *inventory.AlertGenerator, auditor *inventory.IntegrityAuditor) *AlertHandler {
	return &AlertHandler{base: b, alerts: alerts, auditor: auditor}
}

// List godoc
// @Summary      Alertas vigentes
// @Description  Stock bajo, certificados por vencer y reemplazos próximos. Críticas primero.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertListResponse
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	out, err := h.alerts.ListAlerts(c.Context())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// AuditAll godoc
// @Summary      Auditar todo el libro
// @Description  Reproduce el libro de cada ítem; los inconsistentes quedan bloqueados.
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AuditReportResponse
// @Router       /api/audit [post]
func (h *AlertHandler) AuditAll(c *fiber.Ctx) error {
	out, err := h.auditor.AuditAll(c.Context())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}
