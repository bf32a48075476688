package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/application/inventory"
)

// DeliveryHandler entregas de dotación a personas.
type DeliveryHandler struct {
	base
	scheduler *inventory.DeliveryScheduler
}

// NewDeliveryHandler construye el handler.
func NewDeliveryHandler(b base, scheduler *inventory.DeliveryScheduler) *DeliveryHandler {
	return &DeliveryHandler{base: b, scheduler: scheduler}
}

// Issue godoc
// @Summary      Entregar dotación
// @Description  Registra la salida de stock y la entrega en una sola transacción.
// @Description  delivery_date en RFC 3339; si se omite se usa la fecha actual.
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                    false  "Evita aplicar dos veces la misma petición"
// @Param        body             body      dto.IssueDeliveryRequest  true   "Entrega"
// @Success      201              {object}  dto.DeliveryResponse
// @Failure      400              {object}  dto.ErrorResponse
// @Failure      404              {object}  dto.ErrorResponse
// @Failure      409              {object}  dto.ErrorResponse
// @Failure      422              {object}  dto.ErrorResponse
// @Router       /api/deliveries [post]
func (h *DeliveryHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueDeliveryRequest
	if ok, err := h.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.scheduler.IssueDelivery(c.Context(), GetUserID(c), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Historial de entregas
// @Description  Requiere person_id o item_id. Más reciente primero.
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        person_id  query     string  false  "Documento o código de la persona"
// @Param        item_id    query     string  false  "ID del ítem"
// @Param        limit      query     int     false  "Máximo 100 (default 20)"
// @Param        offset     query     int     false  "Desplazamiento"
// @Success      200        {object}  dto.DeliveryListResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/deliveries [get]
func (h *DeliveryHandler) List(c *fiber.Ctx) error {
	var in dto.ListDeliveriesRequest
	if ok, err := h.parseQuery(c, &in); !ok {
		return err
	}
	out, err := h.scheduler.GetDeliveryHistory(c.Context(), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}
