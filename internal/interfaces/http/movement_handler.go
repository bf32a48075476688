package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/application/inventory"
)

// MovementHandler movimientos del libro de stock de un ítem.
type MovementHandler struct {
	base
	movements *inventory.MovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(b base, movements *inventory.MovementUseCase) *MovementHandler {
	return &MovementHandler{base: b, movements: movements}
}

// Record godoc
// @Summary      Registrar movimiento de stock
// @Description  kind: entry, exit, adjustment (+direction increase|decrease), return, loss.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path      string                     true   "ID del ítem"
// @Param        Idempotency-Key  header    string                     false  "Evita aplicar dos veces la misma petición"
// @Param        body             body      dto.RecordMovementRequest  true   "Movimiento"
// @Success      201              {object}  dto.MovementResponse
// @Failure      400              {object}  dto.ErrorResponse
// @Failure      404              {object}  dto.ErrorResponse
// @Failure      409              {object}  dto.ErrorResponse
// @Failure      422              {object}  dto.ErrorResponse
// @Failure      423              {object}  dto.ErrorResponse
// @Router       /api/items/{id}/movements [post]
func (h *MovementHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if ok, err := h.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.movements.RecordMovement(c.Context(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// History godoc
// @Summary      Historial de movimientos del ítem
// @Description  En orden de asiento (más antiguo primero).
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id      path      string  true   "ID del ítem"
// @Param        limit   query     int     false  "Máximo 100 (default 20)"
// @Param        offset  query     int     false  "Desplazamiento"
// @Success      200     {object}  dto.MovementListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/items/{id}/movements [get]
func (h *MovementHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := h.parseQuery(c, &page); !ok {
		return err
	}
	out, err := h.movements.GetMovementHistory(c.Context(), c.Params("id"), page)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}
