package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/application/inventory"
)

// ItemHandler catálogo de ítems de dotación (protegido).
type ItemHandler struct {
	base
	catalog *inventory.CatalogUseCase
	auditor *inventory.IntegrityAuditor
}

// NewItemHandler construye el handler.
func NewItemHandler(b base, catalog *inventory.CatalogUseCase, auditor *inventory.IntegrityAuditor) *ItemHandler {
	return &ItemHandler{base: b, catalog: catalog, auditor: auditor}
}

// Create godoc
// @Summary      Crear ítem
// @Description  Si quantity_available > 0 se asienta una entrada de stock inicial.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateItemRequest  true  "Datos del ítem"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if ok, err := h.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.catalog.CreateItem(c.Context(), GetUserID(c), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ítems activos
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        category   query     string  false  "Categoría"
// @Param        search     query     string  false  "Texto en nombre o SKU"
// @Param        low_stock  query     bool    false  "Solo ítems con stock <= mínimo"
// @Param        limit      query     int     false  "Máximo 100 (default 20)"
// @Param        offset     query     int     false  "Desplazamiento"
// @Success      200        {object}  dto.ItemListResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	var in dto.ListItemsRequest
	if ok, err := h.parseQuery(c, &in); !ok {
		return err
	}
	out, err := h.catalog.ListActiveItems(c.Context(), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener ítem
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.catalog.GetItem(c.Context(), c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar metadatos del ítem
// @Description  Nunca modifica la cantidad; el stock solo cambia por movimientos.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "ID del ítem"
// @Param        body  body      dto.UpdateItemRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if ok, err := h.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.catalog.UpdateItem(c.Context(), c.Params("id"), in)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar ítem
// @Description  Idempotente. El ítem y su historial se conservan.
// @Tags         items
// @Security     Bearer
// @Param        id  path  string  true  "ID del ítem"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.catalog.DeactivateItem(c.Context(), c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReleaseHold godoc
// @Summary      Liberar bloqueo de integridad
// @Description  Usar solo después de conciliar manualmente el libro con la cantidad.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/release-hold [post]
func (h *ItemHandler) ReleaseHold(c *fiber.Ctx) error {
	if err := h.catalog.ReleaseIntegrityHold(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "bloqueo de integridad liberado"})
}

// Audit godoc
// @Summary      Auditar el libro de un ítem
// @Description  Reproduce los movimientos y compara con quantity_available. Una diferencia bloquea el ítem.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {object}  dto.AuditResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/audit [get]
func (h *ItemHandler) Audit(c *fiber.Ctx) error {
	out, err := h.auditor.AuditItem(c.Context(), c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}
