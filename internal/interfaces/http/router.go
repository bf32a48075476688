package http

import (
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/dotacion-api/internal/application/inventory"
	"github.com/jhoicas/dotacion-api/internal/domain/repository"
	"github.com/jhoicas/dotacion-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName        string
	CatalogUC      *inventory.CatalogUseCase
	MovementUC     *inventory.MovementUseCase
	Scheduler      *inventory.DeliveryScheduler
	Alerts         *inventory.AlertGenerator
	Auditor        *inventory.IntegrityAuditor
	Idempotency    repository.IdempotencyStore
	IdempotencyTTL time.Duration
	// MetricsHandler se monta en /metrics si no es nil.
	MetricsHandler nethttp.Handler
	JWTSecret      string
	Log            zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log.With().Str("component", "http").Logger()
	b := newBase(log)

	// Público
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleAlmacen, jwt.RoleRRHH)
	stock := RequireRole(jwt.RoleAdmin, jwt.RoleAlmacen)
	admin := RequireRole(jwt.RoleAdmin)
	idem := Idempotency(deps.Idempotency, deps.IdempotencyTTL, log)

	// Catálogo
	items := api.Group("/items")
	itemHandler := NewItemHandler(b, deps.CatalogUC, deps.Auditor)
	items.Post("/", stock, itemHandler.Create)
	items.Get("/", anyRole, itemHandler.List)
	items.Get("/:id", anyRole, itemHandler.GetByID)
	items.Put("/:id", stock, itemHandler.Update)
	items.Delete("/:id", admin, itemHandler.Deactivate)
	items.Post("/:id/release-hold", admin, itemHandler.ReleaseHold)
	items.Get("/:id/audit", admin, itemHandler.Audit)

	// Libro de movimientos
	movementHandler := NewMovementHandler(b, deps.MovementUC)
	items.Post("/:id/movements", stock, idem, movementHandler.Record)
	items.Get("/:id/movements", anyRole, movementHandler.History)

	// Entregas
	deliveries := api.Group("/deliveries")
	deliveryHandler := NewDeliveryHandler(b, deps.Scheduler)
	deliveries.Post("/", anyRole, idem, deliveryHandler.Issue)
	deliveries.Get("/", anyRole, deliveryHandler.List)

	// Alertas y auditoría
	alertHandler := NewAlertHandler(b, deps.Alerts, deps.Auditor)
	api.Get("/alerts", anyRole, alertHandler.List)
	api.Post("/audit", admin, alertHandler.AuditAll)
}
