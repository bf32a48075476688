package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dotacion-api/internal/application/dto"
	"github.com/jhoicas/dotacion-api/internal/application/inventory"
	domaininv "github.com/jhoicas/dotacion-api/internal/domain/inventory"
	"github.com/jhoicas/dotacion-api/internal/infrastructure/memory"
	"github.com/jhoicas/dotacion-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/dotacion-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/dotacion-api/pkg/jwt"
)

func fixedNow() time.Time { return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC) }

// newAPI arma la API completa sobre el store en memoria.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()
	items := memory.NewItemRepository(store)
	movs := memory.NewMovementRepository(store)
	deliveries := memory.NewDeliveryRepository(store)
	runner := memory.NewTxRunner(store)
	prom := metrics.NewPrometheus()

	ledger := inventory.NewMovementLedger(movs, log)
	mutator := inventory.NewStockMutator(runner, items, ledger, inventory.DefaultRetryPolicy(), prom, fixedNow, log)
	auditor := inventory.NewIntegrityAuditor(items, ledger, prom, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AppName:        "dotacion-test",
		CatalogUC:      inventory.NewCatalogUseCase(runner, items, ledger, prom, fixedNow, log),
		MovementUC:     inventory.NewMovementUseCase(mutator, ledger, items),
		Scheduler:      inventory.NewDeliveryScheduler(mutator, items, deliveries, prom, fixedNow, log),
		Alerts:         inventory.NewAlertGenerator(items, deliveries, domaininv.DefaultThresholds(), time.UTC, prom, fixedNow, log),
		Auditor:        auditor,
		Idempotency:    memory.NewIdempotencyStore(),
		IdempotencyTTL: time.Hour,
		MetricsHandler: prom.Handler(),
		JWTSecret:      testJWTSecret,
		Log:            log,
	})
	return app
}

type call struct {
	method  string
	path    string
	role    string
	body    any
	headers map[string]string
}

func do(t *testing.T, app *fiber.App, c call, out any) int {
	t.Helper()
	var reader io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.role != "" {
		req.Header.Set("Authorization", tokenForRole(t, c.role))
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, out), string(raw))
		}
	}
	return resp.StatusCode
}

func createItem(t *testing.T, app *fiber.App, qty int, cycle *int) dto.ItemResponse {
	t.Helper()
	var item dto.ItemResponse
	status := do(t, app, call{
		method: http.MethodPost, path: "/api/items", role: pkgjwt.RoleAlmacen,
		body: dto.CreateItemRequest{
			Name: "Botas de seguridad", Category: "protective_equipment", UnitMeasure: "pair",
			QuantityAvailable: qty, MinStock: 2, ReplacementCycleDays: cycle,
		},
	}, &item)
	require.Equal(t, http.StatusCreated, status)
	return item
}

func TestRouter_HealthYMetricsSonPublicos(t *testing.T) {
	app := newAPI(t)

	var health map[string]string
	assert.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/health"}, &health))
	assert.Equal(t, "ok", health["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "dotacion_stock_movements_total")
}

func TestRouter_SinTokenRetorna401(t *testing.T) {
	app := newAPI(t)
	assert.Equal(t, http.StatusUnauthorized, do(t, app, call{method: http.MethodGet, path: "/api/items"}, nil))
}

func TestRouter_FlujoCompleto(t *testing.T) {
	app := newAPI(t)
	cycle := 180
	item := createItem(t, app, 10, &cycle)
	assert.Equal(t, 10, item.QuantityAvailable)

	var mov dto.MovementResponse
	status := do(t, app, call{
		method: http.MethodPost, path: "/api/items/" + item.ID + "/movements", role: pkgjwt.RoleAlmacen,
		body: dto.RecordMovementRequest{Kind: "exit", Quantity: 3, Reason: "consumo"},
	}, &mov)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 10, mov.PreviousQuantity)
	assert.Equal(t, 7, mov.NewQuantity)
	assert.Equal(t, testUserID, mov.CreatedBy)

	var delivery dto.DeliveryResponse
	status = do(t, app, call{
		method: http.MethodPost, path: "/api/deliveries", role: pkgjwt.RoleRRHH,
		body: map[string]any{
			"person_id": "EMP-001", "item_id": item.ID, "quantity": 2,
			"delivery_date": "2024-01-01T00:00:00Z",
		},
	}, &delivery)
	require.Equal(t, http.StatusCreated, status)
	require.NotNil(t, delivery.NextReplacementDate)
	assert.Equal(t, "2024-06-29", delivery.NextReplacementDate.Format("2006-01-02"))

	var history dto.MovementListResponse
	status = do(t, app, call{method: http.MethodGet, path: "/api/items/" + item.ID + "/movements", role: pkgjwt.RoleRRHH}, &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history.Items, 3)
	assert.Equal(t, "entry", history.Items[0].Kind)
	assert.Equal(t, delivery.ID, history.Items[2].DeliveryID)

	var got dto.ItemResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/items/" + item.ID, role: pkgjwt.RoleRRHH}, &got))
	assert.Equal(t, 5, got.QuantityAvailable)

	var deliveries dto.DeliveryListResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/deliveries?person_id=EMP-001", role: pkgjwt.RoleRRHH}, &deliveries))
	require.Len(t, deliveries.Items, 1)

	var audit dto.AuditResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/items/" + item.ID + "/audit", role: pkgjwt.RoleAdmin}, &audit))
	assert.True(t, audit.Consistent)
	assert.Equal(t, 5, audit.ReplayedQuantity)

	var report dto.AuditReportResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodPost, path: "/api/audit", role: pkgjwt.RoleAdmin}, &report))
	assert.Equal(t, 1, report.Checked)
	assert.Zero(t, report.Inconsistent)
}

func TestRouter_MapeoDeErrores(t *testing.T) {
	app := newAPI(t)
	item := createItem(t, app, 2, nil)
	movements := "/api/items/" + item.ID + "/movements"

	tests := []struct {
		name   string
		c      call
		status int
		code   string
	}{
		{"stock insuficiente", call{method: http.MethodPost, path: movements, body: dto.RecordMovementRequest{Kind: "exit", Quantity: 5}}, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"cantidad cero", call{method: http.MethodPost, path: movements, body: dto.RecordMovementRequest{Kind: "entry", Quantity: 0}}, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"tipo desconocido", call{method: http.MethodPost, path: movements, body: dto.RecordMovementRequest{Kind: "robo", Quantity: 1}}, http.StatusBadRequest, "VALIDATION"},
		{"ajuste sin dirección", call{method: http.MethodPost, path: movements, body: dto.RecordMovementRequest{Kind: "adjustment", Quantity: 1}}, http.StatusBadRequest, "VALIDATION"},
		{"ítem inexistente", call{method: http.MethodPost, path: "/api/items/00000000-0000-0000-0000-00000000dead/movements", body: dto.RecordMovementRequest{Kind: "entry", Quantity: 1}}, http.StatusNotFound, "NOT_FOUND"},
		{"cuerpo inválido", call{method: http.MethodPost, path: movements, body: "no-json"}, http.StatusBadRequest, "INVALID_BODY"},
		{"historial de entregas sin filtro", call{method: http.MethodGet, path: "/api/deliveries"}, http.StatusBadRequest, "VALIDATION"},
		{"limit fuera de rango", call{method: http.MethodGet, path: movements + "?limit=500"}, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.c.role = pkgjwt.RoleAdmin
			var body dto.ErrorResponse
			assert.Equal(t, tt.status, do(t, app, tt.c, &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestRouter_Roles(t *testing.T) {
	app := newAPI(t)
	item := createItem(t, app, 1, nil)

	assert.Equal(t, http.StatusForbidden, do(t, app, call{method: http.MethodPost, path: "/api/items", role: pkgjwt.RoleRRHH,
		body: dto.CreateItemRequest{Name: "Guantes", Category: "protective_equipment", UnitMeasure: "pair"}}, nil))
	assert.Equal(t, http.StatusForbidden, do(t, app, call{method: http.MethodPost, path: "/api/items/" + item.ID + "/movements", role: pkgjwt.RoleRRHH,
		body: dto.RecordMovementRequest{Kind: "entry", Quantity: 1}}, nil))
	assert.Equal(t, http.StatusForbidden, do(t, app, call{method: http.MethodPost, path: "/api/audit", role: pkgjwt.RoleAlmacen}, nil))
	assert.Equal(t, http.StatusForbidden, do(t, app, call{method: http.MethodDelete, path: "/api/items/" + item.ID, role: pkgjwt.RoleAlmacen}, nil))
}

func TestRouter_IdempotencyKey(t *testing.T) {
	app := newAPI(t)
	item := createItem(t, app, 10, nil)
	movements := "/api/items/" + item.ID + "/movements"
	headers := map[string]string{apphttp.HeaderIdempotencyKey: "recepcion-42"}

	entry := call{method: http.MethodPost, path: movements, role: pkgjwt.RoleAlmacen, headers: headers,
		body: dto.RecordMovementRequest{Kind: "entry", Quantity: 5}}
	require.Equal(t, http.StatusCreated, do(t, app, entry, nil))

	var dup dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, do(t, app, entry, &dup))
	assert.Equal(t, "DUPLICATE_REQUEST", dup.Code)

	var got dto.ItemResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/items/" + item.ID, role: pkgjwt.RoleAlmacen}, &got))
	assert.Equal(t, 15, got.QuantityAvailable, "la petición repetida no se aplica")
}

func TestRouter_IdempotencyKeySeLiberaSiFalla(t *testing.T) {
	app := newAPI(t)
	item := createItem(t, app, 1, nil)
	c := call{method: http.MethodPost, path: "/api/items/" + item.ID + "/movements", role: pkgjwt.RoleAlmacen,
		headers: map[string]string{apphttp.HeaderIdempotencyKey: "salida-7"},
		body:    dto.RecordMovementRequest{Kind: "exit", Quantity: 3}}

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, app, c, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, app, c, nil), "el reintento se evalúa de nuevo, no como duplicado")
}

func TestRouter_DesactivarBloqueaMovimientos(t *testing.T) {
	app := newAPI(t)
	item := createItem(t, app, 3, nil)

	assert.Equal(t, http.StatusNoContent, do(t, app, call{method: http.MethodDelete, path: "/api/items/" + item.ID, role: pkgjwt.RoleAdmin}, nil))
	assert.Equal(t, http.StatusNoContent, do(t, app, call{method: http.MethodDelete, path: "/api/items/" + item.ID, role: pkgjwt.RoleAdmin}, nil))

	var body dto.ErrorResponse
	status := do(t, app, call{method: http.MethodPost, path: "/api/items/" + item.ID + "/movements", role: pkgjwt.RoleAlmacen,
		body: dto.RecordMovementRequest{Kind: "entry", Quantity: 1}}, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "ITEM_INACTIVE", body.Code)

	var list dto.ItemListResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/items", role: pkgjwt.RoleRRHH}, &list))
	assert.Empty(t, list.Items)
}

func TestRouter_Alertas(t *testing.T) {
	app := newAPI(t)
	createItem(t, app, 0, nil)

	var alerts dto.AlertListResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/alerts", role: pkgjwt.RoleRRHH}, &alerts))
	require.Equal(t, 1, alerts.Total)
	assert.Equal(t, 1, alerts.Critical)
	assert.Equal(t, "low_stock", alerts.Alerts[0].Kind)
}
