package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/dotacion-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/dotacion-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "dotacion-api-test"
	testExpMin    = 60
)

// buildTestApp aplicación Fiber mínima con AuthMiddleware + RequireRole y un handler dummy.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Matriz de acceso: rol del token contra roles permitidos por la ruta.
func TestRequireRole_Matriz(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		header  func(t *testing.T) string
		status  int
		code    string
	}{
		{"admin en ruta admin", []string{pkgjwt.RoleAdmin}, withRole(pkgjwt.RoleAdmin), http.StatusOK, ""},
		{"almacen en ruta admin o almacen", []string{pkgjwt.RoleAdmin, pkgjwt.RoleAlmacen}, withRole(pkgjwt.RoleAlmacen), http.StatusOK, ""},
		{"rrhh en ruta admin", []string{pkgjwt.RoleAdmin}, withRole(pkgjwt.RoleRRHH), http.StatusForbidden, "FORBIDDEN"},
		{"almacen en ruta rrhh", []string{pkgjwt.RoleRRHH}, withRole(pkgjwt.RoleAlmacen), http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", []string{pkgjwt.RoleAdmin}, withRole(""), http.StatusUnauthorized, "MISSING_ROLE"},
		{"sin header", []string{pkgjwt.RoleAdmin}, raw(""), http.StatusUnauthorized, "MISSING_TOKEN"},
		{"token malformado", []string{pkgjwt.RoleAdmin}, raw("Bearer token.invalido.aqui"), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"esquema distinto de Bearer", []string{pkgjwt.RoleAdmin}, raw("Token abc"), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"firma con otro secreto", []string{pkgjwt.RoleAdmin}, signedWith("otro-secreto", pkgjwt.RoleAdmin, testExpMin), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token expirado", []string{pkgjwt.RoleAdmin}, signedWith(testJWTSecret, pkgjwt.RoleAdmin, -1), http.StatusUnauthorized, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, buildTestApp(tt.allowed...), tt.header(t))
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			if tt.code != "" {
				assert.Contains(t, string(body), tt.code)
				return
			}
			var ok map[string]interface{}
			require.NoError(t, json.Unmarshal(body, &ok))
			assert.Equal(t, true, ok["ok"])
		})
	}
}

func withRole(role string) func(*testing.T) string {
	return func(t *testing.T) string { return tokenForRole(t, role) }
}

func raw(header string) func(*testing.T) string {
	return func(*testing.T) string { return header }
}

func signedWith(secret, role string, expMin int) func(*testing.T) string {
	return func(t *testing.T) string {
		tok, err := pkgjwt.Generate(secret, testUserID, role, testIssuer, expMin)
		require.NoError(t, err)
		return "Bearer " + tok
	}
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"role":    apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleAlmacen))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "almacen", body["role"])
}
