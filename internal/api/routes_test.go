package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/belanja-project/backend/internal/config"
	"github.com/gofiber/fiber/v2"
)

func newRoutedApp() *fiber.App {
	// Same router config as cmd/api
	app := fiber.New(fiber.Config{
		StrictRouting: true,
		CaseSensitive: true,
	})
	SetupRoutes(app, nil, nil, &config.Config{})
	return app
}

func TestRoutesRegistered(t *testing.T) {
	app := newRoutedApp()

	registered := make(map[string]bool)
	for _, routes := range app.Stack() {
		for _, route := range routes {
			registered[route.Method+" "+route.Path] = true
		}
	}

	// Strict routing: every endpoint must resolve at its slashless path
	for _, want := range []string{
		"GET /api/health",
		"POST /api/grocery/compare",
		"GET /api/grocery/stores",
		"GET /api/grocery/items",
		"GET /api/recipes",
		"GET /api/recipes/:id",
		"POST /api/meal/suggest",
		"GET /api/admin/health",
		"GET /api/admin/opendosm/status",
		"GET /api/admin/cache/stats",
		"POST /api/admin/refresh",
		"POST /api/admin/cache/clear",
	} {
		if !registered[want] {
			t.Errorf("route %q not registered", want)
		}
	}
}

func TestHealthReachableUnderStrictRouting(t *testing.T) {
	app := newRoutedApp()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
