package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/belanja-project/backend/internal/models"
	"github.com/belanja-project/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// emptyPriceStore satisfies services.PriceStore with no data, forcing the
// comparison engine onto its synthetic tier
type emptyPriceStore struct{}

func (emptyPriceStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
func (emptyPriceStore) InsertBatch(ctx context.Context, records []models.GroceryPrice) (int64, error) {
	return 0, nil
}
func (emptyPriceStore) SearchRecent(ctx context.Context, q services.PriceQuery) ([]models.GroceryPrice, error) {
	return nil, nil
}
func (emptyPriceStore) DistinctStores(ctx context.Context, state, chain string) ([]services.StoreInfo, error) {
	return nil, nil
}

func newGroceryApp() *fiber.App {
	service := services.NewGroceryService(emptyPriceStore{}, nil)
	handler := NewGroceryHandler(service)

	app := fiber.New()
	app.Post("/api/grocery/compare", handler.CompareGroceryPrices)
	app.Get("/api/grocery/stores", handler.GetStores)
	app.Get("/api/grocery/items", handler.SearchItems)
	return app
}

func TestCompareGroceryPrices(t *testing.T) {
	app := newGroceryApp()

	body := `{"ingredients": ["rice", "chicken"], "location": ""}`
	req := httptest.NewRequest(http.MethodPost, "/api/grocery/compare", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var decoded services.CompareResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.DataSource != services.SourceSynthetic {
		t.Errorf("data_source = %q, want synthetic", decoded.DataSource)
	}
	if len(decoded.RequestedIngredients) != 2 {
		t.Errorf("requested = %v", decoded.RequestedIngredients)
	}
	if len(decoded.Stores) == 0 {
		t.Error("expected synthetic stores in response")
	}
}

func TestCompareGroceryPricesValidation(t *testing.T) {
	app := newGroceryApp()

	cases := []struct {
		name string
		body string
	}{
		{"empty list", `{"ingredients": []}`},
		{"whitespace only", `{"ingredients": ["  ", ""]}`},
		{"bad json", `{ingredients}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/grocery/compare", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, 5000)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestGetStoresColdDatabase(t *testing.T) {
	app := newGroceryApp()

	req := httptest.NewRequest(http.MethodGet, "/api/grocery/stores", nil)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var decoded struct {
		Stores []services.StoreInfo `json:"stores"`
		Chains []string             `json:"chains"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded.Chains) == 0 {
		t.Error("cold database must fall back to the chain directory")
	}
}

func TestSearchItemsRequiresQuery(t *testing.T) {
	app := newGroceryApp()

	req := httptest.NewRequest(http.MethodGet, "/api/grocery/items", nil)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
