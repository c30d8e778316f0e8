package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/belanja-project/backend/internal/models"
)

func seedDatabaseTier(store *fakePriceStore) {
	now := time.Now()
	store.InsertBatch(context.Background(), []models.GroceryPrice{
		{
			PremiseCode: "P1", PremiseName: "TESCO EXTRA AMPANG", State: "Selangor",
			ItemCode: "I1", ItemName: "AYAM BERSIH - STANDARD", ItemCategory: "Meat",
			Price: 12.50, Unit: "kg", PriceDate: now,
			NormalizedItemName: "ayam bersih - standard chicken", PricePerKg: 12.50,
			CreatedAt: now,
		},
		{
			PremiseCode: "P1", PremiseName: "TESCO EXTRA AMPANG", State: "Selangor",
			ItemCode: "I2", ItemName: "BERAS SUPER", ItemCategory: "Grains",
			Price: 2.50, Unit: "kg", PriceDate: now,
			NormalizedItemName: "beras super rice", PricePerKg: 2.50,
			CreatedAt: now,
		},
		{
			PremiseCode: "P2", PremiseName: "99 SPEEDMART CHERAS", State: "Kuala Lumpur",
			ItemCode: "I2", ItemName: "BERAS SUPER", ItemCategory: "Grains",
			Price: 2.20, Unit: "kg", PriceDate: now,
			NormalizedItemName: "beras super rice", PricePerKg: 2.20,
			CreatedAt: now,
		},
	})
}

func TestCompareRejectsEmptyRequest(t *testing.T) {
	service := NewGroceryService(newFakePriceStore(), nil)
	_, err := service.Compare(context.Background(), nil, "")
	if !errors.Is(err, ErrNoIngredients) {
		t.Fatalf("expected ErrNoIngredients, got %v", err)
	}
}

func TestCompareDatabaseTier(t *testing.T) {
	store := newFakePriceStore()
	seedDatabaseTier(store)
	service := NewGroceryService(store, nil) // no processor: live tier is skipped

	resp, err := service.Compare(context.Background(), []string{"chicken", "rice"}, "")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	if resp.DataSource != SourceDatabase {
		t.Fatalf("data source = %q, want database", resp.DataSource)
	}
	if len(resp.Stores) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(resp.Stores))
	}

	// Results sort ascending by total: the Speedmart with only rice is first
	if resp.Stores[0].PremiseCode != "P2" {
		t.Errorf("cheapest first: got %q", resp.Stores[0].PremiseCode)
	}

	var tesco *StoreComparison
	for i := range resp.Stores {
		if resp.Stores[i].PremiseCode == "P1" {
			tesco = &resp.Stores[i]
		}
	}
	if tesco == nil {
		t.Fatal("Tesco store missing from results")
	}

	if tesco.ChainName != "Tesco" {
		t.Errorf("chain = %q, want Tesco", tesco.ChainName)
	}
	if tesco.ItemsFound != 2 || tesco.ItemsMissing != 0 {
		t.Errorf("found/missing = %d/%d, want 2/0", tesco.ItemsFound, tesco.ItemsMissing)
	}
	if math.Abs(tesco.TotalCost-15.00) > 1e-9 {
		t.Errorf("total = %v, want 15.00", tesco.TotalCost)
	}

	if resp.CheapestStore == nil || resp.CheapestStore.PremiseCode != "P2" {
		t.Errorf("cheapest store wrong: %+v", resp.CheapestStore)
	}
	if resp.PriceRange.Min != resp.Stores[0].TotalCost || resp.PriceRange.Max != resp.Stores[len(resp.Stores)-1].TotalCost {
		t.Errorf("price range inconsistent: %+v", resp.PriceRange)
	}
}

func TestCompareInvariantFoundPlusMissing(t *testing.T) {
	store := newFakePriceStore()
	seedDatabaseTier(store)
	service := NewGroceryService(store, nil)

	requested := []string{"chicken", "rice", "dragonfruit"}
	resp, err := service.Compare(context.Background(), requested, "")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	for _, s := range resp.Stores {
		if s.ItemsFound+s.ItemsMissing != len(requested) {
			t.Errorf("store %s: found %d + missing %d != %d requested",
				s.PremiseCode, s.ItemsFound, s.ItemsMissing, len(requested))
		}
	}
}

func TestCompareSumsDuplicateMatches(t *testing.T) {
	store := newFakePriceStore()
	now := time.Now()
	// Two distinct rice products at the same store, both matching "rice"
	store.InsertBatch(context.Background(), []models.GroceryPrice{
		{
			PremiseCode: "P1", PremiseName: "TESCO EXTRA AMPANG",
			ItemCode: "I2", ItemName: "BERAS SUPER", Price: 2.50, Unit: "kg",
			NormalizedItemName: "beras super rice", PriceDate: now, CreatedAt: now,
		},
		{
			PremiseCode: "P1", PremiseName: "TESCO EXTRA AMPANG",
			ItemCode: "I3", ItemName: "BERAS WANGI", Price: 3.80, Unit: "kg",
			NormalizedItemName: "beras wangi rice", PriceDate: now, CreatedAt: now,
		},
	})
	service := NewGroceryService(store, nil)

	resp, err := service.Compare(context.Background(), []string{"rice"}, "")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if len(resp.Stores) != 1 {
		t.Fatalf("expected 1 store, got %d", len(resp.Stores))
	}

	s := resp.Stores[0]
	if math.Abs(s.TotalCost-6.30) > 1e-9 {
		t.Errorf("total must sum every matched record: got %v, want 6.30", s.TotalCost)
	}
	if s.ItemsFound != 1 {
		t.Errorf("found counts distinct ingredients: got %d, want 1", s.ItemsFound)
	}
	if len(s.Items) != 2 {
		t.Errorf("both records must be listed: got %d items", len(s.Items))
	}
}

func TestCompareSyntheticFallback(t *testing.T) {
	// Dead upstream, empty store: compare must still answer
	srv := newUpstream(t, "pricecatcher", "lookup_premise", "lookup_item")
	store := newFakePriceStore()
	processor := newTestProcessor(srv.URL, store)
	service := NewGroceryService(store, processor)

	resp, err := service.Compare(context.Background(), []string{"rice"}, "")
	if err != nil {
		t.Fatalf("compare must not fail on upstream outage: %v", err)
	}

	if resp.DataSource != SourceSynthetic {
		t.Fatalf("data source = %q, want synthetic", resp.DataSource)
	}
	if len(resp.Stores) != len(syntheticChains) {
		t.Fatalf("expected all %d synthetic stores, got %d", len(syntheticChains), len(resp.Stores))
	}

	// Synthetic pricing is deterministic: rice base 2.50 times the multiplier
	for _, s := range resp.Stores {
		var multiplier float64
		for _, chain := range syntheticChains {
			if chain.PremiseCode == s.PremiseCode {
				multiplier = chain.Multiplier
			}
		}
		want := math.Round(2.50*multiplier*100) / 100
		if math.Abs(s.TotalCost-want) > 1e-9 {
			t.Errorf("store %s total = %v, want %v", s.PremiseCode, s.TotalCost, want)
		}
	}
}

func TestCompareSyntheticLocationFilter(t *testing.T) {
	service := NewGroceryService(newFakePriceStore(), nil)

	resp, err := service.Compare(context.Background(), []string{"rice"}, "Kuala Lumpur")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if resp.DataSource != SourceSynthetic {
		t.Fatalf("data source = %q, want synthetic", resp.DataSource)
	}
	for _, s := range resp.Stores {
		if s.State != "Kuala Lumpur" {
			t.Errorf("location filter leaked store in %q", s.State)
		}
	}
}

func TestCompareUnknownIngredientYieldsNone(t *testing.T) {
	service := NewGroceryService(newFakePriceStore(), nil)

	resp, err := service.Compare(context.Background(), []string{"unobtainium"}, "Sarawak")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if resp.DataSource != SourceNone {
		t.Fatalf("data source = %q, want none", resp.DataSource)
	}
	if len(resp.Stores) != 0 || resp.CheapestStore != nil {
		t.Fatalf("none result must be empty: %+v", resp)
	}
}

func TestCompareCancelledContextSkipsToSynthetic(t *testing.T) {
	srv := newUpstream(t)
	store := newFakePriceStore()
	seedDatabaseTier(store)
	processor := newTestProcessor(srv.URL, store)
	service := NewGroceryService(store, processor)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := service.Compare(ctx, []string{"rice"}, "")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if resp.DataSource != SourceSynthetic {
		t.Fatalf("cancelled context must fall straight to synthetic, got %q", resp.DataSource)
	}
}
