/**
 * @description
 * Price comparison engine.
 * Resolves requested ingredients into per-store cost breakdowns through three
 * fallback tiers: live upstream data, the durable store, then deterministic
 * synthetic pricing. Upstream flakiness never reaches the caller; the worst
 * outcome is an explicit empty "none" result.
 *
 * @dependencies
 * - backend/internal/models
 * - backend/internal/opendosm
 * - github.com/shopspring/decimal: money aggregation and rounding
 */

package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/belanja-project/backend/internal/logger"
	"github.com/belanja-project/backend/internal/models"
	"github.com/belanja-project/backend/internal/opendosm"
	"github.com/shopspring/decimal"
)

// Data-source tiers carried on every comparison response
const (
	SourceLive      = "live"
	SourceDatabase  = "database"
	SourceSynthetic = "synthetic"
	SourceNone      = "none"
)

// ErrNoIngredients rejects an empty comparison request
var ErrNoIngredients = errors.New("at least one ingredient is required")

// GroceryItem is one matched line item in a store comparison
type GroceryItem struct {
	ItemName    string    `json:"item_name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Unit        string    `json:"unit"`
	PricePerKg  float64   `json:"price_per_kg"`
	PremiseName string    `json:"premise_name"`
	ChainName   string    `json:"chain_name"`
	State       string    `json:"state"`
	PriceDate   time.Time `json:"price_date"`
}

// StoreComparison aggregates matched items for one store.
// Invariant: ItemsFound + ItemsMissing == len(requested ingredients), where
// ItemsFound counts distinct requested ingredients matched at the store.
// TotalCost sums every matched record, so one ingredient matching several
// records contributes all of them.
type StoreComparison struct {
	PremiseCode  string        `json:"premise_code"`
	PremiseName  string        `json:"premise_name"`
	ChainName    string        `json:"chain_name"`
	State        string        `json:"state"`
	Address      string        `json:"address"`
	Items        []GroceryItem `json:"items"`
	TotalCost    float64       `json:"total_cost"`
	ItemsFound   int           `json:"items_found"`
	ItemsMissing int           `json:"items_missing"`
}

// PriceRange is the min/max store total over the returned set
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CompareResponse is the full comparison result
type CompareResponse struct {
	RequestedIngredients []string          `json:"requested_ingredients"`
	LocationFilter       string            `json:"location_filter,omitempty"`
	Stores               []StoreComparison `json:"stores"`
	CheapestStore        *StoreComparison  `json:"cheapest_store,omitempty"`
	AverageTotalCost     float64           `json:"average_total_cost"`
	PriceRange           PriceRange        `json:"price_range"`
	DataSource           string            `json:"data_source"`
}

// syntheticChains is the fixed store set of the last-resort tier
var syntheticChains = []struct {
	PremiseCode string
	PremiseName string
	ChainName   string
	State       string
	Address     string
	Multiplier  float64
}{
	{"T001KL", "TESCO EXTRA AMPANG", "Tesco", "Selangor", "Jalan Ampang, Ampang, Selangor", 1.0},
	{"99001KL", "99 SPEEDMART CHERAS", "99 Speedmart", "Kuala Lumpur", "Jalan Cheras, Cheras, KL", 0.85},
	{"G001KL", "GIANT HYPERMARKET SUBANG", "Giant", "Selangor", "Subang Jaya, Selangor", 0.95},
	{"VG001KL", "VILLAGE GROCER BANGSAR", "Village Grocer", "Kuala Lumpur", "Bangsar, KL", 1.25},
}

// syntheticBasePrices maps ingredient keywords to base RM-per-kg prices
var syntheticBasePrices = []struct {
	Keyword string
	Price   float64
}{
	{"coconut milk", 2.90},
	{"soy sauce", 3.50},
	{"rice", 2.50},
	{"chicken", 12.50},
	{"onion", 4.20},
	{"tomato", 5.50},
	{"oil", 6.80},
	{"egg", 0.60},
	{"milk", 4.50},
	{"chili", 8.00},
	{"garlic", 20.00},
}

// GroceryService is the price comparison engine
type GroceryService struct {
	Store     PriceStore
	Processor *PriceProcessor
}

// NewGroceryService wires the comparison engine
func NewGroceryService(store PriceStore, processor *PriceProcessor) *GroceryService {
	return &GroceryService{Store: store, Processor: processor}
}

// Compare produces a per-store cost breakdown for the requested ingredients,
// falling through live -> database -> synthetic tiers until one yields at
// least one store. A cancelled or expired context skips straight to the
// synthetic tier rather than waiting on a stuck live lookup.
func (s *GroceryService) Compare(ctx context.Context, ingredients []string, location string) (*CompareResponse, error) {
	if len(ingredients) == 0 {
		return nil, ErrNoIngredients
	}

	logger.Info("🔍 Comparing prices for %d ingredients", len(ingredients))

	if ctx.Err() != nil {
		return s.syntheticComparison(ingredients, location), nil
	}

	// Tier 1: live data, refreshing first when stale
	if stores, ok := s.liveComparison(ctx, ingredients, location); ok {
		return buildResponse(ingredients, location, stores, SourceLive), nil
	}
	if ctx.Err() != nil {
		return s.syntheticComparison(ingredients, location), nil
	}

	// Tier 2: durable store, recent window only
	if stores, ok := s.databaseComparison(ctx, ingredients, location); ok {
		logger.Info("📚 Using database fallback for price comparison")
		return buildResponse(ingredients, location, stores, SourceDatabase), nil
	}

	// Tier 3: synthetic pricing always returns something
	return s.syntheticComparison(ingredients, location), nil
}

func (s *GroceryService) liveComparison(ctx context.Context, ingredients []string, location string) ([]StoreComparison, bool) {
	if s.Processor == nil {
		return nil, false
	}

	if s.Processor.NeedsRefresh() {
		logger.Info("🔄 Refreshing PriceCatcher data before comparison")
		if _, err := s.Processor.RefreshAll(ctx); err != nil {
			logger.Error("Refresh before comparison failed: %v", err)
		}
	}

	prices, err := s.Processor.GetIngredientPrices(ctx, ingredients, location)
	if err != nil {
		return nil, false
	}

	total := 0
	for _, records := range prices {
		total += len(records)
	}
	if total == 0 {
		return nil, false
	}

	stores := groupByStore(ingredients, func(yield func(ingredientIdx int, record models.GroceryPrice)) {
		for idx, ingredient := range ingredients {
			for _, record := range prices[ingredient] {
				yield(idx, record)
			}
		}
	})
	return stores, len(stores) > 0
}

func (s *GroceryService) databaseComparison(ctx context.Context, ingredients []string, location string) ([]StoreComparison, bool) {
	if s.Store == nil {
		return nil, false
	}

	retention := DefaultRetention
	if s.Processor != nil {
		retention = s.Processor.Retention()
	}

	records, err := s.Store.SearchRecent(ctx, PriceQuery{
		Ingredients: ingredients,
		State:       location,
		Since:       time.Now().Add(-retention),
		Limit:       200,
	})
	if err != nil {
		logger.Error("Database price lookup failed: %v", err)
		return nil, false
	}
	if len(records) == 0 {
		return nil, false
	}

	stores := groupByStore(ingredients, func(yield func(ingredientIdx int, record models.GroceryPrice)) {
		for _, record := range records {
			idx := matchIngredient(ingredients, record.NormalizedItemName)
			if idx < 0 {
				continue
			}
			yield(idx, record)
		}
	})
	return stores, len(stores) > 0
}

// syntheticComparison prices ingredients off the fixed chain table.
// Deterministic by construction; tagged so callers can tell it apart.
func (s *GroceryService) syntheticComparison(ingredients []string, location string) *CompareResponse {
	logger.Info("🎭 Using synthetic pricing as final fallback")

	var stores []StoreComparison
	for _, chain := range syntheticChains {
		if location != "" && !strings.Contains(strings.ToLower(chain.State), strings.ToLower(location)) {
			continue
		}

		var items []GroceryItem
		total := decimal.Zero
		found := 0

		for _, ingredient := range ingredients {
			base, ok := syntheticBasePrice(ingredient)
			if !ok {
				continue
			}
			price := decimal.NewFromFloat(base).
				Mul(decimal.NewFromFloat(chain.Multiplier)).
				Round(2)

			found++
			total = total.Add(price)
			items = append(items, GroceryItem{
				ItemName:    titleCase(ingredient),
				Category:    "Food",
				Price:       price.InexactFloat64(),
				Unit:        "kg",
				PricePerKg:  price.InexactFloat64(),
				PremiseName: chain.PremiseName,
				ChainName:   chain.ChainName,
				State:       chain.State,
				PriceDate:   time.Now(),
			})
		}

		stores = append(stores, StoreComparison{
			PremiseCode:  chain.PremiseCode,
			PremiseName:  chain.PremiseName,
			ChainName:    chain.ChainName,
			State:        chain.State,
			Address:      chain.Address,
			Items:        items,
			TotalCost:    total.Round(2).InexactFloat64(),
			ItemsFound:   found,
			ItemsMissing: len(ingredients) - found,
		})
	}

	source := SourceSynthetic
	if len(stores) == 0 {
		source = SourceNone
	}
	return buildResponse(ingredients, location, stores, source)
}

// titleCase capitalizes the first letter of each space-separated word
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// syntheticBasePrice finds the first keyword contained in the ingredient name
func syntheticBasePrice(ingredient string) (float64, bool) {
	needle := strings.ToLower(ingredient)
	for _, entry := range syntheticBasePrices {
		if strings.Contains(needle, entry.Keyword) {
			return entry.Price, true
		}
	}
	return 0, false
}

// matchIngredient attributes a record to the first requested ingredient whose
// name is contained in the record's normalized item name
func matchIngredient(ingredients []string, normalizedItemName string) int {
	for idx, ingredient := range ingredients {
		if strings.Contains(normalizedItemName, toSearchTerm(ingredient)) {
			return idx
		}
	}
	return -1
}

// groupByStore folds matched (ingredient, record) pairs into per-store
// aggregates. Every matched record is summed into the store total; found
// counts distinct requested ingredients.
func groupByStore(ingredients []string, emit func(yield func(ingredientIdx int, record models.GroceryPrice))) []StoreComparison {
	type storeAccumulator struct {
		comparison StoreComparison
		total      decimal.Decimal
		matched    map[int]bool
	}

	accumulators := make(map[string]*storeAccumulator)
	var order []string

	emit(func(ingredientIdx int, record models.GroceryPrice) {
		if record.PremiseCode == "" {
			return
		}

		acc, ok := accumulators[record.PremiseCode]
		if !ok {
			chainName := record.ChainName
			if chainName == "" {
				chainName = opendosm.MapPremiseToChain(record.PremiseName)
			}
			acc = &storeAccumulator{
				comparison: StoreComparison{
					PremiseCode: record.PremiseCode,
					PremiseName: record.PremiseName,
					ChainName:   chainName,
					State:       record.State,
					Address:     record.PremiseAddress,
				},
				matched: make(map[int]bool),
			}
			accumulators[record.PremiseCode] = acc
			order = append(order, record.PremiseCode)
		}

		acc.comparison.Items = append(acc.comparison.Items, GroceryItem{
			ItemName:    record.ItemName,
			Category:    record.ItemCategory,
			Price:       record.Price,
			Unit:        record.Unit,
			PricePerKg:  record.PricePerKg,
			PremiseName: record.PremiseName,
			ChainName:   acc.comparison.ChainName,
			State:       record.State,
			PriceDate:   record.PriceDate,
		})
		acc.total = acc.total.Add(decimal.NewFromFloat(record.Price))
		acc.matched[ingredientIdx] = true
	})

	stores := make([]StoreComparison, 0, len(accumulators))
	for _, code := range order {
		acc := accumulators[code]
		acc.comparison.TotalCost = acc.total.Round(2).InexactFloat64()
		acc.comparison.ItemsFound = len(acc.matched)
		missing := len(ingredients) - acc.comparison.ItemsFound
		if missing < 0 {
			missing = 0
		}
		acc.comparison.ItemsMissing = missing
		stores = append(stores, acc.comparison)
	}
	return stores
}

// buildResponse sorts stores ascending by total cost (premise code breaks
// ties deterministically) and derives the summary statistics
func buildResponse(ingredients []string, location string, stores []StoreComparison, source string) *CompareResponse {
	sort.SliceStable(stores, func(i, j int) bool {
		if stores[i].TotalCost != stores[j].TotalCost {
			return stores[i].TotalCost < stores[j].TotalCost
		}
		return stores[i].PremiseCode < stores[j].PremiseCode
	})

	resp := &CompareResponse{
		RequestedIngredients: ingredients,
		LocationFilter:       location,
		Stores:               stores,
		DataSource:           source,
	}

	if len(stores) == 0 {
		return resp
	}

	sum := decimal.Zero
	minCost := stores[0].TotalCost
	maxCost := stores[0].TotalCost
	for _, store := range stores {
		sum = sum.Add(decimal.NewFromFloat(store.TotalCost))
		if store.TotalCost < minCost {
			minCost = store.TotalCost
		}
		if store.TotalCost > maxCost {
			maxCost = store.TotalCost
		}
	}

	cheapest := stores[0]
	resp.CheapestStore = &cheapest
	resp.AverageTotalCost = sum.Div(decimal.NewFromInt(int64(len(stores)))).Round(2).InexactFloat64()
	resp.PriceRange = PriceRange{Min: minCost, Max: maxCost}
	return resp
}
