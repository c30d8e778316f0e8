/**
 * @description
 * Refresh orchestrator for PriceCatcher data.
 * Drives the three concurrent upstream fetches, normalizes every joined
 * triple, purges expired durable rows, persists the fresh batch, and
 * repopulates the cache. Tracks the staleness clock consulted before every
 * comparison request.
 *
 * @dependencies
 * - backend/internal/opendosm
 * - backend/internal/models
 * - github.com/google/uuid: refresh run IDs
 *
 * @notes
 * - A single failed fetch resolves to an empty dataset. All three failing,
 *   or a persistence failure, marks the refresh as failed and leaves
 *   lastRefresh untouched.
 * - Persistence happens before cache repopulation, so a comparison reading
 *   durable data never sees entries the cache already advertises.
 */

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/belanja-project/backend/internal/logger"
	"github.com/belanja-project/backend/internal/models"
	"github.com/belanja-project/backend/internal/opendosm"
	"github.com/google/uuid"
)

const (
	// DefaultRefreshInterval is how stale data may get before a refresh
	DefaultRefreshInterval = 24 * time.Hour
	// DefaultRetention is how long durable records survive
	DefaultRetention = 7 * 24 * time.Hour

	refreshCacheTTL         = 24 * time.Hour
	ingredientLookupTTL     = time.Hour
	ingredientUpstreamLimit = 50
)

// Refresh state machine states
const (
	RefreshStateIdle       = "idle"
	RefreshStateRefreshing = "refreshing"
	RefreshStateFailed     = "failed"
)

// RefreshStats summarizes one refresh run
type RefreshStats struct {
	RunID             string    `json:"run_id"`
	Status            string    `json:"status"` // "completed", "partial" or "failed"
	RawTransactions   int       `json:"raw_transactions"`
	RawPremises       int       `json:"raw_premises"`
	RawItems          int       `json:"raw_items"`
	Processed         int       `json:"processed_records"`
	Skipped           int       `json:"skipped_records"`
	Purged            int64     `json:"deleted_old_records"`
	Inserted          int64     `json:"inserted_new_records"`
	LastRefresh       time.Time `json:"last_refresh"`
	ProcessingSeconds float64   `json:"processing_time_seconds"`
	DataSource        string    `json:"data_source"`
}

// StoreSnapshot is the per-premise summary cached after each refresh
type StoreSnapshot struct {
	PremiseCode string `json:"premise_code"`
	PremiseName string `json:"premise_name"`
	ChainName   string `json:"chain_name"`
	Address     string `json:"address"`
	State       string `json:"state"`
	District    string `json:"district"`
}

// PriceProcessor coordinates fetch, normalization, persistence and caching
type PriceProcessor struct {
	client *opendosm.Client
	store  PriceStore
	cache  *CacheService

	refreshInterval time.Duration
	retention       time.Duration

	mu          sync.Mutex
	state       string
	lastRefresh time.Time
}

// NewPriceProcessor wires the refresh pipeline
func NewPriceProcessor(client *opendosm.Client, store PriceStore, cache *CacheService, refreshInterval, retention time.Duration) *PriceProcessor {
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &PriceProcessor{
		client:          client,
		store:           store,
		cache:           cache,
		refreshInterval: refreshInterval,
		retention:       retention,
		state:           RefreshStateIdle,
	}
}

// NeedsRefresh reports whether the durable data is stale
func (p *PriceProcessor) NeedsRefresh() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastRefresh.IsZero() {
		return true
	}
	return time.Since(p.lastRefresh) > p.refreshInterval
}

// LastRefresh returns the timestamp of the last completed refresh (zero if never)
func (p *PriceProcessor) LastRefresh() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRefresh
}

// State returns the current state machine state
func (p *PriceProcessor) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *PriceProcessor) setState(state string) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

// RefreshAll runs one complete refresh cycle.
// Concurrent callers are tolerated: refreshes are idempotent, so two
// overlapping runs duplicate upstream calls but converge on the same durable
// state. Returns ErrUpstreamUnavailable only when all three fetches failed.
func (p *PriceProcessor) RefreshAll(ctx context.Context) (*RefreshStats, error) {
	start := time.Now()
	stats := &RefreshStats{
		RunID:      uuid.NewString(),
		DataSource: "OpenDOSM PriceCatcher API",
	}

	logger.Info("🔄 Starting PriceCatcher data refresh (run %s)", stats.RunID)
	p.setState(RefreshStateRefreshing)

	transactions, premises, items, failures := p.fetchAll(ctx)
	stats.RawTransactions = len(transactions)
	stats.RawPremises = len(premises)
	stats.RawItems = len(items)

	if failures == 3 {
		p.setState(RefreshStateFailed)
		stats.Status = "failed"
		stats.ProcessingSeconds = time.Since(start).Seconds()
		p.setState(RefreshStateIdle)
		logger.Error("❌ Data refresh failed: all upstream datasets unavailable")
		return stats, opendosm.ErrUpstreamUnavailable
	}

	records, snapshots, skipped := p.normalizeAll(transactions, premises, items)
	stats.Processed = len(records)
	stats.Skipped = skipped

	// Persist first, then cache: a reader of the durable store must never
	// trail the cache within one refresh cycle.
	now := time.Now()
	// A failed purge is tolerated: expired rows linger one more cycle.
	purged, err := p.store.PurgeOlderThan(ctx, now.Add(-p.retention))
	if err != nil {
		logger.Error("Failed to purge expired price records: %v", err)
	}
	stats.Purged = purged

	inserted, err := p.store.InsertBatch(ctx, records)
	if err != nil {
		// Nothing durable landed: the data is still stale, so the staleness
		// clock must not advance.
		p.setState(RefreshStateIdle)
		stats.Status = "failed"
		stats.ProcessingSeconds = time.Since(start).Seconds()
		logger.Error("❌ Data refresh failed: could not persist records: %v", err)
		return stats, fmt.Errorf("persisting refreshed price records: %w", err)
	}
	stats.Inserted = inserted

	p.cacheRefreshedData(ctx, records, snapshots)

	p.mu.Lock()
	p.lastRefresh = now
	p.state = RefreshStateIdle
	p.mu.Unlock()

	if failures > 0 {
		stats.Status = "partial"
	} else {
		stats.Status = "completed"
	}
	stats.LastRefresh = now
	stats.ProcessingSeconds = time.Since(start).Seconds()

	logger.Info("✅ Data refresh %s: %d raw rows -> %d records (%d inserted, %d purged, %d skipped) in %.2fs",
		stats.Status, stats.RawTransactions, stats.Processed, stats.Inserted, stats.Purged, stats.Skipped, stats.ProcessingSeconds)
	return stats, nil
}

// fetchAll runs the three dataset fetches concurrently with independent
// failure isolation: a failed fetch resolves to an empty slice.
func (p *PriceProcessor) fetchAll(ctx context.Context) ([]opendosm.RawTransaction, []opendosm.RawPremise, []opendosm.RawItem, int) {
	var (
		wg           sync.WaitGroup
		transactions []opendosm.RawTransaction
		premises     []opendosm.RawPremise
		items        []opendosm.RawItem
		txErr        error
		premiseErr   error
		itemErr      error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		transactions, txErr = p.client.GetTransactions(ctx, opendosm.DefaultTransactionFetchLimit, "")
	}()
	go func() {
		defer wg.Done()
		premises, premiseErr = p.client.GetPremises(ctx)
	}()
	go func() {
		defer wg.Done()
		items, itemErr = p.client.GetItems(ctx)
	}()
	wg.Wait()

	failures := 0
	if txErr != nil {
		logger.Error("Failed to fetch transactions: %v", txErr)
		transactions = nil
		failures++
	}
	if premiseErr != nil {
		logger.Error("Failed to fetch premises: %v", premiseErr)
		premises = nil
		failures++
	}
	if itemErr != nil {
		logger.Error("Failed to fetch items: %v", itemErr)
		items = nil
		failures++
	}

	return transactions, premises, items, failures
}

// normalizeAll joins transactions against the lookup datasets and produces
// durable records plus the per-store snapshots cached for the admin surface.
// One (premise, item, date) observation is kept per refresh; malformed rows
// are skipped without aborting the batch.
func (p *PriceProcessor) normalizeAll(transactions []opendosm.RawTransaction, premises []opendosm.RawPremise, items []opendosm.RawItem) ([]models.GroceryPrice, map[string]StoreSnapshot, int) {
	premiseByCode := make(map[string]opendosm.RawPremise, len(premises))
	for _, premise := range premises {
		premiseByCode[premise.PremiseCode] = premise
	}
	itemByCode := make(map[string]opendosm.RawItem, len(items))
	for _, item := range items {
		itemByCode[item.ItemCode] = item
	}

	now := time.Now()
	records := make([]models.GroceryPrice, 0, len(transactions))
	snapshots := make(map[string]StoreSnapshot)
	seen := make(map[string]bool, len(transactions))
	skipped := 0

	for _, tx := range transactions {
		var premise *opendosm.RawPremise
		if row, ok := premiseByCode[tx.PremiseCode]; ok {
			premise = &row
		}
		var item *opendosm.RawItem
		if row, ok := itemByCode[tx.ItemCode]; ok {
			item = &row
		}

		record, err := normalizeRecord(tx, premise, item, now)
		if err != nil {
			skipped++
			continue
		}

		key := record.PremiseCode + "|" + record.ItemCode + "|" + tx.Date
		if seen[key] {
			continue
		}
		seen[key] = true
		records = append(records, record)

		if record.PremiseCode != "" {
			if _, ok := snapshots[record.PremiseCode]; !ok {
				snapshot := StoreSnapshot{
					PremiseCode: record.PremiseCode,
					PremiseName: record.PremiseName,
					ChainName:   record.ChainName,
					Address:     record.PremiseAddress,
					State:       record.State,
				}
				if premise != nil {
					snapshot.District = premise.District
				}
				snapshots[record.PremiseCode] = snapshot
			}
		}
	}

	return records, snapshots, skipped
}

// cacheRefreshedData repopulates the store snapshot and per-category entries
func (p *PriceProcessor) cacheRefreshedData(ctx context.Context, records []models.GroceryPrice, snapshots map[string]StoreSnapshot) {
	if p.cache == nil {
		return
	}

	p.cache.Set(ctx, StoresKey(), snapshots, refreshCacheTTL)

	byCategory := make(map[string][]models.GroceryPrice)
	for _, record := range records {
		category := record.ItemCategory
		if category == "" {
			category = "Other"
		}
		byCategory[category] = append(byCategory[category], record)
	}
	for category, categoryRecords := range byCategory {
		p.cache.Set(ctx, CategoryKey(category), categoryRecords, refreshCacheTTL)
	}

	logger.Info("💾 Cached %d stores and %d categories", len(snapshots), len(byCategory))
}

// GetIngredientPrices resolves normalized records per requested ingredient,
// cache-first with an upstream search on miss. Failures for one ingredient
// degrade to an empty slice for that ingredient.
func (p *PriceProcessor) GetIngredientPrices(ctx context.Context, ingredients []string, state string) (map[string][]models.GroceryPrice, error) {
	results := make(map[string][]models.GroceryPrice, len(ingredients))

	for _, ingredient := range ingredients {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		key := IngredientPriceKey(ingredient, state)

		var cached []models.GroceryPrice
		if p.cache != nil && p.cache.Get(ctx, key, &cached) {
			results[ingredient] = cached
			continue
		}

		rows, err := p.client.SearchPricesByItem(ctx, ingredient, state, ingredientUpstreamLimit)
		if err != nil {
			logger.Error("Upstream lookup failed for %q: %v", ingredient, err)
			results[ingredient] = nil
			continue
		}

		now := time.Now()
		prices := make([]models.GroceryPrice, 0, len(rows))
		for _, tx := range rows {
			record, err := normalizeRecord(tx, nil, nil, now)
			if err != nil {
				continue
			}
			prices = append(prices, record)
		}
		results[ingredient] = prices

		if p.cache != nil {
			p.cache.Set(ctx, key, prices, ingredientLookupTTL)
		}
	}

	return results, nil
}

// Retention exposes the configured durable retention window
func (p *PriceProcessor) Retention() time.Duration {
	return p.retention
}
