/**
 * @description
 * Durable persistence of normalized price records.
 * PriceStore is the narrow interface the refresh pipeline and comparison
 * engine depend on; GormPriceStore is the Postgres implementation.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/jackc/pgconn: Postgres error-code detection for insert retries
 *
 * @notes
 * - InsertBatch upserts on (premise_code, item_code, price_date) so repeated
 *   refreshes with unchanged upstream data do not duplicate rows.
 */

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/belanja-project/backend/internal/logger"
	"github.com/belanja-project/backend/internal/models"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 500

// PriceQuery filters recent price records
type PriceQuery struct {
	Ingredients []string // item-name substrings, matched case-insensitively
	State       string
	Since       time.Time
	Limit       int
}

// StoreInfo is one distinct premise known to the durable store
type StoreInfo struct {
	PremiseCode string `json:"premise_code"`
	PremiseName string `json:"premise_name"`
	ChainName   string `json:"chain_name"`
	State       string `json:"state"`
	Address     string `json:"address"`
}

// PriceStore is the durable home of normalized price records
type PriceStore interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	InsertBatch(ctx context.Context, records []models.GroceryPrice) (int64, error)
	SearchRecent(ctx context.Context, q PriceQuery) ([]models.GroceryPrice, error)
	DistinctStores(ctx context.Context, state, chain string) ([]StoreInfo, error)
}

// GormPriceStore implements PriceStore on Postgres
type GormPriceStore struct {
	db *gorm.DB
}

// NewGormPriceStore creates a Postgres-backed price store
func NewGormPriceStore(db *gorm.DB) *GormPriceStore {
	return &GormPriceStore{db: db}
}

// PurgeOlderThan deletes records created before the cutoff
func (s *GormPriceStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.GroceryPrice{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// InsertBatch upserts normalized records. Deadlocks from concurrent refreshes
// are retried a few times before giving up.
func (s *GormPriceStore) InsertBatch(ctx context.Context, records []models.GroceryPrice) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	const maxRetries = 5
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "premise_code"},
				{Name: "item_code"},
				{Name: "price_date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"premise_name",
				"premise_address",
				"state",
				"item_name",
				"item_category",
				"item_subcategory",
				"price",
				"unit",
				"chain_name",
				"normalized_item_name",
				"price_per_kg",
				"created_at",
			}),
		}).CreateInBatches(records, insertBatchSize).Error

		if err == nil {
			return int64(len(records)), nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "40P01" { // deadlock_detected
			logger.Error("Price insert deadlock (attempt %d/%d), retrying", attempt, maxRetries)
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
			continue
		}
		break
	}

	return 0, err
}

// SearchRecent returns records inside the retention window matching any of the
// requested ingredient substrings and the optional state filter
func (s *GormPriceStore) SearchRecent(ctx context.Context, q PriceQuery) ([]models.GroceryPrice, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 200
	}

	query := s.db.WithContext(ctx).Model(&models.GroceryPrice{})

	if len(q.Ingredients) > 0 {
		sub := s.db.Session(&gorm.Session{NewDB: true})
		var cond *gorm.DB
		for _, ingredient := range q.Ingredients {
			pattern := "%" + toSearchTerm(ingredient) + "%"
			if cond == nil {
				cond = sub.Where("normalized_item_name LIKE ?", pattern)
			} else {
				cond = cond.Or("normalized_item_name LIKE ?", pattern)
			}
		}
		query = query.Where(cond)
	}

	if q.State != "" {
		query = query.Where("state ILIKE ?", "%"+q.State+"%")
	}
	if !q.Since.IsZero() {
		query = query.Where("created_at >= ?", q.Since)
	}

	var records []models.GroceryPrice
	if err := query.Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// DistinctStores lists the premises currently present in the durable store
func (s *GormPriceStore) DistinctStores(ctx context.Context, state, chain string) ([]StoreInfo, error) {
	query := s.db.WithContext(ctx).Model(&models.GroceryPrice{}).
		Select("DISTINCT premise_code, premise_name, chain_name, state, premise_address AS address")

	if state != "" {
		query = query.Where("state ILIKE ?", "%"+state+"%")
	}
	if chain != "" {
		query = query.Where("chain_name ILIKE ?", "%"+chain+"%")
	}

	var stores []StoreInfo
	if err := query.Order("premise_code").Limit(500).Scan(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// toSearchTerm lowers and trims an ingredient name for substring matching
func toSearchTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
