/**
 * @description
 * GroceryPrice database model.
 * One row per normalized PriceCatcher observation; maps to the 'grocery_prices' table.
 *
 * @dependencies
 * - gorm.io/gorm (tags only)
 *
 * @notes
 * - Rows are superseded by each refresh, never mutated in place.
 * - The (premise_code, item_code, price_date) unique index makes refreshes idempotent:
 *   re-ingesting unchanged upstream data updates in place instead of duplicating.
 */

package models

import "time"

// GroceryPrice is a normalized PriceCatcher price observation
type GroceryPrice struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Upstream fields
	PremiseCode     string    `gorm:"size:20;index;uniqueIndex:idx_price_observation" json:"premise_code"`
	PremiseName     string    `gorm:"size:200" json:"premise_name"`
	PremiseAddress  string    `gorm:"type:text" json:"premise_address"`
	State           string    `gorm:"size:50" json:"state"`
	ItemCode        string    `gorm:"size:20;index;uniqueIndex:idx_price_observation" json:"item_code"`
	ItemName        string    `gorm:"size:200;index" json:"item_name"`
	ItemCategory    string    `gorm:"size:100" json:"item_category"`
	ItemSubcategory string    `gorm:"size:100" json:"item_subcategory"`
	Price           float64   `json:"price"`
	Unit            string    `gorm:"size:50" json:"unit"`
	PriceDate       time.Time `gorm:"uniqueIndex:idx_price_observation" json:"price_date"`

	// Processed fields: chain mapped from the premise name, item name cleaned
	// for matching, price normalized to the per-kilogram equivalent
	ChainName          string  `gorm:"size:100" json:"chain_name"`
	NormalizedItemName string  `gorm:"size:200;index" json:"normalized_item_name"`
	PricePerKg         float64 `json:"price_per_kg"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides the table name
func (GroceryPrice) TableName() string {
	return "grocery_prices"
}
