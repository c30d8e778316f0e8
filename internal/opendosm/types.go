/**
 * @description
 * Raw row types for the OpenDOSM PriceCatcher datasets.
 * Upstream payloads are loosely typed; everything here is optional-tolerant.
 *
 * @dependencies
 * - encoding/json
 */

package opendosm

import (
	"bytes"
	"encoding/json"
)

// envelope is the common shape of a data-catalogue response:
// { "data": [...], "last_updated": "...", "total": N }
type envelope[T any] struct {
	Data        []T    `json:"data"`
	LastUpdated string `json:"last_updated"`
	NextUpdate  string `json:"next_update"`
	Total       int    `json:"total"`
}

// PriceValue holds a price that upstream reports either as a JSON number
// or as a currency-formatted string ("RM 12,50").
type PriceValue struct {
	Number   float64
	Text     string
	IsNumber bool
}

// UnmarshalJSON accepts number, string or null
func (p *PriceValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &p.Text)
	}
	if err := json.Unmarshal(b, &p.Number); err != nil {
		// Schema drift (objects, booleans) degrades to an unparsed value,
		// which the normalizer zeroes.
		p.Text = string(b)
		return nil
	}
	p.IsNumber = true
	return nil
}

// RawTransaction is one reported sale event. Premise/item display fields are
// sometimes embedded directly on the row when the lookup datasets lag behind.
type RawTransaction struct {
	Date        string     `json:"date"`
	PremiseCode string     `json:"premise_code"`
	ItemCode    string     `json:"item_code"`
	Price       PriceValue `json:"price"`
	Unit        string     `json:"unit"`
	Premise     string     `json:"premise"`
	Item        string     `json:"item"`
	ItemName    string     `json:"item_name"`
	State       string     `json:"state"`
	Category    string     `json:"category"`
}

// DisplayItem returns the best available item name on the transaction itself
func (t RawTransaction) DisplayItem() string {
	if t.Item != "" {
		return t.Item
	}
	return t.ItemName
}

// RawPremise is one row of the premise lookup dataset
type RawPremise struct {
	PremiseCode string `json:"premise_code"`
	PremiseName string `json:"premise"`
	Address     string `json:"address"`
	State       string `json:"state"`
	District    string `json:"district"`
	PremiseType string `json:"premise_type"`
}

// RawItem is one row of the item lookup dataset
type RawItem struct {
	ItemCode    string `json:"item_code"`
	ItemName    string `json:"item"`
	Unit        string `json:"unit"`
	ItemGroup   string `json:"item_group"`
	Category    string `json:"item_category"`
	Subcategory string `json:"item_subcategory"`
}

// DatasetMetadata describes the freshness of a dataset
type DatasetMetadata struct {
	Status       string `json:"api_status"` // "available", "degraded" (schema drift) or "unavailable"
	LastUpdated  string `json:"last_updated"`
	NextUpdate   string `json:"next_update"`
	TotalRecords int    `json:"total_records"`
	DataSource   string `json:"data_source"`
}
