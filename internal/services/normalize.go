/**
 * @description
 * Record normalization: price parsing, unit-to-kilogram conversion, and the
 * raw-triple to GroceryPrice transform used by the refresh pipeline.
 *
 * @dependencies
 * - backend/internal/models
 * - backend/internal/opendosm
 *
 * @notes
 * - Unparseable prices normalize to 0.0 rather than dropping the record.
 * - Unknown units keep factor 1.0, so price_per_kg equals the raw price.
 *   Both are documented approximations, not silent data loss.
 */

package services

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/belanja-project/backend/internal/models"
	"github.com/belanja-project/backend/internal/opendosm"
)

// ErrMalformedRecord marks a raw row that cannot be joined to anything
var ErrMalformedRecord = errors.New("malformed upstream record")

// unitFactors maps trimmed, lower-cased unit strings to their weight in
// kilograms. Liquids assume water density; count-like units use heuristic
// average weights.
var unitFactors = map[string]float64{
	"kg":       1.0,
	"kilogram": 1.0,
	"g":        0.001,
	"gram":     0.001,
	"lb":       0.453592,
	"pound":    0.453592,
	"liter":    1.0,
	"litre":    1.0,
	"l":        1.0,
	"ml":       0.001,
	"piece":    0.2,
	"pcs":      0.2,
	"each":     0.2,
	"pack":     0.5,
	"packet":   0.5,
	"can":      0.4,
	"bottle":   0.5,
}

// decimalComma matches a trailing comma used as a decimal separator ("12,50")
var decimalComma = regexp.MustCompile(`,(\d{2})$`)

// parsePrice extracts a non-negative price from a flexible upstream value.
// Strings lose the RM prefix and thousands separators first; a trailing
// two-digit comma group is read as a decimal comma. Anything unparseable
// (or negative) normalizes to 0.0.
func parsePrice(v opendosm.PriceValue) float64 {
	if v.IsNumber {
		if v.Number < 0 {
			return 0.0
		}
		return v.Number
	}

	cleaned := strings.TrimSpace(v.Text)
	cleaned = strings.TrimPrefix(cleaned, "RM")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = decimalComma.ReplaceAllString(cleaned, ".$1")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price < 0 {
		return 0.0
	}
	return price
}

// unitFactor returns the kilogram weight of one unit, or 1.0 when unknown
func unitFactor(unit string) float64 {
	factor, ok := unitFactors[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 1.0
	}
	return factor
}

// pricePerKg normalizes a price to its per-kilogram equivalent
func pricePerKg(price float64, unit string) float64 {
	if price == 0 || strings.TrimSpace(unit) == "" {
		return price
	}
	return price / unitFactor(unit)
}

// normalizeRecord joins one transaction against its premise/item lookup rows
// and produces a durable GroceryPrice. Lookups are best-effort: a missing row
// falls back to the fields embedded on the transaction itself. A transaction
// carrying neither a premise code nor an item code is malformed and skipped.
func normalizeRecord(tx opendosm.RawTransaction, premise *opendosm.RawPremise, item *opendosm.RawItem, now time.Time) (models.GroceryPrice, error) {
	if tx.PremiseCode == "" && tx.ItemCode == "" {
		return models.GroceryPrice{}, ErrMalformedRecord
	}

	premiseName := tx.Premise
	address := ""
	state := tx.State
	if premise != nil {
		if premise.PremiseName != "" {
			premiseName = premise.PremiseName
		}
		address = premise.Address
		if premise.State != "" {
			state = premise.State
		}
	}

	itemName := tx.DisplayItem()
	category := tx.Category
	subcategory := ""
	unit := tx.Unit
	if item != nil {
		if item.ItemName != "" {
			itemName = item.ItemName
		}
		if item.Category != "" {
			category = item.Category
		}
		subcategory = item.Subcategory
		if unit == "" {
			unit = item.Unit
		}
	}
	if category == "" {
		category = "Food"
	}
	if unit == "" {
		unit = "kg"
	}

	price := parsePrice(tx.Price)

	priceDate := now
	if tx.Date != "" {
		if parsed, err := time.Parse("2006-01-02", tx.Date); err == nil {
			priceDate = parsed
		}
	}

	return models.GroceryPrice{
		PremiseCode:        tx.PremiseCode,
		PremiseName:        premiseName,
		PremiseAddress:     address,
		State:              state,
		ItemCode:           tx.ItemCode,
		ItemName:           itemName,
		ItemCategory:       category,
		ItemSubcategory:    subcategory,
		Price:              price,
		Unit:               unit,
		PriceDate:          priceDate,
		ChainName:          opendosm.MapPremiseToChain(premiseName),
		NormalizedItemName: strings.ToLower(strings.TrimSpace(itemName)),
		PricePerKg:         pricePerKg(price, unit),
		CreatedAt:          now,
	}, nil
}
