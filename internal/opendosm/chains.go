/**
 * @description
 * Premise-name to retail-chain mapping.
 * Pure, order-sensitive substring matching over a fixed pattern table; used by
 * the normalizer and by every comparison fallback path, which must agree.
 */

package opendosm

import "strings"

const (
	// ChainUnknown is the sentinel for empty premise names
	ChainUnknown = "Unknown Store"
	// ChainIndependent is the label for premises matching no pattern
	ChainIndependent = "Independent Store"
)

// chainPatterns is matched in order; first match wins. Broad patterns
// (HYPERMARKET, SUPERMARKET) sit last so branded names take precedence.
var chainPatterns = []struct {
	Pattern string
	Label   string
}{
	{"TESCO", "Tesco"},
	{"99 SPEEDMART", "99 Speedmart"},
	{"GIANT", "Giant"},
	{"AEON", "AEON"},
	{"VILLAGE GROCER", "Village Grocer"},
	{"JAYA GROCER", "Jaya Grocer"},
	{"ECONSAVE", "ECONSAVE"},
	{"NSK", "NSK"},
	{"MYDIN", "Mydin"},
	{"KK SUPER MART", "KK Super Mart"},
	{"SPEEDMART", "99 Speedmart"}, // alternative spelling
	{"PASAR RAYA", "Local Grocery Store"},
	{"HYPERMARKET", "Hypermarket"},
	{"SUPERMARKET", "Supermarket"},
}

// MapPremiseToChain maps a raw premise name to a canonical chain label.
// Total over all strings: empty input yields ChainUnknown, unmatched input
// yields ChainIndependent.
func MapPremiseToChain(premiseName string) string {
	if strings.TrimSpace(premiseName) == "" {
		return ChainUnknown
	}

	upper := strings.ToUpper(premiseName)
	for _, entry := range chainPatterns {
		if strings.Contains(upper, entry.Pattern) {
			return entry.Label
		}
	}

	return ChainIndependent
}

// KnownChains returns the distinct canonical labels in table order
func KnownChains() []string {
	seen := make(map[string]bool, len(chainPatterns))
	chains := make([]string, 0, len(chainPatterns))
	for _, entry := range chainPatterns {
		if seen[entry.Label] {
			continue
		}
		seen[entry.Label] = true
		chains = append(chains, entry.Label)
	}
	return chains
}
