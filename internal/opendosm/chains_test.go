package opendosm

import "testing"

func TestMapPremiseToChain(t *testing.T) {
	cases := []struct {
		premise string
		want    string
	}{
		{"", ChainUnknown},
		{"   ", ChainUnknown},
		{"TESCO EXTRA AMPANG", "Tesco"},
		{"tesco extra ampang", "Tesco"},
		{"99 SPEEDMART CHERAS", "99 Speedmart"},
		{"SPEEDMART TAMAN MAJU", "99 Speedmart"},
		{"GIANT HYPERMARKET SUBANG", "Giant"}, // GIANT wins over HYPERMARKET
		{"AEON BIG WANGSA MAJU", "AEON"},
		{"VILLAGE GROCER BANGSAR", "Village Grocer"},
		{"JAYA GROCER INTERMARK", "Jaya Grocer"},
		{"ECONSAVE SERI KEMBANGAN", "ECONSAVE"},
		{"NSK TRADE CITY", "NSK"},
		{"MYDIN MALL USJ", "Mydin"},
		{"KK SUPER MART SS15", "KK Super Mart"},
		{"PASAR RAYA SAKAN", "Local Grocery Store"},
		{"BIG HYPERMARKET", "Hypermarket"},
		{"HERO SUPERMARKET", "Supermarket"},
		{"KEDAI RUNCIT PAK ALI", ChainIndependent},
	}

	for _, tc := range cases {
		if got := MapPremiseToChain(tc.premise); got != tc.want {
			t.Errorf("MapPremiseToChain(%q) = %q, want %q", tc.premise, got, tc.want)
		}
	}
}

func TestMapPremiseToChainIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := MapPremiseToChain("GIANT MALL KLANG"); got != "Giant" {
			t.Fatalf("mapping changed between calls: %q", got)
		}
	}
}

func TestKnownChains(t *testing.T) {
	chains := KnownChains()
	if len(chains) == 0 {
		t.Fatal("expected at least one known chain")
	}

	seen := make(map[string]bool)
	for _, chain := range chains {
		if seen[chain] {
			t.Fatalf("duplicate chain label %q", chain)
		}
		seen[chain] = true
	}

	// 99 Speedmart appears under two patterns but must be listed once
	if !seen["99 Speedmart"] {
		t.Error("expected 99 Speedmart in known chains")
	}
}
