package opendosm

import (
	"encoding/json"
	"testing"
)

func TestPriceValueUnmarshal(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		wantNumber float64
		wantText   string
		wantIsNum  bool
	}{
		{"number", `12.5`, 12.5, "", true},
		{"integer", `7`, 7, "", true},
		{"string", `"RM 12,50"`, 0, "RM 12,50", false},
		{"null", `null`, 0, "", false},
		{"object drift", `{"amount":1}`, 0, `{"amount":1}`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v PriceValue
			if err := json.Unmarshal([]byte(tc.raw), &v); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.raw, err)
			}
			if v.IsNumber != tc.wantIsNum || v.Number != tc.wantNumber || v.Text != tc.wantText {
				t.Fatalf("got %+v, want number=%v text=%q isNumber=%v", v, tc.wantNumber, tc.wantText, tc.wantIsNum)
			}
		})
	}
}

func TestRawTransactionDisplayItem(t *testing.T) {
	tx := RawTransaction{Item: "AYAM BERSIH", ItemName: "ignored"}
	if got := tx.DisplayItem(); got != "AYAM BERSIH" {
		t.Fatalf("DisplayItem() = %q", got)
	}

	tx = RawTransaction{ItemName: "BERAS SUPER"}
	if got := tx.DisplayItem(); got != "BERAS SUPER" {
		t.Fatalf("DisplayItem() fallback = %q", got)
	}
}
