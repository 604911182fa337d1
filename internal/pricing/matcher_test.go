package pricing

import "testing"

func TestMatch(t *testing.T) {
	catalog := []CatalogEntry{
		{
			ItemCode:       "A1",
			ItemName:       "Widget",
			Specs:          "S1",
			BuyingPriceRMB: 100,
			ExchangeRate:   3600,
			Supplier:       "ACME",
			Leadtime:       "7 days",
			ImageRef:       "PRODUCT_IMAGES/s1.jpg",
		},
	}

	rows := []RFQRow{
		{ItemCode: "a1", ItemName: "  widget ", Specs: "S1", Qty: "3"},
		{ItemCode: "A1", ItemName: "Widget", Specs: "S2", Qty: "2"},
	}

	lines := Match(rows, catalog)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	hit := lines[0]
	if hit.Warning != "" {
		t.Errorf("matched line warning = %q, want empty", hit.Warning)
	}
	if hit.BuyingPriceRMB != 100 || hit.ExchangeRate != 3600 {
		t.Errorf("buying fields not copied: %+v", hit)
	}
	if hit.Supplier != "ACME" || hit.Leadtime != "7 days" || hit.ImageRef == "" {
		t.Errorf("supplier/leadtime/image not copied: %+v", hit)
	}
	if hit.Qty != 3 {
		t.Errorf("Qty = %v, want 3", hit.Qty)
	}
	if hit.No != 1 {
		t.Errorf("No = %d, want 1", hit.No)
	}

	miss := lines[1]
	if miss.Warning != WarningNoMatch {
		t.Errorf("unmatched line warning = %q, want %q", miss.Warning, WarningNoMatch)
	}
	if miss.BuyingPriceRMB != 0 || miss.ExchangeRate != 0 || miss.Supplier != "" {
		t.Errorf("unmatched line must keep buying fields zero: %+v", miss)
	}
}

func TestMatchQuantityDefault(t *testing.T) {
	lines := Match([]RFQRow{{Specs: "S1", Qty: ""}}, nil)
	if lines[0].Qty != 1 {
		t.Errorf("Qty = %v, want default 1", lines[0].Qty)
	}
}

func TestMatchFirstDuplicateWins(t *testing.T) {
	catalog := []CatalogEntry{
		{Specs: "S1", BuyingPriceRMB: 10},
		{Specs: "S1", BuyingPriceRMB: 99},
	}
	lines := Match([]RFQRow{{Specs: "S1", Qty: "1"}}, catalog)
	if lines[0].BuyingPriceRMB != 10 {
		t.Errorf("BuyingPriceRMB = %v, want the first catalog occurrence (10)", lines[0].BuyingPriceRMB)
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Motor   ABB  ", "motor abb"},
		{"S1", "s1"},
		{"", ""},
		{"A\tB\nC", "a b c"},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
