package pricing

import (
	"math"
	"reflect"
	"testing"
)

func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= 1e-9*math.Max(scale, 1)
}

func TestRecalculateDerivedColumns(t *testing.T) {
	lines := Recalculate([]Line{{
		No:             1,
		Qty:            10,
		BuyingPriceRMB: 100,
		ExchangeRate:   3600,
		BuyingPriceVND: 999, // stale stored value, must be overridden
		APPrice:        500000,
		UnitPrice:      600000,
	}})
	l := lines[0]

	if !almostEqual(l.BuyingPriceVND, 360000) {
		t.Errorf("BuyingPriceVND = %v, want 360000", l.BuyingPriceVND)
	}
	if !almostEqual(l.TotalBuyingVND, 3600000) {
		t.Errorf("TotalBuyingVND = %v, want 3600000", l.TotalBuyingVND)
	}
	if !almostEqual(l.TotalBuyingRMB, 1000) {
		t.Errorf("TotalBuyingRMB = %v, want 1000", l.TotalBuyingRMB)
	}
	if !almostEqual(l.APTotal, 5000000) {
		t.Errorf("APTotal = %v, want 5000000", l.APTotal)
	}
	if !almostEqual(l.TotalPrice, 6000000) {
		t.Errorf("TotalPrice = %v, want 6000000", l.TotalPrice)
	}
	if !almostEqual(l.Gap, 1000000) {
		t.Errorf("Gap = %v, want 1000000", l.Gap)
	}
	// profit = total_price - (total_buying + gap) = 6e6 - 4.6e6
	if !almostEqual(l.Profit, 1400000) {
		t.Errorf("Profit = %v, want 1400000", l.Profit)
	}
	if !almostEqual(l.ProfitPct, 1400000.0/6000000*100) {
		t.Errorf("ProfitPct = %v", l.ProfitPct)
	}
	if l.Status != StatusOK {
		t.Errorf("Status = %q, want OK", l.Status)
	}
}

func TestRecalculateIdempotent(t *testing.T) {
	in := []Line{
		{No: 1, Qty: 3, BuyingPriceRMB: 50, ExchangeRate: 3550, APPrice: 400000, UnitPrice: 450000, VAT: 20000},
		{No: 2, Qty: 1, Warning: WarningNoMatch},
	}
	once := Recalculate(in)
	twice := Recalculate(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("recalculation is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestRecalculateZeroTotalPrice(t *testing.T) {
	lines := Recalculate([]Line{{No: 1, Qty: 5, BuyingPriceRMB: 10, ExchangeRate: 3600}})
	l := lines[0]
	if l.ProfitPct != 0 {
		t.Errorf("ProfitPct = %v, want 0 when total price is 0", l.ProfitPct)
	}
	if l.Status != StatusLow {
		t.Errorf("Status = %q, want LOW", l.Status)
	}
}

func TestRecalculateKeepsNoMatchWarning(t *testing.T) {
	lines := Recalculate([]Line{{No: 1, Qty: 1, UnitPrice: 1000000, Warning: WarningNoMatch}})
	if got := lines[0].Status; got != WarningNoMatch {
		t.Errorf("Status = %q, want the NO DATA MATCH warning preserved", got)
	}
}

func TestRecalculateNegativeGapNotClamped(t *testing.T) {
	lines := Recalculate([]Line{{No: 1, Qty: 2, APPrice: 300, UnitPrice: 100}})
	if got := lines[0].Gap; !almostEqual(got, -400) {
		t.Errorf("Gap = %v, want -400", got)
	}
}

func TestApplyGlobalParams(t *testing.T) {
	p := GlobalParams{
		EndUserRate:    0.10,
		BuyerRate:      0.05,
		ImportTaxRate:  0.10,
		VATRate:        0.10,
		Transportation: 30000,
		ManagementRate: 0.10,
		PaybackRate:    0.40,
	}
	in := []Line{{No: 1, Qty: 1, BuyingPriceRMB: 100, ExchangeRate: 3600, APPrice: 1000, UnitPrice: 2000}}

	out := ApplyGlobalParams(in, p)
	l := out[0]

	if !almostEqual(l.EndUserFee, 100) { // ap_total 1000 * 10%
		t.Errorf("EndUserFee = %v, want 100", l.EndUserFee)
	}
	if !almostEqual(l.BuyerFee, 100) { // total_price 2000 * 5%
		t.Errorf("BuyerFee = %v, want 100", l.BuyerFee)
	}
	if !almostEqual(l.ImportTax, 36000) { // total_buying 360000 * 10%
		t.Errorf("ImportTax = %v, want 36000", l.ImportTax)
	}
	if !almostEqual(l.VAT, 200) {
		t.Errorf("VAT = %v, want 200", l.VAT)
	}
	if !almostEqual(l.ManagementFee, 200) {
		t.Errorf("ManagementFee = %v, want 200", l.ManagementFee)
	}
	if !almostEqual(l.Payback, 400) { // gap 1000 * 40%
		t.Errorf("Payback = %v, want 400", l.Payback)
	}
	if l.Transportation != 30000 { // flat copy, never scaled
		t.Errorf("Transportation = %v, want 30000", l.Transportation)
	}

	again := ApplyGlobalParams(out, p)
	if !reflect.DeepEqual(out, again) {
		t.Errorf("re-applying identical params must be idempotent, not cumulative")
	}
}

func TestTotalRow(t *testing.T) {
	lines := []Line{
		{Qty: 1, TotalPrice: 100, Profit: 10},
		{Qty: 2, TotalPrice: 200, Profit: 20},
		{Qty: 3, TotalPrice: 300, Profit: 45},
	}
	total := TotalRow(lines)

	if total.Qty != 6 {
		t.Errorf("Qty = %v, want 6", total.Qty)
	}
	if total.TotalPrice != 600 {
		t.Errorf("TotalPrice = %v, want 600", total.TotalPrice)
	}
	if !almostEqual(total.ProfitPct, 12.5) {
		t.Errorf("ProfitPct = %v, want 12.5 (75/600*100), not an average of percentages", total.ProfitPct)
	}
}

func TestTotalRowEmpty(t *testing.T) {
	total := TotalRow(nil)
	if total.TotalPrice != 0 || total.ProfitPct != 0 {
		t.Errorf("empty total row should be all zeros, got %+v", total)
	}
}
