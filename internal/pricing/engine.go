package pricing

// Status labels shown in the quotation grid. WarningNoMatch is set by the
// matcher and survives every recalculation.
const (
	WarningNoMatch = "NO DATA MATCH"
	StatusLow      = "LOW"
	StatusOK       = "OK"
)

// LowMarginThreshold is the profit percentage below which a line is
// flagged LOW.
const LowMarginThreshold = 10.0

// Line is one priced RFQ row. Editable inputs are Qty, APPrice, UnitPrice
// and the seven cost components; everything from TotalBuyingRMB down is
// derived by Recalculate and overwritten on every run.
type Line struct {
	No       int    `json:"no"`
	Warning  string `json:"warning"`
	ItemCode string `json:"item_code"`
	ItemName string `json:"item_name"`
	Specs    string `json:"specs"`

	Qty            float64 `json:"qty"`
	BuyingPriceRMB float64 `json:"buying_price_rmb"`
	ExchangeRate   float64 `json:"exchange_rate"`
	APPrice        float64 `json:"ap_price"`
	UnitPrice      float64 `json:"unit_price"`

	// Cost components, absolute VND amounts once applied.
	EndUserFee     float64 `json:"end_user_fee"`
	BuyerFee       float64 `json:"buyer_fee"`
	ImportTax      float64 `json:"import_tax"`
	VAT            float64 `json:"vat"`
	Transportation float64 `json:"transportation"`
	ManagementFee  float64 `json:"management_fee"`
	Payback        float64 `json:"payback"`

	// Derived columns.
	BuyingPriceVND float64 `json:"buying_price_vnd"`
	TotalBuyingRMB float64 `json:"total_buying_rmb"`
	TotalBuyingVND float64 `json:"total_buying_vnd"`
	APTotal        float64 `json:"ap_total"`
	TotalPrice     float64 `json:"total_price"`
	Gap            float64 `json:"gap"`
	Profit         float64 `json:"profit"`
	ProfitPct      float64 `json:"profit_pct"`
	Status         string  `json:"status"`

	Supplier string `json:"supplier"`
	Leadtime string `json:"leadtime"`
	ImageRef string `json:"image_ref"`
}

// GlobalParams are the seven per-quote cost parameters. Rates are
// fractions (0.10 = 10%); Transportation is a flat VND amount copied to
// every line as-is.
type GlobalParams struct {
	EndUserRate    float64 `json:"end_user_rate"`
	BuyerRate      float64 `json:"buyer_rate"`
	ImportTaxRate  float64 `json:"import_tax_rate"`
	VATRate        float64 `json:"vat_rate"`
	Transportation float64 `json:"transportation"`
	ManagementRate float64 `json:"management_rate"`
	PaybackRate    float64 `json:"payback_rate"`
}

// DefaultParams returns the house defaults used when the operator has not
// loaded a parameter set.
func DefaultParams() GlobalParams {
	return GlobalParams{
		EndUserRate:    0.10,
		BuyerRate:      0.05,
		ImportTaxRate:  0.10,
		VATRate:        0.10,
		Transportation: 30000,
		ManagementRate: 0.10,
		PaybackRate:    0.40,
	}
}

// Recalculate re-derives every dependent column of every line. It is a
// pure, total function: safe to run after each edit, and running it twice
// on unchanged input yields identical output.
func Recalculate(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = recalcLine(l)
	}
	return out
}

func recalcLine(l Line) Line {
	// The local buying price is always recomputed; a stored value is
	// never trusted.
	l.BuyingPriceVND = l.BuyingPriceRMB * l.ExchangeRate
	l.TotalBuyingVND = l.BuyingPriceVND * l.Qty
	l.TotalBuyingRMB = l.BuyingPriceRMB * l.Qty

	l.APTotal = l.APPrice * l.Qty
	l.TotalPrice = l.UnitPrice * l.Qty
	l.Gap = l.TotalPrice - l.APTotal // signed, not clamped

	cost := l.TotalBuyingVND + l.Gap +
		l.EndUserFee + l.BuyerFee + l.ImportTax + l.VAT +
		l.Transportation + l.ManagementFee
	l.Profit = l.TotalPrice - cost + l.Payback

	if l.TotalPrice > 0 {
		l.ProfitPct = l.Profit / l.TotalPrice * 100
	} else {
		l.ProfitPct = 0
	}

	if l.Warning == WarningNoMatch {
		l.Status = WarningNoMatch
	} else if l.ProfitPct < LowMarginThreshold {
		l.Status = StatusLow
	} else {
		l.Status = StatusOK
	}
	return l
}

// ApplyGlobalParams converts the percentage parameters into absolute cost
// fields on every line, then recalculates. This is the only place
// percentages become VND amounts; afterwards the fields are plain numbers
// open to manual per-line override. Re-applying the same parameters is
// idempotent, not cumulative, because every fee is derived from bases
// that do not themselves depend on the fees.
func ApplyGlobalParams(lines []Line, p GlobalParams) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		l = recalcLine(l) // refresh bases before seeding the fees
		l.EndUserFee = l.APTotal * p.EndUserRate
		l.BuyerFee = l.TotalPrice * p.BuyerRate
		l.ImportTax = l.TotalBuyingVND * p.ImportTaxRate
		l.VAT = l.TotalPrice * p.VATRate
		l.ManagementFee = l.TotalPrice * p.ManagementRate
		l.Payback = l.Gap * p.PaybackRate
		l.Transportation = p.Transportation
		out[i] = recalcLine(l)
	}
	return out
}

// TotalRow builds the synthetic aggregate row: quantities and monetary
// columns are summed, and the profit percentage is recomputed from the
// summed profit over the summed total price — never averaged from the
// per-line percentages. The row is display-only and must not be persisted
// or edited.
func TotalRow(lines []Line) Line {
	t := Line{ItemName: "TOTAL", Status: "TOTAL"}
	for _, l := range lines {
		t.Qty += l.Qty
		t.TotalBuyingRMB += l.TotalBuyingRMB
		t.TotalBuyingVND += l.TotalBuyingVND
		t.APTotal += l.APTotal
		t.TotalPrice += l.TotalPrice
		t.Gap += l.Gap
		t.EndUserFee += l.EndUserFee
		t.BuyerFee += l.BuyerFee
		t.ImportTax += l.ImportTax
		t.VAT += l.VAT
		t.Transportation += l.Transportation
		t.ManagementFee += l.ManagementFee
		t.Payback += l.Payback
		t.Profit += l.Profit
	}
	if t.TotalPrice > 0 {
		t.ProfitPct = t.Profit / t.TotalPrice * 100
	}
	return t
}

// TotalProfit sums per-line profit, the aggregate stored on a saved quote.
func TotalProfit(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Profit
	}
	return sum
}
