package pricing

import "strings"

// RFQRow is one raw row from an uploaded RFQ file, values still as text.
type RFQRow struct {
	ItemCode string
	ItemName string
	Specs    string
	Qty      string
}

// CatalogEntry is the slice of a stored catalog item the matcher needs.
type CatalogEntry struct {
	ItemCode       string
	ItemName       string
	Specs          string
	BuyingPriceRMB float64
	ExchangeRate   float64
	Supplier       string
	Leadtime       string
	ImageRef       string
}

// NormalizeKey folds case and collapses whitespace so that matching is
// insensitive to the usual spreadsheet noise.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func matchKey(code, name, specs string) string {
	return NormalizeKey(code) + "\x00" + NormalizeKey(name) + "\x00" + NormalizeKey(specs)
}

// Match joins RFQ rows against the catalog on the normalized
// (code, name, specs) triple and returns raw quote lines with zeroed
// derived columns. A miss keeps the row but flags it NO DATA MATCH with
// all buying fields zero. When the catalog holds duplicate keys the first
// occurrence wins — no ambiguity error is raised. The catalog itself is
// never mutated.
func Match(rows []RFQRow, catalog []CatalogEntry) []Line {
	index := make(map[string]CatalogEntry, len(catalog))
	for _, e := range catalog {
		k := matchKey(e.ItemCode, e.ItemName, e.Specs)
		if _, exists := index[k]; !exists {
			index[k] = e
		}
	}

	lines := make([]Line, 0, len(rows))
	for i, r := range rows {
		l := Line{
			No:       i + 1,
			ItemCode: strings.TrimSpace(r.ItemCode),
			ItemName: strings.TrimSpace(r.ItemName),
			Specs:    strings.TrimSpace(r.Specs),
			Qty:      ParseQuantity(r.Qty),
		}
		if e, ok := index[matchKey(r.ItemCode, r.ItemName, r.Specs)]; ok {
			l.BuyingPriceRMB = e.BuyingPriceRMB
			l.ExchangeRate = e.ExchangeRate
			l.Supplier = e.Supplier
			l.Leadtime = e.Leadtime
			l.ImageRef = e.ImageRef
		} else {
			l.Warning = WarningNoMatch
		}
		lines = append(lines, l)
	}
	return lines
}
