package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"crm-backend/internal/pricing"
)

// CatalogRow is one raw price-list row, every cell still text. Numeric
// conversion happens in the catalog service through the tolerant parser.
type CatalogRow struct {
	No                  string
	ItemCode            string
	ItemName            string
	Specs               string
	Qty                 string
	BuyingPriceRMB      string
	TotalBuyingPriceRMB string
	ExchangeRate        string
	BuyingPriceVND      string
	TotalBuyingPriceVND string
	Leadtime            string
	Supplier            string
	Images              string
	Type                string
	NUOC                string
}

// columnSpec pairs a canonical column with its accepted header aliases.
// Order matters: it is also the positional fallback layout.
type columnSpec struct {
	key     string
	aliases []string
}

var catalogColumns = []columnSpec{
	{"no", []string{"no", "stt"}},
	{"item_code", []string{"item code", "code", "mã", "mã hàng", "part number"}},
	{"item_name", []string{"item name", "name", "tên hàng", "description"}},
	{"specs", []string{"specs", "spec", "specification", "thông số"}},
	{"qty", []string{"q'ty", "qty", "quantity", "số lượng", "sl"}},
	{"buying_price_rmb", []string{"buying price (rmb)", "buying price rmb"}},
	{"total_buying_price_rmb", []string{"total buying price (rmb)", "total buying price rmb"}},
	{"exchange_rate", []string{"exchange rate", "rate", "tỷ giá"}},
	{"buying_price_vnd", []string{"buying price (vnd)", "buying price vnd"}},
	{"total_buying_price_vnd", []string{"total buying price (vnd)", "total buying price vnd"}},
	{"leadtime", []string{"leadtime", "lead time"}},
	{"supplier", []string{"supplier", "ncc", "nhà cung cấp"}},
	{"images", []string{"images", "image", "hình ảnh"}},
	{"type", []string{"type", "loại"}},
	{"nuoc", []string{"n/u/o/c", "nuoc"}},
}

var rfqColumns = []columnSpec{
	{"item_code", []string{"item code", "code", "mã", "mã hàng", "part number"}},
	{"item_name", []string{"item name", "name", "tên hàng", "description"}},
	{"specs", []string{"specs", "spec", "specification", "thông số"}},
	{"qty", []string{"q'ty", "qty", "quantity", "số lượng", "sl"}},
}

// NormalizeHeader flattens a header cell: embedded newlines become
// spaces, runs of whitespace collapse, and the result is trimmed.
func NormalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " ")
}

// resolveColumns maps each canonical column to a cell index. The alias
// table is consulted first; when a column has no alias hit and the sheet
// has exactly the expected column count, its position in the canonical
// layout is used instead. Columns that resolve neither way get -1 and
// read as empty.
func resolveColumns(header []string, spec []columnSpec) map[string]int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(NormalizeHeader(h))
	}

	out := make(map[string]int, len(spec))
	positionalOK := len(header) == len(spec)
	for pos, col := range spec {
		out[col.key] = -1
		for i, h := range normalized {
			for _, a := range col.aliases {
				if h == a {
					out[col.key] = i
					break
				}
			}
			if out[col.key] >= 0 {
				break
			}
		}
		if out[col.key] < 0 && positionalOK {
			out[col.key] = pos
		}
	}
	return out
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ReadWorkbook returns the rows of the active sheet of an .xlsx stream.
func ReadWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// ReadCSV returns all records of a CSV stream, tolerating ragged rows.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

// ParseCatalogRows maps raw sheet rows to catalog rows. Rows without a
// non-empty Specs value are dropped; duplicate Specs keep the last
// occurrence, matching the import contract.
func ParseCatalogRows(rows [][]string) []CatalogRow {
	if len(rows) < 2 {
		return nil
	}
	cols := resolveColumns(rows[0], catalogColumns)

	bysSpecs := make(map[string]int)
	var out []CatalogRow
	for _, row := range rows[1:] {
		specs := cell(row, cols["specs"])
		if specs == "" {
			continue
		}
		cr := CatalogRow{
			No:                  cell(row, cols["no"]),
			ItemCode:            cell(row, cols["item_code"]),
			ItemName:            cell(row, cols["item_name"]),
			Specs:               specs,
			Qty:                 cell(row, cols["qty"]),
			BuyingPriceRMB:      cell(row, cols["buying_price_rmb"]),
			TotalBuyingPriceRMB: cell(row, cols["total_buying_price_rmb"]),
			ExchangeRate:        cell(row, cols["exchange_rate"]),
			BuyingPriceVND:      cell(row, cols["buying_price_vnd"]),
			TotalBuyingPriceVND: cell(row, cols["total_buying_price_vnd"]),
			Leadtime:            cell(row, cols["leadtime"]),
			Supplier:            cell(row, cols["supplier"]),
			Images:              cell(row, cols["images"]),
			Type:                cell(row, cols["type"]),
			NUOC:                cell(row, cols["nuoc"]),
		}
		if prev, dup := bysSpecs[specs]; dup {
			out[prev] = cr // keep last
			continue
		}
		bysSpecs[specs] = len(out)
		out = append(out, cr)
	}
	return out
}

// ParseRFQRows maps raw sheet rows to RFQ rows for the matcher. Rows
// without a Specs value are dropped rather than silently misaligned.
func ParseRFQRows(rows [][]string) []pricing.RFQRow {
	if len(rows) < 2 {
		return nil
	}
	cols := resolveColumns(rows[0], rfqColumns)

	var out []pricing.RFQRow
	for _, row := range rows[1:] {
		specs := cell(row, cols["specs"])
		if specs == "" {
			continue
		}
		out = append(out, pricing.RFQRow{
			ItemCode: cell(row, cols["item_code"]),
			ItemName: cell(row, cols["item_name"]),
			Specs:    specs,
			Qty:      cell(row, cols["qty"]),
		})
	}
	return out
}

// FindColumn returns the index of the first header cell whose normalized
// text contains needle (case-insensitive), or -1. Used for loose lookups
// such as locating the supplier column in an arbitrary master sheet.
func FindColumn(header []string, needle string) int {
	needle = strings.ToLower(needle)
	for i, h := range header {
		if strings.Contains(strings.ToLower(NormalizeHeader(h)), needle) {
			return i
		}
	}
	return -1
}
