package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbookFromRows(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell addr: %v", err)
		}
		if err := f.SetSheetRow(sheet, addr, &rows[i]); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestParseCatalogRowsAliases(t *testing.T) {
	buf := workbookFromRows(t, [][]interface{}{
		{"No", "Item code", "Item name", "Specs", "Q'ty", "Buying price (RMB)", "Exchange rate", "Supplier"},
		{"1", "A1", "Widget", "S1", "10", "100", "3600", "ACME"},
		{"2", "B2", "Gadget", "", "5", "50", "3600", "ACME"}, // no specs: dropped
		{"3", "C3", "Sprocket", "S3", "2", "20", "3600", "BOLT"},
		{"4", "C3b", "Sprocket v2", "S3", "2", "25", "3600", "BOLT"}, // duplicate specs: keep last
	})

	rows, err := ReadWorkbook(buf)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	got := ParseCatalogRows(rows)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2 (specless dropped, duplicate collapsed)", len(got))
	}
	if got[0].ItemCode != "A1" || got[0].BuyingPriceRMB != "100" || got[0].Supplier != "ACME" {
		t.Errorf("first row mismatch: %+v", got[0])
	}
	if got[1].ItemCode != "C3b" {
		t.Errorf("duplicate specs should keep last occurrence, got %+v", got[1])
	}
}

func TestParseCatalogRowsHeaderNoise(t *testing.T) {
	buf := workbookFromRows(t, [][]interface{}{
		{"No", "Item\ncode", "  Item name ", "SPECS", "q'ty"},
		{"1", "A1", "Widget", "S1", "3"},
	})
	rows, err := ReadWorkbook(buf)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	got := ParseCatalogRows(rows)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].ItemCode != "A1" || got[0].Qty != "3" {
		t.Errorf("newline/case noise in headers not handled: %+v", got[0])
	}
}

func TestParseRFQRowsVietnameseAliases(t *testing.T) {
	buf := workbookFromRows(t, [][]interface{}{
		{"Mã", "Tên hàng", "Thông số", "Số lượng"},
		{"A1", "Widget", "S1", "4"},
		{"", "", "", ""}, // empty row dropped
	})
	rows, err := ReadWorkbook(buf)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	got := ParseRFQRows(rows)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].ItemCode != "A1" || got[0].Specs != "S1" || got[0].Qty != "4" {
		t.Errorf("alias mapping failed: %+v", got[0])
	}
}

func TestParseRFQRowsFromCSV(t *testing.T) {
	csvData := "code,name,specs,qty\nA1,Widget,S1,2\nB2,Gadget,S2,\n"
	rows, err := ReadCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	got := ParseRFQRows(rows)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[1].Qty != "" {
		t.Errorf("missing qty should stay empty for the matcher default, got %q", got[1].Qty)
	}
}

func TestResolveColumnsPositionalFallback(t *testing.T) {
	// Headers match none of the aliases but the column count matches the
	// canonical layout exactly, so positions are trusted.
	header := make([]string, len(catalogColumns))
	for i := range header {
		header[i] = "col"
	}
	cols := resolveColumns(header, catalogColumns)
	if cols["specs"] != 3 {
		t.Errorf("specs index = %d, want positional 3", cols["specs"])
	}

	// Unknown headers with a mismatched count must not guess.
	cols = resolveColumns([]string{"x", "y"}, catalogColumns)
	if cols["specs"] != -1 {
		t.Errorf("specs index = %d, want -1 when neither alias nor position resolves", cols["specs"])
	}
}

func TestFindColumn(t *testing.T) {
	header := []string{"No", "Item", "Supplier Name", "Qty"}
	if got := FindColumn(header, "supplier"); got != 2 {
		t.Errorf("FindColumn = %d, want 2", got)
	}
	if got := FindColumn(header, "warehouse"); got != -1 {
		t.Errorf("FindColumn = %d, want -1", got)
	}
}
