package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"crm-backend/internal/pricing"
)

func readBack(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	return rows
}

func TestWriteQuoteExportLayout(t *testing.T) {
	lines := []pricing.Line{
		{No: 1, ItemCode: "A1", ItemName: "Widget", Specs: "S1", Qty: 2, UnitPrice: 500, TotalPrice: 1000},
		{No: 2, ItemCode: "B2", ItemName: "Gadget", Specs: "S2", Qty: 1, UnitPrice: 300, TotalPrice: 300},
	}
	buf, err := WriteQuoteExport("EVN Hanoi", lines)
	if err != nil {
		t.Fatalf("WriteQuoteExport: %v", err)
	}

	rows := readBack(t, buf)
	if rows[0][0] != "QUOTATION" {
		t.Errorf("A1 = %q, want QUOTATION banner", rows[0][0])
	}
	// Data begins at the fixed offset, positional columns.
	first := rows[exportStartRow-1]
	if first[1] != "A1" || first[3] != "S1" {
		t.Errorf("row at offset = %v, want positional code/specs", first)
	}
	if len(rows) != exportStartRow+1 {
		t.Errorf("got %d rows, want %d", len(rows), exportStartRow+1)
	}
}

func TestWriteQuoteWorkbookIncludesTotal(t *testing.T) {
	lines := []pricing.Line{{No: 1, Specs: "S1", Qty: 1, TotalPrice: 100, Profit: 10}}
	total := pricing.TotalRow(lines)

	buf, err := WriteQuoteWorkbook("ACME", lines, total)
	if err != nil {
		t.Fatalf("WriteQuoteWorkbook: %v", err)
	}

	rows := readBack(t, buf)
	if len(rows) != 3 { // header + one line + total
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	last := rows[2]
	if last[1] != "TOTAL" {
		t.Errorf("last row status = %q, want TOTAL", last[1])
	}
}

func TestWriteRowsWorkbookRoundTrip(t *testing.T) {
	header := []string{"Item", "Supplier", "Qty"}
	data := [][]string{{"Widget", "ACME", "3"}, {"Gadget", "ACME", "1"}}

	buf, err := WriteRowsWorkbook(header, data)
	if err != nil {
		t.Fatalf("WriteRowsWorkbook: %v", err)
	}

	rows := readBack(t, buf)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][1] != "Supplier" || rows[2][0] != "Gadget" {
		t.Errorf("round trip mismatch: %v", rows)
	}
}
