package spreadsheet

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"crm-backend/internal/pricing"
)

// quoteBackupHeader is the full internal column set archived with every
// saved quote.
var quoteBackupHeader = []interface{}{
	"No", "Status", "Item code", "Item name", "Specs", "Q'ty",
	"Buying price (RMB)", "Exchange rate", "Buying price (VND)", "Total buying (VND)",
	"AP Price (VND)", "AP Total (VND)", "Unit Price (VND)", "Total Price (VND)", "GAP",
	"End user fee", "Buyer fee", "Import tax", "VAT", "Transportation", "Management fee", "Payback",
	"PROFIT (VND)", "% Profit", "Supplier", "Leadtime",
}

// WriteQuoteWorkbook builds the backup workbook stored alongside a saved
// quote: every line plus the synthetic TOTAL row, all columns.
func WriteQuoteWorkbook(customer string, lines []pricing.Line, total pricing.Line) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &quoteBackupHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	rowNo := 2
	writeLine := func(l pricing.Line) error {
		row := []interface{}{
			l.No, l.Status, l.ItemCode, l.ItemName, l.Specs, l.Qty,
			l.BuyingPriceRMB, l.ExchangeRate, l.BuyingPriceVND, l.TotalBuyingVND,
			l.APPrice, l.APTotal, l.UnitPrice, l.TotalPrice, l.Gap,
			l.EndUserFee, l.BuyerFee, l.ImportTax, l.VAT, l.Transportation, l.ManagementFee, l.Payback,
			l.Profit, l.ProfitPct, l.Supplier, l.Leadtime,
		}
		addr, err := excelize.CoordinatesToCellName(1, rowNo)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return err
		}
		rowNo++
		return nil
	}

	for _, l := range lines {
		if err := writeLine(l); err != nil {
			return nil, fmt.Errorf("failed to write line %d: %w", l.No, err)
		}
	}
	if err := writeLine(total); err != nil {
		return nil, fmt.Errorf("failed to write total row: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf, nil
}

// Customer-facing export template: three banner rows, then the table.
// Data starts at exportStartRow; columns are positional.
const exportStartRow = 4

// WriteQuoteExport fills the customer-facing quotation sheet: ordinal,
// code, name, specs, quantity, unit price, total price — internal cost
// and profit columns never leave the building.
func WriteQuoteExport(customer string, lines []pricing.Line) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	f.SetCellValue(sheet, "A1", "QUOTATION")
	f.SetCellValue(sheet, "A2", "Customer: "+customer)
	f.SetCellValue(sheet, "G2", "Date: "+time.Now().Format("02-Jan-2006"))

	header := []interface{}{"No", "Item code", "Item name", "Specs", "Q'ty", "Unit Price (VND)", "Total Price (VND)"}
	addr, _ := excelize.CoordinatesToCellName(1, exportStartRow-1)
	if err := f.SetSheetRow(sheet, addr, &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, l := range lines {
		row := []interface{}{l.No, l.ItemCode, l.ItemName, l.Specs, l.Qty, l.UnitPrice, l.TotalPrice}
		addr, err := excelize.CoordinatesToCellName(1, exportStartRow+i)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf, nil
}

// WriteRowsWorkbook serializes a header plus raw rows into a fresh
// workbook — used when splitting a master purchase sheet per supplier.
func WriteRowsWorkbook(header []string, rows [][]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	h := make([]interface{}, len(header))
	for i, v := range header {
		h[i] = v
	}
	if err := f.SetSheetRow(sheet, "A1", &h); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, addr, &vals); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf, nil
}
