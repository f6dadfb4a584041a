package receipts

import (
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// exportRow is the flat, one-row-per-line-item export shape. The tags
// drive gocsv header names.
type exportRow struct {
	ReceiptID     string `csv:"receipt_id"`
	Merchant      string `csv:"merchant"`
	Date          string `csv:"date"`
	ItemName      string `csv:"item_name"`
	ItemQuantity  int    `csv:"item_quantity"`
	ItemPrice     string `csv:"item_price"`
	ItemCategory  string `csv:"item_category"`
	Total         string `csv:"total"`
	Subtotal      string `csv:"subtotal"`
	Tax           string `csv:"tax"`
	PaymentMethod string `csv:"payment_method"`
	Source        string `csv:"source"`
}

func exportRows(stored []*StoredReceipt) []exportRow {
	rows := make([]exportRow, 0, len(stored))
	for _, sr := range stored {
		base := exportRow{
			ReceiptID:     sr.ID.String(),
			Merchant:      sr.Receipt.Merchant,
			Date:          sr.Receipt.Date,
			Total:         sr.Receipt.Total.StringFixed(2),
			Subtotal:      sr.Receipt.Subtotal.StringFixed(2),
			Tax:           sr.Receipt.Tax.StringFixed(2),
			PaymentMethod: sr.Receipt.PaymentMethod,
			Source:        string(sr.Source),
		}
		if len(sr.Receipt.Items) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, item := range sr.Receipt.Items {
			row := base
			row.ItemName = item.Name
			row.ItemQuantity = item.Quantity
			row.ItemPrice = item.Price.StringFixed(2)
			row.ItemCategory = string(item.Category)
			rows = append(rows, row)
		}
	}
	return rows
}

// ExportCSV renders the given receipts as CSV, one row per line item.
func ExportCSV(stored []*StoredReceipt) ([]byte, error) {
	out, err := gocsv.MarshalBytes(exportRows(stored))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal CSV: %w", err)
	}
	return out, nil
}

// ExportXLSX renders the given receipts as an XLSX workbook with one
// row per line item.
func ExportXLSX(stored []*StoredReceipt) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Receipts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop the default sheet excelize creates.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 && sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Receipt ID", "Merchant", "Date",
		"Item", "Quantity", "Price", "Category",
		"Total", "Subtotal", "Tax", "Payment Method", "Source",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowNum := 2
	for _, row := range exportRows(stored) {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, row.ReceiptID)
		write(2, row.Merchant)
		write(3, row.Date)
		write(4, row.ItemName)
		write(5, row.ItemQuantity)
		write(6, row.ItemPrice)
		write(7, row.ItemCategory)
		write(8, row.Total)
		write(9, row.Subtotal)
		write(10, row.Tax)
		write(11, row.PaymentMethod)
		write(12, row.Source)
		rowNum++
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // receipt id
	_ = f.SetColWidth(sheet, "B", "B", 22) // merchant
	_ = f.SetColWidth(sheet, "C", "C", 12) // date
	_ = f.SetColWidth(sheet, "D", "D", 32) // item
	_ = f.SetColWidth(sheet, "F", "J", 12) // amounts

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
