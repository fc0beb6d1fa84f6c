package excel

import (
	"bytes"
	"fmt"

	"backend/internal/domain"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// BuildOrderXLSX renders an order with its priced items as a workbook.
// Amounts are written as-is; display formatting stays with the caller.
func BuildOrderXLSX(order *domain.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	set := func(cell string, value any) error {
		return f.SetCellValue(sheet, cell, value)
	}

	header := [][2]any{
		{"A1", "Order"}, {"B1", order.Code},
		{"A2", "Date"}, {"B2", order.OrderDate.Format("2006-01-02")},
		{"A3", "Delivery status"}, {"B3", order.DeliveryStatus},
	}
	if order.Customer != nil {
		header = append(header, [2]any{"A4", "Customer"}, [2]any{"B4", order.Customer.Name})
	}
	for _, kv := range header {
		if err := set(kv[0].(string), kv[1]); err != nil {
			return nil, fmt.Errorf("write order header: %w", err)
		}
	}

	columns := []string{"Product", "Quantity", "Selling price", "Discount %", "Final amount", "Profit/loss"}
	for i, title := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 6)
		if err := set(cell, title); err != nil {
			return nil, fmt.Errorf("write item header: %w", err)
		}
	}

	row := 7
	for _, item := range order.Items {
		values := []any{
			item.ProductName,
			item.Quantity,
			item.SellingPrice,
			item.DiscountPercent,
			item.FinalAmount,
			item.ProfitLoss,
		}
		for i, value := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := set(cell, value); err != nil {
				return nil, fmt.Errorf("write item row %d: %w", row, err)
			}
		}
		row++
	}

	row++
	totals := [][2]any{
		{"Items total", order.ItemsTotal},
		{"Additional cost", order.AdditionalCost},
		{"Tax", order.TaxAmount},
		{"Grand total", order.GrandTotal},
		{"Total profit/loss", order.TotalProfitLoss},
	}
	for _, kv := range totals {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		if err := set(labelCell, kv[0]); err != nil {
			return nil, fmt.Errorf("write totals: %w", err)
		}
		if err := set(valueCell, kv[1]); err != nil {
			return nil, fmt.Errorf("write totals: %w", err)
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildOrderPDF renders a minimal PDF for an order.
func BuildOrderPDF(order *domain.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, fmt.Sprintf("Order %s", order.Code))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", order.OrderDate.Format("2006-01-02")))
	pdf.Ln(5)
	if order.Customer != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Customer: %s (%s)", order.Customer.Name, order.Customer.Code))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Delivery status: %s", order.DeliveryStatus))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Product", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 6, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 6, "Disc %", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, "Final amount", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, item := range order.Items {
		pdf.CellFormat(60, 6, item.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%g", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.0f", item.SellingPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%g", item.DiscountPercent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.0f", item.FinalAmount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.Cell(0, 6, fmt.Sprintf("Items total: %.0f", order.ItemsTotal))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Additional cost: %.0f", order.AdditionalCost))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Tax (%g%%): %.0f", order.TaxPercent, order.TaxAmount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Grand total: %.0f", order.GrandTotal))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Profit/loss: %.0f (%.1f%%)", order.TotalProfitLoss, order.TotalProfitLossPct))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
