package excel

import (
	"bytes"
	"testing"
	"time"

	"backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, cells := range rows {
		for c, value := range cells {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestParseReceiptRows(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		{"Product Name", "Quantity", "Unit Cost", "Notes"},
		{"Ballpoint pen", 100, 2500, "first batch"},
		{"Notebook A5", 40, 12000, ""},
		{"", 5, 1000, "blank name is skipped"},
	})

	rows, err := ParseReceiptRows(reader)
	if err != nil {
		t.Fatalf("ParseReceiptRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("parsed rows = %d, want 2", len(rows))
	}
	if rows[0].ProductName != "Ballpoint pen" || rows[0].Quantity != 100 || rows[0].UnitCost != 2500 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[0].Notes == nil || *rows[0].Notes != "first batch" {
		t.Errorf("row 0 notes = %v, want 'first batch'", rows[0].Notes)
	}
	if rows[1].Notes != nil {
		t.Errorf("row 1 notes = %v, want nil", rows[1].Notes)
	}
}

func TestParseReceiptRowsVietnameseHeaders(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		{"Sản phẩm", "Số lượng", "Đơn giá"},
		{"Giấy in A4", 10, "55,000"},
	})

	rows, err := ParseReceiptRows(reader)
	if err != nil {
		t.Fatalf("ParseReceiptRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("parsed rows = %d, want 1", len(rows))
	}
	if rows[0].UnitCost != 55000 {
		t.Errorf("unit cost = %v, want 55000 (thousands separator stripped)", rows[0].UnitCost)
	}
}

func TestParseReceiptRowsMissingColumn(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		{"Product Name", "Quantity"},
		{"Pen", 10},
	})

	if _, err := ParseReceiptRows(reader); err == nil {
		t.Fatal("expected error for missing unit_cost column")
	}
}

func TestParseReceiptRowsRejectsBadNumbers(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
	}{
		{"non-numeric quantity", [][]any{
			{"Product", "Quantity", "Unit Cost"},
			{"Pen", "ten", 100},
		}},
		{"negative unit cost", [][]any{
			{"Product", "Quantity", "Unit Cost"},
			{"Pen", 10, -5},
		}},
		{"zero quantity", [][]any{
			{"Product", "Quantity", "Unit Cost"},
			{"Pen", 0, 100},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseReceiptRows(buildWorkbook(t, tt.rows)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestBuildOrderXLSX(t *testing.T) {
	order := sampleOrder()
	data, err := BuildOrderXLSX(order)
	if err != nil {
		t.Fatalf("BuildOrderXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	code, err := f.GetCellValue(sheet, "B1")
	if err != nil {
		t.Fatalf("read code cell: %v", err)
	}
	if code != "DH00042" {
		t.Errorf("order code cell = %q, want DH00042", code)
	}
	product, err := f.GetCellValue(sheet, "A7")
	if err != nil {
		t.Fatalf("read product cell: %v", err)
	}
	if product != "Ballpoint pen" {
		t.Errorf("first item cell = %q, want Ballpoint pen", product)
	}
}

func TestBuildOrderPDF(t *testing.T) {
	data, err := BuildOrderPDF(sampleOrder())
	if err != nil {
		t.Fatalf("BuildOrderPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF (first bytes %q)", data[:min(8, len(data))])
	}
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:             42,
		Code:           "DH00042",
		OrderDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DeliveryStatus: "PENDING",
		Customer:       &domain.Customer{Code: "KH00007", Name: "Cua hang Minh Anh"},
		Items: []domain.OrderItem{
			{ProductName: "Ballpoint pen", Quantity: 100, SellingPrice: 3000, FinalAmount: 300000, ProfitLoss: 50000},
		},
		ItemsTotal:      300000,
		TaxAmount:       30000,
		GrandTotal:      330000,
		TotalProfitLoss: 50000,
	}
}
