package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReceiptImportRow is one parsed line of a receipt import file. Products are
// referenced by name; the caller resolves names to ids.
type ReceiptImportRow struct {
	ProductName string
	Quantity    float64
	UnitCost    float64
	Notes       *string
}

var headerAliases = map[string]string{
	"product_name": "product_name",
	"product name": "product_name",
	"product":      "product_name",
	"sản phẩm":     "product_name",
	"tên sản phẩm": "product_name",
	"quantity":     "quantity",
	"qty":          "quantity",
	"số lượng":     "quantity",
	"unit_cost":    "unit_cost",
	"unit cost":    "unit_cost",
	"cost":         "unit_cost",
	"đơn giá":      "unit_cost",
	"giá nhập":     "unit_cost",
	"notes":        "notes",
	"note":         "notes",
	"ghi chú":      "notes",
}

// ParseReceiptRows reads receipt items from the first sheet of an xlsx file.
// The header row is matched case-insensitively against English and
// Vietnamese column names.
func ParseReceiptRows(reader io.Reader) ([]ReceiptImportRow, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0])
	for _, required := range []string{"product_name", "quantity", "unit_cost"} {
		if _, ok := colMap[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	result := make([]ReceiptImportRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := strings.TrimSpace(readCell(cells, colMap["product_name"]))
		if name == "" {
			continue
		}

		quantity, err := parseFloat(readCell(cells, colMap["quantity"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid quantity: %w", index+1, err)
		}
		if quantity <= 0 {
			return nil, fmt.Errorf("row %d quantity must be positive", index+1)
		}

		unitCost, err := parseFloat(readCell(cells, colMap["unit_cost"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid unit_cost: %w", index+1, err)
		}
		if unitCost < 0 {
			return nil, fmt.Errorf("row %d unit_cost cannot be negative", index+1)
		}

		var notes *string
		if idx, ok := colMap["notes"]; ok {
			if value := strings.TrimSpace(readCell(cells, idx)); value != "" {
				notes = &value
			}
		}

		result = append(result, ReceiptImportRow{
			ProductName: name,
			Quantity:    quantity,
			UnitCost:    unitCost,
			Notes:       notes,
		})
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no valid data rows")
	}
	return result, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\uFEFF")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseFloat(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return parsed, nil
}
