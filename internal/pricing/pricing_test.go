package pricing

import (
	"math"
	"testing"
)

func TestComputeLineBasic(t *testing.T) {
	got := ComputeLine(LineItem{
		Quantity:        10,
		UnitPrice:       50000,
		UnitCost:        40000,
		DiscountPercent: 10,
	})

	want := LineResult{
		GrossAmount:    500000,
		DiscountAmount: 50000,
		NetAmount:      450000,
		CostAmount:     400000,
		ProfitLoss:     50000,
		ProfitLossPct:  12.5,
	}
	if got != want {
		t.Fatalf("ComputeLine = %+v, want %+v", got, want)
	}
}

func TestComputeLineZeroInputs(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		want LineResult
	}{
		{
			name: "all zero",
			item: LineItem{},
			want: LineResult{},
		},
		{
			name: "zero quantity",
			item: LineItem{Quantity: 0, UnitPrice: 50000, UnitCost: 40000, DiscountPercent: 10},
			want: LineResult{},
		},
		{
			name: "zero price with cost",
			item: LineItem{Quantity: 5, UnitPrice: 0, UnitCost: 1000},
			want: LineResult{CostAmount: 5000, ProfitLoss: -5000, ProfitLossPct: -100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeLine(tt.item); got != tt.want {
				t.Fatalf("ComputeLine(%+v) = %+v, want %+v", tt.item, got, tt.want)
			}
		})
	}
}

func TestComputeLineZeroCostGuard(t *testing.T) {
	got := ComputeLine(LineItem{Quantity: 3, UnitPrice: 2000, UnitCost: 0})
	if got.ProfitLossPct != 0 {
		t.Fatalf("profit/loss percent with zero cost basis = %v, want 0", got.ProfitLossPct)
	}
	if math.IsNaN(got.ProfitLossPct) || math.IsInf(got.ProfitLossPct, 0) {
		t.Fatalf("profit/loss percent is not finite: %v", got.ProfitLossPct)
	}
	if got.ProfitLoss != 6000 {
		t.Fatalf("profit from free stock = %v, want 6000", got.ProfitLoss)
	}
}

func TestComputeLineNegativeInputsPassThrough(t *testing.T) {
	got := ComputeLine(LineItem{Quantity: -2, UnitPrice: 1000, UnitCost: 500})
	if got.GrossAmount != -2000 || got.NetAmount != -2000 {
		t.Fatalf("negative quantity should flow through: %+v", got)
	}
	if got.CostAmount != -1000 || got.ProfitLoss != -1000 {
		t.Fatalf("negative cost basis should flow through: %+v", got)
	}
	// Negative cost basis disables the percentage, same as zero.
	if got.ProfitLossPct != 0 {
		t.Fatalf("profit/loss percent with negative cost basis = %v, want 0", got.ProfitLossPct)
	}
}

func TestComputeLineIdempotent(t *testing.T) {
	item := LineItem{Quantity: 7, UnitPrice: 123456, UnitCost: 98765, DiscountPercent: 12.5}
	first := ComputeLine(item)
	second := ComputeLine(item)
	if first != second {
		t.Fatalf("repeated calls diverged: %+v vs %+v", first, second)
	}
}

func TestComputeLineExactIdentities(t *testing.T) {
	items := []LineItem{
		{Quantity: 3, UnitPrice: 33333, UnitCost: 22222, DiscountPercent: 7},
		{Quantity: 0.5, UnitPrice: 1999, UnitCost: 2500, DiscountPercent: 99},
		{Quantity: 120, UnitPrice: 1, UnitCost: 1, DiscountPercent: 0.1},
	}
	for _, item := range items {
		got := ComputeLine(item)
		if got.NetAmount != got.GrossAmount-got.DiscountAmount {
			t.Errorf("net != gross - discount for %+v: %+v", item, got)
		}
		if got.ProfitLoss != got.NetAmount-got.CostAmount {
			t.Errorf("profit != net - cost for %+v: %+v", item, got)
		}
	}
}

func TestComputeOrderTotalsScenario(t *testing.T) {
	// Two identical lines, a negative order-level adjustment, 5% tax.
	item := LineItem{Quantity: 10, UnitPrice: 50000, UnitCost: 40000, DiscountPercent: 10}
	got := ComputeOrderTotals([]LineItem{item, item}, -20000, 5)

	if got.ItemsTotal != 900000 {
		t.Errorf("items total = %v, want 900000", got.ItemsTotal)
	}
	if got.Subtotal != 880000 {
		t.Errorf("subtotal = %v, want 880000", got.Subtotal)
	}
	if got.TaxAmount != 44000 {
		t.Errorf("tax amount = %v, want 44000", got.TaxAmount)
	}
	if got.GrandTotal != 924000 {
		t.Errorf("grand total = %v, want 924000", got.GrandTotal)
	}
	if got.TotalProfitLoss != 80000 {
		t.Errorf("total profit/loss = %v, want 80000", got.TotalProfitLoss)
	}
	if got.TotalCostBasis != 800000 {
		t.Errorf("total cost basis = %v, want 800000", got.TotalCostBasis)
	}
	wantPct := 80000.0 / 800000.0 * 100
	if got.TotalProfitLossPct != wantPct {
		t.Errorf("total profit/loss percent = %v, want %v", got.TotalProfitLossPct, wantPct)
	}
}

func TestComputeOrderTotalsEmptyItems(t *testing.T) {
	got := ComputeOrderTotals(nil, 100000, 8)

	if got.ItemsTotal != 0 {
		t.Errorf("items total = %v, want 0", got.ItemsTotal)
	}
	if got.Subtotal != 100000 {
		t.Errorf("subtotal = %v, want 100000", got.Subtotal)
	}
	if got.TaxAmount != 8000 {
		t.Errorf("tax amount = %v, want 8000", got.TaxAmount)
	}
	if got.GrandTotal != 108000 {
		t.Errorf("grand total = %v, want 108000", got.GrandTotal)
	}
	if got.TotalProfitLoss != 100000 {
		t.Errorf("total profit/loss = %v, want 100000", got.TotalProfitLoss)
	}
	if got.TotalProfitLossPct != 0 {
		t.Errorf("total profit/loss percent with zero cost basis = %v, want 0", got.TotalProfitLossPct)
	}
}

func TestComputeOrderTotalsAllZero(t *testing.T) {
	got := ComputeOrderTotals(nil, 0, 0)
	if got != (OrderTotals{}) {
		t.Fatalf("empty order aggregate = %+v, want zero value", got)
	}
}

func TestComputeOrderTotalsTaxRoundedOnceOnSubtotal(t *testing.T) {
	// Three lines of 333 each at 10% tax. Per-line rounding would give
	// 3 x round(33.3) = 99; a single rounding on the subtotal gives 100.
	item := LineItem{Quantity: 1, UnitPrice: 333}
	got := ComputeOrderTotals([]LineItem{item, item, item}, 0, 10)
	if got.TaxAmount != 100 {
		t.Fatalf("tax amount = %v, want 100 (rounded once on subtotal)", got.TaxAmount)
	}
	if got.GrandTotal != 1099 {
		t.Fatalf("grand total = %v, want 1099", got.GrandTotal)
	}
}

func TestComputeOrderTotalsMatchesLineSums(t *testing.T) {
	items := []LineItem{
		{Quantity: 2, UnitPrice: 15000, UnitCost: 9000, DiscountPercent: 5},
		{Quantity: 1, UnitPrice: 72000, UnitCost: 80000},
		{Quantity: 0, UnitPrice: 99999, UnitCost: 123},
	}
	lines, totals := ComputeOrderLines(items, 5000, 0)

	var net, cost, profit float64
	for _, line := range lines {
		net += line.NetAmount
		cost += line.CostAmount
		profit += line.ProfitLoss
	}
	if totals.ItemsTotal != net {
		t.Errorf("items total %v != sum of line nets %v", totals.ItemsTotal, net)
	}
	if totals.TotalCostBasis != cost {
		t.Errorf("cost basis %v != sum of line costs %v", totals.TotalCostBasis, cost)
	}
	if totals.TotalProfitLoss != profit+5000 {
		t.Errorf("total profit/loss %v != line profits %v + additional cost", totals.TotalProfitLoss, profit)
	}
}

func TestComputeReceiptTotals(t *testing.T) {
	got := ComputeReceiptTotals([]LineItem{
		{Quantity: 10, UnitCost: 25000},
		{Quantity: 4, UnitCost: 1500},
		{Quantity: 0, UnitCost: 9999},
	})

	wantRows := []float64{250000, 6000, 0}
	if len(got.RowTotals) != len(wantRows) {
		t.Fatalf("row totals length = %d, want %d", len(got.RowTotals), len(wantRows))
	}
	for i, want := range wantRows {
		if got.RowTotals[i] != want {
			t.Errorf("row %d total = %v, want %v", i, got.RowTotals[i], want)
		}
	}
	if got.GrandTotal != 256000 {
		t.Errorf("grand total = %v, want 256000", got.GrandTotal)
	}
}

func TestComputeReceiptTotalsEmpty(t *testing.T) {
	got := ComputeReceiptTotals(nil)
	if len(got.RowTotals) != 0 || got.GrandTotal != 0 {
		t.Fatalf("empty receipt aggregate = %+v, want zero", got)
	}
}

func TestComputeBOMCost(t *testing.T) {
	got := ComputeBOMCost([]BOMComponent{
		{Quantity: 2, UnitCost: 12000},
		{Quantity: 0.25, UnitCost: 40000},
	})
	if got.ComponentTotals[0] != 24000 || got.ComponentTotals[1] != 10000 {
		t.Fatalf("component totals = %v, want [24000 10000]", got.ComponentTotals)
	}
	if got.TotalCost != 34000 {
		t.Fatalf("total cost = %v, want 34000", got.TotalCost)
	}
}
