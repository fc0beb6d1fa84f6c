package service

import (
	"testing"

	"backend/internal/domain"
)

func TestPreviewOrder(t *testing.T) {
	svc := New(nil)
	items := []domain.OrderItemInput{
		{ProductID: 1, Quantity: 10, SellingPrice: 50000, OriginalPrice: 40000, DiscountPercent: 10},
		{ProductID: 2, Quantity: 10, SellingPrice: 50000, OriginalPrice: 40000, DiscountPercent: 10},
	}

	lines, totals := svc.PreviewOrder(items, -20000, 5)

	if len(lines) != 2 {
		t.Fatalf("line results = %d, want 2", len(lines))
	}
	if lines[0].NetAmount != 450000 || lines[0].ProfitLoss != 50000 {
		t.Errorf("line result = %+v, want net 450000 profit 50000", lines[0])
	}
	if totals.Subtotal != 880000 || totals.TaxAmount != 44000 || totals.GrandTotal != 924000 {
		t.Errorf("totals = %+v, want subtotal 880000 tax 44000 grand 924000", totals)
	}
	if totals.TotalProfitLoss != 80000 {
		t.Errorf("total profit/loss = %v, want 80000", totals.TotalProfitLoss)
	}
}

func TestPreviewOrderEmpty(t *testing.T) {
	svc := New(nil)
	lines, totals := svc.PreviewOrder(nil, 0, 10)
	if len(lines) != 0 {
		t.Fatalf("line results = %d, want 0", len(lines))
	}
	if totals.GrandTotal != 0 || totals.TaxAmount != 0 {
		t.Fatalf("totals = %+v, want all zero", totals)
	}
}

func TestPriceOrderOverwritesStoredAmounts(t *testing.T) {
	order := domain.Order{
		AdditionalCost: 5000,
		TaxPercent:     8,
		Items: []domain.OrderItem{
			// Stored final amount is stale on purpose.
			{Quantity: 2, SellingPrice: 10000, OriginalPrice: 6000, FinalAmount: 1},
		},
	}

	priceOrder(&order)

	if order.Items[0].FinalAmount != 20000 {
		t.Errorf("final amount = %v, want 20000 (stale value must be replaced)", order.Items[0].FinalAmount)
	}
	if order.Items[0].ProfitLoss != 8000 {
		t.Errorf("profit/loss = %v, want 8000", order.Items[0].ProfitLoss)
	}
	if order.ItemsTotal != 20000 {
		t.Errorf("items total = %v, want 20000", order.ItemsTotal)
	}
	if order.TaxAmount != 2000 {
		t.Errorf("tax amount = %v, want 2000", order.TaxAmount)
	}
	if order.GrandTotal != 27000 {
		t.Errorf("grand total = %v, want 27000", order.GrandTotal)
	}
	if order.TotalProfitLoss != 13000 {
		t.Errorf("total profit/loss = %v, want 13000 (8000 + additional cost)", order.TotalProfitLoss)
	}
}

func TestPriceReceipt(t *testing.T) {
	receipt := domain.InventoryReceipt{
		Items: []domain.InventoryReceiptItem{
			{Quantity: 10, UnitCost: 25000},
			{Quantity: 4, UnitCost: 1500},
		},
	}

	priceReceipt(&receipt)

	if receipt.Items[0].RowTotal != 250000 || receipt.Items[1].RowTotal != 6000 {
		t.Errorf("row totals = %v / %v, want 250000 / 6000", receipt.Items[0].RowTotal, receipt.Items[1].RowTotal)
	}
	if receipt.TotalAmount != 256000 {
		t.Errorf("total amount = %v, want 256000", receipt.TotalAmount)
	}
	if receipt.TotalItems != 2 {
		t.Errorf("total items = %d, want 2", receipt.TotalItems)
	}
}

func TestCostBOM(t *testing.T) {
	bom := domain.BOM{
		Components: []domain.BOMComponent{
			{Quantity: 2, ComponentCost: 12000},
			{Quantity: 0.25, ComponentCost: 40000},
		},
	}

	costBOM(&bom)

	if bom.Components[0].TotalCost != 24000 || bom.Components[1].TotalCost != 10000 {
		t.Errorf("component totals = %v / %v, want 24000 / 10000", bom.Components[0].TotalCost, bom.Components[1].TotalCost)
	}
	if bom.TotalCost != 34000 {
		t.Errorf("total cost = %v, want 34000", bom.TotalCost)
	}
}
