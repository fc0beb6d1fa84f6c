// Package pricing derives monetary figures for order, BOM, and receipt line
// items. Every function is pure and total over its numeric domain: zero or
// negative inputs flow through arithmetically, nothing panics, nothing is
// clamped. Range validation belongs to the caller.
package pricing

import "math"

type LineItem struct {
	Quantity        float64
	UnitCost        float64
	UnitPrice       float64
	DiscountPercent float64
}

type LineResult struct {
	GrossAmount    float64
	DiscountAmount float64
	NetAmount      float64
	CostAmount     float64
	ProfitLoss     float64
	ProfitLossPct  float64
}

type OrderTotals struct {
	ItemsTotal         float64
	AdditionalCost     float64
	Subtotal           float64
	TaxPercent         float64
	TaxAmount          float64
	GrandTotal         float64
	TotalCostBasis     float64
	TotalProfitLoss    float64
	TotalProfitLossPct float64
}

type ReceiptTotals struct {
	RowTotals  []float64
	GrandTotal float64
}

type BOMComponent struct {
	Quantity float64
	UnitCost float64
}

type BOMCost struct {
	ComponentTotals []float64
	TotalCost       float64
}

// ComputeLine derives the monetary figures for a single line item. The
// identities net = gross - discount and profit = net - cost hold exactly,
// with no intermediate rounding.
func ComputeLine(item LineItem) LineResult {
	gross := item.Quantity * item.UnitPrice
	discount := gross * item.DiscountPercent / 100
	net := gross - discount
	cost := item.Quantity * item.UnitCost

	result := LineResult{
		GrossAmount:    gross,
		DiscountAmount: discount,
		NetAmount:      net,
		CostAmount:     cost,
		ProfitLoss:     net - cost,
	}
	if cost > 0 {
		result.ProfitLossPct = result.ProfitLoss / cost * 100
	}
	return result
}

// ComputeOrderTotals aggregates line results with an order-level signed
// additional cost and a tax percentage. Sums are carried at full precision;
// the only rounding is the tax amount, rounded once on the subtotal to whole
// currency units.
func ComputeOrderTotals(items []LineItem, additionalCost, taxPercent float64) OrderTotals {
	totals := OrderTotals{
		AdditionalCost: additionalCost,
		TaxPercent:     taxPercent,
	}
	for _, item := range items {
		line := ComputeLine(item)
		totals.ItemsTotal += line.NetAmount
		totals.TotalCostBasis += line.CostAmount
		totals.TotalProfitLoss += line.ProfitLoss
	}
	totals.Subtotal = totals.ItemsTotal + additionalCost
	totals.TaxAmount = math.Round(totals.Subtotal * taxPercent / 100)
	totals.GrandTotal = totals.Subtotal + totals.TaxAmount
	totals.TotalProfitLoss += additionalCost
	if totals.TotalCostBasis > 0 {
		totals.TotalProfitLossPct = totals.TotalProfitLoss / totals.TotalCostBasis * 100
	}
	return totals
}

// ComputeOrderLines returns the per-line results alongside the aggregate, so
// callers rendering a table do not re-derive either from the other.
func ComputeOrderLines(items []LineItem, additionalCost, taxPercent float64) ([]LineResult, OrderTotals) {
	lines := make([]LineResult, len(items))
	for i, item := range items {
		lines[i] = ComputeLine(item)
	}
	return lines, ComputeOrderTotals(items, additionalCost, taxPercent)
}

// ComputeReceiptTotals derives row totals (quantity x unit cost) and the
// grand total for an inventory receipt.
func ComputeReceiptTotals(items []LineItem) ReceiptTotals {
	totals := ReceiptTotals{RowTotals: make([]float64, len(items))}
	for i, item := range items {
		rowTotal := item.Quantity * item.UnitCost
		totals.RowTotals[i] = rowTotal
		totals.GrandTotal += rowTotal
	}
	return totals
}

// ComputeBOMCost derives per-component and total cost for a bill of
// materials from the components' current unit costs.
func ComputeBOMCost(components []BOMComponent) BOMCost {
	cost := BOMCost{ComponentTotals: make([]float64, len(components))}
	for i, component := range components {
		total := component.Quantity * component.UnitCost
		cost.ComponentTotals[i] = total
		cost.TotalCost += total
	}
	return cost
}
