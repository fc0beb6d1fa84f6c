package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backend/internal/domain"
	"backend/internal/excel"
	"backend/internal/pricing"
	"backend/internal/repository"
)

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListProducts(ctx context.Context, filter repository.ProductListFilter) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.ProductDetail, error) {
	return s.repo.GetProductDetail(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, input repository.ProductCreateInput) (domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.Product{}, fmt.Errorf("name is required")
	}
	opType := strings.TrimSpace(input.OperationType)
	if opType != "" && opType != domain.OperationManufacturing && opType != domain.OperationPackaging {
		return domain.Product{}, fmt.Errorf("invalid operation_type: %q", opType)
	}
	return s.repo.CreateProduct(ctx, input)
}

func (s *Service) PatchProduct(ctx context.Context, id int64, input repository.ProductPatchInput) (*domain.Product, error) {
	return s.repo.PatchProduct(ctx, id, input)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.ProductCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.ProductCategory, error) {
	return s.repo.GetCategoryByID(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, input repository.CategoryInput) (domain.ProductCategory, error) {
	return s.repo.CreateCategory(ctx, input)
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, input repository.CategoryInput) (*domain.ProductCategory, error) {
	return s.repo.UpdateCategory(ctx, id, input)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) ListUnits(ctx context.Context) ([]domain.UnitOfMeasure, error) {
	return s.repo.ListUnits(ctx)
}

func (s *Service) GetUnit(ctx context.Context, id int64) (*domain.UnitOfMeasure, error) {
	return s.repo.GetUnitByID(ctx, id)
}

func (s *Service) CreateUnit(ctx context.Context, input repository.CategoryInput) (domain.UnitOfMeasure, error) {
	return s.repo.CreateUnit(ctx, input)
}

func (s *Service) UpdateUnit(ctx context.Context, id int64, input repository.CategoryInput) (*domain.UnitOfMeasure, error) {
	return s.repo.UpdateUnit(ctx, id, input)
}

func (s *Service) DeleteUnit(ctx context.Context, id int64) error {
	return s.repo.DeleteUnit(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context, search string, limit, offset int) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx, search, limit, offset)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.repo.GetCustomerByID(ctx, id)
}

func (s *Service) CreateCustomer(ctx context.Context, name, phone, address string) (domain.Customer, error) {
	return s.repo.CreateCustomer(ctx, name, phone, address)
}

func (s *Service) PatchCustomer(ctx context.Context, id int64, input repository.CustomerPatchInput) (*domain.Customer, error) {
	return s.repo.PatchCustomer(ctx, id, input)
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func (s *Service) ReplaceBOM(ctx context.Context, parentProductID int64, components []repository.BOMComponentInput) (*domain.BOM, error) {
	bom, err := s.repo.ReplaceBOM(ctx, parentProductID, components)
	if err != nil {
		return nil, err
	}
	costBOM(bom)
	return bom, nil
}

func (s *Service) GetBOM(ctx context.Context, parentProductID int64) (*domain.BOM, error) {
	bom, err := s.repo.GetBOM(ctx, parentProductID)
	if err != nil {
		return nil, err
	}
	costBOM(bom)
	return bom, nil
}

func (s *Service) ListBOMs(ctx context.Context, limit, offset int) ([]domain.BOM, error) {
	boms, err := s.repo.ListBOMs(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range boms {
		costBOM(&boms[i])
	}
	return boms, nil
}

func (s *Service) DeleteBOM(ctx context.Context, parentProductID int64) error {
	return s.repo.DeleteBOM(ctx, parentProductID)
}

// CreateOrder stores the order after deriving each item's final amount from
// the pricing engine. Stored amounts are a convenience for exports; reads
// always recompute.
func (s *Service) CreateOrder(ctx context.Context, input repository.OrderCreateInput) (*domain.Order, error) {
	for i := range input.Items {
		line := pricing.ComputeLine(orderItemLine(input.Items[i]))
		input.Items[i].FinalAmount = line.NetAmount
	}
	orderID, err := s.repo.CreateOrder(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	priceOrder(order)
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, filter repository.OrderListFilter) ([]domain.Order, error) {
	orders, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		priceOrder(&orders[i])
	}
	return orders, nil
}

func (s *Service) PatchOrder(ctx context.Context, id int64, input repository.OrderPatchInput) (*domain.Order, error) {
	order, err := s.repo.PatchOrderHeader(ctx, id, input)
	if err != nil {
		return nil, err
	}
	priceOrder(order)
	return order, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return s.repo.DeleteOrder(ctx, id)
}

// PreviewOrder runs the pricing engine over unsaved line items so forms can
// refresh derived amounts while the user types. Nothing is persisted.
func (s *Service) PreviewOrder(items []domain.OrderItemInput, additionalCost, taxPercent float64) ([]pricing.LineResult, pricing.OrderTotals) {
	lineItems := make([]pricing.LineItem, len(items))
	for i, item := range items {
		lineItems[i] = pricing.LineItem{
			Quantity:        item.Quantity,
			UnitCost:        item.OriginalPrice,
			UnitPrice:       item.SellingPrice,
			DiscountPercent: item.DiscountPercent,
		}
	}
	return pricing.ComputeOrderLines(lineItems, additionalCost, taxPercent)
}

func (s *Service) ListInventory(ctx context.Context, search string, limit, offset int) ([]domain.InventoryWithProduct, error) {
	return s.repo.ListInventory(ctx, search, limit, offset)
}

func (s *Service) SetInventoryQuantity(ctx context.Context, productID int64, quantity int, importerName string, note *string) (*domain.Inventory, error) {
	return s.repo.SetInventoryQuantity(ctx, productID, quantity, importerName, note)
}

func (s *Service) ListInventoryHistory(ctx context.Context, filter repository.HistoryListFilter) ([]domain.InventoryHistoryEntry, error) {
	return s.repo.ListInventoryHistory(ctx, filter)
}

func (s *Service) CreateReceipt(ctx context.Context, input repository.ReceiptCreateInput) (*domain.InventoryReceipt, error) {
	receiptID, err := s.repo.CreateReceipt(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.GetReceipt(ctx, receiptID)
}

func (s *Service) GetReceipt(ctx context.Context, id int64) (*domain.InventoryReceipt, error) {
	receipt, err := s.repo.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	priceReceipt(receipt)
	return receipt, nil
}

func (s *Service) ListReceipts(ctx context.Context, from, to *time.Time, limit, offset int) ([]domain.InventoryReceipt, error) {
	receipts, err := s.repo.ListReceipts(ctx, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range receipts {
		priceReceipt(&receipts[i])
	}
	return receipts, nil
}

func (s *Service) DeleteReceipt(ctx context.Context, id int64) error {
	return s.repo.DeleteReceipt(ctx, id)
}

// ImportReceiptRows resolves imported product names to ids and creates one
// receipt from the rows. Unknown product names fail the whole import.
func (s *Service) ImportReceiptRows(ctx context.Context, importerName string, receiptDate time.Time, notes *string, rows []excel.ReceiptImportRow) (*domain.InventoryReceipt, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("import file has no data rows")
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.ProductName
	}
	resolved, err := s.repo.FindProductIDsByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	items := make([]domain.InventoryReceiptItem, 0, len(rows))
	for _, row := range rows {
		productID, ok := resolved[strings.ToLower(strings.TrimSpace(row.ProductName))]
		if !ok {
			return nil, fmt.Errorf("unknown product: %s", row.ProductName)
		}
		items = append(items, domain.InventoryReceiptItem{
			ProductID: productID,
			Quantity:  row.Quantity,
			UnitCost:  row.UnitCost,
			Notes:     row.Notes,
		})
	}

	return s.CreateReceipt(ctx, repository.ReceiptCreateInput{
		ImporterName: importerName,
		ReceiptDate:  receiptDate,
		Notes:        notes,
		Items:        items,
	})
}

func orderItemLine(item domain.OrderItem) pricing.LineItem {
	return pricing.LineItem{
		Quantity:        item.Quantity,
		UnitCost:        item.OriginalPrice,
		UnitPrice:       item.SellingPrice,
		DiscountPercent: item.DiscountPercent,
	}
}

// priceOrder fills every derived monetary field on the order and its items
// from scratch. Stored final amounts are overwritten, never trusted, so a
// later correction to a line cannot leave stale figures behind.
func priceOrder(order *domain.Order) {
	lineItems := make([]pricing.LineItem, len(order.Items))
	for i, item := range order.Items {
		lineItems[i] = orderItemLine(item)
	}
	lines, totals := pricing.ComputeOrderLines(lineItems, order.AdditionalCost, order.TaxPercent)

	for i := range order.Items {
		order.Items[i].FinalAmount = lines[i].NetAmount
		order.Items[i].ProfitLoss = lines[i].ProfitLoss
		order.Items[i].ProfitLossPct = lines[i].ProfitLossPct
	}
	order.ItemsTotal = totals.ItemsTotal
	order.TaxAmount = totals.TaxAmount
	order.GrandTotal = totals.GrandTotal
	order.ProductCount = len(order.Items)
	order.TotalProfitLoss = totals.TotalProfitLoss
	order.TotalProfitLossPct = totals.TotalProfitLossPct
}

func priceReceipt(receipt *domain.InventoryReceipt) {
	lineItems := make([]pricing.LineItem, len(receipt.Items))
	for i, item := range receipt.Items {
		lineItems[i] = pricing.LineItem{Quantity: item.Quantity, UnitCost: item.UnitCost}
	}
	totals := pricing.ComputeReceiptTotals(lineItems)
	for i := range receipt.Items {
		receipt.Items[i].RowTotal = totals.RowTotals[i]
	}
	receipt.TotalItems = len(receipt.Items)
	receipt.TotalAmount = totals.GrandTotal
}

func costBOM(bom *domain.BOM) {
	components := make([]pricing.BOMComponent, len(bom.Components))
	for i, component := range bom.Components {
		components[i] = pricing.BOMComponent{Quantity: component.Quantity, UnitCost: component.ComponentCost}
	}
	cost := pricing.ComputeBOMCost(components)
	for i := range bom.Components {
		bom.Components[i].TotalCost = cost.ComponentTotals[i]
	}
	bom.TotalCost = cost.TotalCost
}
