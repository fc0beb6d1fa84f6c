package domain

import "time"

const (
	OperationManufacturing = "MANUFACTURING"
	OperationPackaging     = "PACKAGING"
)

type Product struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Cost          float64   `json:"cost"`
	CategoryID    *int64    `json:"category_id,omitempty"`
	UnitID        *int64    `json:"unit_id,omitempty"`
	Description   string    `json:"description"`
	OperationType string    `json:"operation_type"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProductCategory struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
}

type UnitOfMeasure struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
}

type BOMUsage struct {
	ParentProductID   int64   `json:"parent_product_id"`
	ParentProductName string  `json:"parent_product_name"`
	Quantity          float64 `json:"quantity"`
}

type ProductDetail struct {
	Product
	Category   *ProductCategory `json:"category,omitempty"`
	Unit       *UnitOfMeasure   `json:"unit,omitempty"`
	Inventory  *Inventory       `json:"inventory,omitempty"`
	UsedInBOMs []BOMUsage       `json:"used_in_boms,omitempty"`
}

type Customer struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type BOMComponent struct {
	ID                 int64   `json:"id"`
	ComponentProductID int64   `json:"component_product_id"`
	Quantity           float64 `json:"quantity"`
	ComponentName      string  `json:"component_name,omitempty"`
	ComponentCost      float64 `json:"component_cost"`
	UnitName           *string `json:"unit_name,omitempty"`
	TotalCost          float64 `json:"total_cost"`
}

type BOM struct {
	ParentProductID   int64          `json:"parent_product_id"`
	ParentProductName string         `json:"parent_product_name,omitempty"`
	Components        []BOMComponent `json:"components"`
	TotalComponents   int            `json:"total_components"`
	TotalCost         float64        `json:"total_cost"`
}

type Order struct {
	ID                 int64       `json:"id"`
	Code               string      `json:"code"`
	CustomerID         int64       `json:"customer_id"`
	OrderDate          time.Time   `json:"order_date"`
	Note               *string     `json:"note,omitempty"`
	AdditionalCost     float64     `json:"additional_cost"`
	AdditionalCostNote *string     `json:"additional_cost_note,omitempty"`
	TaxPercent         float64     `json:"tax_percent"`
	DeliveryStatus     string      `json:"delivery_status"`
	CreatedAt          time.Time   `json:"created_at"`
	Customer           *Customer   `json:"customer,omitempty"`
	Items              []OrderItem `json:"order_items,omitempty"`

	// Derived fields, recomputed on every read.
	ItemsTotal         float64 `json:"total_amount"`
	TaxAmount          float64 `json:"tax_amount"`
	GrandTotal         float64 `json:"grand_total"`
	ProductCount       int     `json:"product_count"`
	TotalProfitLoss    float64 `json:"total_profit_loss"`
	TotalProfitLossPct float64 `json:"total_profit_loss_percentage"`
}

type OrderItem struct {
	ID              int64   `json:"id"`
	OrderID         int64   `json:"order_id"`
	ProductID       int64   `json:"product_id"`
	ProductName     string  `json:"product_name,omitempty"`
	Quantity        float64 `json:"quantity"`
	SellingPrice    float64 `json:"selling_price"`
	OriginalPrice   float64 `json:"original_price"`
	DiscountPercent float64 `json:"discount_percent"`
	FinalAmount     float64 `json:"final_amount"`

	// Derived fields, recomputed on every read.
	ProfitLoss    float64 `json:"profit_loss"`
	ProfitLossPct float64 `json:"profit_loss_percentage"`
}

type OrderItemInput struct {
	ProductID       int64   `json:"product_id"`
	Quantity        float64 `json:"quantity"`
	SellingPrice    float64 `json:"selling_price"`
	OriginalPrice   float64 `json:"original_price"`
	DiscountPercent float64 `json:"discount_percent"`
}

type Inventory struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Version   string `json:"version"`
}

type InventoryWithProduct struct {
	Inventory
	ProductName string  `json:"product_name"`
	ProductCode string  `json:"product_code"`
	ProductCost float64 `json:"product_cost"`
}

type InventoryHistoryEntry struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	ProductName   string    `json:"product_name,omitempty"`
	Quantity      int       `json:"quantity"`
	FinalQuantity int       `json:"final_quantity"`
	ImporterName  string    `json:"importer_name"`
	ImportedAt    time.Time `json:"imported_at"`
	Note          *string   `json:"note,omitempty"`
	ReferenceID   *int64    `json:"reference_id,omitempty"`
}

type InventoryReceipt struct {
	ID           int64                  `json:"id"`
	Code         string                 `json:"code"`
	ImporterName string                 `json:"importer_name"`
	ReceiptDate  time.Time              `json:"receipt_date"`
	Notes        *string                `json:"notes,omitempty"`
	TotalItems   int                    `json:"total_items"`
	TotalAmount  float64                `json:"total_amount"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Items        []InventoryReceiptItem `json:"items,omitempty"`
}

type InventoryReceiptItem struct {
	ID          int64   `json:"id"`
	ReceiptID   int64   `json:"inventory_receipt_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	RowTotal    float64 `json:"row_total"`
	Notes       *string `json:"notes,omitempty"`
}

type ReceiptItemInput struct {
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	UnitCost  float64 `json:"unit_cost"`
	Notes     *string `json:"notes,omitempty"`
}
