package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"backend/internal/domain"
	"backend/internal/excel"
	"backend/internal/pricing"
	"backend/internal/repository"
	"backend/internal/service"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var categoryID *int64
	if raw := strings.TrimSpace(query.Get("category_id")); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = &id
	}

	items, err := h.svc.ListProducts(r.Context(), repository.ProductListFilter{
		Search:        query.Get("search"),
		CategoryID:    categoryID,
		OperationType: query.Get("operation_type"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": items, "count": len(items)})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

type createProductRequest struct {
	Name          string  `json:"name"`
	Cost          float64 `json:"cost"`
	CategoryID    *int64  `json:"category_id"`
	UnitID        *int64  `json:"unit_id"`
	Description   string  `json:"description"`
	OperationType string  `json:"operation_type"`
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateProduct(r.Context(), repository.ProductCreateInput{
		Name:          req.Name,
		Cost:          req.Cost,
		CategoryID:    req.CategoryID,
		UnitID:        req.UnitID,
		Description:   req.Description,
		OperationType: req.OperationType,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchProductRequest struct {
	Name          *string  `json:"name"`
	Cost          *float64 `json:"cost"`
	CategoryID    *int64   `json:"category_id"`
	UnitID        *int64   `json:"unit_id"`
	Description   *string  `json:"description"`
	OperationType *string  `json:"operation_type"`
}

func (h *Handler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req patchProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.PatchProduct(r.Context(), id, repository.ProductPatchInput{
		Name:          req.Name,
		Cost:          req.Cost,
		CategoryID:    req.CategoryID,
		UnitID:        req.UnitID,
		Description:   req.Description,
		OperationType: req.OperationType,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type nameCodeRequest struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description"`
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.svc.GetCategory(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category})
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req nameCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateCategory(r.Context(), repository.CategoryInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req nameCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.UpdateCategory(r.Context(), id, repository.CategoryInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.svc.ListUnits(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"units": units})
}

func (h *Handler) GetUnit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	unit, err := h.svc.GetUnit(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unit not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unit": unit})
}

func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req nameCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateUnit(r.Context(), repository.CategoryInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req nameCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.UpdateUnit(r.Context(), id, repository.CategoryInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unit not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteUnit(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unit not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	customers, err := h.svc.ListCustomers(r.Context(), query.Get("search"), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers, "count": len(customers)})
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	customer, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

type customerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateCustomer(r.Context(), req.Name, req.Phone, req.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchCustomerRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (h *Handler) PatchCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req patchCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.PatchCustomer(r.Context(), id, repository.CustomerPatchInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bomComponentRequest struct {
	ComponentProductID int64   `json:"component_product_id"`
	Quantity           float64 `json:"quantity"`
}

type bomRequest struct {
	ParentProductID int64                 `json:"parent_product_id"`
	Components      []bomComponentRequest `json:"components"`
}

func (h *Handler) ListBOMs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	boms, err := h.svc.ListBOMs(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"boms": boms, "count": len(boms)})
}

func (h *Handler) GetBOM(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bom, err := h.svc.GetBOM(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "BOM not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bom": bom})
}

func (h *Handler) CreateBOM(w http.ResponseWriter, r *http.Request) {
	var req bomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ParentProductID <= 0 {
		writeError(w, http.StatusBadRequest, "parent_product_id is required")
		return
	}
	bom, err := h.svc.ReplaceBOM(r.Context(), req.ParentProductID, toBOMInputs(req.Components))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "parent product not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"bom": bom})
}

func (h *Handler) UpdateBOM(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req bomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bom, err := h.svc.ReplaceBOM(r.Context(), productID, toBOMInputs(req.Components))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "parent product not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bom": bom})
}

func (h *Handler) DeleteBOM(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteBOM(r.Context(), productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "BOM not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type orderItemRequest struct {
	ProductID       int64   `json:"product_id"`
	Quantity        float64 `json:"quantity"`
	SellingPrice    float64 `json:"selling_price"`
	OriginalPrice   float64 `json:"original_price"`
	DiscountPercent float64 `json:"discount_percent"`
}

type createOrderRequest struct {
	CustomerID         int64              `json:"customer_id"`
	OrderDate          string             `json:"order_date"`
	Note               *string            `json:"note"`
	AdditionalCost     float64            `json:"additional_cost"`
	AdditionalCostNote *string            `json:"additional_cost_note"`
	TaxPercent         float64            `json:"tax_percent"`
	DeliveryStatus     string             `json:"delivery_status"`
	Items              []orderItemRequest `json:"items"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !percentInRange(req.TaxPercent) {
		writeError(w, http.StatusBadRequest, "tax_percent must be between 0 and 100")
		return
	}
	for _, item := range req.Items {
		if !percentInRange(item.DiscountPercent) {
			writeError(w, http.StatusBadRequest, "discount_percent must be between 0 and 100")
			return
		}
	}

	orderDate, err := parseOptionalTime(req.OrderDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := repository.OrderCreateInput{
		CustomerID:         req.CustomerID,
		Note:               req.Note,
		AdditionalCost:     req.AdditionalCost,
		AdditionalCostNote: req.AdditionalCostNote,
		TaxPercent:         req.TaxPercent,
		DeliveryStatus:     req.DeliveryStatus,
	}
	if orderDate != nil {
		input.OrderDate = *orderDate
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, domain.OrderItem{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			SellingPrice:    item.SellingPrice,
			OriginalPrice:   item.OriginalPrice,
			DiscountPercent: item.DiscountPercent,
		})
	}

	order, err := h.svc.CreateOrder(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"order": order})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := parseOptionalTime(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseOptionalTime(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var customerID *int64
	if raw := strings.TrimSpace(query.Get("customer_id")); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid customer_id")
			return
		}
		customerID = &id
	}

	orders, err := h.svc.ListOrders(r.Context(), repository.OrderListFilter{
		CustomerID: customerID,
		From:       from,
		To:         to,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders, "count": len(orders)})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

type patchOrderRequest struct {
	CustomerID         *int64   `json:"customer_id"`
	OrderDate          *string  `json:"order_date"`
	Note               *string  `json:"note"`
	AdditionalCost     *float64 `json:"additional_cost"`
	AdditionalCostNote *string  `json:"additional_cost_note"`
	TaxPercent         *float64 `json:"tax_percent"`
	DeliveryStatus     *string  `json:"delivery_status"`
}

func (h *Handler) PatchOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req patchOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TaxPercent != nil && !percentInRange(*req.TaxPercent) {
		writeError(w, http.StatusBadRequest, "tax_percent must be between 0 and 100")
		return
	}

	input := repository.OrderPatchInput{
		CustomerID:         req.CustomerID,
		Note:               req.Note,
		AdditionalCost:     req.AdditionalCost,
		AdditionalCostNote: req.AdditionalCostNote,
		TaxPercent:         req.TaxPercent,
		DeliveryStatus:     req.DeliveryStatus,
	}
	if req.OrderDate != nil {
		orderDate, err := parseOptionalTime(*req.OrderDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		input.OrderDate = orderDate
	}

	order, err := h.svc.PatchOrder(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type previewOrderRequest struct {
	AdditionalCost float64            `json:"additional_cost"`
	TaxPercent     float64            `json:"tax_percent"`
	Items          []orderItemRequest `json:"items"`
}

type previewLineView struct {
	GrossAmount    float64 `json:"gross_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	CostAmount     float64 `json:"cost_amount"`
	ProfitLoss     float64 `json:"profit_loss"`
	ProfitLossPct  float64 `json:"profit_loss_percentage"`
}

type previewTotalsView struct {
	ItemsTotal         float64 `json:"items_total"`
	AdditionalCost     float64 `json:"additional_cost"`
	Subtotal           float64 `json:"subtotal"`
	TaxPercent         float64 `json:"tax_percent"`
	TaxAmount          float64 `json:"tax_amount"`
	GrandTotal         float64 `json:"grand_total"`
	TotalProfitLoss    float64 `json:"total_profit_loss"`
	TotalProfitLossPct float64 `json:"total_profit_loss_percentage"`
}

// PreviewOrder recomputes derived amounts for an unsaved order so the form
// can refresh while the user types.
func (h *Handler) PreviewOrder(w http.ResponseWriter, r *http.Request) {
	var req previewOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !percentInRange(req.TaxPercent) {
		writeError(w, http.StatusBadRequest, "tax_percent must be between 0 and 100")
		return
	}
	for _, item := range req.Items {
		if !percentInRange(item.DiscountPercent) {
			writeError(w, http.StatusBadRequest, "discount_percent must be between 0 and 100")
			return
		}
	}

	items := make([]domain.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.OrderItemInput{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			SellingPrice:    item.SellingPrice,
			OriginalPrice:   item.OriginalPrice,
			DiscountPercent: item.DiscountPercent,
		}
	}
	lines, totals := h.svc.PreviewOrder(items, req.AdditionalCost, req.TaxPercent)

	lineViews := make([]previewLineView, len(lines))
	for i, line := range lines {
		lineViews[i] = previewLineView{
			GrossAmount:    line.GrossAmount,
			DiscountAmount: line.DiscountAmount,
			FinalAmount:    line.NetAmount,
			CostAmount:     line.CostAmount,
			ProfitLoss:     line.ProfitLoss,
			ProfitLossPct:  line.ProfitLossPct,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":  lineViews,
		"totals": totalsView(totals),
	})
}

func (h *Handler) ExportOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch format {
	case "", "xlsx":
		data, err := excel.BuildOrderXLSX(order)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", order.Code))
		_, _ = w.Write(data)
	case "pdf":
		data, err := excel.BuildOrderPDF(order)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", order.Code))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "format must be xlsx or pdf")
	}
}

func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListInventory(r.Context(), query.Get("search"), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inventories": items, "count": len(items)})
}

type updateInventoryRequest struct {
	Quantity     int     `json:"quantity"`
	ImporterName string  `json:"importer_name"`
	Note         *string `json:"note"`
}

func (h *Handler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateInventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inventory, err := h.svc.SetInventoryQuantity(r.Context(), productID, req.Quantity, req.ImporterName, req.Note)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "inventory not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inventory": inventory})
}

func (h *Handler) ListInventoryHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var productID *int64
	if raw := strings.TrimSpace(query.Get("product_id")); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid product_id")
			return
		}
		productID = &id
	}
	entries, err := h.svc.ListInventoryHistory(r.Context(), repository.HistoryListFilter{
		ProductID: productID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inventory_histories": entries, "count": len(entries)})
}

type receiptItemRequest struct {
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	UnitCost  float64 `json:"unit_cost"`
	Notes     *string `json:"notes"`
}

type createReceiptRequest struct {
	ImporterName string               `json:"importer_name"`
	ReceiptDate  string               `json:"receipt_date"`
	Notes        *string              `json:"notes"`
	Items        []receiptItemRequest `json:"items"`
}

func (h *Handler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req createReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	receiptDate, err := parseOptionalTime(req.ReceiptDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := repository.ReceiptCreateInput{
		ImporterName: req.ImporterName,
		Notes:        req.Notes,
	}
	if receiptDate != nil {
		input.ReceiptDate = *receiptDate
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, domain.InventoryReceiptItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
			Notes:     item.Notes,
		})
	}

	receipt, err := h.svc.CreateReceipt(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"inventory_receipt": receipt})
}

func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := parseOptionalTime(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseOptionalTime(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	receipts, err := h.svc.ListReceipts(r.Context(), from, to, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inventory_receipts": receipts, "count": len(receipts)})
}

func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	receipt, err := h.svc.GetReceipt(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "receipt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inventory_receipt": receipt})
}

func (h *Handler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.DeleteReceipt(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "receipt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ImportReceiptExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	rows, err := excel.ParseReceiptRows(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	importerName := r.FormValue("importer_name")
	var notes *string
	if value := strings.TrimSpace(r.FormValue("notes")); value != "" {
		notes = &value
	}
	receiptDate, err := parseOptionalTime(r.FormValue("receipt_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date := time.Time{}
	if receiptDate != nil {
		date = *receiptDate
	}

	receipt, err := h.svc.ImportReceiptRows(r.Context(), importerName, date, notes, rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"inventory_receipt": receipt,
		"imported_rows":     len(rows),
	})
}

func toBOMInputs(components []bomComponentRequest) []repository.BOMComponentInput {
	inputs := make([]repository.BOMComponentInput, len(components))
	for i, component := range components {
		inputs[i] = repository.BOMComponentInput{
			ComponentProductID: component.ComponentProductID,
			Quantity:           component.Quantity,
		}
	}
	return inputs
}

func totalsView(totals pricing.OrderTotals) previewTotalsView {
	return previewTotalsView{
		ItemsTotal:         totals.ItemsTotal,
		AdditionalCost:     totals.AdditionalCost,
		Subtotal:           totals.Subtotal,
		TaxPercent:         totals.TaxPercent,
		TaxAmount:          totals.TaxAmount,
		GrandTotal:         totals.GrandTotal,
		TotalProfitLoss:    totals.TotalProfitLoss,
		TotalProfitLossPct: totals.TotalProfitLossPct,
	}
}

func percentInRange(value float64) bool {
	return value >= 0 && value <= 100
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseOptionalInt(raw string, defaultValue int) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value cannot be negative")
	}
	return parsed, nil
}

func parseOptionalTime(raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("invalid date: %s", raw)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
