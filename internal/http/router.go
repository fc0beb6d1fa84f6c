package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout)
	r.Use(CORS)
	r.Use(Metrics)

	r.Get("/healthz", handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", handler.ListProducts)
		r.Get("/products/{id}", handler.GetProduct)
		r.Post("/products", handler.CreateProduct)
		r.Patch("/products/{id}", handler.PatchProduct)
		r.Delete("/products/{id}", handler.DeleteProduct)

		r.Get("/categories", handler.ListCategories)
		r.Get("/categories/{id}", handler.GetCategory)
		r.Post("/categories", handler.CreateCategory)
		r.Put("/categories/{id}", handler.UpdateCategory)
		r.Delete("/categories/{id}", handler.DeleteCategory)

		r.Get("/units", handler.ListUnits)
		r.Get("/units/{id}", handler.GetUnit)
		r.Post("/units", handler.CreateUnit)
		r.Put("/units/{id}", handler.UpdateUnit)
		r.Delete("/units/{id}", handler.DeleteUnit)

		r.Get("/customers", handler.ListCustomers)
		r.Get("/customers/{id}", handler.GetCustomer)
		r.Post("/customers", handler.CreateCustomer)
		r.Patch("/customers/{id}", handler.PatchCustomer)
		r.Delete("/customers/{id}", handler.DeleteCustomer)

		r.Get("/boms", handler.ListBOMs)
		r.Get("/boms/{productID}", handler.GetBOM)
		r.Post("/boms", handler.CreateBOM)
		r.Put("/boms/{productID}", handler.UpdateBOM)
		r.Delete("/boms/{productID}", handler.DeleteBOM)

		r.Get("/orders", handler.ListOrders)
		r.Get("/orders/{id}", handler.GetOrder)
		r.Post("/orders", handler.CreateOrder)
		r.Post("/orders/preview", handler.PreviewOrder)
		r.Get("/orders/{id}/export", handler.ExportOrder)
		r.Patch("/orders/{id}", handler.PatchOrder)
		r.Delete("/orders/{id}", handler.DeleteOrder)

		r.Get("/inventories", handler.ListInventory)
		r.Put("/inventories/{productID}", handler.UpdateInventory)
		r.Get("/inventory-histories", handler.ListInventoryHistory)

		r.Get("/inventory-receipts", handler.ListReceipts)
		r.Get("/inventory-receipts/{id}", handler.GetReceipt)
		r.Post("/inventory-receipts", handler.CreateReceipt)
		r.Post("/inventory-receipts/import-excel", handler.ImportReceiptExcel)
		r.Delete("/inventory-receipts/{id}", handler.DeleteReceipt)
	})

	return r
}
