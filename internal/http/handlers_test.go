package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backend/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(NewHandler(service.New(nil)))
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %q, want ok", body["status"])
	}
}

func TestPreviewOrderEndpoint(t *testing.T) {
	router := newTestRouter(t)

	payload := `{
		"additional_cost": -20000,
		"tax_percent": 5,
		"items": [
			{"product_id": 1, "quantity": 10, "selling_price": 50000, "original_price": 40000, "discount_percent": 10},
			{"product_id": 2, "quantity": 10, "selling_price": 50000, "original_price": 40000, "discount_percent": 10}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/preview", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body struct {
		Items  []previewLineView `json:"items"`
		Totals previewTotalsView `json:"totals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(body.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(body.Items))
	}
	if body.Items[0].FinalAmount != 450000 {
		t.Errorf("first item final amount = %v, want 450000", body.Items[0].FinalAmount)
	}
	if body.Totals.Subtotal != 880000 {
		t.Errorf("subtotal = %v, want 880000", body.Totals.Subtotal)
	}
	if body.Totals.TaxAmount != 44000 {
		t.Errorf("tax amount = %v, want 44000", body.Totals.TaxAmount)
	}
	if body.Totals.GrandTotal != 924000 {
		t.Errorf("grand total = %v, want 924000", body.Totals.GrandTotal)
	}
	if body.Totals.TotalProfitLoss != 80000 {
		t.Errorf("total profit = %v, want 80000", body.Totals.TotalProfitLoss)
	}
}

func TestPreviewOrderRejectsBadPercent(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name    string
		payload string
	}{
		{"tax over 100", `{"tax_percent": 101, "items": []}`},
		{"negative tax", `{"tax_percent": -1, "items": []}`},
		{"discount over 100", `{"tax_percent": 0, "items": [{"product_id": 1, "quantity": 1, "selling_price": 100, "original_price": 50, "discount_percent": 150}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/preview", strings.NewReader(tc.payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestPreviewOrderRejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/preview", strings.NewReader(`{"tax_percent": 0, "items": [], "bogus": true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestParseOptionalTime(t *testing.T) {
	if value, err := parseOptionalTime(""); err != nil || value != nil {
		t.Fatalf("empty input: value=%v err=%v", value, err)
	}
	value, err := parseOptionalTime("2026-03-15")
	if err != nil {
		t.Fatalf("date-only input: %v", err)
	}
	if value.Year() != 2026 || value.Month() != 3 || value.Day() != 15 {
		t.Fatalf("parsed date = %v", value)
	}
	if _, err := parseOptionalTime("15/03/2026"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("42"); err != nil || id != 42 {
		t.Fatalf("parseID(42) = %d, %v", id, err)
	}
	for _, raw := range []string{"", "abc", "0", "-3"} {
		if _, err := parseID(raw); err == nil {
			t.Fatalf("parseID(%q) expected error", raw)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
