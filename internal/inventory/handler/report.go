package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maestranza/inventory-backend/internal/inventory/service"
	"github.com/maestranza/inventory-backend/pkg/httputil"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// ReportHandler handles reporting endpoints
type ReportHandler struct {
	reports *service.ReportService
	stock   *service.StockService
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *service.ReportService, stock *service.StockService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		stock:   stock,
		logger:  log,
	}
}

// Inventory returns stock totals, valuation, and movement activity over an
// optional from/to period (RFC 3339 dates)
func (h *ReportHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	from := parseDateParam(r, "from")
	to := parseDateParam(r, "to")

	report, err := h.reports.InventoryReport(r.Context(), from, to)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

func parseDateParam(r *http.Request, name string) *time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}

// Consumption returns per-product usage rates over a window
func (h *ReportHandler) Consumption(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	trends, err := h.reports.ConsumptionTrends(r.Context(), days)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, trends)
}

// Expiry returns expiring and expired batch lists
func (h *ReportHandler) Expiry(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	report, err := h.reports.ExpiryReport(r.Context(), days)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// ProductConsumption returns one product's day-by-day usage over a window
func (h *ReportHandler) ProductConsumption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	report, err := h.reports.ProductConsumption(r.Context(), id, days)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// Suppliers returns per-supplier order fulfilment stats
func (h *ReportHandler) Suppliers(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.SupplierPerformance(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}

// SupplierDetail returns one supplier's fulfilment record
func (h *ReportHandler) SupplierDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.reports.SupplierDetail(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// LowStock returns products at or projected below their minimum
func (h *ReportHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.stock.LowStockCandidates(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, candidates)
}
