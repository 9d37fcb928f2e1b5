package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/internal/inventory/service"
	"github.com/maestranza/inventory-backend/pkg/httputil"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// BatchHandler handles batch endpoints
type BatchHandler struct {
	inventory *service.InventoryService
	stock     *service.StockService
	logger    *logger.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(inventory *service.InventoryService, stock *service.StockService, log *logger.Logger) *BatchHandler {
	return &BatchHandler{
		inventory: inventory,
		stock:     stock,
		logger:    log,
	}
}

// Create registers a new batch
func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var batch repository.Batch
	if err := httputil.DecodeJSON(r, &batch); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.inventory.CreateBatch(r.Context(), &batch); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, batch)
}

// Get gets a batch by ID
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	batch, err := h.inventory.GetBatch(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batch)
}

// Update updates a batch
func (h *BatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var batch repository.Batch
	if err := httputil.DecodeJSON(r, &batch); err != nil {
		httputil.Error(w, err)
		return
	}

	batch.ID = id
	if err := h.inventory.UpdateBatch(r.Context(), &batch); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batch)
}

// Delete deletes a batch
func (h *BatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.inventory.DeleteBatch(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ListExpiring lists batches expiring within the configured warning window
func (h *BatchHandler) ListExpiring(w http.ResponseWriter, r *http.Request) {
	batches, err := h.stock.ExpiringBatches(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}

// ListExpired lists expired batches that still hold stock
func (h *BatchHandler) ListExpired(w http.ResponseWriter, r *http.Request) {
	batches, err := h.stock.ExpiredBatches(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}

// Sweep flags every expired batch and raises its alert
func (h *BatchHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	swept, err := h.stock.SweepExpiredBatches(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int{"swept": swept})
}
