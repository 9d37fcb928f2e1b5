package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/internal/inventory/service"
	"github.com/maestranza/inventory-backend/pkg/httputil"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	service *service.PurchaseOrderService
	logger  *logger.Logger
}

// NewPurchaseOrderHandler creates a new purchase order handler
func NewPurchaseOrderHandler(svc *service.PurchaseOrderService, log *logger.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		service: svc,
		logger:  log,
	}
}

// List lists purchase orders, optionally filtered by status
func (h *PurchaseOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}

	orders, err := h.service.List(r.Context(), status)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, orders)
}

// Get gets a purchase order by ID
func (h *PurchaseOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, order)
}

// Create creates a pending purchase order
func (h *PurchaseOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var order repository.PurchaseOrder
	if err := httputil.DecodeJSON(r, &order); err != nil {
		httputil.Error(w, err)
		return
	}

	if userID := httputil.GetUserID(r.Context()); userID != "" {
		order.CreatedBy = &userID
	}

	if err := h.service.Create(r.Context(), &order); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, order)
}

// statusRequest carries the target status for a transition
type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=ordered received cancelled"`
}

// UpdateStatus moves an order through its lifecycle
func (h *PurchaseOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status, httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, order)
}

// Delete removes a pending purchase order
func (h *PurchaseOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
