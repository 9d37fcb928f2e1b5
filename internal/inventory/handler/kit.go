package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/internal/inventory/service"
	"github.com/maestranza/inventory-backend/pkg/httputil"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// KitHandler handles kit endpoints
type KitHandler struct {
	inventory *service.InventoryService
	stock     *service.StockService
	logger    *logger.Logger
}

// NewKitHandler creates a new kit handler
func NewKitHandler(inventory *service.InventoryService, stock *service.StockService, log *logger.Logger) *KitHandler {
	return &KitHandler{
		inventory: inventory,
		stock:     stock,
		logger:    log,
	}
}

// List lists kits
func (h *KitHandler) List(w http.ResponseWriter, r *http.Request) {
	kits, err := h.inventory.ListKits(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, kits)
}

// Get gets a kit by ID
func (h *KitHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	kit, err := h.inventory.GetKit(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, kit)
}

// Create creates a new kit
func (h *KitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var kit repository.Kit
	if err := httputil.DecodeJSON(r, &kit); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.inventory.CreateKit(r.Context(), &kit); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, kit)
}

// Update updates a kit
func (h *KitHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var kit repository.Kit
	if err := httputil.DecodeJSON(r, &kit); err != nil {
		httputil.Error(w, err)
		return
	}

	kit.ID = id
	if err := h.inventory.UpdateKit(r.Context(), &kit); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, kit)
}

// Delete deletes a kit
func (h *KitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.inventory.DeleteKit(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Availability reports how many complete kits current stock supports
func (h *KitHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	availability, err := h.stock.CheckKitAvailability(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, availability)
}
