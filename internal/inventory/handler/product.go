package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/internal/inventory/service"
	"github.com/maestranza/inventory-backend/pkg/httputil"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(svc *service.InventoryService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  log,
	}
}

// List lists products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	filter := repository.ProductFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if category := r.URL.Query().Get("category_id"); category != "" {
		filter.CategoryID = &category
	}
	if supplier := r.URL.Query().Get("supplier_id"); supplier != "" {
		filter.SupplierID = &supplier
	}
	if isActive := r.URL.Query().Get("is_active"); isActive != "" {
		v := isActive == "true"
		filter.IsActive = &v
	}

	products, total, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, products, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int64(total),
		TotalPages: totalPages,
	})
}

// Get gets a product by ID
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// GetBySKU gets a product by SKU
func (h *ProductHandler) GetBySKU(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	product, err := h.service.GetProductBySKU(r.Context(), sku)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// Create creates a new product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Expiry tracking is on unless the request turns it off
	product := repository.Product{ExpiryControl: true}
	if err := httputil.DecodeJSON(r, &product); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.CreateProduct(r.Context(), &product); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, product)
}

// Update updates a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Decode over the current row so omitted fields keep their values
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.DecodeJSON(r, product); err != nil {
		httputil.Error(w, err)
		return
	}

	product.ID = id
	if err := h.service.UpdateProduct(r.Context(), product); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// Delete deletes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ListBatches lists a product's batches
func (h *ProductHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	batches, err := h.service.ListBatches(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}
