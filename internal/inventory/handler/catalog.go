package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/internal/inventory/service"
	"github.com/maestranza/inventory-backend/pkg/httputil"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// CatalogHandler handles category, supplier and project endpoints
type CatalogHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *service.InventoryService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  log,
	}
}

// Categories

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, category)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category repository.Category
	if err := httputil.DecodeJSON(r, &category); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.service.CreateCategory(r.Context(), &category); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, category)
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var category repository.Category
	if err := httputil.DecodeJSON(r, &category); err != nil {
		httputil.Error(w, err)
		return
	}
	category.ID = chi.URLParam(r, "id")
	if err := h.service.UpdateCategory(r.Context(), &category); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

// Suppliers

func (h *CatalogHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, suppliers)
}

func (h *CatalogHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	supplier, err := h.service.GetSupplier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, supplier)
}

func (h *CatalogHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var supplier repository.Supplier
	if err := httputil.DecodeJSON(r, &supplier); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.service.CreateSupplier(r.Context(), &supplier); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, supplier)
}

func (h *CatalogHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var supplier repository.Supplier
	if err := httputil.DecodeJSON(r, &supplier); err != nil {
		httputil.Error(w, err)
		return
	}
	supplier.ID = chi.URLParam(r, "id")
	if err := h.service.UpdateSupplier(r.Context(), &supplier); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, supplier)
}

func (h *CatalogHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

// Projects

func (h *CatalogHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, projects)
}

func (h *CatalogHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, project)
}

func (h *CatalogHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var project repository.Project
	if err := httputil.DecodeJSON(r, &project); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := h.service.CreateProject(r.Context(), &project); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, project)
}

func (h *CatalogHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var project repository.Project
	if err := httputil.DecodeJSON(r, &project); err != nil {
		httputil.Error(w, err)
		return
	}
	project.ID = chi.URLParam(r, "id")
	if err := h.service.UpdateProject(r.Context(), &project); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, project)
}

func (h *CatalogHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}
