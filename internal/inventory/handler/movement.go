package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/internal/inventory/service"
	"github.com/maestranza/inventory-backend/pkg/httputil"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// MovementHandler handles stock movement endpoints
type MovementHandler struct {
	stock     *service.StockService
	movements *repository.MovementRepository
	logger    *logger.Logger
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(stock *service.StockService, movements *repository.MovementRepository, log *logger.Logger) *MovementHandler {
	return &MovementHandler{
		stock:     stock,
		movements: movements,
		logger:    log,
	}
}

// Apply records a stock movement
func (h *MovementHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req service.ApplyMovementRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if userID := httputil.GetUserID(r.Context()); userID != "" {
		req.PerformedBy = &userID
	}

	movement, err := h.stock.ApplyMovement(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, movement)
}

// List lists movements with filters and pagination
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	filter := repository.MovementFilter{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if productID := r.URL.Query().Get("product_id"); productID != "" {
		filter.ProductID = &productID
	}
	if projectID := r.URL.Query().Get("project_id"); projectID != "" {
		filter.ProjectID = &projectID
	}
	if movementType := r.URL.Query().Get("type"); movementType != "" {
		filter.Type = &movementType
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}

	movements, total, err := h.movements.List(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, movements, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int64(total),
		TotalPages: totalPages,
	})
}
