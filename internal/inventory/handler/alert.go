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

// AlertHandler handles alert endpoints
type AlertHandler struct {
	service *service.AlertService
	logger  *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(svc *service.AlertService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		service: svc,
		logger:  log,
	}
}

// List lists alerts with filters, most urgent first
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	filter := repository.AlertFilter{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if alertType := r.URL.Query().Get("type"); alertType != "" {
		filter.Type = &alertType
	}
	if priority := r.URL.Query().Get("priority"); priority != "" {
		filter.Priority = &priority
	}
	if isRead := r.URL.Query().Get("is_read"); isRead != "" {
		v := isRead == "true"
		filter.IsRead = &v
	}
	if assignedTo := r.URL.Query().Get("assigned_to"); assignedTo != "" {
		filter.AssignedTo = &assignedTo
	}

	alerts, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, alerts, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int64(total),
		TotalPages: totalPages,
	})
}

// Get gets an alert by ID
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	alert, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alert)
}

// Create raises a manual alert
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCustomRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	alert, err := h.service.CreateCustom(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, alert)
}

// Generate runs all alert generators immediately
func (h *AlertHandler) Generate(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GenerateAll(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// markReadRequest optionally reassigns the alert while marking it read
type markReadRequest struct {
	AssignTo *string `json:"assign_to,omitempty" validate:"omitempty,uuid"`
}

// MarkRead marks an alert as read, optionally reassigning it
func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req markReadRequest
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
		if err := httputil.Validate(&req); err != nil {
			httputil.Error(w, err)
			return
		}
	}

	if err := h.service.MarkRead(r.Context(), id, req.AssignTo); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// MarkAllRead marks every unread alert as read
func (h *AlertHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.MarkAllRead(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int{"marked": count})
}

// assignRequest carries the target user for an alert assignment
type assignRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// Assign assigns an alert to a user
func (h *AlertHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req assignRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Assign(r.Context(), id, req.UserID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Statistics returns aggregate alert counts
func (h *AlertHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}

// Dashboard returns the most urgent open alerts
func (h *AlertHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.GetDashboard(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, dashboard)
}
