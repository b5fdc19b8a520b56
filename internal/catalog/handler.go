package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockline-app/stockline/internal/platform/httpx"
)

// MaintenanceEnqueuer submits a named maintenance task to the job
// queue and returns the queued task ID.
type MaintenanceEnqueuer interface {
	EnqueueMaintenance(ctx context.Context, task string) (string, error)
}

// Handler exposes the catalog over JSON endpoints.
type Handler struct {
	logger       *slog.Logger
	search       *Search
	products     *Products
	associations *Associations
	maintenance  MaintenanceEnqueuer
	validator    *validator.Validate
}

// NewHandler constructs the catalog HTTP handler. maintenance may be
// nil when no job queue is wired.
func NewHandler(logger *slog.Logger, search *Search, products *Products, associations *Associations, maintenance MaintenanceEnqueuer) *Handler {
	return &Handler{
		logger:       logger,
		search:       search,
		products:     products,
		associations: associations,
		maintenance:  maintenance,
		validator:    validator.New(),
	}
}

// Register mounts the catalog routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/search", h.handleSearch)
	r.Get("/products", h.handleListProducts)
	r.Post("/products", h.handleCreateProduct)
	r.Delete("/products/{id}", h.handleDeleteProduct)
	r.Post("/products/bulk-delete", h.handleBulkDelete)
	r.Get("/owners/{owner}/suppliers", h.handleSuppliersForOwner)
	r.Get("/suppliers/{id}/owners", h.handleOwnersForSupplier)
	r.Post("/suppliers/{id}/owners", h.handleAddAssociation)
	r.Post("/maintenance/{task}", h.handleMaintenance)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := SearchQuery{
		Text:     r.URL.Query().Get("q"),
		Supplier: r.URL.Query().Get("supplier"),
		Owner:    r.URL.Query().Get("owner"),
	}
	results, err := h.search.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("search failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := ManualFilter{
		SupplierName: r.URL.Query().Get("supplier"),
		Owner:        r.URL.Query().Get("owner"),
	}
	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products, "count": len(products)})
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	product, err := h.products.Create(r.Context(), ManualProduct{
		Code:         req.Code,
		Name:         req.Name,
		Price:        req.Price,
		SupplierName: req.SupplierName,
		Owner:        req.Owner,
		Observations: req.Observations,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.products.BulkDelete(r.Context(), req.IDs); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSuppliersForOwner(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	suppliers, err := h.associations.SuppliersForOwner(r.Context(), owner)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"suppliers": suppliers})
}

func (h *Handler) handleOwnersForSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	owners, err := h.associations.OwnersForSupplier(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"owners": owners})
}

func (h *Handler) handleAddAssociation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req addAssociationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.associations.AddAssociation(r.Context(), id, req.Owner); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	if h.maintenance == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "No Job Queue", "maintenance tasks are not available")
		return
	}
	task := chi.URLParam(r, "task")
	id, err := h.maintenance.EnqueueMaintenance(r.Context(), task)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			httpx.Problem(w, http.StatusBadRequest, "Unknown Task", task)
			return
		}
		h.logger.Error("enqueue maintenance", slog.String("task", task), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusAccepted, enqueueResponse{Task: task, ID: id})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("catalog handler", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
