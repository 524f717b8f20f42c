package handler

import (
	"net/http"

	"servimarket/internal/catalog/service"
	apperrors "servimarket/pkg/errors"
	httputil "servimarket/pkg/http"
	"servimarket/pkg/logger"
	"servimarket/pkg/middleware"
	"servimarket/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CatalogHandler struct {
	service service.CatalogService
	guard   middleware.Guard
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, guard middleware.Guard, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, "ListCategories", err)
		return
	}

	if err := httputil.WriteSuccess(w, categories); err != nil {
		h.log.Error("failed to write success response", "handler", "ListCategories", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListServices", err)
		return
	}

	query := r.URL.Query()
	services, total, err := h.service.ListServices(r.Context(), model.ServiceFilter{
		CategoryID: query.Get("category_id"),
		Query:      query.Get("q"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.writeError(w, "ListServices", err)
		return
	}

	if err := httputil.WritePaginated(w, services, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListServices", "operation", "WritePaginated", "error", err)
	}
}

func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	svc, err := h.service.GetService(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetService", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "GetService", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, "CreateService", apperrors.Unauthorized("Authentication required"))
		return
	}

	var svc model.Service
	if err := httputil.DecodeJSON(r, &svc); err != nil {
		h.writeError(w, "CreateService", err)
		return
	}

	created, err := h.service.CreateService(r.Context(), user.ID, &svc)
	if err != nil {
		h.writeError(w, "CreateService", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateService", "operation", "WriteCreated", "error", err)
	}
}

func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, "UpdateService", apperrors.Unauthorized("Authentication required"))
		return
	}

	var update model.ServiceUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateService", err)
		return
	}

	svc, err := h.service.UpdateService(r.Context(), user.ID, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateService", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateService", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, "DeleteService", apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.service.DeleteService(r.Context(), user.ID, ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteService", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reviews, err := h.service.ListReviews(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ListReviews", err)
		return
	}

	if err := httputil.WriteSuccess(w, reviews); err != nil {
		h.log.Error("failed to write success response", "handler", "ListReviews", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) CreateReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, "CreateReview", apperrors.Unauthorized("Authentication required"))
		return
	}

	var req model.ReviewRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateReview", err)
		return
	}

	review, err := h.service.CreateReview(r.Context(), user.ID, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "CreateReview", err)
		return
	}

	if err := httputil.WriteCreated(w, review); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateReview", "operation", "WriteCreated", "error", err)
	}
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/categories", h.ListCategories)
	router.GET("/api/v1/services", h.ListServices)
	router.POST("/api/v1/services", h.guard(h.CreateService))
	router.GET("/api/v1/services/id/:id", h.GetService)
	router.PATCH("/api/v1/services/id/:id", h.guard(h.UpdateService))
	router.DELETE("/api/v1/services/id/:id", h.guard(h.DeleteService))
	router.GET("/api/v1/services/id/:id/reviews", h.ListReviews)
	router.POST("/api/v1/services/id/:id/reviews", h.guard(h.CreateReview))
}
