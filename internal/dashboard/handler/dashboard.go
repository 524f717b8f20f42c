package handler

import (
	"context"
	"net/http"

	"servimarket/internal/dashboard/service"
	apperrors "servimarket/pkg/errors"
	httputil "servimarket/pkg/http"
	"servimarket/pkg/logger"
	"servimarket/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type DashboardHandler struct {
	service service.DashboardService
	guard   middleware.Guard
	log     *logger.Logger
}

func NewDashboardHandler(service service.DashboardService, guard middleware.Guard, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *DashboardHandler) Client(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.serve(w, r, "Client", func(ctx context.Context, userID string) (any, error) {
		return h.service.Client(ctx, userID)
	})
}

func (h *DashboardHandler) Provider(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.serve(w, r, "Provider", func(ctx context.Context, userID string) (any, error) {
		return h.service.Provider(ctx, userID)
	})
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.serve(w, r, "Admin", func(ctx context.Context, userID string) (any, error) {
		return h.service.Admin(ctx, userID)
	})
}

func (h *DashboardHandler) serve(w http.ResponseWriter, r *http.Request, handler string, load func(context.Context, string) (any, error)) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Authentication required"))
		return
	}

	dash, err := load(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, handler, err)
		return
	}

	if err := httputil.WriteSuccess(w, dash); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *DashboardHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *DashboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/dashboard/client", h.guard(h.Client))
	router.GET("/api/v1/dashboard/provider", h.guard(h.Provider))
	router.GET("/api/v1/dashboard/admin", h.guard(h.Admin))
}
