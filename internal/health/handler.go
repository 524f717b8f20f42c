package health

import (
	"context"
	"net/http"
	"time"

	httputil "servimarket/pkg/http"
	"servimarket/pkg/logger"
	"servimarket/pkg/metrics"

	"github.com/julienschmidt/httprouter"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether the data backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type HealthHandler struct {
	db  Pinger
	log *logger.Logger
}

// NewHealthHandler builds the health and readiness handler. A nil db means the data lives in
// memory and is always ready.
func NewHealthHandler(db Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:  db,
		log: log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.db == nil {
		h.writeReady(w, HealthResponse{Status: "ready", Database: "memory"}, http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		h.writeReady(w, HealthResponse{Status: "unavailable", Database: "error"}, http.StatusServiceUnavailable)
		return
	}

	h.writeReady(w, HealthResponse{Status: "ready", Database: "ok"}, http.StatusOK)
}

func (h *HealthHandler) writeReady(w http.ResponseWriter, resp HealthResponse, status int) {
	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())
}
