package handler

import (
	"net/http"

	"servimarket/internal/accounts/service"
	"servimarket/internal/session"
	apperrors "servimarket/pkg/errors"
	httputil "servimarket/pkg/http"
	"servimarket/pkg/logger"
	"servimarket/pkg/middleware"
	"servimarket/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SessionResponse struct {
	session.Snapshot
	IsProvider bool `json:"is_provider"`
	IsAdmin    bool `json:"is_admin"`
	IsClient   bool `json:"is_client"`
}

type AccountHandler struct {
	service service.AccountService
	guard   middleware.Guard
	log     *logger.Logger
}

func NewAccountHandler(service service.AccountService, guard middleware.Guard, log *logger.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds model.Credentials
	if err := httputil.DecodeJSON(r, &creds); err != nil {
		h.writeError(w, "SignUp", err)
		return
	}

	user, err := h.service.SignUp(r.Context(), &creds)
	if err != nil {
		h.writeError(w, "SignUp", err)
		return
	}

	if err := httputil.WriteCreated(w, user); err != nil {
		h.log.Error("failed to write created response", "handler", "SignUp", "operation", "WriteCreated", "error", err)
	}
}

func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds model.Credentials
	if err := httputil.DecodeJSON(r, &creds); err != nil {
		h.writeError(w, "SignIn", err)
		return
	}

	sess, err := h.service.SignIn(r.Context(), &creds)
	if err != nil {
		h.writeError(w, "SignIn", err)
		return
	}

	if err := httputil.WriteSuccess(w, sess); err != nil {
		h.log.Error("failed to write success response", "handler", "SignIn", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AccountHandler) SignOut(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.service.SignOut(r.Context())
	httputil.WriteNoContent(w)
}

func (h *AccountHandler) Session(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap := h.service.Session(r.Context())
	resp := SessionResponse{
		Snapshot:   snap,
		IsProvider: snap.IsProvider(),
		IsAdmin:    snap.IsAdmin(),
		IsClient:   snap.IsClient(),
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Session", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, "GetProfile", apperrors.Unauthorized("Authentication required"))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, "GetProfile", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "GetProfile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, "UpdateProfile", apperrors.Unauthorized("Authentication required"))
		return
	}

	var update model.ProfileUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), user.ID, &update)
	if err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateProfile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AccountHandler) BecomeProvider(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, "BecomeProvider", apperrors.Unauthorized("Authentication required"))
		return
	}

	var app model.ProviderApplication
	if err := httputil.DecodeJSON(r, &app); err != nil {
		h.writeError(w, "BecomeProvider", err)
		return
	}

	account, err := h.service.BecomeProvider(r.Context(), user.ID, &app)
	if err != nil {
		h.writeError(w, "BecomeProvider", err)
		return
	}

	if err := httputil.WriteSuccess(w, account); err != nil {
		h.log.Error("failed to write success response", "handler", "BecomeProvider", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AccountHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AccountHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/sign-up", h.SignUp)
	router.POST("/api/v1/auth/sign-in", h.SignIn)
	router.POST("/api/v1/auth/sign-out", h.SignOut)
	router.GET("/api/v1/session", h.Session)
	router.GET("/api/v1/profiles/me", h.guard(h.GetProfile))
	router.PATCH("/api/v1/profiles/me", h.guard(h.UpdateProfile))
	router.POST("/api/v1/profiles/me/provider", h.guard(h.BecomeProvider))
}
