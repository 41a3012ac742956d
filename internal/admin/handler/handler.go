package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"orghub/internal/admin/service"
	"orghub/pkg/platform/httputil"
	"orghub/pkg/requestcontext"
)

// Service defines the interface for admin session operations.
type Service interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
}

// Handler wires admin session endpoints to the admin service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an admin handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts admin session endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/login", h.HandleLogin)
}

// HandleLogin handles POST /admin/login requests.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Login(ctx, req.AdminEmail, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "admin login refused",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "admin login succeeded",
		"request_id", requestID,
		"organization_name", result.OrganizationName,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromLoginResult(result))
}
