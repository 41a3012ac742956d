package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"orghub/internal/org/models"
	"orghub/internal/org/service"
	dErrors "orghub/pkg/domain-errors"
	"orghub/pkg/platform/httputil"
	"orghub/pkg/requestcontext"
)

// Service defines the interface for organization operations.
type Service interface {
	Create(ctx context.Context, name, email, password string) (*models.Organization, error)
	Get(ctx context.Context, name string) (*models.Organization, error)
	Update(ctx context.Context, name string, params service.UpdateParams) (*models.Organization, error)
	Delete(ctx context.Context, name string) error
}

// Handler wires organization endpoints to the org service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an org handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the public organization endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/org", h.HandleCreate)
	r.Get("/org/{name}", h.HandleGet)
}

// RegisterProtected mounts the endpoints that require a session token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Put("/org", h.HandleUpdate)
	r.Delete("/org/{name}", h.HandleDelete)
}

// HandleCreate handles POST /org requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CreateOrgRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	org, err := h.service.Create(ctx, req.OrganizationName, req.AdminEmail, req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "organization creation failed",
			"request_id", requestID,
			"organization_name", req.OrganizationName,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "organization created",
		"request_id", requestID,
		"organization_name", org.Name,
		"collection_name", org.CollectionName,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusCreated, FromOrganization(org))
}

// urlName extracts the organization name path segment. Display names may
// contain spaces, so the segment arrives escaped.
func urlName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

// HandleGet handles GET /org/{name} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := urlName(r)

	org, err := h.service.Get(ctx, name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromOrganization(org))
}

// HandleUpdate handles PUT /org requests. The target organization comes from
// the session token, never from the request body.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	orgName := requestcontext.OrganizationName(ctx)
	if orgName == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateOrgRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	org, err := h.service.Update(ctx, orgName, service.UpdateParams{
		Name:     req.OrganizationName,
		Email:    req.AdminEmail,
		Password: req.Password,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "organization update failed",
			"request_id", requestID,
			"organization_name", orgName,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "organization updated",
		"request_id", requestID,
		"organization_name", org.Name,
	)

	httputil.WriteJSON(w, http.StatusOK, FromOrganization(org))
}

// HandleDelete handles DELETE /org/{name} requests. A session token only
// authorizes deleting its own organization.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	name := urlName(r)

	orgName := requestcontext.OrganizationName(ctx)
	if orgName == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if models.NormalizeName(orgName) != models.NormalizeName(name) {
		h.logger.WarnContext(ctx, "cross-organization delete refused",
			"request_id", requestID,
			"token_organization", orgName,
			"target_organization", name,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "cannot delete another organization"))
		return
	}

	if err := h.service.Delete(ctx, name); err != nil {
		h.logger.ErrorContext(ctx, "organization deletion failed",
			"request_id", requestID,
			"organization_name", name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "organization deleted",
		"request_id", requestID,
		"organization_name", name,
	)

	w.WriteHeader(http.StatusNoContent)
}
