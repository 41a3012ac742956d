package admin

import (
	"log/slog"

	"orghub/internal/admin/handler"
	"orghub/internal/admin/service"
)

// Service exposes admin session orchestration.
type Service = service.Service

// Handler wires HTTP endpoints to the admin service.
type Handler = handler.Handler

// NewService constructs the admin service with required dependencies.
func NewService(orgs service.OrgFinder, tokens service.TokenIssuer, opts ...service.Option) *Service {
	return service.New(orgs, tokens, opts...)
}

// NewHandler constructs an HTTP handler for admin session routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
