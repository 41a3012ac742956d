package org

import (
	"log/slog"

	"orghub/internal/org/handler"
	"orghub/internal/org/service"
)

// Service exposes organization lifecycle orchestration.
type Service = service.Service

// Handler wires HTTP endpoints to the org service.
type Handler = handler.Handler

// UpdateParams carries staged changes for an organization update.
type UpdateParams = service.UpdateParams

// NewService constructs the org service with required dependencies.
func NewService(registry service.RegistryStore, collections service.CollectionStore, opts ...service.Option) *Service {
	return service.New(registry, collections, opts...)
}

// NewHandler constructs an HTTP handler for organization routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
