package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"orghub/internal/audit"
	"orghub/internal/org/metrics"
	"orghub/internal/org/models"
	"orghub/internal/org/secrets"
	dErrors "orghub/pkg/domain-errors"
	"orghub/pkg/platform/sentinel"
	"orghub/pkg/requestcontext"
)

var tracer = otel.Tracer("orghub/internal/org/service")

type RegistryStore interface {
	CreateIfNameAvailable(ctx context.Context, org *models.Organization) error
	FindByName(ctx context.Context, name string) (*models.Organization, error)
	FindByEmail(ctx context.Context, email string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

type CollectionStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) error
	Drop(ctx context.Context, name string) error
	CopyAll(ctx context.Context, from, to string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// UpdateParams carries the staged changes for an organization update. Nil
// fields are left untouched.
type UpdateParams struct {
	Name     *string
	Email    *string
	Password *string
}

// Service orchestrates the organization registry: lifecycle of the record and
// of the tenant collection backing it.
type Service struct {
	registry       RegistryStore
	collections    CollectionStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(registry RegistryStore, collections CollectionStore, opts ...Option) *Service {
	s := &Service{
		registry:    registry,
		collections: collections,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new organization and provisions its tenant collection.
// The collection is created before the record is persisted: a record must
// never point at a collection that does not exist.
func (s *Service) Create(ctx context.Context, name, email, password string) (*models.Organization, error) {
	ctx, span := tracer.Start(ctx, "org.create",
		trace.WithAttributes(attribute.String("org.name", name)))
	defer span.End()
	start := time.Now()

	if err := models.ValidateName(name); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if _, err := s.registry.FindByName(ctx, name); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "organization name must be unique")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check organization name")
	}

	collectionName := models.CollectionName(name)
	if err := s.collections.Create(ctx, collectionName); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to provision collection")
	}

	hash, err := secrets.HashPassword(password)
	if err != nil {
		return nil, err
	}

	org, err := models.NewOrganization(uuid.New(), name, email, hash, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.registry.CreateIfNameAvailable(ctx, org); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			// A concurrent create won the name. Same normalized name means
			// same collection, so the provisioned collection stays.
			return nil, dErrors.New(dErrors.CodeConflict, "organization name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create organization")
	}

	s.logger.Info("organization created",
		"organization_name", org.Name,
		"collection_name", org.CollectionName,
	)
	s.emitAudit(ctx, audit.Event{
		Action:           audit.ActionOrgCreated,
		OrganizationName: org.Name,
		AdminEmail:       org.Email,
	})
	if s.metrics != nil {
		s.metrics.IncrementOrgsCreated()
		s.metrics.ObserveCreateOrg(start)
	}

	return org, nil
}

// Get returns an organization by name. Lookup is case-insensitive.
func (s *Service) Get(ctx context.Context, name string) (*models.Organization, error) {
	org, err := s.registry.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	return org, nil
}

// GetByEmail returns an organization by admin email. Lookup normalizes the
// input; when several organizations share the email the store picks one.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.Organization, error) {
	org, err := s.registry.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	return org, nil
}

// Update applies staged changes to an organization. A rename that changes the
// derived collection name triggers a data migration after the record is
// persisted. When nothing is effectively staged the call is a no-op and the
// record keeps its timestamps.
func (s *Service) Update(ctx context.Context, name string, params UpdateParams) (*models.Organization, error) {
	ctx, span := tracer.Start(ctx, "org.update",
		trace.WithAttributes(attribute.String("org.name", name)))
	defer span.End()

	org, err := s.registry.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}

	oldCollection := org.CollectionName
	staged := false

	if params.Name != nil && models.NormalizeName(*params.Name) != org.NameNormalized {
		if existing, err := s.registry.FindByName(ctx, *params.Name); err == nil && existing.ID != org.ID {
			return nil, dErrors.New(dErrors.CodeConflict, "organization name must be unique")
		} else if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check organization name")
		}
		if err := org.Rename(*params.Name, requestcontext.Now(ctx)); err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return nil, dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return nil, err
		}
		staged = true
	}

	if params.Email != nil {
		org.Email = models.NormalizeEmail(*params.Email)
		staged = true
	}

	if params.Password != nil {
		hash, err := secrets.HashPassword(*params.Password)
		if err != nil {
			return nil, err
		}
		org.PasswordHash = hash
		staged = true
	}

	if !staged {
		return org, nil
	}

	org.UpdatedAt = requestcontext.Now(ctx)
	if err := s.registry.Update(ctx, org); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "organization name must be unique")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update organization")
	}

	s.emitAudit(ctx, audit.Event{
		Action:           audit.ActionOrgUpdated,
		OrganizationName: org.Name,
		AdminEmail:       org.Email,
	})

	if org.CollectionName != oldCollection {
		if err := s.migrateCollection(ctx, org, oldCollection); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	return org, nil
}

// migrateCollection moves tenant documents from the old collection to the
// renamed organization's collection and drops the old one. The record already
// points at the new collection, so a failure here leaves the system partially
// migrated; it is reported as such and never rolled back.
func (s *Service) migrateCollection(ctx context.Context, org *models.Organization, oldCollection string) error {
	ctx, span := tracer.Start(ctx, "org.migrate_collection",
		trace.WithAttributes(
			attribute.String("collection.from", oldCollection),
			attribute.String("collection.to", org.CollectionName),
		))
	defer span.End()
	start := time.Now()

	err := func() error {
		if err := s.collections.Create(ctx, org.CollectionName); err != nil {
			return fmt.Errorf("provision destination: %w", err)
		}
		if err := s.collections.CopyAll(ctx, oldCollection, org.CollectionName); err != nil {
			return fmt.Errorf("copy documents: %w", err)
		}
		if err := s.collections.Drop(ctx, oldCollection); err != nil {
			return fmt.Errorf("drop old collection: %w", err)
		}
		return nil
	}()
	if err != nil {
		s.logger.Error("collection migration failed",
			"organization_name", org.Name,
			"from", oldCollection,
			"to", org.CollectionName,
			"error", err,
		)
		s.emitAudit(ctx, audit.Event{
			Action:           audit.ActionPartialFailure,
			OrganizationName: org.Name,
			Detail:           fmt.Sprintf("collection migration from %s to %s failed: %v", oldCollection, org.CollectionName, err),
		})
		if s.metrics != nil {
			s.metrics.IncrementPartialFailures()
		}
		return dErrors.Wrap(err, dErrors.CodePartialFailure, "organization updated but collection migration failed")
	}

	s.logger.Info("collection migrated",
		"organization_name", org.Name,
		"from", oldCollection,
		"to", org.CollectionName,
	)
	s.emitAudit(ctx, audit.Event{
		Action:           audit.ActionCollectionMigrated,
		OrganizationName: org.Name,
		Detail:           fmt.Sprintf("migrated %s to %s", oldCollection, org.CollectionName),
	})
	if s.metrics != nil {
		s.metrics.IncrementMigrations()
		s.metrics.ObserveMigration(start)
	}
	return nil
}

// Delete removes an organization and its tenant collection. The collection is
// dropped first; if deleting the record then fails the loss is surfaced as a
// partial failure instead of being hidden behind a retry.
func (s *Service) Delete(ctx context.Context, name string) error {
	ctx, span := tracer.Start(ctx, "org.delete",
		trace.WithAttributes(attribute.String("org.name", name)))
	defer span.End()

	org, err := s.registry.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}

	if err := s.collections.Drop(ctx, org.CollectionName); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to drop collection")
	}

	if err := s.registry.Delete(ctx, org.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		span.RecordError(err)
		s.emitAudit(ctx, audit.Event{
			Action:           audit.ActionPartialFailure,
			OrganizationName: org.Name,
			Detail:           fmt.Sprintf("collection %s dropped but record deletion failed: %v", org.CollectionName, err),
		})
		if s.metrics != nil {
			s.metrics.IncrementPartialFailures()
		}
		return dErrors.Wrap(err, dErrors.CodePartialFailure, "collection dropped but organization record deletion failed")
	}

	s.logger.Info("organization deleted",
		"organization_name", org.Name,
		"collection_name", org.CollectionName,
	)
	s.emitAudit(ctx, audit.Event{
		Action:           audit.ActionOrgDeleted,
		OrganizationName: org.Name,
		AdminEmail:       org.Email,
	})
	if s.metrics != nil {
		s.metrics.IncrementOrgsDeleted()
	}

	return nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	s.auditPublisher.Emit(ctx, event)
}
