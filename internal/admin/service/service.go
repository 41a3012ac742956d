package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"orghub/internal/admin/metrics"
	"orghub/internal/audit"
	"orghub/internal/org/models"
	"orghub/internal/org/secrets"
	dErrors "orghub/pkg/domain-errors"
	"orghub/pkg/platform/sentinel"
	"orghub/pkg/requestcontext"
)

// dummyHash is a valid bcrypt hash compared against when no organization
// matches the email, keeping the failure path cost uniform.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type OrgFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.Organization, error)
}

type TokenIssuer interface {
	Issue(adminEmail, organizationName string, now time.Time) (string, error)
	TTL() time.Duration
}

type LockoutService interface {
	Check(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string) (bool, error)
	Clear(ctx context.Context, email string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// LoginResult is the issued session token with its metadata.
type LoginResult struct {
	AccessToken      string
	TokenType        string
	ExpiresIn        int
	AdminEmail       string
	OrganizationName string
}

// Service authenticates organization admins and issues session tokens.
type Service struct {
	orgs           OrgFinder
	tokens         TokenIssuer
	lockout        LockoutService
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithLockout(lockout LockoutService) Option {
	return func(s *Service) {
		s.lockout = lockout
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
func New(orgs OrgFinder, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		orgs:   orgs,
		tokens: tokens,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies credentials and issues a session token scoped to the
// admin's organization. Unknown email and wrong password are reported
// identically so accounts cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	start := time.Now()

	if s.lockout != nil {
		if err := s.lockout.Check(ctx, email); err != nil {
			return nil, err
		}
	}

	org, err := s.orgs.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up credentials")
	}

	hash := dummyHash
	if org != nil {
		hash = org.PasswordHash
	}
	if !secrets.VerifyPassword(password, hash) || org == nil {
		return nil, s.failLogin(ctx, email)
	}

	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, email); err != nil {
			s.logger.Warn("failed to clear lockout state", "error", err)
		}
	}

	token, err := s.tokens.Issue(org.Email, org.Name, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	s.logger.Info("admin logged in", "organization_name", org.Name)
	if s.auditPublisher != nil {
		s.auditPublisher.Emit(ctx, audit.Event{
			Action:           audit.ActionAdminLoginSucceeded,
			OrganizationName: org.Name,
			AdminEmail:       org.Email,
		})
	}
	if s.metrics != nil {
		s.metrics.IncrementLoginSuccesses()
		s.metrics.ObserveLogin(start)
	}

	return &LoginResult{
		AccessToken:      token,
		TokenType:        "bearer",
		ExpiresIn:        int(s.tokens.TTL().Seconds()),
		AdminEmail:       org.Email,
		OrganizationName: org.Name,
	}, nil
}

func (s *Service) failLogin(ctx context.Context, email string) error {
	if s.lockout != nil {
		locked, err := s.lockout.RecordFailure(ctx, email)
		if err != nil {
			s.logger.Warn("failed to record login failure", "error", err)
		} else if locked && s.metrics != nil {
			s.metrics.IncrementLockouts()
		}
	}

	if s.auditPublisher != nil {
		s.auditPublisher.Emit(ctx, audit.Event{
			Action:     audit.ActionAdminLoginFailed,
			AdminEmail: models.NormalizeEmail(email),
		})
	}
	if s.metrics != nil {
		s.metrics.IncrementLoginFailures()
	}

	return dErrors.New(dErrors.CodeInvalidCredentials, "Invalid credentials")
}
