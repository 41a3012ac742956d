package lockout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orghub/internal/audit"
	"orghub/internal/org/models"
	dErrors "orghub/pkg/domain-errors"
)

// Store tracks login failures and hard locks per identifier.
type Store interface {
	// RecordFailure increments the failure count inside the sliding window
	// and returns the new count.
	RecordFailure(ctx context.Context, key string, window time.Duration) (int, error)
	// Lock hard-locks the identifier for the given duration.
	Lock(ctx context.Context, key string, duration time.Duration) error
	// IsLocked reports whether the identifier is locked and for how long.
	IsLocked(ctx context.Context, key string) (bool, time.Duration, error)
	// Clear removes failure and lock state for the identifier.
	Clear(ctx context.Context, key string) error
}

// Config bounds failed login attempts.
type Config struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		Window:       15 * time.Minute,
		LockDuration: 15 * time.Minute,
	}
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service enforces login lockout on top of a failure store.
type Service struct {
	store          Store
	config         Config
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

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

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("lockout store is required")
	}

	svc := &Service{
		store:  store,
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func key(email string) string {
	return models.NormalizeEmail(email)
}

// Check returns a rate-limited error when the identifier is hard-locked.
func (s *Service) Check(ctx context.Context, email string) error {
	locked, retryAfter, err := s.store.IsLocked(ctx, key(email))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check login lockout")
	}
	if locked {
		return dErrors.New(dErrors.CodeRateLimited,
			fmt.Sprintf("too many failed login attempts, retry in %d seconds", int(retryAfter.Seconds())))
	}
	return nil
}

// RecordFailure counts a failed attempt and hard-locks the identifier once
// the attempt limit is reached. Returns true when this failure triggered the
// lock.
func (s *Service) RecordFailure(ctx context.Context, email string) (bool, error) {
	count, err := s.store.RecordFailure(ctx, key(email), s.config.Window)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record login failure")
	}
	if count < s.config.MaxAttempts {
		return false, nil
	}

	if err := s.store.Lock(ctx, key(email), s.config.LockDuration); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock identifier")
	}

	s.logger.Warn("login lockout triggered",
		"failure_count", count,
		"lock_duration", s.config.LockDuration,
	)
	if s.auditPublisher != nil {
		s.auditPublisher.Emit(ctx, audit.Event{
			Action:     audit.ActionLoginLockout,
			AdminEmail: key(email),
			Detail:     fmt.Sprintf("locked for %s after %d failures", s.config.LockDuration, count),
		})
	}
	return true, nil
}

// Clear resets failure state after a successful login.
func (s *Service) Clear(ctx context.Context, email string) error {
	if err := s.store.Clear(ctx, key(email)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear login failures")
	}
	return nil
}
