package lockout

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"orghub/internal/audit"
	dErrors "orghub/pkg/domain-errors"
)

type LockoutSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	store   *InMemoryStore
	audits  []audit.Event
	service *Service
}

func TestLockoutSuite(t *testing.T) {
	suite.Run(t, new(LockoutSuite))
}

func (s *LockoutSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryStore().WithClock(func() time.Time { return s.now })
	s.audits = nil

	svc, err := New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(auditFunc(func(_ context.Context, e audit.Event) {
			s.audits = append(s.audits, e)
		})),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *LockoutSuite) TestNewRequiresStore() {
	_, err := New(nil)
	s.Require().Error(err)
}

func (s *LockoutSuite) TestLockAfterMaxAttempts() {
	for i := 0; i < 4; i++ {
		locked, err := s.service.RecordFailure(s.ctx, "Admin@Acme.Test")
		s.Require().NoError(err)
		s.False(locked)
		s.NoError(s.service.Check(s.ctx, "admin@acme.test"))
	}

	locked, err := s.service.RecordFailure(s.ctx, "admin@acme.test")
	s.Require().NoError(err)
	s.True(locked)

	s.Run("check reports rate limited", func() {
		err := s.service.Check(s.ctx, "ADMIN@acme.test")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeRateLimited))
	})

	s.Run("lockout is audited", func() {
		s.Require().Len(s.audits, 1)
		s.Equal(audit.ActionLoginLockout, s.audits[0].Action)
		s.Equal("admin@acme.test", s.audits[0].AdminEmail)
	})

	s.Run("lock expires", func() {
		s.now = s.now.Add(16 * time.Minute)
		s.NoError(s.service.Check(s.ctx, "admin@acme.test"))
	})
}

func (s *LockoutSuite) TestWindowResetsFailureCount() {
	for i := 0; i < 4; i++ {
		_, err := s.service.RecordFailure(s.ctx, "admin@acme.test")
		s.Require().NoError(err)
	}

	s.now = s.now.Add(16 * time.Minute)

	// Old failures fell out of the window, so this is failure one of a new
	// window, not the locking fifth.
	locked, err := s.service.RecordFailure(s.ctx, "admin@acme.test")
	s.Require().NoError(err)
	s.False(locked)
}

func (s *LockoutSuite) TestClearResetsState() {
	for i := 0; i < 4; i++ {
		_, err := s.service.RecordFailure(s.ctx, "admin@acme.test")
		s.Require().NoError(err)
	}
	s.Require().NoError(s.service.Clear(s.ctx, "admin@acme.test"))

	locked, err := s.service.RecordFailure(s.ctx, "admin@acme.test")
	s.Require().NoError(err)
	s.False(locked)
}

func (s *LockoutSuite) TestIdentifiersAreIndependent() {
	for i := 0; i < 5; i++ {
		_, err := s.service.RecordFailure(s.ctx, "locked@acme.test")
		s.Require().NoError(err)
	}

	s.Require().True(dErrors.HasCode(s.service.Check(s.ctx, "locked@acme.test"), dErrors.CodeRateLimited))
	s.NoError(s.service.Check(s.ctx, "other@acme.test"))
}

type auditFunc func(ctx context.Context, event audit.Event)

func (f auditFunc) Emit(ctx context.Context, event audit.Event) { f(ctx, event) }
