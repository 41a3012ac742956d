package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"orghub/internal/admin/lockout"
	"orghub/internal/audit"
	"orghub/internal/jwttoken"
	"orghub/internal/org/service"
	"orghub/internal/org/store/registry"
	"orghub/internal/org/store/tenantcoll"
	"orghub/internal/platform/config"
	dErrors "orghub/pkg/domain-errors"
)

type AdminServiceSuite struct {
	suite.Suite
	ctx     context.Context
	tokens  *jwttoken.Service
	audits  []audit.Event
	service *Service
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.audits = nil
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := jwttoken.New(config.JWTConfig{
		SigningKey: "test-signing-key",
		Algorithm:  "HS256",
		TTL:        30 * time.Minute,
	})
	s.Require().NoError(err)
	s.tokens = tokens

	orgs := registry.NewInMemory()
	orgService := service.New(orgs, tenantcoll.NewInMemory(), service.WithLogger(logger))
	_, err = orgService.Create(s.ctx, "Acme", "admin@acme.test", "correct-password")
	s.Require().NoError(err)

	locks, err := lockout.New(lockout.NewInMemoryStore(), lockout.WithLogger(logger))
	s.Require().NoError(err)

	s.service = New(orgs, tokens,
		WithLogger(logger),
		WithLockout(locks),
		WithAuditPublisher(auditFunc(func(_ context.Context, e audit.Event) {
			s.audits = append(s.audits, e)
		})),
	)
}

func (s *AdminServiceSuite) TestLoginSuccess() {
	result, err := s.service.Login(s.ctx, "Admin@Acme.Test", "correct-password")
	s.Require().NoError(err)

	s.Equal("bearer", result.TokenType)
	s.Equal(1800, result.ExpiresIn)
	s.Equal("admin@acme.test", result.AdminEmail)
	s.Equal("Acme", result.OrganizationName)

	s.Run("token carries identity claims", func() {
		claims, err := s.tokens.ValidateToken(result.AccessToken)
		s.Require().NoError(err)
		s.Equal("admin@acme.test", claims.AdminEmail)
		s.Equal("Acme", claims.OrganizationName)
	})

	s.Run("success is audited", func() {
		s.Require().Len(s.audits, 1)
		s.Equal(audit.ActionAdminLoginSucceeded, s.audits[0].Action)
	})
}

func (s *AdminServiceSuite) TestLoginWrongPassword() {
	_, err := s.service.Login(s.ctx, "admin@acme.test", "wrong-password")
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidCredentials))

	s.Require().Len(s.audits, 1)
	s.Equal(audit.ActionAdminLoginFailed, s.audits[0].Action)
}

func (s *AdminServiceSuite) TestLoginUnknownEmailIsIndistinguishable() {
	_, wrongPass := s.service.Login(s.ctx, "admin@acme.test", "wrong-password")
	_, unknown := s.service.Login(s.ctx, "nobody@acme.test", "wrong-password")

	s.Require().Error(wrongPass)
	s.Require().Error(unknown)
	s.Equal(wrongPass.Error(), unknown.Error())
	s.True(dErrors.HasCode(unknown, dErrors.CodeInvalidCredentials))
}

func (s *AdminServiceSuite) TestLoginLocksAfterRepeatedFailures() {
	for i := 0; i < 5; i++ {
		_, err := s.service.Login(s.ctx, "admin@acme.test", "wrong-password")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
	}

	// Even the correct password is refused while locked.
	_, err := s.service.Login(s.ctx, "admin@acme.test", "correct-password")
	s.Require().True(dErrors.HasCode(err, dErrors.CodeRateLimited))
}

func (s *AdminServiceSuite) TestSuccessfulLoginClearsFailures() {
	for i := 0; i < 4; i++ {
		_, err := s.service.Login(s.ctx, "admin@acme.test", "wrong-password")
		s.Require().Error(err)
	}

	_, err := s.service.Login(s.ctx, "admin@acme.test", "correct-password")
	s.Require().NoError(err)

	// Failure count restarted, so four more failures stay under the limit.
	for i := 0; i < 4; i++ {
		_, err := s.service.Login(s.ctx, "admin@acme.test", "wrong-password")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
	}
}

type auditFunc func(ctx context.Context, event audit.Event)

func (f auditFunc) Emit(ctx context.Context, event audit.Event) { f(ctx, event) }
