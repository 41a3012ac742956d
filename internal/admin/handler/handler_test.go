package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"orghub/internal/admin/handler/mocks"
	"orghub/internal/admin/service"
	dErrors "orghub/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type AdminHandlerSuite struct {
	suite.Suite
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) newRouter(mockService *mocks.MockService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(mockService, logger)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (s *AdminHandlerSuite) login(router http.Handler, payload any) *httptest.ResponseRecorder {
	raw, err := json.Marshal(payload)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (s *AdminHandlerSuite) TestHandleLogin() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()
	mockService := mocks.NewMockService(ctrl)
	router := s.newRouter(mockService)

	mockService.EXPECT().
		Login(gomock.Any(), "admin@acme.test", "s3cret-pass").
		Return(&service.LoginResult{
			AccessToken:      "signed-token",
			TokenType:        "bearer",
			ExpiresIn:        3600,
			AdminEmail:       "admin@acme.test",
			OrganizationName: "Acme",
		}, nil)

	rec := s.login(router, map[string]string{
		"admin_email": "admin@acme.test",
		"password":    "s3cret-pass",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp LoginResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal("signed-token", resp.AccessToken)
	s.Equal("bearer", resp.TokenType)
	s.Equal(3600, resp.ExpiresIn)
	s.Equal("admin@acme.test", resp.AdminEmail)
	s.Equal("Acme", resp.OrganizationName)
}

func (s *AdminHandlerSuite) TestHandleLoginInvalidCredentials() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()
	mockService := mocks.NewMockService(ctrl)
	router := s.newRouter(mockService)

	mockService.EXPECT().
		Login(gomock.Any(), "admin@acme.test", "wrong").
		Return(nil, dErrors.New(dErrors.CodeInvalidCredentials, "Invalid credentials"))

	rec := s.login(router, map[string]string{
		"admin_email": "admin@acme.test",
		"password":    "wrong",
	})
	s.Require().Equal(http.StatusUnauthorized, rec.Code)

	var resp map[string]string
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal("Invalid credentials", resp["error_description"])
}

func (s *AdminHandlerSuite) TestHandleLoginRateLimited() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()
	mockService := mocks.NewMockService(ctrl)
	router := s.newRouter(mockService)

	mockService.EXPECT().
		Login(gomock.Any(), "admin@acme.test", "s3cret-pass").
		Return(nil, dErrors.New(dErrors.CodeRateLimited, "too many failed login attempts, retry in 900 seconds"))

	rec := s.login(router, map[string]string{
		"admin_email": "admin@acme.test",
		"password":    "s3cret-pass",
	})
	s.Require().Equal(http.StatusTooManyRequests, rec.Code)
}

func (s *AdminHandlerSuite) TestHandleLoginValidation() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()
	mockService := mocks.NewMockService(ctrl)
	router := s.newRouter(mockService)

	// The service must not be called for invalid payloads.
	rec := s.login(router, map[string]string{"password": "s3cret-pass"})
	s.Require().Equal(http.StatusBadRequest, rec.Code)

	rec = s.login(router, map[string]string{"admin_email": "admin@acme.test"})
	s.Require().Equal(http.StatusBadRequest, rec.Code)
}
