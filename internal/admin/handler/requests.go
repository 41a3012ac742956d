package handler

import (
	"strings"

	"orghub/internal/admin/service"
	dErrors "orghub/pkg/domain-errors"
)

// LoginRequest is the HTTP request body for POST /admin/login.
type LoginRequest struct {
	AdminEmail string `json:"admin_email"`
	Password   string `json:"password"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.AdminEmail = strings.TrimSpace(r.AdminEmail)
	if r.AdminEmail == "" {
		return dErrors.New(dErrors.CodeValidation, "admin_email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// LoginResponse is the HTTP response for POST /admin/login.
type LoginResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	AdminEmail       string `json:"admin_email"`
	OrganizationName string `json:"organization_name"`
}

// FromLoginResult converts a domain login result to an HTTP response.
func FromLoginResult(result *service.LoginResult) *LoginResponse {
	return &LoginResponse{
		AccessToken:      result.AccessToken,
		TokenType:        result.TokenType,
		ExpiresIn:        result.ExpiresIn,
		AdminEmail:       result.AdminEmail,
		OrganizationName: result.OrganizationName,
	}
}
