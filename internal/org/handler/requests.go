package handler

import (
	"net/mail"
	"strings"

	"orghub/internal/org/models"
	dErrors "orghub/pkg/domain-errors"
)

const (
	// Password bounds: bcrypt only uses the first 72 bytes.
	minPasswordLength = 8
	maxPasswordLength = 72
)

func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", dErrors.New(dErrors.CodeValidation, "admin_email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", dErrors.New(dErrors.CodeValidation, "admin_email must be a valid email address")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if len(password) > maxPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be 72 characters or less")
	}
	return nil
}

// CreateOrgRequest is the HTTP request body for POST /org.
type CreateOrgRequest struct {
	OrganizationName string `json:"organization_name"`
	AdminEmail       string `json:"admin_email"`
	Password         string `json:"password"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateOrgRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.OrganizationName = strings.TrimSpace(r.OrganizationName)
	if r.OrganizationName == "" {
		return dErrors.New(dErrors.CodeValidation, "organization_name is required")
	}
	if err := models.ValidateName(r.OrganizationName); err != nil {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}

	email, err := validateEmail(r.AdminEmail)
	if err != nil {
		return err
	}
	r.AdminEmail = email

	return validatePassword(r.Password)
}

// UpdateOrgRequest is the HTTP request body for PUT /org. All fields are
// optional; absent fields are left unchanged.
type UpdateOrgRequest struct {
	OrganizationName *string `json:"organization_name,omitempty"`
	AdminEmail       *string `json:"admin_email,omitempty"`
	Password         *string `json:"password,omitempty"`
}

// Validate validates the fields that are present. An empty update is valid
// and results in no change.
func (r *UpdateOrgRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if r.OrganizationName != nil {
		trimmed := strings.TrimSpace(*r.OrganizationName)
		if err := models.ValidateName(trimmed); err != nil {
			return dErrors.New(dErrors.CodeValidation, err.Error())
		}
		r.OrganizationName = &trimmed
	}

	if r.AdminEmail != nil {
		email, err := validateEmail(*r.AdminEmail)
		if err != nil {
			return err
		}
		r.AdminEmail = &email
	}

	if r.Password != nil {
		if err := validatePassword(*r.Password); err != nil {
			return err
		}
	}

	return nil
}
