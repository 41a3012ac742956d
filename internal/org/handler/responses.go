package handler

import (
	"time"

	"github.com/google/uuid"

	"orghub/internal/org/models"
)

// OrgResponse is the HTTP representation of an organization. The password
// hash and normalized name never leave the service.
type OrgResponse struct {
	ID               uuid.UUID `json:"id"`
	OrganizationName string    `json:"organization_name"`
	AdminEmail       string    `json:"admin_email"`
	CollectionName   string    `json:"collection_name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FromOrganization converts a domain organization to an HTTP response.
func FromOrganization(org *models.Organization) *OrgResponse {
	return &OrgResponse{
		ID:               org.ID,
		OrganizationName: org.Name,
		AdminEmail:       org.Email,
		CollectionName:   org.CollectionName,
		CreatedAt:        org.CreatedAt,
		UpdatedAt:        org.UpdatedAt,
	}
}
