package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "orghub/pkg/domain-errors"
)

// Organization is the aggregate root for a tenant organization.
//
// Invariants:
//   - Name is 3-64 characters; NameNormalized is unique across live records
//   - NameNormalized and CollectionName are pure functions of Name and are
//     recomputed whenever Name changes
//   - Exactly one tenant collection exists per organization, named by
//     CollectionName (rename migrations restore this invariant; a failed
//     migration leaves a flagged partial-failure state)
//   - PasswordHash never leaves the registry
//   - CreatedAt is immutable after construction
//
// Email intentionally carries no uniqueness constraint; login by email
// assumes at most one match in practice.
type Organization struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	NameNormalized string    `json:"-"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	CollectionName string    `json:"collection_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const (
	// MinNameLength and MaxNameLength bound the display name.
	MinNameLength = 3
	MaxNameLength = 64

	collectionPrefix = "org_"
	// fallbackSlug substitutes for names that normalize to nothing.
	fallbackSlug = "org"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName derives the lowercase/trimmed key used for uniqueness lookups.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeEmail lowercases and trims an admin email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Slug derives the identifier-safe form of a display name: lowercase, every
// maximal run of characters outside [a-z0-9] collapsed to one underscore,
// leading/trailing underscores trimmed, empty result replaced by a fixed
// token. The rule must stay byte-for-byte stable; existing tenant collections
// are named with it.
func Slug(name string) string {
	slug := nonAlphanumeric.ReplaceAllString(NormalizeName(name), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// CollectionName derives the tenant collection identifier for a display name.
func CollectionName(name string) string {
	return collectionPrefix + Slug(name)
}

// NewOrganization constructs an organization with derived fields populated.
// The password hash is supplied by the caller; this package never sees
// plaintext credentials.
func NewOrganization(id uuid.UUID, name, email, passwordHash string, now time.Time) (*Organization, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	return &Organization{
		ID:             id,
		Name:           name,
		NameNormalized: NormalizeName(name),
		Email:          NormalizeEmail(email),
		PasswordHash:   passwordHash,
		CollectionName: CollectionName(name),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ValidateName enforces the display name length bounds, counted in
// characters rather than bytes.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if utf8.RuneCountInString(trimmed) < MinNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization name must be at least 3 characters")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization name must be 64 characters or less")
	}
	return nil
}

// Rename applies a new display name and recomputes the derived fields.
// Callers are responsible for migrating the tenant collection when
// CollectionName changes.
func (o *Organization) Rename(name string, now time.Time) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	o.Name = name
	o.NameNormalized = NormalizeName(name)
	o.CollectionName = CollectionName(name)
	o.UpdatedAt = now
	return nil
}
