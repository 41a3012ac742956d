package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"orghub/internal/org/models"
	"orghub/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error class for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore persists organization records in PostgreSQL. Uniqueness of
// the normalized name is enforced by a unique index, so concurrent creates
// resolve to exactly one winner.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const organizationColumns = `id, name, name_normalized, email, password_hash, collection_name, created_at, updated_at`

func (s *PostgresStore) CreateIfNameAvailable(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (` + organizationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		org.ID, org.Name, org.NameNormalized, org.Email,
		org.PasswordHash, org.CollectionName, org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (*models.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		WHERE name_normalized = $1
	`
	org, err := scanOrganization(s.db.QueryRowContext(ctx, query, models.NormalizeName(name)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find organization by name: %w", err)
	}
	return org, nil
}

// FindByEmail returns the first record matching the email. No uniqueness
// constraint exists on email; at most one match is assumed in practice.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		WHERE email = $1
		ORDER BY created_at
		LIMIT 1
	`
	org, err := scanOrganization(s.db.QueryRowContext(ctx, query, models.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find organization by email: %w", err)
	}
	return org, nil
}

// Update replaces the whole record in a single statement.
func (s *PostgresStore) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, name_normalized = $3, email = $4,
			password_hash = $5, collection_name = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		org.ID, org.Name, org.NameNormalized, org.Email,
		org.PasswordHash, org.CollectionName, org.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update organization: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count organizations: %w", err)
	}
	return count, nil
}

func scanOrganization(row *sql.Row) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(
		&org.ID, &org.Name, &org.NameNormalized, &org.Email,
		&org.PasswordHash, &org.CollectionName, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
