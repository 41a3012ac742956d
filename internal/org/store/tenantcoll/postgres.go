package tenantcoll

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/lib/pq"

	dErrors "orghub/pkg/domain-errors"
)

// validCollection matches names produced by the organization slug rules.
// Anything else is refused before it can reach a dynamic identifier.
var validCollection = regexp.MustCompile(`^org_[a-z0-9_]*[a-z0-9]$`)

// PostgresStore materialises tenant collections as per-organization document
// tables: <collection> (id BIGSERIAL, doc JSONB). Table names are dynamic, so
// every statement quotes them with pq.QuoteIdentifier after validation.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func checkCollectionName(name string) error {
	if !validCollection.MatchString(name) {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("invalid collection name %q", name))
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := checkCollectionName(name); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check collection exists: %w", err)
	}
	return exists, nil
}

// Create provisions the collection's document table. IF NOT EXISTS keeps the
// operation idempotent across retries.
func (s *PostgresStore) Create(ctx context.Context, name string) error {
	if err := checkCollectionName(name); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id  BIGSERIAL PRIMARY KEY,
			doc JSONB NOT NULL
		)`, pq.QuoteIdentifier(name))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Drop removes the collection's table and all documents in it. Dropping a
// missing collection is a no-op.
func (s *PostgresStore) Drop(ctx context.Context, name string) error {
	if err := checkCollectionName(name); err != nil {
		return err
	}

	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, pq.QuoteIdentifier(name))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	return nil
}

// CopyAll moves every document from one collection into another inside a
// single transaction. The destination is cleared first so a retried migration
// never duplicates documents.
func (s *PostgresStore) CopyAll(ctx context.Context, from, to string) error {
	if err := checkCollectionName(from); err != nil {
		return err
	}
	if err := checkCollectionName(to); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin copy: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, pq.QuoteIdentifier(to))); err != nil {
		return fmt.Errorf("clear destination: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (doc) SELECT doc FROM %s ORDER BY id`,
		pq.QuoteIdentifier(to), pq.QuoteIdentifier(from))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("copy documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit copy: %w", err)
	}
	return nil
}

// List returns every tenant collection in the current schema.
func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name LIKE 'org\_%'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return names, nil
}

// Insert appends a document to a collection.
func (s *PostgresStore) Insert(ctx context.Context, name string, doc Document) error {
	if err := checkCollectionName(name); err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (doc) VALUES ($1)`, pq.QuoteIdentifier(name))
	if _, err := s.db.ExecContext(ctx, query, []byte(doc)); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Documents returns a collection's contents in insertion order.
func (s *PostgresStore) Documents(ctx context.Context, name string) ([]Document, error) {
	if err := checkCollectionName(name); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT doc FROM %s ORDER BY id`, pq.QuoteIdentifier(name)))
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, Document(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
