// Package sqldriver implements storage.Driver over database/sql. It is
// database-agnostic and is embedded by the sqlite and postgres drivers.
package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Yash3561/Nexus/pkg/storage"
)

// Dialect carries the statement differences between SQL backends.
type Dialect struct {
	// Name is used in error messages.
	Name string

	// Placeholder returns the bind parameter for the n-th (1-based) argument.
	Placeholder func(n int) string

	// Schema creates the records table if it does not exist.
	Schema string
}

// SQLite uses "?" placeholders.
var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	Schema: `CREATE TABLE IF NOT EXISTS records (
	kind TEXT NOT NULL,
	id TEXT NOT NULL,
	body TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (kind, id)
)`,
}

// Postgres uses "$n" placeholders.
var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	Schema: `CREATE TABLE IF NOT EXISTS records (
	kind TEXT NOT NULL,
	id TEXT NOT NULL,
	body TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (kind, id)
)`,
}

// Driver provides record storage operations on a *sql.DB.
type Driver struct {
	DB      *sql.DB
	Dialect Dialect
}

// New runs the schema migration and returns a Driver. The caller keeps
// ownership of db until Close.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Driver, error) {
	if _, err := db.ExecContext(ctx, dialect.Schema); err != nil {
		return nil, fmt.Errorf("failed to create %s schema: %w", dialect.Name, err)
	}
	return &Driver{DB: db, Dialect: dialect}, nil
}

// bind rewrites "?" markers in query into the dialect's placeholders.
func (d *Driver) bind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Dialect.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Get retrieves a record body.
func (d *Driver) Get(ctx context.Context, kind storage.Kind, id string) ([]byte, error) {
	var body string
	err := d.DB.QueryRowContext(ctx,
		d.bind("SELECT body FROM records WHERE kind = ? AND id = ?"),
		string(kind), id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Kind: kind, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	return []byte(body), nil
}

// Put upserts a record.
func (d *Driver) Put(ctx context.Context, kind storage.Kind, id string, body []byte) error {
	_, err := d.DB.ExecContext(ctx,
		d.bind(`INSERT INTO records (kind, id, body, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (kind, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`),
		string(kind), id, string(body), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

// Delete removes a record.
func (d *Driver) Delete(ctx context.Context, kind storage.Kind, id string) error {
	_, err := d.DB.ExecContext(ctx,
		d.bind("DELETE FROM records WHERE kind = ? AND id = ?"),
		string(kind), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// List returns the ids of a kind ordered by id.
func (d *Driver) List(ctx context.Context, kind storage.Kind) ([]string, error) {
	rows, err := d.DB.QueryContext(ctx,
		d.bind("SELECT id FROM records WHERE kind = ? ORDER BY id"),
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan record id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.DB.Close()
}
