// Package migrations embeds the postgres schema. Files are named
// NNNN_name.up.sql / NNNN_name.down.sql and applied in lexical order.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// Names lists the migrations in the order Up applies them.
func Names() ([]string, error) {
	entries, err := fs.Glob(files, "*"+upSuffix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e, upSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// Up applies every migration not yet recorded in schema_migrations. Each
// migration runs in its own transaction.
func Up(ctx context.Context, db *sql.DB) ([]string, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	names, err := Names()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range names {
		ok, err := apply(ctx, db, name)
		if err != nil {
			return applied, err
		}
		if ok {
			applied = append(applied, name)
		}
	}
	return applied, nil
}

func apply(ctx context.Context, db *sql.DB, name string) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var done bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&done)
	if err != nil {
		return false, err
	}
	if done {
		return false, nil
	}

	content, err := files.ReadFile(name + upSuffix)
	if err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return false, fmt.Errorf("failed to apply migration %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// Run executes the single migration file whose name ends with migrationName,
// e.g. "create_votes.down" or "0003_create_votes.up". It bypasses
// schema_migrations bookkeeping.
func Run(ctx context.Context, db *sql.DB, migrationName string) (string, error) {
	fileName, err := migrationFilePath(migrationName)
	if err != nil {
		return "", err
	}

	content, err := files.ReadFile(fileName)
	if err != nil {
		return "", err
	}
	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		return "", fmt.Errorf("failed to execute %s: %w", fileName, err)
	}
	return fileName, nil
}

func migrationFilePath(migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", fmt.Errorf("invalid migration name: %w", err)
	}

	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() && regex.MatchString(e.Name()) {
			return e.Name(), nil
		}
	}
	return "", fmt.Errorf("migration file not found: %s", migrationName)
}
