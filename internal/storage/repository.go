// Package storage keeps the category rules in SQLite. Category order and
// keyword order are stored as explicit positions.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"finpal/internal/core"
	"finpal/internal/log"
	"finpal/internal/rules"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer keeps SQLite from returning SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Rules schema ready", log.FieldPathOnDisk, dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Load implements rules.Backend. An empty categories table means nothing was
// ever saved.
func (r *SQLiteRepository) Load(ctx context.Context) (*core.RuleSet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close categories: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	if len(names) == 0 {
		return nil, rules.ErrNoRules
	}

	rs := core.NewOrderedRuleSet(names...)

	krows, err := r.db.QueryContext(ctx, `SELECT category, keyword FROM keywords ORDER BY category, position`)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer krows.Close()
	for krows.Next() {
		var category, keyword string
		if err := krows.Scan(&category, &keyword); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		rs.AddKeyword(category, keyword)
	}
	if err := krows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keywords: %w", err)
	}

	return rs, nil
}

// Save implements rules.Backend by replacing both tables in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, rs *core.RuleSet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM keywords`); err != nil {
		return fmt.Errorf("clear keywords: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	for i, name := range rs.Names() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (position, name) VALUES (?, ?)`, i, name); err != nil {
			return fmt.Errorf("insert category %q: %w", name, err)
		}
		for j, kw := range rs.Keywords(name) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO keywords (category, position, keyword) VALUES (?, ?, ?)`, name, j, kw); err != nil {
				return fmt.Errorf("insert keyword %q: %w", kw, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rules: %w", err)
	}

	r.logger.DebugContext(ctx, "Category rules saved to SQLite",
		log.FieldOperation, log.OpSave,
		"categories", rs.Len())
	return nil
}
