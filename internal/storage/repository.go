// Package storage keeps the record sequence in SQLite. The table is treated
// as a snapshot: Load reads every row in position order and Save replaces
// them all in one transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gastos/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the database file backing the repository.
func (r *SQLiteRepository) Path() string { return r.path }

// Load returns every stored record ordered by position. An empty table is an
// empty sequence.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tipo, monto, descripcion, fecha FROM records ORDER BY position`)
	if err != nil {
		return nil, r.storageErr("load", err)
	}
	defer rows.Close()

	records := make([]core.Record, 0)
	for rows.Next() {
		var tipo, monto, desc, fecha string
		if err := rows.Scan(&tipo, &monto, &desc, &fecha); err != nil {
			return nil, r.storageErr("load", fmt.Errorf("scan row: %w", err))
		}
		rec, err := decodeRow(tipo, monto, desc, fecha)
		if err != nil {
			return nil, r.storageErr("load", fmt.Errorf("row %d: %w", len(records), err))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.storageErr("load", err)
	}
	return records, nil
}

// Save replaces the stored sequence with records.
func (r *SQLiteRepository) Save(ctx context.Context, records []core.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.storageErr("save", fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return r.storageErr("save", fmt.Errorf("clear records: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (position, tipo, monto, descripcion, fecha) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return r.storageErr("save", fmt.Errorf("prepare insert: %w", err))
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, i, rec.Type.String(), rec.Amount.String(), rec.Description, rec.Date.String()); err != nil {
			return r.storageErr("save", fmt.Errorf("insert record %d: %w", i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return r.storageErr("save", fmt.Errorf("commit: %w", err))
	}

	slog.DebugContext(ctx, "Records saved to SQLite", "count", len(records), "path", r.path)
	return nil
}

func (r *SQLiteRepository) storageErr(op string, err error) error {
	return &core.StorageError{Op: op, Path: r.path, Err: err}
}

func decodeRow(tipo, monto, desc, fecha string) (core.Record, error) {
	t, err := core.ParseRecordType(tipo)
	if err != nil {
		return core.Record{}, fmt.Errorf("tipo %q: %w", tipo, err)
	}
	amount, err := decimal.NewFromString(monto)
	if err != nil {
		return core.Record{}, fmt.Errorf("monto %q: %w", monto, err)
	}
	date, err := core.ParseDate(fecha)
	if err != nil {
		return core.Record{}, fmt.Errorf("fecha %q: %w", fecha, err)
	}
	return core.Record{Type: t, Amount: amount, Description: desc, Date: date}, nil
}
