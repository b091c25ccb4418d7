package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finanzas/internal/core"

	_ "modernc.org/sqlite"
)

// createdAtLayout is fixed width so that text order is time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository implements store.Repository on a SQLite database.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// NewSQLiteRepository opens dbPath, creating its directory, and runs migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert stores a new record.
func (r *SQLiteRepository) Insert(ctx context.Context, t core.Transaction) error {
	if err := r.queries.InsertTransaction(ctx, toRow(t)); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	slog.DebugContext(ctx, "Transaction saved to SQLite", "id", t.ID, "owner_id", t.OwnerID)
	return nil
}

// Replace overwrites a record owned by t.OwnerID.
func (r *SQLiteRepository) Replace(ctx context.Context, t core.Transaction) error {
	n, err := r.queries.UpdateTransaction(ctx, toRow(t))
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Remove deletes ownerID's record id.
func (r *SQLiteRepository) Remove(ctx context.Context, ownerID, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Get returns ownerID's record id.
func (r *SQLiteRepository) Get(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, ownerID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return fromRow(row), nil
}

// ListByOwner returns ownerID's records in creation order.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row)
	}
	return out, nil
}

// ListOwners returns every owner with at least one record.
func (r *SQLiteRepository) ListOwners(ctx context.Context) ([]string, error) {
	owners, err := r.queries.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return owners, nil
}

// Import inserts migrated records in one transaction, skipping ids that
// already exist. It returns how many rows were added.
func (r *SQLiteRepository) Import(ctx context.Context, records []core.Record) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	added := 0
	for _, rec := range records {
		t := rec.Transaction()
		if t.ID == "" || t.OwnerID == "" {
			continue
		}
		if _, err := q.GetTransaction(ctx, t.OwnerID, t.ID); err == nil {
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("lookup %s: %w", t.ID, err)
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		if err := q.InsertTransaction(ctx, toRow(t)); err != nil {
			return 0, fmt.Errorf("import %s: %w", t.ID, err)
		}
		added++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	slog.InfoContext(ctx, "Transactions imported", "count", added, "skipped", len(records)-added)
	return added, nil
}

func toRow(t core.Transaction) Transaction {
	row := Transaction{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Description: t.Description,
		Type:        string(t.Type),
		Category:    string(t.Category),
		CreatedAt:   t.CreatedAt.UTC().Format(createdAtLayout),
	}
	if t.Amount.Valid {
		row.Amount = sql.NullString{String: t.Amount.Decimal.String(), Valid: true}
	}
	if !t.Date.IsZero() {
		row.Date = sql.NullString{String: t.Date.String(), Valid: true}
	}
	return row
}

func fromRow(row Transaction) core.Transaction {
	t := core.Transaction{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Description: row.Description,
		Type:        core.Type(row.Type),
		Category:    core.Category(row.Category),
	}
	if row.Amount.Valid {
		t.Amount = core.AmountFromString(row.Amount.String)
	}
	if row.Date.Valid {
		if d, err := core.ParseDate(row.Date.String); err == nil {
			t.Date = d
		}
	}
	if ts, err := time.Parse(createdAtLayout, row.CreatedAt); err == nil {
		t.CreatedAt = ts
	}
	return t
}
