package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the transaction statements against a DBTX.
type Queries struct {
	db DBTX
}

// New creates Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Transaction is a row of the transactions table.
type Transaction struct {
	ID          string
	OwnerID     string
	Description string
	Amount      sql.NullString
	Type        string
	Category    string
	Date        sql.NullString
	CreatedAt   string
}

const transactionColumns = `id, owner_id, description, amount, type, category, date, created_at`

const insertTransaction = `INSERT INTO transactions (` + transactionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// InsertTransaction inserts one row.
func (q *Queries) InsertTransaction(ctx context.Context, arg Transaction) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		arg.ID, arg.OwnerID, arg.Description, arg.Amount, arg.Type, arg.Category, arg.Date, arg.CreatedAt)
	return err
}

const updateTransaction = `UPDATE transactions
SET description = ?, amount = ?, type = ?, category = ?, date = ?
WHERE id = ? AND owner_id = ?`

// UpdateTransaction never touches id, owner_id or created_at.
func (q *Queries) UpdateTransaction(ctx context.Context, arg Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Description, arg.Amount, arg.Type, arg.Category, arg.Date, arg.ID, arg.OwnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND owner_id = ?`

// DeleteTransaction deletes ownerID's row id and returns the rows affected.
func (q *Queries) DeleteTransaction(ctx context.Context, ownerID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND owner_id = ?`

// GetTransaction returns ownerID's row id or sql.ErrNoRows.
func (q *Queries) GetTransaction(ctx context.Context, ownerID, id string) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id, ownerID)
	var i Transaction
	err := scanTransaction(row, &i)
	return i, err
}

const listTransactionsByOwner = `SELECT ` + transactionColumns + ` FROM transactions
WHERE owner_id = ?
ORDER BY created_at, rowid`

// ListTransactionsByOwner returns ownerID's rows in insertion order.
func (q *Queries) ListTransactionsByOwner(ctx context.Context, ownerID string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := scanTransaction(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOwners = `SELECT DISTINCT owner_id FROM transactions ORDER BY owner_id`

// ListOwners returns the distinct owners with at least one row.
func (q *Queries) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listOwners)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		items = append(items, owner)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner, i *Transaction) error {
	return s.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Description,
		&i.Amount,
		&i.Type,
		&i.Category,
		&i.Date,
		&i.CreatedAt,
	)
}
