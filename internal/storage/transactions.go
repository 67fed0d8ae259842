package storage

import (
	"context"
	"database/sql"

	"ledger-api/internal/models"
	"ledger-api/internal/money"
)

// CreateTransaction inserts t and fills in its ID. DateCreated must be set
// by the caller.
func (db *DB) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	var description sql.NullString
	if t.Description != nil {
		description = sql.NullString{String: *t.Description, Valid: true}
	}

	err := db.conn.QueryRowContext(ctx,
		db.rebind(`INSERT INTO transactions
			(value_cents, description, reason, payment_method, type, date_created, user_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id`),
		int64(t.Value), description, t.Reason, t.PaymentMethod, string(t.Type), t.DateCreated.UTC(), t.UserID,
	).Scan(&t.ID)
	return translate(err)
}

// ListTransactions retrieves all of a user's transactions, newest first.
func (db *DB) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	rows, err := db.conn.QueryContext(ctx,
		db.rebind(`SELECT id, value_cents, description, reason, payment_method, type, date_created, user_id
			FROM transactions
			WHERE user_id = ?
			ORDER BY date_created DESC, id DESC`),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var (
			t           models.Transaction
			value       int64
			description sql.NullString
			txType      string
		)
		if err := rows.Scan(&t.ID, &value, &description, &t.Reason, &t.PaymentMethod, &txType, &t.DateCreated, &t.UserID); err != nil {
			return nil, err
		}
		t.Value = money.Cents(value)
		t.Type = models.TransactionType(txType)
		if description.Valid {
			t.Description = &description.String
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

// TypedValue is the part of a transaction that affects the balance.
type TypedValue struct {
	Type  models.TransactionType
	Value money.Cents
}

// TransactionValues returns the type and value of every transaction a
// user owns.
func (db *DB) TransactionValues(ctx context.Context, userID int64) ([]TypedValue, error) {
	rows, err := db.conn.QueryContext(ctx,
		db.rebind("SELECT type, value_cents FROM transactions WHERE user_id = ?"),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []TypedValue
	for rows.Next() {
		var (
			txType string
			value  int64
		)
		if err := rows.Scan(&txType, &value); err != nil {
			return nil, err
		}
		values = append(values, TypedValue{Type: models.TransactionType(txType), Value: money.Cents(value)})
	}

	return values, rows.Err()
}

// CountByReason counts a user's transactions of the given type per reason,
// ordered by reason.
func (db *DB) CountByReason(ctx context.Context, userID int64, t models.TransactionType) ([]models.ReasonCount, error) {
	rows, err := db.conn.QueryContext(ctx,
		db.rebind(`SELECT reason, COUNT(id)
			FROM transactions
			WHERE user_id = ? AND type = ?
			GROUP BY reason
			ORDER BY reason`),
		userID, string(t),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []models.ReasonCount{}
	for rows.Next() {
		var rc models.ReasonCount
		if err := rows.Scan(&rc.Reason, &rc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, rc)
	}

	return counts, rows.Err()
}
