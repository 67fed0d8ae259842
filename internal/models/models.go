package models

import (
	"time"

	"ledger-api/internal/money"
)

// TransactionType classifies a ledger entry as income or expense.
type TransactionType string

const (
	// Income ("entrada") increases the balance.
	Income TransactionType = "entrada"
	// Expense ("saida") decreases the balance.
	Expense TransactionType = "saida"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Transaction is a single immutable ledger entry.
type Transaction struct {
	ID            int64           `json:"id"`
	Value         money.Cents     `json:"value"`
	Description   *string         `json:"description"`
	Reason        string          `json:"reason"`
	PaymentMethod string          `json:"payment_method"`
	Type          TransactionType `json:"type"`
	DateCreated   time.Time       `json:"date_created"`
	UserID        int64           `json:"-"`
}

// ReasonCount is the number of expense entries recorded under one reason.
type ReasonCount struct {
	Reason string
	Count  int
}

// ChartEntry is one slice of the expense-by-reason pie chart.
type ChartEntry struct {
	Name            string `json:"name"`
	Population      int    `json:"population"`
	Color           string `json:"color"`
	LegendFontColor string `json:"legendFontColor"`
	LegendFontSize  int    `json:"legendFontSize"`
}
