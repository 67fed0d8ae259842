package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ledger-api/internal/events"
	"ledger-api/internal/models"
	"ledger-api/internal/money"
	"ledger-api/internal/storage"
)

// LedgerStore is the persistence the ledger service needs.
type LedgerStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error)
	TransactionValues(ctx context.Context, userID int64) ([]storage.TypedValue, error)
	CountByReason(ctx context.Context, userID int64, t models.TransactionType) ([]models.ReasonCount, error)
}

// NewTransaction is the input to AddTransaction. Pointer fields are
// optional on the wire so that absence can be told apart from zero.
type NewTransaction struct {
	UserID        *int64                 `json:"user_id"`
	Value         *money.Cents           `json:"value"`
	Description   *string                `json:"description"`
	Reason        string                 `json:"reason"`
	PaymentMethod string                 `json:"payment_method"`
	Type          models.TransactionType `json:"type"`
}

// LedgerService records transactions and answers balance and chart
// queries over them.
type LedgerService struct {
	store     LedgerStore
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLedgerService creates a LedgerService. A nil publisher disables
// events.
func NewLedgerService(store LedgerStore, publisher events.Publisher, logger zerolog.Logger) *LedgerService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (in NewTransaction) validate() error {
	var missing []string
	if in.UserID == nil {
		missing = append(missing, "user_id")
	}
	if in.Value == nil {
		missing = append(missing, "value")
	}
	if strings.TrimSpace(in.Reason) == "" {
		missing = append(missing, "reason")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		missing = append(missing, "payment_method")
	}
	if in.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: type must be %q or %q, got %q", ErrInvalidInput, models.Income, models.Expense, in.Type)
	}
	return nil
}

// AddTransaction validates in and appends it to the user's ledger.
func (s *LedgerService) AddTransaction(ctx context.Context, in NewTransaction) (*models.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByID(ctx, *in.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d does not exist", ErrInvalidInput, *in.UserID)
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	t := &models.Transaction{
		Value:         *in.Value,
		Description:   in.Description,
		Reason:        in.Reason,
		PaymentMethod: in.PaymentMethod,
		Type:          in.Type,
		DateCreated:   s.now().UTC(),
		UserID:        *in.UserID,
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		if errors.Is(err, storage.ErrForeignKey) {
			return nil, fmt.Errorf("%w: user %d does not exist", ErrInvalidInput, *in.UserID)
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.NewTransactionCreated(t)); err != nil {
		s.logger.Error().Err(err).Int64("transaction_id", t.ID).Msg("failed to publish transaction event")
	}

	return t, nil
}

// ListTransactions returns the user's transactions, newest first. Unknown
// users simply have none.
func (s *LedgerService) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	transactions, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

// GetBalance replays the user's ledger. Income adds; every other type,
// including values stored before types were validated, subtracts. The sum
// is exact however many rows the user has.
func (s *LedgerService) GetBalance(ctx context.Context, userID int64) (money.Amount, error) {
	values, err := s.store.TransactionValues(ctx, userID)
	if err != nil {
		return money.Amount{}, fmt.Errorf("load transaction values: %w", err)
	}

	var balance money.Amount
	for _, v := range values {
		if v.Type == models.Income {
			balance = balance.Add(v.Value)
		} else {
			balance = balance.Sub(v.Value)
		}
	}
	return balance, nil
}

// GetExpenseByReason counts the user's expenses per reason for charting.
func (s *LedgerService) GetExpenseByReason(ctx context.Context, userID int64) ([]models.ChartEntry, error) {
	counts, err := s.store.CountByReason(ctx, userID, models.Expense)
	if err != nil {
		return nil, fmt.Errorf("count expenses by reason: %w", err)
	}

	entries := make([]models.ChartEntry, 0, len(counts))
	for _, c := range counts {
		entries = append(entries, models.ChartEntry{
			Name:            c.Reason,
			Population:      c.Count,
			Color:           reasonColor(c.Reason),
			LegendFontColor: legendFontColor,
			LegendFontSize:  legendFontSize,
		})
	}
	return entries, nil
}
