package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ledger-api/internal/events"
	"ledger-api/internal/models"
	"ledger-api/internal/money"
	"ledger-api/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.TransactionCreated
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.TransactionCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// LedgerTestSuite exercises the ledger against SQLite with a fake clock
type LedgerTestSuite struct {
	suite.Suite
	db        *storage.DB
	ledger    *LedgerService
	publisher *recordingPublisher
	ctx       context.Context
	userID    int64
	clock     time.Time
}

// SetupTest runs before each test
func (suite *LedgerTestSuite) SetupTest() {
	db, err := storage.NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.ctx = context.Background()

	suite.publisher = &recordingPublisher{}
	suite.ledger = NewLedgerService(db, suite.publisher, zerolog.Nop())
	suite.clock = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	suite.ledger.now = func() time.Time {
		suite.clock = suite.clock.Add(time.Second)
		return suite.clock
	}

	user, err := NewAccountService(db).Register(suite.ctx, "ledgeruser", "pw")
	require.NoError(suite.T(), err)
	suite.userID = user.ID
}

// TearDownTest runs after each test
func (suite *LedgerTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *LedgerTestSuite) newTx(value string, reason string, t models.TransactionType) NewTransaction {
	v, err := money.Parse(value)
	require.NoError(suite.T(), err)
	return NewTransaction{
		UserID:        &suite.userID,
		Value:         &v,
		Reason:        reason,
		PaymentMethod: "pix",
		Type:          t,
	}
}

func (suite *LedgerTestSuite) add(value string, reason string, t models.TransactionType) *models.Transaction {
	tx, err := suite.ledger.AddTransaction(suite.ctx, suite.newTx(value, reason, t))
	require.NoError(suite.T(), err)
	return tx
}

func (suite *LedgerTestSuite) TestAddTransaction() {
	in := suite.newTx("12.50", "food", models.Expense)
	desc := "lunch"
	in.Description = &desc

	tx, err := suite.ledger.AddTransaction(suite.ctx, in)
	require.NoError(suite.T(), err)
	assert.NotZero(suite.T(), tx.ID)
	assert.Equal(suite.T(), money.Cents(1250), tx.Value)
	assert.Equal(suite.T(), suite.clock, tx.DateCreated)

	require.Len(suite.T(), suite.publisher.events, 1)
	assert.Equal(suite.T(), tx.ID, suite.publisher.events[0].TransactionID)
	assert.Equal(suite.T(), suite.userID, suite.publisher.events[0].UserID)
}

func (suite *LedgerTestSuite) TestAddTransactionMissingUserID() {
	in := suite.newTx("10", "food", models.Expense)
	in.UserID = nil

	_, err := suite.ledger.AddTransaction(suite.ctx, in)
	assert.ErrorIs(suite.T(), err, ErrInvalidInput)
	assert.Contains(suite.T(), err.Error(), "user_id")
}

func (suite *LedgerTestSuite) TestAddTransactionMissingFields() {
	tests := []struct {
		name  string
		tweak func(*NewTransaction)
	}{
		{"value", func(in *NewTransaction) { in.Value = nil }},
		{"reason", func(in *NewTransaction) { in.Reason = " " }},
		{"payment_method", func(in *NewTransaction) { in.PaymentMethod = "" }},
		{"type", func(in *NewTransaction) { in.Type = "" }},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			in := suite.newTx("10", "food", models.Expense)
			tt.tweak(&in)

			_, err := suite.ledger.AddTransaction(suite.ctx, in)
			assert.ErrorIs(suite.T(), err, ErrInvalidInput)
			assert.Contains(suite.T(), err.Error(), tt.name)
		})
	}
}

func (suite *LedgerTestSuite) TestAddTransactionRejectsUnknownType() {
	_, err := suite.ledger.AddTransaction(suite.ctx, suite.newTx("10", "food", "saída"))
	assert.ErrorIs(suite.T(), err, ErrInvalidInput)
}

func (suite *LedgerTestSuite) TestAddTransactionUnknownUser() {
	in := suite.newTx("10", "food", models.Expense)
	ghost := int64(9999)
	in.UserID = &ghost

	_, err := suite.ledger.AddTransaction(suite.ctx, in)
	assert.ErrorIs(suite.T(), err, ErrInvalidInput)
	assert.Empty(suite.T(), suite.publisher.events)
}

func (suite *LedgerTestSuite) TestAddTransactionPublishFailureIsNotFatal() {
	suite.publisher.err = errors.New("broker down")

	tx, err := suite.ledger.AddTransaction(suite.ctx, suite.newTx("10", "food", models.Expense))
	require.NoError(suite.T(), err)
	assert.NotZero(suite.T(), tx.ID)
}

func (suite *LedgerTestSuite) TestListTransactionsNewestFirst() {
	a := suite.add("1", "A", models.Expense)
	b := suite.add("2", "B", models.Expense)

	list, err := suite.ledger.ListTransactions(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 2)
	assert.Equal(suite.T(), b.ID, list[0].ID)
	assert.Equal(suite.T(), a.ID, list[1].ID)
}

func (suite *LedgerTestSuite) TestZeroTransactions() {
	list, err := suite.ledger.ListTransactions(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), list)

	balance, err := suite.ledger.GetBalance(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "0.00", balance.String())

	chart, err := suite.ledger.GetExpenseByReason(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), chart)
}

func (suite *LedgerTestSuite) TestUnknownUserReadsAreEmpty() {
	list, err := suite.ledger.ListTransactions(suite.ctx, 424242)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), list)

	balance, err := suite.ledger.GetBalance(suite.ctx, 424242)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "0.00", balance.String())
}

func (suite *LedgerTestSuite) TestGetBalance() {
	suite.add("100", "salary", models.Income)
	suite.add("30", "food", models.Expense)

	balance, err := suite.ledger.GetBalance(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "70.00", balance.String())
}

func (suite *LedgerTestSuite) TestGetBalanceNoDrift() {
	suite.add("0.1", "a", models.Income)
	suite.add("0.2", "b", models.Income)

	balance, err := suite.ledger.GetBalance(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "0.30", balance.String())
}

func (suite *LedgerTestSuite) TestGetBalanceLegacyTypeSubtracts() {
	suite.add("50", "salary", models.Income)
	// Rows written before type validation may carry any label.
	require.NoError(suite.T(), suite.db.CreateTransaction(suite.ctx, &models.Transaction{
		Value: 2000, Reason: "typo", PaymentMethod: "cash", Type: "Entrada",
		DateCreated: time.Now(), UserID: suite.userID,
	}))

	balance, err := suite.ledger.GetBalance(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "30.00", balance.String())
}

func (suite *LedgerTestSuite) TestGetBalanceLargeLedgerIsExact() {
	for i := 0; i < 93; i++ {
		suite.add("1000000000000", "salary", models.Income)
	}
	// Rows written by older versions may exceed the current per-value cap.
	for i := 0; i < 2; i++ {
		require.NoError(suite.T(), suite.db.CreateTransaction(suite.ctx, &models.Transaction{
			Value: money.Cents(math.MaxInt64), Reason: "legacy", PaymentMethod: "ted", Type: models.Income,
			DateCreated: time.Now(), UserID: suite.userID,
		}))
	}

	balance, err := suite.ledger.GetBalance(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)

	want := decimal.New(93, 12).Add(decimal.New(math.MaxInt64, -2).Mul(decimal.NewFromInt(2)))
	assert.True(suite.T(), want.Equal(balance.Decimal()), "got %s, want %s", balance, want.StringFixed(2))
	assert.True(suite.T(), balance.Decimal().IsPositive())
}

func (suite *LedgerTestSuite) TestReadsAreIdempotent() {
	suite.add("100", "salary", models.Income)
	suite.add("30", "food", models.Expense)

	list1, err := suite.ledger.ListTransactions(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	list2, err := suite.ledger.ListTransactions(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), list1, list2)

	b1, err := suite.ledger.GetBalance(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	b2, err := suite.ledger.GetBalance(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), b1.String(), b2.String())
}

func (suite *LedgerTestSuite) TestGetExpenseByReason() {
	suite.add("10", "food", models.Expense)
	suite.add("20", "food", models.Expense)
	suite.add("5", "transport", models.Expense)
	suite.add("1000", "food", models.Income)

	chart, err := suite.ledger.GetExpenseByReason(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), chart, 2)

	populations := map[string]int{}
	for _, entry := range chart {
		populations[entry.Name] = entry.Population
		assert.Equal(suite.T(), "#333", entry.LegendFontColor)
		assert.Equal(suite.T(), 12, entry.LegendFontSize)
		assert.Regexp(suite.T(), `^rgb\(\d{1,3}, \d{1,3}, \d{1,3}\)$`, entry.Color)
	}
	assert.Equal(suite.T(), map[string]int{"food": 2, "transport": 1}, populations)
}

func (suite *LedgerTestSuite) TestChartColorsAreStable() {
	suite.add("10", "food", models.Expense)

	first, err := suite.ledger.GetExpenseByReason(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)
	second, err := suite.ledger.GetExpenseByReason(suite.ctx, suite.userID)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), first[0].Color, second[0].Color)
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func TestReasonColor(t *testing.T) {
	assert.Equal(t, reasonColor("food"), reasonColor("food"))
	assert.NotEqual(t, reasonColor("food"), reasonColor("transport"))
}
