package service

import (
	"github.com/rs/zerolog"

	"ledger-api/internal/events"
	"ledger-api/internal/storage"
)

// Service holds all business logic services.
type Service struct {
	Accounts *AccountService
	Ledger   *LedgerService
}

// NewService creates a new Service backed by the given storage.
func NewService(db *storage.DB, publisher events.Publisher, logger zerolog.Logger) *Service {
	return &Service{
		Accounts: NewAccountService(db),
		Ledger:   NewLedgerService(db, publisher, logger),
	}
}
