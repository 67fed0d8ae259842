package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledger-api/internal/auth"
	"ledger-api/internal/models"
	"ledger-api/internal/storage"
)

// UserStore is the persistence the account service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AccountService registers users and verifies their credentials.
type AccountService struct {
	store UserStore
}

// NewAccountService creates an AccountService.
func NewAccountService(store UserStore) *AccountService {
	return &AccountService{store: store}
}

// Register creates a user and returns it. The username must be unused.
func (s *AccountService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	_, err := s.store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: user %s already exists", ErrConflict, username)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("look up user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, hash)
	if errors.Is(err, storage.ErrDuplicate) {
		// Lost a race with a concurrent registration.
		return nil, fmt.Errorf("%w: user %s already exists", ErrConflict, username)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login returns the user whose password matches. Empty fields, unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrUnauthorized
	}
	return user, nil
}
