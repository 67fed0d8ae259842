package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ledger-api/internal/models"
	"ledger-api/internal/money"
	"ledger-api/internal/service"
)

// Response messages. The wording is part of the client contract.
const (
	msgHome               = "HOLA"
	msgUserCreated        = "Usuário criado com sucesso!"
	msgUsernameTaken      = "Nome de usuário já existe!"
	msgLoginOK            = "Login bem-sucedido!"
	msgInvalidCredentials = "Credenciais inválidas!"
	msgTransactionAdded   = "Transação adicionada com sucesso!"
	msgInvalidPayload     = "Invalid request payload"
	msgInternal           = "Internal server error"
	msgNotFound           = "Not Found"
	msgMethodNotAllowed   = "Method Not Allowed"
)

const maxBodyBytes = 1 << 20

// AccountService registers users and checks credentials.
type AccountService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
}

// LedgerService records and queries transactions.
type LedgerService interface {
	AddTransaction(ctx context.Context, in service.NewTransaction) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error)
	GetBalance(ctx context.Context, userID int64) (money.Amount, error)
	GetExpenseByReason(ctx context.Context, userID int64) ([]models.ChartEntry, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	accounts AccountService
	ledger   LedgerService
	db       Pinger
	logger   zerolog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(accounts AccountService, ledger LedgerService, db Pinger, logger zerolog.Logger) *Handlers {
	return &Handlers{accounts: accounts, ledger: ledger, db: db, logger: logger}
}

type messageResponse struct {
	Message string `json:"message"`
}

// Home answers the root liveness probe.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, messageResponse{Message: msgHome})
}

// NotFound is the JSON fallback for unmatched routes, including path
// parameters that are not integers.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusNotFound, messageResponse{Message: msgNotFound})
}

// MethodNotAllowed is the JSON fallback for known paths with the wrong verb.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusMethodNotAllowed, messageResponse{Message: msgMethodNotAllowed})
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, messageResponse{Message: msgInvalidPayload})
		return false
	}
	return true
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps service errors onto status codes. Anything that is not a
// client error is logged and reported as a 500.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		h.writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
	case errors.Is(err, service.ErrConflict):
		h.writeJSON(w, http.StatusBadRequest, messageResponse{Message: msgUsernameTaken})
	case errors.Is(err, service.ErrUnauthorized):
		h.writeJSON(w, http.StatusUnauthorized, messageResponse{Message: msgInvalidCredentials})
	default:
		h.logger.Error().Err(err).Str("op", op).Str("path", r.URL.Path).Msg("request failed")
		h.writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgInternal})
	}
}

// userIDParam reads the {user_id} route parameter. The route pattern only
// admits digits, so the only failure left is overflow.
func (h *Handlers) userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid user_id"})
		return 0, false
	}
	return id, true
}
