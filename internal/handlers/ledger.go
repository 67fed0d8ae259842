package handlers

import (
	"net/http"

	"ledger-api/internal/money"
	"ledger-api/internal/service"
)

type balanceResponse struct {
	Balance money.Amount `json:"balance"`
}

// AddTransaction handles POST /transactions.
func (h *Handlers) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var body service.NewTransaction
	if !h.decode(w, r, &body) {
		return
	}

	if _, err := h.ledger.AddTransaction(r.Context(), body); err != nil {
		h.writeError(w, r, "add transaction", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, messageResponse{Message: msgTransactionAdded})
}

// ListTransactions handles GET /transactions/{user_id}.
func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	transactions, err := h.ledger.ListTransactions(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, "list transactions", err)
		return
	}

	h.writeJSON(w, http.StatusOK, transactions)
}

// Balance handles GET /balance/{user_id}.
func (h *Handlers) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, "get balance", err)
		return
	}

	h.writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

// ExpenseByReason handles GET /charts/expense_by_reason/{user_id}.
func (h *Handlers) ExpenseByReason(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	entries, err := h.ledger.GetExpenseByReason(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, "expense by reason", err)
		return
	}

	h.writeJSON(w, http.StatusOK, entries)
}
