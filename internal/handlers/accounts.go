package handlers

import (
	"net/http"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type loginResponse struct {
	Message  string `json:"message"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// Register handles POST /register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if !h.decode(w, r, &body) {
		return
	}

	user, err := h.accounts.Register(r.Context(), body.Username, body.Password)
	if err != nil {
		h.writeError(w, r, "register", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, registerResponse{Message: msgUserCreated, UserID: user.ID})
}

// Login handles POST /login. No session is created; clients carry the
// returned user_id on later calls.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if !h.decode(w, r, &body) {
		return
	}

	user, err := h.accounts.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		h.writeError(w, r, "login", err)
		return
	}

	h.writeJSON(w, http.StatusOK, loginResponse{
		Message:  msgLoginOK,
		UserID:   user.ID,
		Username: user.Username,
	})
}
