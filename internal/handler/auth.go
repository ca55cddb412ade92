package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/trivia-league/internal/auth"
	"github.com/sakif/trivia-league/internal/service"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session token for clients that cannot use
// cookies. Token is empty when sessions are disabled.
type LoginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// AccountHandler manages registration and the session cookie.
type AccountHandler struct {
	accounts Accounts
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewAccountHandler(accounts Accounts, tokenTTL time.Duration, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, tokenTTL: tokenTTL, logger: logger}
}

// HTTP: POST /register
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.accounts.Register(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "user registered"})
}

// HandleLogin checks credentials. When a token is issued it is returned in
// the body and also set as an HttpOnly cookie.
//
// HTTP: POST /login
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if result.Token != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    result.Token,
			Path:     "/",
			MaxAge:   int(h.tokenTTL.Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message:  "login successful",
		Username: result.User.Username,
		Token:    result.Token,
	})
}

// HandleLogout clears the session cookie. Tokens are stateless, so a copy
// held elsewhere stays valid until it expires.
//
// HTTP: POST /logout
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}
