// Package handlers implements the REST surface: registration, login, and
// the contact list. All bodies are JSON; errors come back as {"error": msg}.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/parleychat/parley/internal/auth"
	"github.com/parleychat/parley/internal/middleware"
	"github.com/parleychat/parley/internal/presence"
	"github.com/parleychat/parley/internal/store"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthHandler struct {
	Auth     *auth.Service
	Presence *presence.Manager
	Log      *slog.Logger
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.Auth.Register(creds.Username, creds.Password)
	if err != nil {
		var verr validator.ValidationErrors
		switch {
		case errors.Is(err, store.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already exists")
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, "username and password required")
		default:
			h.Log.Error("register", "error", err)
			writeError(w, http.StatusInternalServerError, "server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.Auth.Login(creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.Log.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Users returns the caller's contact list: every registered user except the
// caller, with their current presence. Requires the bearer middleware.
func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contacts, err := h.Presence.Contacts(claims.UserID)
	if err != nil {
		h.Log.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
