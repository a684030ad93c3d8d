package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fastprodman/walletsvc/internal/repos/players"
	"github.com/fastprodman/walletsvc/internal/services/auth"
)

// HandlerProvider wraps the services and exposes HTTP handlers.
type HandlerProvider struct {
	deps Deps
}

func NewHandler(d Deps) *HandlerProvider {
	return &HandlerProvider{deps: d}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return err
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return err
	}

	return nil
}

type registerRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterHandler handles POST /register.
func (h *HandlerProvider) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if decodeBody(w, r, &req) != nil {
		return
	}

	if req.Login == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "login, username and password are required")
		return
	}

	p, err := h.deps.Auth.Register(r.Context(), req.Login, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, players.ErrLoginTaken):
			writeError(w, http.StatusConflict, "login already taken")
		case errors.Is(err, players.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already taken")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"playerId": p.ID,
		"login":    p.Login,
		"username": p.Username,
		"balance":  formatAmount(p.Balance),
	})
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginHandler handles POST /login.
func (h *HandlerProvider) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if decodeBody(w, r, &req) != nil {
		return
	}

	token, snap, err := h.deps.Auth.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "bad credentials")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"player": map[string]any{
			"playerId": snap.PlayerID,
			"login":    snap.Login,
			"username": snap.Username,
			"balance":  formatAmount(snap.Balance),
		},
	})
}

// LogoutHandler handles POST /logout.
func (h *HandlerProvider) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(SessionHeader)

	err := h.deps.Auth.Logout(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
