package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fastprodman/walletsvc/internal/repos/players"
	"github.com/fastprodman/walletsvc/internal/repos/transfers"
	"github.com/fastprodman/walletsvc/internal/services/auth"
	"github.com/fastprodman/walletsvc/internal/services/transfer"
	"github.com/fastprodman/walletsvc/internal/sessions"
)

// Deps carries everything the handlers touch.
type Deps struct {
	Auth      *auth.Service
	Transfer  *transfer.Service
	Players   players.Players
	Transfers transfers.Store
	Sessions  sessions.Store
}

// NewRouter registers all API endpoints. Everything below /wallet and
// /transfers requires a live session token.
func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/register", h.RegisterHandler)
	r.Post("/login", h.LoginHandler)

	r.Group(func(r chi.Router) {
		r.Use(requireSession(d.Sessions))

		r.Post("/logout", h.LogoutHandler)
		r.Get("/wallet/balance", h.BalanceHandler)
		r.Post("/transfers", h.RequestTransferHandler)
		r.Get("/transfers", h.QueryTransfersHandler)
		r.Post("/transfers/{transferId}/approve", h.ApproveTransferHandler)
		r.Post("/transfers/{transferId}/decline", h.DeclineTransferHandler)
	})

	return r
}
