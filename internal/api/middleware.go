package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fastprodman/walletsvc/internal/sessions"
)

// SessionHeader carries the opaque session token on protected routes.
const SessionHeader = "X-Session-Token"

type contextKey string

const sessionContextKey contextKey = "session"

// requireSession gates protected routes: a missing or unknown token is
// a 403, anything else about the session store is a 500.
func requireSession(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(SessionHeader)
			if token == "" {
				writeError(w, http.StatusForbidden, "missing session token")
				return
			}

			snap, err := store.Exists(r.Context(), token)
			if err != nil {
				if errors.Is(err, sessions.ErrUnauthorized) {
					writeError(w, http.StatusForbidden, "unknown session token")
					return
				}

				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, snap)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFrom returns the snapshot requireSession stored on the request.
func sessionFrom(r *http.Request) (sessions.Snapshot, bool) {
	snap, ok := r.Context().Value(sessionContextKey).(sessions.Snapshot)
	return snap, ok
}
