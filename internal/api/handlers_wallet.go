package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fastprodman/walletsvc/internal/repos/players"
	"github.com/fastprodman/walletsvc/internal/repos/transfers"
)

// BalanceHandler handles GET /wallet/balance. It reads the live
// balance, not the login-time snapshot.
func (h *HandlerProvider) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	snap, ok := sessionFrom(r)
	if !ok {
		writeError(w, http.StatusForbidden, "missing session")
		return
	}

	balance, err := h.deps.Players.BalanceOf(r.Context(), snap.Login)
	if err != nil {
		if errors.Is(err, players.ErrNoSuchPlayer) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"login":   snap.Login,
		"balance": formatAmount(balance),
	})
}

type transferRequest struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type transferResponse struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
}

func toTransferResponse(t transfers.Transfer) transferResponse {
	return transferResponse{
		ID:        t.ID.String(),
		Sender:    t.Sender,
		Recipient: t.Recipient,
		Amount:    formatAmount(t.Amount),
		Status:    string(t.Status),
	}
}

// RequestTransferHandler handles POST /transfers. The sender is always
// the authenticated player.
func (h *HandlerProvider) RequestTransferHandler(w http.ResponseWriter, r *http.Request) {
	snap, ok := sessionFrom(r)
	if !ok {
		writeError(w, http.StatusForbidden, "missing session")
		return
	}

	var req transferRequest
	if decodeBody(w, r, &req) != nil {
		return
	}

	if req.Recipient == "" {
		writeError(w, http.StatusBadRequest, "recipient required")
		return
	}

	amount, err := parseAmountCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.deps.Transfer.RequestTransfer(r.Context(), snap.Login, req.Recipient, amount)
	if err != nil {
		switch {
		case errors.Is(err, transfers.ErrSameParticipant),
			errors.Is(err, transfers.ErrNonPositiveAmount):
			writeError(w, http.StatusBadRequest, "invalid transfer request")
		case errors.Is(err, players.ErrNoSuchPlayer):
			writeError(w, http.StatusNotFound, "player not found")
		case errors.Is(err, transfers.ErrTransferExists):
			writeError(w, http.StatusConflict, "duplicate transfer")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toTransferResponse(t))
}

func parseTransferID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "transferId"))
}

// ApproveTransferHandler handles POST /transfers/{transferId}/approve.
func (h *HandlerProvider) ApproveTransferHandler(w http.ResponseWriter, r *http.Request) {
	h.settleTransfer(w, r, h.deps.Transfer.ApproveTransfer)
}

// DeclineTransferHandler handles POST /transfers/{transferId}/decline.
func (h *HandlerProvider) DeclineTransferHandler(w http.ResponseWriter, r *http.Request) {
	h.settleTransfer(w, r, h.deps.Transfer.DeclineTransfer)
}

func (h *HandlerProvider) settleTransfer(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, senderLogin string, id uuid.UUID) error,
) {
	snap, ok := sessionFrom(r)
	if !ok {
		writeError(w, http.StatusForbidden, "missing session")
		return
	}

	id, err := parseTransferID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	err = op(r.Context(), snap.Login, id)
	if err != nil {
		switch {
		case errors.Is(err, transfers.ErrNoSuchTransfer):
			writeError(w, http.StatusNotFound, "transfer not found")
		case errors.Is(err, transfers.ErrTransferStatus):
			writeError(w, http.StatusConflict, "transfer not pending or not yours")
		case errors.Is(err, players.ErrDeficientBalance):
			writeError(w, http.StatusConflict, "deficient balance")
		case errors.Is(err, players.ErrNoSuchPlayer):
			writeError(w, http.StatusNotFound, "player not found")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	t, err := h.deps.Transfers.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toTransferResponse(t))
}

// QueryTransfersHandler handles GET /transfers with optional sender,
// recipient and status filters.
func (h *HandlerProvider) QueryTransfersHandler(w http.ResponseWriter, r *http.Request) {
	var f transfers.Filter

	if v := r.URL.Query().Get("sender"); v != "" {
		f.Sender = &v
	}

	if v := r.URL.Query().Get("recipient"); v != "" {
		f.Recipient = &v
	}

	if v := r.URL.Query().Get("status"); v != "" {
		status := transfers.Status(v)
		switch status {
		case transfers.StatusPending, transfers.StatusApproved,
			transfers.StatusDeclined, transfers.StatusFailed:
			f.Status = &status
		default:
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	found, err := h.deps.Transfers.Query(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]transferResponse, 0, len(found))
	for _, t := range found {
		out = append(out, toTransferResponse(t))
	}

	writeJSON(w, http.StatusOK, map[string]any{"transfers": out})
}
