package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"trustlayer/internal/session"
	dErrors "trustlayer/pkg/domain-errors"
)

// sessionResponse is the wire shape of a session; the fingerprint stays
// server-side.
type sessionResponse struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	ConnectedAt   time.Time `json:"connectedAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

func toSessionResponse(sess session.Session) sessionResponse {
	return sessionResponse{
		ID:            sess.ID.String(),
		WalletAddress: sess.WalletAddress,
		ConnectedAt:   sess.ConnectedAt,
		ExpiresAt:     sess.ExpiresAt,
	}
}

func (h *Handler) handleSessionConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WalletAddress string `json:"walletAddress"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sess, token, err := h.services.Session.Connect(r.Context(), req.WalletAddress, r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"session": toSessionResponse(sess),
		"token":   token,
	})
}

func (h *Handler) handleSessionDisconnect(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "no session on request"))
		return
	}
	h.services.Session.Disconnect(r.Context(), sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	events, err := h.services.Activity.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
