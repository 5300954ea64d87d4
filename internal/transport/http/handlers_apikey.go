package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	id "trustlayer/pkg/domain"
)

func (h *Handler) handleAPIKeyGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	key, err := h.services.APIKeys.Generate(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, key)
}

func (h *Handler) handleAPIKeyList(w http.ResponseWriter, r *http.Request) {
	keys, err := h.services.APIKeys.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *Handler) handleAPIKeyRevoke(w http.ResponseWriter, r *http.Request) {
	keyID, err := id.ParseAPIKeyID(chi.URLParam(r, "keyID"))
	if err != nil {
		writeError(w, err)
		return
	}
	key, err := h.services.APIKeys.Revoke(r.Context(), keyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, key)
}
