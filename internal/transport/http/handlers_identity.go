package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trustlayer/internal/identity"
	id "trustlayer/pkg/domain"
)

// identityResponse is the wire shape of an identity. Key material and
// recovery secrets never appear here.
type identityResponse struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Type        string                   `json:"type"`
	Description string                   `json:"description,omitempty"`
	DID         string                   `json:"did"`
	Status      string                   `json:"status"`
	PublicKey   string                   `json:"publicKey"`
	CreatedAt   time.Time                `json:"createdAt"`
	Guardians   []identity.Guardian      `json:"guardians,omitempty"`
	Multisig    *identity.MultisigConfig `json:"multisig,omitempty"`
}

func toIdentityResponse(rec identity.Record) identityResponse {
	return identityResponse{
		ID:          rec.ID.String(),
		Name:        rec.Name,
		Type:        string(rec.Type),
		Description: rec.Description,
		DID:         rec.DID.String(),
		Status:      string(rec.Status),
		PublicKey:   rec.PublicKey,
		CreatedAt:   rec.CreatedAt,
		Guardians:   rec.Guardians,
		Multisig:    rec.Multisig,
	}
}

func identityIDParam(r *http.Request) (id.IdentityID, error) {
	return id.ParseIdentityID(chi.URLParam(r, "identityID"))
}

func (h *Handler) handleIdentityCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	idType, err := identity.ParseType(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.services.Identity.Create(r.Context(), req.Name, idType,
		identity.WithDescription(req.Description))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIdentityResponse(rec))
}

func (h *Handler) handleIdentityList(w http.ResponseWriter, r *http.Request) {
	all, err := h.services.Identity.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]identityResponse, 0, len(all))
	for _, rec := range all {
		out = append(out, toIdentityResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleIdentityActive(w http.ResponseWriter, r *http.Request) {
	rec, err := h.services.Identity.Active(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIdentityResponse(rec))
}

func (h *Handler) handleIdentityGet(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.services.Identity.Get(r.Context(), identityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIdentityResponse(rec))
}

func (h *Handler) handleIdentityDelete(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.services.Identity.Delete(r.Context(), identityID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleIdentityActivate(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.services.Identity.SetActive(r.Context(), identityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIdentityResponse(rec))
}

func (h *Handler) handleIdentityQR(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	png, err := h.services.Share.IdentityQR(r.Context(), identityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writePNG(w, png)
}
