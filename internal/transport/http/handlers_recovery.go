package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trustlayer/internal/identity"
)

func (h *Handler) handleRecoveryStatus(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	status, err := h.services.Recovery.Status(r.Context(), identityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) handleSeedReveal(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	words, err := h.services.Recovery.RevealSeed(r.Context(), identityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seedPhrase": words})
}

func (h *Handler) handleSeedHide(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.services.Recovery.HideSeed(r.Context(), identityID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSeedCopy(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	phrase, err := h.services.Recovery.CopySeed(r.Context(), identityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"seedPhrase": phrase})
}

func (h *Handler) handleRecoveryKit(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	download, err := h.services.Recovery.BuildKit(r.Context(), identityID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(download.Payload)
}

func (h *Handler) handleGuardianAdd(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Address     string `json:"address"`
		DisplayName string `json:"displayName"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	guardian, err := h.services.Recovery.AddGuardian(r.Context(), identityID, req.Address, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, guardian)
}

func (h *Handler) handleGuardianConfirm(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	guardian, err := h.services.Recovery.ConfirmGuardian(r.Context(), identityID, chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guardian)
}

func (h *Handler) handleGuardianRemove(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.services.Recovery.RemoveGuardian(r.Context(), identityID, chi.URLParam(r, "address")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMultisigConfigure(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Required int `json:"required"`
		Signers  []struct {
			Address string `json:"address"`
			Role    string `json:"role"`
			Status  string `json:"status"`
		} `json:"signers"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	signers := make([]identity.MultisigSigner, 0, len(req.Signers))
	for _, signer := range req.Signers {
		signers = append(signers, identity.MultisigSigner{
			Address: signer.Address,
			Role:    signer.Role,
			Status:  identity.SignerStatus(signer.Status),
		})
	}
	cfg, err := h.services.Recovery.ConfigureMultisig(r.Context(), identityID, req.Required, signers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
