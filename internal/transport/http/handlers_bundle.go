package httptransport

import (
	"encoding/base64"
	"net/http"

	"trustlayer/internal/bundle"
	dErrors "trustlayer/pkg/domain-errors"
)

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Format             string `json:"format"`
		IncludePrivateKey  bool   `json:"includePrivateKey"`
		Password           string `json:"password,omitempty"`
		ConfirmPassword    string `json:"confirmPassword,omitempty"`
		IncludeCredentials bool   `json:"includeCredentials"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	format, err := bundle.ParseFormat(req.Format)
	if err != nil {
		writeError(w, err)
		return
	}

	export, err := h.services.Bundle.Export(r.Context(), bundle.ExportRequest{
		IdentityID:         identityID,
		Format:             format,
		IncludePrivateKey:  req.IncludePrivateKey,
		Password:           req.Password,
		ConfirmPassword:    req.ConfirmPassword,
		IncludeCredentials: req.IncludeCredentials,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Payload)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		// Data carries the bundle payload; base64 lets binary backup
		// blobs travel inside JSON.
		Data            string `json:"data"`
		Encoding        string `json:"encoding,omitempty"`
		Password        string `json:"password,omitempty"`
		SkipPrivateKey  bool   `json:"skipPrivateKey"`
		ReplaceExisting bool   `json:"replaceExisting"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	data := []byte(req.Data)
	if req.Encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			writeError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "data is not valid base64"))
			return
		}
		data = decoded
	}

	result, err := h.services.Bundle.Import(r.Context(), bundle.ImportRequest{
		Data:            data,
		Password:        req.Password,
		SkipPrivateKey:  req.SkipPrivateKey,
		ReplaceExisting: req.ReplaceExisting,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"identity":            toIdentityResponse(result.Identity),
		"credentialsImported": result.CredentialsImported,
		"privateKeyRecovered": result.PrivateKeyRecovered,
		"replaced":            result.Replaced,
	})
}
