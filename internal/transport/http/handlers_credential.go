package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trustlayer/internal/credential"
	"trustlayer/internal/ingest"
	"trustlayer/internal/verification"
	id "trustlayer/pkg/domain"
)

type credentialResponse struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"ownerId"`
	Title             string     `json:"title"`
	Issuer            string     `json:"issuer"`
	HolderDID         string     `json:"holderDid"`
	IssueDate         time.Time  `json:"issueDate"`
	ExpiryDate        time.Time  `json:"expiryDate"`
	Status            string     `json:"status"`
	HasZKProof        bool       `json:"hasZkProof"`
	StorageRef        string     `json:"storageRef,omitempty"`
	VerificationCount int        `json:"verificationCount"`
	LastVerifiedAt    *time.Time `json:"lastVerifiedAt,omitempty"`
}

func toCredentialResponse(rec credential.Record, now time.Time) credentialResponse {
	return credentialResponse{
		ID:                rec.ID.String(),
		OwnerID:           rec.OwnerID.String(),
		Title:             rec.Title,
		Issuer:            rec.Issuer,
		HolderDID:         rec.HolderDID.String(),
		IssueDate:         rec.IssueDate,
		ExpiryDate:        rec.ExpiryDate,
		Status:            string(rec.EffectiveStatus(now)),
		HasZKProof:        rec.HasZKProof,
		StorageRef:        rec.StorageRef,
		VerificationCount: rec.VerificationCount,
		LastVerifiedAt:    rec.LastVerifiedAt,
	}
}

type verificationResponse struct {
	CredentialID      string            `json:"credentialId"`
	IsValid           bool              `json:"isValid"`
	TrustScore        int               `json:"trustScore"`
	Facets            map[string]string `json:"facets"`
	Unavailable       []string          `json:"unavailable,omitempty"`
	VerificationCount int               `json:"verificationCount"`
	VerifiedAt        time.Time         `json:"verifiedAt"`
}

func toVerificationResponse(result *verification.Result) verificationResponse {
	facets := make(map[string]string, 5)
	for facet, outcome := range result.Facets.All() {
		facets[string(facet)] = string(outcome)
	}
	unavailable := make([]string, 0, len(result.Unavailable))
	for _, facet := range result.Unavailable {
		unavailable = append(unavailable, string(facet))
	}
	return verificationResponse{
		CredentialID:      result.CredentialID.String(),
		IsValid:           result.IsValid,
		TrustScore:        result.TrustScore,
		Facets:            facets,
		Unavailable:       unavailable,
		VerificationCount: result.VerificationCount,
		VerifiedAt:        result.VerifiedAt,
	}
}

func credentialIDParam(r *http.Request) (id.CredentialID, error) {
	return id.ParseCredentialID(chi.URLParam(r, "credentialID"))
}

func (h *Handler) handleCredentialList(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	owned, err := h.services.Identity.Get(r.Context(), identityID)
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := h.services.Credentials.ListByOwner(r.Context(), owned.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	now := time.Now()
	out := make([]credentialResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toCredentialResponse(rec, now))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	identityID, err := identityIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Source   string          `json:"source"`
		Envelope ingest.Envelope `json:"envelope"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	source, err := ingest.ParseSource(req.Source)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.services.Ingest.Ingest(r.Context(), identityID, source, req.Envelope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCredentialResponse(rec, time.Now()))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	credID, err := credentialIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.services.Verification.Verify(r.Context(), credID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVerificationResponse(result))
}

func (h *Handler) handleCredentialQR(w http.ResponseWriter, r *http.Request) {
	credID, err := credentialIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	png, err := h.services.Share.CredentialQR(r.Context(), credID)
	if err != nil {
		writeError(w, err)
		return
	}
	writePNG(w, png)
}
