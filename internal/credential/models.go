// Package credential defines the canonical credential record and its
// status lifecycle. Records are pure data; counters and status change only
// through the verification engine and issuer actions respectively.
package credential

import (
	"time"

	"trustlayer/internal/sentinel"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

// Status is the credential lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRevoked  Status = "revoked"
	StatusExpired  Status = "expired"
)

// ParseStatus validates a status string at trust boundaries.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusVerified, StatusRevoked, StatusExpired:
		return Status(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported credential status: "+s)
	}
}

// Terminal reports whether no transition may leave this status.
func (s Status) Terminal() bool {
	return s == StatusRevoked || s == StatusExpired
}

// CanTransitionTo encodes the issuer-controlled state machine:
// pending→verified, pending→revoked, verified→revoked. Expiry is derived
// at read time (EffectiveStatus), never applied as a stored transition.
func (s Status) CanTransitionTo(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusVerified || to == StatusRevoked
	case StatusVerified:
		return to == StatusRevoked
	default:
		return false
	}
}

// Record is a verifiable credential held by an identity.
//
// Invariants:
//   - HolderDID is always present
//   - ExpiryDate is never before IssueDate
//   - VerificationCount never decreases and moves only via RecordVerification
type Record struct {
	ID         id.CredentialID
	OwnerID    id.IdentityID // nil when not yet attached to an identity
	Title      string
	Issuer     string
	HolderDID  id.DID
	IssueDate  time.Time
	ExpiryDate time.Time
	Status     Status
	HasZKProof bool
	// StorageRef is an opaque content address for the full credential
	// document held in off-system storage.
	StorageRef        string
	VerificationCount int
	LastVerifiedAt    *time.Time
	CreatedAt         time.Time
}

// New constructs a validated credential record.
func New(title, issuer string, holder id.DID, issueDate, expiryDate time.Time, opts ...RecordOption) (Record, error) {
	if holder.IsZero() {
		return Record{}, dErrors.New(dErrors.CodeInvalidCredential, "holder DID is required")
	}
	if expiryDate.Before(issueDate) {
		return Record{}, dErrors.New(dErrors.CodeInvalidCredential, "expiry date precedes issue date")
	}

	r := Record{
		ID:         id.NewCredentialID(),
		Title:      title,
		Issuer:     issuer,
		HolderDID:  holder,
		IssueDate:  issueDate,
		ExpiryDate: expiryDate,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r, nil
}

// RecordOption configures optional fields at construction.
type RecordOption func(*Record)

// WithZKProof marks the record as carrying an attached zero-knowledge proof.
func WithZKProof() RecordOption {
	return func(r *Record) { r.HasZKProof = true }
}

// WithStorageRef sets the content address of the stored credential document.
func WithStorageRef(ref string) RecordOption {
	return func(r *Record) { r.StorageRef = ref }
}

// WithStatus overrides the initial pending status. Used by ingestion when
// a scanned payload is already marked verified by its issuer.
func WithStatus(s Status) RecordOption {
	return func(r *Record) { r.Status = s }
}

// WithOwner attaches the record to an identity at construction.
func WithOwner(owner id.IdentityID) RecordOption {
	return func(r *Record) { r.OwnerID = owner }
}

// EffectiveStatus derives the read-time status: a verified credential past
// its expiry date reads as expired. The stored field is left untouched so
// status writes stay issuer-controlled.
func (r Record) EffectiveStatus(now time.Time) Status {
	if r.Status == StatusVerified && now.After(r.ExpiryDate) {
		return StatusExpired
	}
	return r.Status
}

// Transition applies an issuer-controlled status change.
func (r *Record) Transition(to Status) error {
	if !r.Status.CanTransitionTo(to) {
		return dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeInvalidTransition,
			"cannot transition credential from "+string(r.Status)+" to "+string(to))
	}
	r.Status = to
	return nil
}

// RecordVerification stamps a completed verification run. Only the
// verification engine calls this; it never touches Status.
func (r *Record) RecordVerification(at time.Time) {
	r.VerificationCount++
	t := at
	r.LastVerifiedAt = &t
}
