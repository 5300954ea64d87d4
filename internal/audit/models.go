package audit

import "time"

// Event is emitted from domain logic to capture key console actions. Keep
// it transport-agnostic so stores and sinks can fan out; the dashboard's
// recent-activity feed reads straight from the store.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	IdentityID string    `json:"identityId,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail,omitempty"`
}

type ActivityEvent string

const (
	EventIdentityCreated    ActivityEvent = "identity_created"
	EventIdentityDeleted    ActivityEvent = "identity_deleted"
	EventIdentityExported   ActivityEvent = "identity_exported"
	EventIdentityImported   ActivityEvent = "identity_imported"
	EventCredentialVerified ActivityEvent = "credential_verified"
	EventCredentialIngested ActivityEvent = "credential_ingested"
	EventGuardianAdded      ActivityEvent = "guardian_added"
	EventGuardianConfirmed  ActivityEvent = "guardian_confirmed"
	EventRecoveryKitBuilt   ActivityEvent = "recovery_kit_built"
	EventWalletConnected    ActivityEvent = "wallet_connected"
	EventWalletDisconnected ActivityEvent = "wallet_disconnected"
	EventAPIKeyGenerated    ActivityEvent = "api_key_generated"
	EventAPIKeyRevoked      ActivityEvent = "api_key_revoked"
)
