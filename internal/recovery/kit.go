package recovery

import (
	"context"
	"encoding/json"
	"time"

	"trustlayer/internal/audit"
	"trustlayer/internal/bundle"
	"trustlayer/internal/identity"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
	"trustlayer/pkg/secrets"
)

// HiddenPlaceholder stands in for the seed phrase inside a downloaded
// recovery kit while the phrase is hidden. The field is always present;
// omitting it silently would make a partial kit look complete.
const HiddenPlaceholder = "[HIDDEN]"

// MethodStatus summarizes the configured recovery methods.
type MethodStatus struct {
	SeedPhraseSet      bool `json:"seedPhraseSet"`
	GuardiansTotal     int  `json:"guardiansTotal"`
	GuardiansConfirmed int  `json:"guardiansConfirmed"`
	GuardianQuorumMet  bool `json:"guardianQuorumMet"`
	MultisigConfigured bool `json:"multisigConfigured"`
}

// Kit is the downloadable recovery document for one identity.
type Kit struct {
	IdentityName string                   `json:"identityName"`
	DID          string                   `json:"did"`
	SeedPhrase   string                   `json:"seedPhrase"`
	Guardians    []identity.Guardian      `json:"guardians"`
	Multisig     *identity.MultisigConfig `json:"multisig,omitempty"`
	GeneratedAt  time.Time                `json:"generatedAt"`
}

// KitDownload pairs the serialized kit with its suggested filename.
type KitDownload struct {
	Filename string
	Payload  []byte
}

// BuildKit assembles the recovery kit for download. The kit carries
// whichever secrets are currently released: the seed phrase appears only
// while revealed, and only confirmed guardians are listed.
func (s *Service) BuildKit(ctx context.Context, identityID id.IdentityID) (KitDownload, error) {
	rec, err := s.identities.Get(ctx, identityID)
	if err != nil {
		return KitDownload{}, err
	}

	phrase := HiddenPlaceholder
	if rec.SeedRevealed {
		phrase = secrets.JoinMnemonic(rec.SeedPhrase)
	}

	kit := Kit{
		IdentityName: rec.Name,
		DID:          rec.DID.String(),
		SeedPhrase:   phrase,
		Guardians:    confirmedGuardians(rec.Guardians),
		Multisig:     rec.Multisig,
		GeneratedAt:  time.Now(),
	}
	payload, err := json.MarshalIndent(kit, "", "  ")
	if err != nil {
		return KitDownload{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not serialize recovery kit")
	}

	s.emit(ctx, identityID, rec.DID.String(), audit.EventRecoveryKitBuilt, "")
	return KitDownload{
		Filename: bundle.SuggestedFilename(rec.Name, "recovery_kit", "json"),
		Payload:  payload,
	}, nil
}

func confirmedGuardians(guardians []identity.Guardian) []identity.Guardian {
	confirmed := make([]identity.Guardian, 0, len(guardians))
	for _, g := range guardians {
		if g.Status == identity.GuardianConfirmed {
			confirmed = append(confirmed, g)
		}
	}
	return confirmed
}
