package bundle

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/pem"
	"time"

	"trustlayer/internal/audit"
	"trustlayer/internal/credential"
	"trustlayer/internal/identity"
	"trustlayer/internal/sentinel"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
	"trustlayer/pkg/secrets"
)

// ImportRequest carries raw bundle bytes in any of the three formats.
// The format is auto-detected from the payload shape.
type ImportRequest struct {
	Data []byte
	// Password decrypts the embedded private key, and the payload itself
	// when the file is a password-encrypted blob.
	Password string
	// SkipPrivateKey imports a bundle carrying an encrypted private key
	// without recovering it. Without this opt-out, an encrypted key with
	// no password is an error rather than a silent drop.
	SkipPrivateKey bool
	// ReplaceExisting resolves a DID collision by replacing the stored
	// identity and its credentials. Without it a collision is a conflict.
	ReplaceExisting bool
}

// ImportResult reports what the import produced.
type ImportResult struct {
	Identity            identity.Record
	CredentialsImported int
	PrivateKeyRecovered bool
	Replaced            bool
}

// Import decodes a bundle and materializes its identity and credentials
// in the wallet.
func (s *Service) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	b, err := decode(req.Data, req.Password)
	if err != nil {
		return ImportResult{}, err
	}

	if b.Identity.DID == "" {
		return ImportResult{}, dErrors.New(dErrors.CodeMissingDID, "bundle identity has no DID")
	}
	did, err := id.ParseDID(b.Identity.DID)
	if err != nil {
		return ImportResult{}, err
	}
	idType, err := identity.ParseType(b.Identity.Type)
	if err != nil {
		return ImportResult{}, dErrors.Wrap(err, dErrors.CodeInvalidFormat, "bundle identity type is invalid")
	}

	replaced, err := s.resolveCollision(ctx, did, req.ReplaceExisting)
	if err != nil {
		return ImportResult{}, err
	}

	rec, keyRecovered, err := s.materializeIdentity(b, did, idType, req)
	if err != nil {
		return ImportResult{}, err
	}
	if err := s.identities.Save(ctx, rec); err != nil {
		return ImportResult{}, err
	}

	imported, err := s.materializeCredentials(ctx, b, rec)
	if err != nil {
		return ImportResult{}, err
	}

	s.emit(ctx, rec.ID, rec.DID.String(), audit.EventIdentityImported, rec.Name)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "identity imported",
			"identity_id", rec.ID.String(),
			"did", rec.DID.String(),
			"credentials", imported,
			"replaced", replaced,
		)
	}

	return ImportResult{
		Identity:            rec,
		CredentialsImported: imported,
		PrivateKeyRecovered: keyRecovered,
		Replaced:            replaced,
	}, nil
}

// decode auto-detects the wire shape and returns the inner bundle.
func decode(data []byte, password string) (Bundle, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Bundle{}, dErrors.New(dErrors.CodeInvalidFormat, "bundle payload is empty")
	}

	var payload []byte
	switch {
	case bytes.HasPrefix(trimmed, []byte("-----BEGIN")):
		block, _ := pem.Decode(trimmed)
		if block == nil || block.Type != PEMBlockType {
			return Bundle{}, dErrors.New(dErrors.CodeInvalidFormat, "unrecognized PEM armor")
		}
		payload = block.Bytes

	case trimmed[0] == '{':
		payload = trimmed

	default:
		// Neither armor nor JSON: treat as a password-encrypted blob.
		if password == "" {
			return Bundle{}, dErrors.New(dErrors.CodePasswordRequired, "encrypted payload requires a password")
		}
		plaintext, err := secrets.DecryptWithPassword(string(trimmed), password)
		if err != nil {
			return Bundle{}, err
		}
		payload = []byte(plaintext)
	}

	var b Bundle
	if err := json.Unmarshal(payload, &b); err != nil {
		return Bundle{}, dErrors.Wrap(err, dErrors.CodeInvalidFormat, "bundle payload is not valid JSON")
	}
	if b.Type != BundleType {
		return Bundle{}, dErrors.New(dErrors.CodeInvalidFormat, "payload is not a trustlayer identity bundle")
	}
	if b.Version != BundleVersion {
		return Bundle{}, dErrors.New(dErrors.CodeInvalidFormat, "unsupported bundle version: "+b.Version)
	}
	return b, nil
}

// resolveCollision enforces DID uniqueness across the wallet.
func (s *Service) resolveCollision(ctx context.Context, did id.DID, replace bool) (bool, error) {
	existing, err := s.identities.FindByDID(ctx, did)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	if !replace {
		return false, dErrors.Wrap(sentinel.ErrConflict, dErrors.CodeConflict, "an identity with DID "+did.String()+" already exists")
	}
	if err := s.credentials.DeleteByOwner(ctx, existing.ID); err != nil {
		return false, err
	}
	if err := s.identities.Delete(ctx, existing.ID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) materializeIdentity(b Bundle, did id.DID, idType identity.Type, req ImportRequest) (identity.Record, bool, error) {
	rec := identity.Record{
		ID:          id.NewIdentityID(),
		Name:        b.Identity.Name,
		Type:        idType,
		Description: b.Identity.Description,
		DID:         did,
		Status:      identity.StatusInactive,
		CreatedAt:   b.Identity.CreatedAt,
		PublicKey:   b.Identity.PublicKey,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	keyRecovered := false
	if b.EncryptedPrivateKey != "" && !req.SkipPrivateKey {
		if req.Password == "" {
			return identity.Record{}, false, dErrors.New(dErrors.CodeDecryptionFailed,
				"bundle carries an encrypted private key; supply the password or skip key recovery")
		}
		plaintext, err := secrets.DecryptWithPassword(b.EncryptedPrivateKey, req.Password)
		if err != nil {
			return identity.Record{}, false, err
		}
		rec.PrivateKey = plaintext
		keyRecovered = true
	}

	// Bundles never carry a seed phrase; issue a fresh one so the
	// imported identity can set up recovery again.
	seed, err := secrets.NewMnemonic()
	if err != nil {
		return identity.Record{}, false, err
	}
	rec.SeedPhrase = seed

	return rec, keyRecovered, nil
}

func (s *Service) materializeCredentials(ctx context.Context, b Bundle, owner identity.Record) (int, error) {
	imported := 0
	for _, bc := range b.Credentials {
		status, err := credential.ParseStatus(bc.Status)
		if err != nil {
			return imported, dErrors.Wrap(err, dErrors.CodeInvalidFormat, "bundle credential has invalid status")
		}
		holder := owner.DID
		if bc.HolderDID != "" {
			holder, err = id.ParseDID(bc.HolderDID)
			if err != nil {
				return imported, dErrors.Wrap(err, dErrors.CodeInvalidFormat, "bundle credential has invalid holder DID")
			}
		}

		opts := []credential.RecordOption{
			credential.WithOwner(owner.ID),
			credential.WithStatus(status),
		}
		if bc.HasZKProof {
			opts = append(opts, credential.WithZKProof())
		}
		if bc.StorageRef != "" {
			opts = append(opts, credential.WithStorageRef(bc.StorageRef))
		}

		rec, err := credential.New(bc.Title, bc.Issuer, holder, bc.IssueDate, bc.ExpiryDate, opts...)
		if err != nil {
			return imported, err
		}
		if err := s.credentials.Save(ctx, rec); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
