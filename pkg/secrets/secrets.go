package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/scrypt"

	dErrors "trustlayer/pkg/domain-errors"
)

// scrypt parameters follow the package's recommended interactive-login
// defaults. Changing them invalidates previously exported bundles.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

// Generate creates a cryptographically secure random secret.
// Returns a base64-encoded string suitable for session signing keys.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// KeyPair holds hex-encoded ed25519 key material for an identity.
// The private key is ownership-sensitive and must only leave the process
// through the password-gated export flow.
type KeyPair struct {
	PublicKeyHex  string
	PrivateKeyHex string
}

// GenerateKeyPair creates a fresh ed25519 key pair.
func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate key pair")
	}
	return KeyPair{
		PublicKeyHex:  "0x" + hex.EncodeToString(pub),
		PrivateKeyHex: "0x" + hex.EncodeToString(priv.Seed()),
	}, nil
}

// EncryptWithPassword seals plaintext with AES-256-GCM under an
// scrypt-derived key. Output layout: salt || nonce || ciphertext,
// base64-encoded so it can sit inside a JSON bundle.
func EncryptWithPassword(plaintext, password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodePasswordRequired, "password cannot be empty")
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate salt")
	}
	gcm, err := aeadForPassword(password, salt)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate nonce")
	}
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptWithPassword reverses EncryptWithPassword. A wrong password or a
// tampered payload yields CodeDecryptionFailed, never partial plaintext.
func DecryptWithPassword(encoded, password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeDecryptionFailed, "password required to decrypt")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", dErrors.New(dErrors.CodeDecryptionFailed, "encrypted payload is not valid base64")
	}
	if len(raw) < saltLen {
		return "", dErrors.New(dErrors.CodeDecryptionFailed, "encrypted payload is truncated")
	}
	salt, rest := raw[:saltLen], raw[saltLen:]
	gcm, err := aeadForPassword(password, salt)
	if err != nil {
		return "", err
	}
	if len(rest) < gcm.NonceSize() {
		return "", dErrors.New(dErrors.CodeDecryptionFailed, "encrypted payload is truncated")
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", dErrors.New(dErrors.CodeDecryptionFailed, "wrong password or corrupted payload")
	}
	return string(plaintext), nil
}

func aeadForPassword(password string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not derive key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not initialize cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not initialize GCM")
	}
	return gcm, nil
}
