package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

const tokenIssuer = "trustlayer"

// Claims is the JWT payload for a wallet session token.
type Claims struct {
	WalletAddress string `json:"wallet_address"`
	Fingerprint   string `json:"fingerprint,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and validates session tokens with a symmetric key.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

func NewTokenService(signingKey string, ttl time.Duration) *TokenService {
	return &TokenService{signingKey: []byte(signingKey), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Generate signs a token for the session. The session ID rides in the
// registered subject claim.
func (s *TokenService) Generate(sess Session) (string, error) {
	now := time.Now()
	claims := Claims{
		WalletAddress: sess.WalletAddress,
		Fingerprint:   sess.Fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   sess.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			ID:        sess.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return signed, nil
}

// Parse validates a token string and returns its claims and session ID.
func (s *TokenService) Parse(tokenString string) (*Claims, id.SessionID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected token signing method")
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, id.SessionID{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid session token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session token claims")
	}
	sessionID, err := id.ParseSessionID(claims.Subject)
	if err != nil {
		return nil, id.SessionID{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "session token subject is not a session ID")
	}
	return claims, sessionID, nil
}
