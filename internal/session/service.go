package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"trustlayer/internal/audit"
	id "trustlayer/pkg/domain"
	dErrors "trustlayer/pkg/domain-errors"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service tracks live wallet connections and their tokens. Sessions are
// held in memory: disconnecting the wallet or restarting the process
// ends them either way.
type Service struct {
	tokens  *TokenService
	auditor AuditPublisher
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[id.SessionID]Session
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) { s.auditor = a }
}

func NewService(tokens *TokenService, opts ...Option) *Service {
	if tokens == nil {
		panic("session.NewService: token service is required")
	}
	s := &Service{
		tokens:   tokens,
		sessions: make(map[id.SessionID]Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a session for the wallet and returns its signed token.
func (s *Service) Connect(ctx context.Context, walletAddress, userAgent string) (Session, string, error) {
	address, err := ParseWalletAddress(walletAddress)
	if err != nil {
		return Session{}, "", err
	}

	now := time.Now()
	sess := Session{
		ID:            id.NewSessionID(),
		WalletAddress: address,
		Fingerprint:   Fingerprint(userAgent),
		ConnectedAt:   now,
		ExpiresAt:     now.Add(s.tokens.TTL()),
	}

	token, err := s.tokens.Generate(sess)
	if err != nil {
		return Session{}, "", err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.emit(ctx, sess, audit.EventWalletConnected)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "wallet connected",
			"session_id", sess.ID.String(),
			"wallet_address", address,
		)
	}
	return sess, token, nil
}

// Disconnect ends the session. Idempotent: disconnecting an unknown or
// already-ended session is not an error.
func (s *Service) Disconnect(ctx context.Context, sessionID id.SessionID) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return
	}
	s.emit(ctx, sess, audit.EventWalletDisconnected)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "wallet disconnected",
			"session_id", sessionID.String(),
		)
	}
}

// Validate checks a bearer token against the live session table.
func (s *Service) Validate(_ context.Context, token string) (Session, error) {
	claims, sessionID, err := s.tokens.Parse(token)
	if err != nil {
		return Session{}, err
	}

	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "session is no longer active")
	}
	if time.Now().After(sess.ExpiresAt) {
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "session has expired")
	}
	if claims.WalletAddress != sess.WalletAddress {
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "token does not match the session wallet")
	}
	return sess, nil
}

// Active reports the number of live sessions.
func (s *Service) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) emit(ctx context.Context, sess Session, action audit.ActivityEvent) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp:  time.Now(),
		IdentityID: "",
		Subject:    sess.WalletAddress,
		Action:     string(action),
		Detail:     sess.ID.String(),
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit session activity event",
			"error", err,
			"action", string(action),
		)
	}
}
