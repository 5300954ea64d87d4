package config

import (
	"os"
	"time"
)

const (
	// defaultCheckTimeout bounds each collaborator check; a slower
	// collaborator is reported as an unknown facet, never as a hung
	// verification.
	defaultCheckTimeout = 5 * time.Second
	defaultSessionTTL   = 12 * time.Hour
)

// Server captures process-level configuration for the console backend.
type Server struct {
	Addr              string
	SessionSigningKey string
	SessionTTL        time.Duration
	CheckTimeout      time.Duration
	SeedDemoData      bool
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TRUSTLAYER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	checkTimeout := defaultCheckTimeout
	if v := os.Getenv("TRUSTLAYER_CHECK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			checkTimeout = d
		}
	}
	sessionTTL := defaultSessionTTL
	if v := os.Getenv("TRUSTLAYER_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			sessionTTL = d
		}
	}

	signingKey := os.Getenv("TRUSTLAYER_SESSION_KEY")
	if signingKey == "" {
		// Development default - override in any shared deployment.
		signingKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:              addr,
		SessionSigningKey: signingKey,
		SessionTTL:        sessionTTL,
		CheckTimeout:      checkTimeout,
		SeedDemoData:      os.Getenv("TRUSTLAYER_SEED_DEMO") == "true",
	}
}
