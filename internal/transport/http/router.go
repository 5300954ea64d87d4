// Package httptransport is the thin HTTP layer over the wallet services.
// Handlers delegate to domain services without embedding business logic
// so transport concerns stay isolated.
package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"trustlayer/internal/apikey"
	"trustlayer/internal/audit"
	"trustlayer/internal/bundle"
	credstore "trustlayer/internal/credential/store"
	"trustlayer/internal/identity"
	"trustlayer/internal/ingest"
	"trustlayer/internal/platform/middleware"
	"trustlayer/internal/recovery"
	"trustlayer/internal/session"
	"trustlayer/internal/share"
	"trustlayer/internal/verification"
	dErrors "trustlayer/pkg/domain-errors"
	httpErrors "trustlayer/pkg/http-errors"
)

// Services bundles the domain services the transport layer exposes.
type Services struct {
	Identity     *identity.Service
	APIKeys      *apikey.Service
	Verification *verification.Service
	Recovery     *recovery.Service
	Bundle       *bundle.Service
	Ingest       *ingest.Service
	Session      *session.Service
	Share        *share.Service
	Activity     *audit.Publisher
	Credentials  credstore.Store
}

// Handler holds the wired services for request handling.
type Handler struct {
	services Services
	logger   *slog.Logger
}

func NewHandler(services Services, logger *slog.Logger) *Handler {
	return &Handler{services: services, logger: logger}
}

// NewRouter wires all endpoints with the middleware stack. Everything
// except wallet connection requires a live session token.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Post("/session/connect", h.handleSessionConnect)

	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)

		r.Delete("/session", h.handleSessionDisconnect)

		r.Route("/identities", func(r chi.Router) {
			r.Post("/", h.handleIdentityCreate)
			r.Get("/", h.handleIdentityList)
			r.Get("/active", h.handleIdentityActive)

			r.Route("/{identityID}", func(r chi.Router) {
				r.Get("/", h.handleIdentityGet)
				r.Delete("/", h.handleIdentityDelete)
				r.Post("/activate", h.handleIdentityActivate)
				r.Post("/export", h.handleExport)
				r.Get("/qr", h.handleIdentityQR)
				r.Get("/credentials", h.handleCredentialList)
				r.Post("/credentials", h.handleIngest)

				r.Route("/recovery", func(r chi.Router) {
					r.Get("/", h.handleRecoveryStatus)
					r.Post("/seed/reveal", h.handleSeedReveal)
					r.Post("/seed/hide", h.handleSeedHide)
					r.Get("/seed/copy", h.handleSeedCopy)
					r.Get("/kit", h.handleRecoveryKit)
					r.Post("/guardians", h.handleGuardianAdd)
					r.Post("/guardians/{address}/confirm", h.handleGuardianConfirm)
					r.Delete("/guardians/{address}", h.handleGuardianRemove)
					r.Post("/multisig", h.handleMultisigConfigure)
				})
			})
		})

		r.Post("/import", h.handleImport)

		r.Route("/credentials/{credentialID}", func(r chi.Router) {
			r.Post("/verify", h.handleVerify)
			r.Get("/qr", h.handleCredentialQR)
		})

		r.Route("/developer/keys", func(r chi.Router) {
			r.Post("/", h.handleAPIKeyGenerate)
			r.Get("/", h.handleAPIKeyList)
			r.Delete("/{keyID}", h.handleAPIKeyRevoke)
		})

		r.Get("/activity", h.handleActivity)
	})

	return r
}

// sessionKey carries the validated session through the request context.
type sessionKey struct{}

// requireSession rejects requests without a valid bearer token.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
			return
		}
		sess, err := h.services.Session.Validate(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// sessionFrom retrieves the validated session placed by requireSession.
func sessionFrom(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(session.Session)
	return sess, ok
}

func writeJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeError centralizes domain error translation to HTTP responses,
// keeping the JSON error envelope consistent across handlers.
func writeError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]string{
			"error": string(domainErr.Code),
		}
		if domainErr.Message != "" {
			response["error_description"] = domainErr.Message
		}
		writeJSON(w, httpErrors.ToHTTPStatus(domainErr.Code), response)
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": string(dErrors.CodeInternal),
	})
}

func decodeBody(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "request body is not valid JSON")
	}
	return nil
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
