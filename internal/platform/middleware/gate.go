// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/gatehouse/internal/platform/access"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/metrics"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

// CredentialVerifier defines the interface needed to verify credentials in middleware.
//
// # Why an interface?
//
// Defining CredentialVerifier here decouples the gate from the concrete
// [sec.CredentialService], allowing stubs during unit testing.
type CredentialVerifier interface {
	Verify(token string) (*sec.Claims, error)
}

// GateOptions configures [Gate].
type GateOptions struct {
	// Policy classifies paths as public or protected.
	Policy access.Policy

	// LoginPath is the redirect target for unauthorized requests.
	LoginPath string

	// SecureCookies sets the Secure flag on the expiring cookies.
	SecureCookies bool
}

// identityHeaders are never trusted from the client.
var identityHeaders = []string{
	constants.HeaderUserID,
	constants.HeaderUserRole,
	constants.HeaderUsername,
}

// Gate decides, for every request, whether it may proceed.
//
// # Flow
//  1. Strip client-supplied identity headers.
//  2. Classify the path with the [access.Policy]. Public paths pass.
//  3. Read the credential cookie and verify it via [CredentialVerifier].
//  4. On failure, expire every known credential cookie and redirect (307) to login.
//  5. On success, attach the claims to the context and, for API paths,
//     forward the identity as request headers.
func Gate(verifier CredentialVerifier, options GateOptions) func(http.Handler) http.Handler {
	loginPath := options.LoginPath
	if loginPath == "" {
		loginPath = constants.LoginPath
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Header Hygiene ─────────────────────────────────────────────
			for _, header := range identityHeaders {
				request.Header.Del(header)
			}

			// ── 2. Classification ─────────────────────────────────────────────
			requestPath := cleanPath(request.URL.Path)
			class := options.Policy.Classify(requestPath)
			if class == access.Public {
				metrics.GateDecisionsTotal.WithLabelValues(class.String(), metrics.OutcomePass).Inc()
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Authorization ──────────────────────────────────────────────
			claims, err := authorize(verifier, request)
			if err != nil {
				logger := ctxutil.GetLogger(request.Context())
				logger.DebugContext(request.Context(), "gate_unauthorized",
					slog.String("reason", reason(err)),
				)

				metrics.GateDecisionsTotal.WithLabelValues(class.String(), metrics.OutcomeRedirected).Inc()
				sec.ExpireCredentialCookies(writer, options.SecureCookies)
				http.Redirect(writer, request, loginPath, http.StatusTemporaryRedirect)
				return
			}

			// ── 4. Identity Forwarding ────────────────────────────────────────
			metrics.GateDecisionsTotal.WithLabelValues(class.String(), metrics.OutcomeAuthorized).Inc()
			if isAPIPath(requestPath) {
				request.Header.Set(constants.HeaderUserID, claims.Subject)
				request.Header.Set(constants.HeaderUserRole, claims.Role)
				request.Header.Set(constants.HeaderUsername, claims.Username)
			}

			noteSubject(request.Context(), claims.Subject)
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// errMissingCredential is returned when the credential cookie is absent.
var errMissingCredential = errors.New("gate: missing credential")

func authorize(verifier CredentialVerifier, request *http.Request) (*sec.Claims, error) {
	token := sec.CredentialFromRequest(request)
	if token == "" {
		return nil, errMissingCredential
	}
	return verifier.Verify(token)
}

// reason maps a verification failure to a log-friendly label.
func reason(err error) string {
	switch {
	case errors.Is(err, errMissingCredential):
		return "missing"
	case errors.Is(err, sec.ErrCredentialExpired):
		return "expired"
	case errors.Is(err, sec.ErrCredentialSignature):
		return "signature"
	case errors.Is(err, sec.ErrCredentialMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}

func isAPIPath(path string) bool {
	return path == constants.APIPrefix || strings.HasPrefix(path, constants.APIPrefix+"/")
}
