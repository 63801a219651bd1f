// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware provides the cross-cutting HTTP processing chain.

It acts as a series of decorators around the standard http.Handler, injecting
traceability, safety, and security into every request lifecycle.

Standard Stack:

  - Trace: RequestID generation for log correlation.
  - Log: Structured Activity logging (slog).
  - Guard: Per-IP throttling, CORS validation and security headers.
  - Safe: Panic recovery to prevent server crashes.
  - Gate: Path classification and credential enforcement (see gate.go).

This package ensures that domain handlers can focus purely on business logic
without worrying about infrastructure-level concerns.
*/
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/ctxkey"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/metrics"
	requestutil "github.com/taibuivan/gatehouse/internal/platform/request"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
)

// # Request Tracing

// RequestID attaches a correlation ID to every request for log tracing.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Check if the client already provided an ID
			requestID := request.Header.Get(constants.HeaderXRequestID)

			// 2. Generate a new one if missing (using UUID v7 for time-sortable properties)
			if requestID == "" {
				uuidV7, err := uuid.NewV7()
				if err != nil {
					requestID = uuid.New().String()
				} else {
					requestID = uuidV7.String()
				}
			}

			// 3. Inject into context and response headers
			ctx := ctxutil.WithRequestID(request.Context(), requestID)
			writer.Header().Set(constants.HeaderXRequestID, requestID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Path Hygiene

// CanonicalPath rewrites the request path to its [path.Clean] form so that
// every later decision (gate, replay guard, routing) sees the same path.
func CanonicalPath() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if cleaned := cleanPath(request.URL.Path); cleaned != request.URL.Path {
				request.URL.Path = cleaned
				request.URL.RawPath = ""
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// cleanPath is [path.Clean] rooted at "/".
func cleanPath(requestPath string) string {
	if requestPath == "" {
		return "/"
	}
	if requestPath[0] != '/' {
		requestPath = "/" + requestPath
	}
	return path.Clean(requestPath)
}

// # Activity Logging

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// StructuredLogger logs every request status and performance metrics.
// It also injects a request-specific logger into the context.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			startTime := time.Now()
			rid := ctxutil.GetRequestID(request.Context())
			ip := RealIP(request)

			// 1. Create a sub-logger for this specific request
			requestLogger := logger.With(
				slog.String("request_id", rid),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", ip),
			)

			// 2. Inject this logger into the context for downstream use.
			// The gate runs later in the chain, so the identity is read back
			// from the shared holder once the handler returns.
			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
			identity := &forwardedUser{}
			ctx = context.WithValue(ctx, ctxkey.KeyLogSubject, identity)

			// 3. Proceed to downstream handlers with the enriched context
			next.ServeHTTP(wrappedWriter, request.WithContext(ctx))

			// 4. Final log entry after the request is finished
			latency := time.Since(startTime).Milliseconds()
			logLevel := slog.LevelInfo

			if wrappedWriter.status >= 500 {
				logLevel = slog.LevelError
			} else if wrappedWriter.status >= 400 {
				logLevel = slog.LevelWarn
			}

			logAttrs := []any{
				slog.Int("status", wrappedWriter.status),
				slog.Int64("latency_ms", latency),
				slog.String("user_agent", request.UserAgent()),
			}

			// Add user_id if the gate authorized the request
			if subject := identity.get(); subject != "" {
				logAttrs = append(logAttrs, slog.String("user_id", subject))
			}

			requestLogger.Log(ctx, logLevel, "http_request_finished", logAttrs...)
		})
	}
}

// forwardedUser carries the authorized subject back up to the logger.
type forwardedUser struct {
	mu      sync.Mutex
	subject string
}

func (user *forwardedUser) set(subject string) {
	user.mu.Lock()
	user.subject = subject
	user.mu.Unlock()
}

func (user *forwardedUser) get() string {
	user.mu.Lock()
	defer user.mu.Unlock()
	return user.subject
}

// noteSubject records subject on the request logger's holder, if present.
func noteSubject(ctx context.Context, subject string) {
	if user, ok := ctx.Value(ctxkey.KeyLogSubject).(*forwardedUser); ok {
		user.set(subject)
	}
}

// # Throttling

type throttleClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle limits requests per IP using the token bucket algorithm.
//
// It is a coarse flood guard in front of the whole router; the per-action
// counters of the ratelimit package apply on top of it.
type Throttle struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*throttleClient
}

// NewThrottle creates a per-IP token bucket throttle.
func NewThrottle(rps float64, burst int) *Throttle {
	return &Throttle{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*throttleClient),
	}
}

// Run removes idle clients until ctx is cancelled.
func (throttle *Throttle) Run(ctx context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			throttle.sweep(time.Now())
		case <-ctx.Done():
			// Stop the goroutine when the application shuts down
			return
		}
	}
}

func (throttle *Throttle) sweep(now time.Time) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	for ip, client := range throttle.clients {
		if now.Sub(client.lastSeen) > constants.RateLimitClientTTL {
			delete(throttle.clients, ip)
		}
	}
}

// Allow consumes one token for ip.
func (throttle *Throttle) Allow(ip string) bool {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	client, found := throttle.clients[ip]

	// Initialize a new limiter if this is a fresh IP
	if !found {
		client = &throttleClient{limiter: rate.NewLimiter(throttle.rps, throttle.burst)}
		throttle.clients[ip] = client
	}

	client.lastSeen = time.Now()
	return client.limiter.Allow()
}

// Middleware rejects requests over the per-IP budget with 429.
func (throttle *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !throttle.Allow(RealIP(request)) {
			metrics.ThrottleRejectedTotal.Inc()
			respond.Error(writer, request, apperr.RateLimited())
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// # Reliability & Safety

// PanicRecovery recovers from panics, logs stack trace, and returns 500.
func PanicRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Defer a recovery function to catch any runtime exceptions
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					// Capture the runtime stack trace for diagnostics
					stackTrace := make([]byte, 2048)
					length := runtime.Stack(stackTrace, false)

					logger.ErrorContext(request.Context(), "panic_recovered",
						slog.String("request_id", ctxutil.GetRequestID(request.Context())),
						slog.Any("error", err),
						slog.String("stack", string(stackTrace[:length])),
					)

					// Return a safe, generic error to the client
					respond.Error(writer, request, apperr.Internal(fmt.Errorf("panic: %v", err)))
				}
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

// # Security Headers

// SecurityHeaders sets the browser hardening headers on every response.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := writer.Header()
			header.Set("X-DNS-Prefetch-Control", "on")
			header.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
			header.Set("X-Frame-Options", "SAMEORIGIN")
			header.Set("X-Content-Type-Options", "nosniff")
			header.Set("Referrer-Policy", "origin-when-cross-origin")
			header.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			header.Set("Content-Security-Policy", constants.ContentSecurityRules)

			next.ServeHTTP(writer, request)
		})
	}
}

// # Cross-Origin Resource Sharing

// AppConfig defines the behavior needed by the CORS middleware.
type AppConfig interface {
	IsDevelopment() bool
	AllowedOrigins() []string
}

// CORS handles Cross-Origin Resource Sharing based on application environment.
func CORS(cfg AppConfig) func(http.Handler) http.Handler {
	allowed := cfg.AllowedOrigins()
	isDevelopment := cfg.IsDevelopment()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Check the Origin header
			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Check if the origin is allowed (listed in PROD, open in DEV)
			isAllowed := isDevelopment || slices.Contains(allowed, origin)

			// 3. Inject standard CORS headers if authorized
			if isAllowed {
				header := writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, X-Request-ID, X-CSRF-Token")
				header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID, X-CSRF-Token")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "300")
				header.Add("Vary", constants.HeaderOrigin)
			}

			// 4. Handle pre-flight requests (OPTIONS)
			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Middleware Helpers

// RealIP extracts client IP, respecting common proxy headers.
func RealIP(request *http.Request) string {

	// Proxy headers first, in the same order as the action limiter
	if ip := requestutil.ProxyIP(request); ip != "" {
		return ip
	}

	// Fallback to the direct connection's address
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
