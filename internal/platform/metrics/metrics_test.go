// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestMetricsRegistered verifies every collector is in the default registry.
*/
func TestMetricsRegistered(t *testing.T) {
	// Vectors only appear after their first observation.
	RequestsTotal.WithLabelValues("GET", "2xx").Add(0)
	RequestDuration.WithLabelValues("GET").Observe(0)
	GateDecisionsTotal.WithLabelValues("public", OutcomePass).Add(0)
	AuthAttemptsTotal.WithLabelValues("LOGIN", OutcomeSuccess).Add(0)
	RateLimitRejectedTotal.WithLabelValues("LOGIN").Add(0)
	ReplayTokensTotal.WithLabelValues(OperationVerify, OutcomeSuccess).Add(0)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, family := range families {
		found[family.GetName()] = true
	}

	for _, name := range []string{
		"gatehouse_requests_total",
		"gatehouse_request_duration_seconds",
		"gatehouse_gate_decisions_total",
		"gatehouse_auth_attempts_total",
		"gatehouse_ratelimit_rejected_total",
		"gatehouse_throttle_rejected_total",
		"gatehouse_replay_tokens_total",
	} {
		assert.True(t, found[name], "metric %q not registered", name)
	}
}

/*
TestMiddleware_RecordsStatusClass checks the request counter labels.
*/
func TestMiddleware_RecordsStatusClass(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodPost, "4xx"))

	handler := Middleware(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusTeapot)
		writer.WriteHeader(http.StatusInternalServerError)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodPost, "4xx"))
	assert.Equal(t, before+1, after)
}

/*
TestHandler_Exposition serves the text format.
*/
func TestHandler_Exposition(t *testing.T) {
	ThrottleRejectedTotal.Add(0)

	recorder := httptest.NewRecorder()
	Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, strings.Contains(recorder.Body.String(), "gatehouse_throttle_rejected_total"))
}
