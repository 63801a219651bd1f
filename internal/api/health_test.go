// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestReadiness_Degraded reports 503 and names the failing dependency without
exposing the error text.
*/
func TestReadiness_Degraded(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	_, readiness := NewHealthHandlers(HealthDependencies{
		CheckUserStore: func(context.Context) error { return nil },
		CheckCache:     func(context.Context) error { return errors.New("dial tcp 10.0.0.5:6379: connection refused") },
	}, logger)

	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"degraded"`)
	assert.JSONEq(t, `{"data":{"status":"degraded","checks":[
		{"name":"user_store","ok":true},
		{"name":"redis","ok":false}
	]}}`, recorder.Body.String())
	assert.NotContains(t, recorder.Body.String(), "connection refused")
}

/*
TestReadiness_SkipsUnconfigured omits checks without a probe.
*/
func TestReadiness_SkipsUnconfigured(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	liveness, readiness := NewHealthHandlers(HealthDependencies{
		CheckUserStore: func(context.Context) error { return nil },
	}, logger)

	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "redis")

	recorder = httptest.NewRecorder()
	liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, recorder.Body.String())
}
