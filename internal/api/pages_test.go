// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

/*
TestPage_RequiresClaims answers 401 when the gate attached no identity.
*/
func TestPage_RequiresClaims(t *testing.T) {
	page := NewPageHandler().Page("settings")

	recorder := httptest.NewRecorder()
	page(recorder, httptest.NewRequest(http.MethodGet, "/settings", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/settings", nil)
	claims := &sec.Claims{Subject: "42", Username: "alice", Role: "user"}
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))

	recorder = httptest.NewRecorder()
	page(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"page":"settings","user":{"id":"42","username":"alice","role":"user"}}}`, recorder.Body.String())
}
