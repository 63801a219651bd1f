// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	requestutil "github.com/taibuivan/gatehouse/internal/platform/request"
)

/*
TestProxyIP prefers the first forwarded hop over X-Real-IP.
*/
func TestProxyIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		want      string
	}{
		{"none", "", "", ""},
		{"real_ip_only", "", " 198.51.100.2 ", "198.51.100.2"},
		{"forwarded_wins", "203.0.113.9, 10.0.0.1", "198.51.100.2", "203.0.113.9"},
		{"empty_first_hop", " , 10.0.0.1", "198.51.100.2", "198.51.100.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.forwarded != "" {
				request.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				request.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, requestutil.ProxyIP(request))
		})
	}
}

/*
TestForwarded reads the identity headers set by the gate.
*/
func TestForwarded(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)

	_, err := requestutil.Forwarded(request)
	assert.Error(t, err)

	request.Header.Set("X-User-ID", "42")
	request.Header.Set("X-Username", "alice")
	request.Header.Set("X-User-Role", "user")

	identity, err := requestutil.Forwarded(request)
	assert.NoError(t, err)
	assert.Equal(t, requestutil.ForwardedIdentity{UserID: "42", Username: "alice", Role: "user"}, identity)
}
