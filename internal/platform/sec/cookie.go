// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"net/http"
	"time"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
)

// SetCredentialCookie attaches token as the HTTP-only session cookie.
func SetCredentialCookie(writer http.ResponseWriter, token string, lifetime time.Duration, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.CredentialCookieName,
		Value:    token,
		Path:     constants.CredentialCookiePath,
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ExpireCredentialCookies expires every cookie name in
// [constants.StaleCredentialCookies].
func ExpireCredentialCookies(writer http.ResponseWriter, secure bool) {
	for _, name := range constants.StaleCredentialCookies {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.CredentialCookiePath,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// CredentialFromRequest returns the credential cookie value, or "" if absent.
func CredentialFromRequest(request *http.Request) string {
	cookie, err := request.Cookie(constants.CredentialCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
