// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sanitize strips markup from JSON request bodies.

Every string in the document is trimmed and passed through a bluemonday
strict policy, which removes all HTML. Values under credential keys
(password-like keys and account identifiers) are left byte-for-byte intact:
escaping them would turn "o'brien" into "o&#39;brien" and a correct pair
would no longer authenticate. Object keys that target JavaScript prototype
chains are dropped for clients that forward the body to such runtimes.
*/
package sanitize

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/taibuivan/gatehouse/internal/platform/access"
	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
)

// maxBodyBytes bounds the bodies the middleware will rewrite.
const maxBodyBytes = 1 << 20

// ErrInvalidBody is returned for bodies that are not valid JSON.
var ErrInvalidBody = errors.New("sanitize: invalid request body")

// verbatimKeys hold account identifiers, compared exactly by the auth layer.
var verbatimKeys = map[string]struct{}{
	"username":   {},
	"identifier": {},
}

var reservedKeys = map[string]struct{}{
	"__proto__":   {},
	"constructor": {},
	"prototype":   {},
}

// Sanitizer cleans decoded JSON values.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New returns a Sanitizer backed by bluemonday's strict policy.
func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// String trims value and removes any markup from it.
func (s *Sanitizer) String(value string) string {
	return strings.TrimSpace(s.policy.Sanitize(strings.TrimSpace(value)))
}

// Value walks a decoded JSON value and sanitises every string in it.
func (s *Sanitizer) Value(value any) any {
	switch typed := value.(type) {
	case string:
		return s.String(typed)
	case []any:
		cleaned := make([]any, len(typed))
		for i, item := range typed {
			cleaned[i] = s.Value(item)
		}
		return cleaned
	case map[string]any:
		cleaned := make(map[string]any, len(typed))
		for key, item := range typed {
			if _, reserved := reservedKeys[key]; reserved {
				continue
			}
			if isCredentialKey(key) {
				cleaned[key] = item
				continue
			}
			cleaned[key] = s.Value(item)
		}
		return cleaned
	default:
		return value
	}
}

// JSON sanitises a raw JSON document. An empty document is returned as is.
func (s *Sanitizer) JSON(raw []byte) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return raw, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var document any
	if err := decoder.Decode(&document); err != nil {
		return nil, ErrInvalidBody
	}
	if decoder.More() {
		return nil, ErrInvalidBody
	}

	cleaned, err := json.Marshal(s.Value(document))
	if err != nil {
		return nil, ErrInvalidBody
	}
	return cleaned, nil
}

// Middleware rewrites the JSON body of state-changing requests under
// prefixes. Bodies that are not JSON are rejected with 400.
func Middleware(s *Sanitizer, prefixes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !hasBody(request.Method) || !access.MatchesAny(request.URL.Path, prefixes) {
				next.ServeHTTP(writer, request)
				return
			}

			raw, err := io.ReadAll(io.LimitReader(request.Body, maxBodyBytes))
			_ = request.Body.Close()
			if err != nil {
				respond.Error(writer, request, apperr.ValidationError("Invalid request body").WithCause(err))
				return
			}

			cleaned, err := s.JSON(raw)
			if err != nil {
				respond.Error(writer, request, apperr.ValidationError("Invalid request body").WithCause(err))
				return
			}

			request.Body = io.NopCloser(bytes.NewReader(cleaned))
			request.ContentLength = int64(len(cleaned))
			next.ServeHTTP(writer, request)
		})
	}
}

func hasBody(method string) bool {
	return method != http.MethodGet && method != http.MethodHead && method != http.MethodOptions
}

func isCredentialKey(key string) bool {
	lowered := strings.ToLower(key)
	if _, verbatim := verbatimKeys[lowered]; verbatim {
		return true
	}
	return strings.Contains(lowered, "password")
}
