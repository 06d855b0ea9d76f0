// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package middleware

import (
	"net/http"
	"strings"

	"github.com/tomtom215/movierec/internal/session"
)

// BearerToken lifts the Authorization bearer token into the request
// context so the session accessor can resolve the caller downstream.
// Requests without a token pass through; authorization decisions belong
// to the handlers, which answer with the proper error code.
func BearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			r = r.WithContext(session.ContextWithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}
