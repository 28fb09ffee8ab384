// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package server

import (
	"crypto/rand"
	"net/http"
	"strings"

	"codeberg.org/readeck/distiller/pkg/ctxr"
)

type ctxCSPNonceKey struct{}

var withCSPNonce, getCSPNonce = ctxr.WithChecker[string](ctxCSPNonceKey{})

// contentSecurityPolicy returns the policy of the HTML pages. Inline
// styles are only allowed with the request's nonce.
func contentSecurityPolicy(nonce string) string {
	return strings.Join([]string{
		"base-uri 'none'",
		"default-src 'none'",
		"form-action 'self'",
		"frame-ancestors 'none'",
		"img-src 'self' data:",
		"style-src 'nonce-" + nonce + "'",
	}, "; ")
}

// SetSecurityHeaders adds some headers to improve client side security.
func SetSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce := rand.Text()

		w.Header().Set("Content-Security-Policy", contentSecurityPolicy(nonce))
		w.Header().Set("Referrer-Policy", "same-origin, strict-origin")
		w.Header().Add("X-Frame-Options", "DENY")
		w.Header().Add("X-Content-Type-Options", "nosniff")
		w.Header().Add("X-Robots-Tag", "noindex, nofollow, noarchive")

		next.ServeHTTP(w, r.WithContext(withCSPNonce(r.Context(), nonce)))
	})
}
