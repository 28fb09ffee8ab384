// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package microdata

import (
	"net/url"
	"strings"
)

// iriForbidden lists the characters that cannot appear in an IRI.
const iriForbidden = " \t\n\r<>\"{}|\\^`"

// Resolve resolves a possibly relative reference against base.
// An absolute reference is checked and returned as is. It returns false
// when the reference is empty, malformed, or cannot be made absolute.
func Resolve(candidate string, base *url.URL) (string, bool) {
	s := strings.TrimSpace(candidate)
	if s == "" {
		return "", false
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}

	if u.IsAbs() {
		if strings.ContainsAny(s, iriForbidden) {
			return "", false
		}
		return s, true
	}

	if base == nil || !base.IsAbs() {
		return "", false
	}

	res := base.ResolveReference(u).String()
	if strings.ContainsAny(res, iriForbidden) {
		return "", false
	}
	return res, true
}

// IsAbsolute returns true when s is a valid absolute URI.
func IsAbsolute(s string) bool {
	_, ok := Resolve(s, nil)
	return ok
}
