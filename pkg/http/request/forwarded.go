// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package request

import (
	"net"
	"net/http"
	"strings"
)

// isForwarded returns true when the request carries any of the
// X-Forwarded headers.
func isForwarded(h http.Header) bool {
	return h.Get("X-Forwarded-For") != "" ||
		h.Get("X-Forwarded-Host") != "" ||
		h.Get("X-Forwarded-Proto") != ""
}

// forwardedFor returns the IP addresses of X-Forwarded-For, the
// closest proxy first.
func forwardedFor(h http.Header) []net.IP {
	values := []string{}
	for _, v := range h.Values("X-Forwarded-For") {
		values = append(values, strings.Split(v, ",")...)
	}

	res := []net.IP{}
	for i := len(values) - 1; i >= 0; i-- {
		v := strings.Trim(strings.TrimSpace(values[i]), "[]")
		if ip := net.ParseIP(v); ip != nil {
			res = append(res, ip)
		}
	}
	return res
}

// forwardedHost returns the first value of X-Forwarded-Host.
func forwardedHost(h http.Header) string {
	v, _, _ := strings.Cut(h.Get("X-Forwarded-Host"), ",")
	return strings.TrimSpace(v)
}

// forwardedProto returns the first value of X-Forwarded-Proto.
func forwardedProto(h http.Header) string {
	v, _, _ := strings.Cut(h.Get("X-Forwarded-Proto"), ",")
	return strings.ToLower(strings.TrimSpace(v))
}
