// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package request provides a middleware that sets the request's URL
// and client address based on reverse proxy headers, and gives every
// request an ID.
package request

import (
	"net"
	"net/http"
	"net/url"
	"slices"

	"github.com/google/uuid"

	"codeberg.org/readeck/distiller/pkg/ctxr"
)

type (
	ctxRemoteIPKey  struct{}
	ctxRealIPKey    struct{}
	ctxURLKey       struct{}
	ctxRequestIDKey struct{}
)

var (
	// GetRemoteIP returns the request's [http.Request.RemoteAddr] as
	// a [net.IP] without its port.
	GetRemoteIP  = ctxr.Getter[net.IP](ctxRemoteIPKey{})
	withRemoteIP = ctxr.Setter[net.IP](ctxRemoteIPKey{})

	// GetRealIP returns the request's client IP address, taken from
	// X-Forwarded-For when the request comes from a trusted proxy.
	GetRealIP  = ctxr.Getter[net.IP](ctxRealIPKey{})
	withRealIP = ctxr.Setter[net.IP](ctxRealIPKey{})

	// GetURL returns the request's absolute [*url.URL].
	GetURL  = ctxr.Getter[*url.URL](ctxURLKey{})
	withURL = ctxr.Setter[*url.URL](ctxURLKey{})

	// GetReqID returns the request's ID.
	GetReqID   = ctxr.Getter[string](ctxRequestIDKey{})
	checkReqID = ctxr.Checker[string](ctxRequestIDKey{})
	withReqID  = ctxr.Setter[string](ctxRequestIDKey{})
)

// InitRequest adds the request's absolute URL (with scheme and host) to the context
// and sets the request URL itself. Host and scheme are taken from X-Forwarded
// headers only when the request's remote address is in one of trustedProxies.
//
// A forwarded request defaults to https and is only downgraded to http
// when X-Forwarded-Proto says so.
//
// The middleware also adds the remote address, the real client IP and
// a request ID to the context. An existing X-Request-Id header from a
// trusted proxy is kept as the request ID.
func InitRequest(trustedProxies ...*net.IPNet) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			remoteAddr, _, _ := net.SplitHostPort(r.RemoteAddr)
			remoteIP := net.ParseIP(remoteAddr)
			ctx = withRemoteIP(ctx, remoteIP)

			isTrusted := isTrustedProxy(trustedProxies, remoteIP)

			if isTrusted {
				for _, ip := range forwardedFor(r.Header) {
					if isTrustedProxy(trustedProxies, ip) {
						continue
					}
					remoteIP = ip
					break
				}
			}
			ctx = withRealIP(ctx, remoteIP)

			cu := &url.URL{}
			*cu = *r.URL
			cu.Scheme = "http"
			cu.Host = r.Host

			if isForwarded(r.Header) {
				cu.Scheme = "https"
				if isTrusted {
					if forwardedProto(r.Header) == "http" {
						cu.Scheme = "http"
					}
					if host := forwardedHost(r.Header); host != "" {
						cu.Host = host
					}
				}
			}
			*(r.URL) = *cu
			ctx = withURL(ctx, cu)

			if _, ok := checkReqID(ctx); !ok {
				id := r.Header.Get("X-Request-Id")
				if !isTrusted || id == "" {
					id = uuid.NewString()
				}
				ctx = withReqID(ctx, id)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isTrustedProxy(p []*net.IPNet, ip net.IP) bool {
	return slices.ContainsFunc(p, func(cidr *net.IPNet) bool {
		return cidr.Contains(ip)
	})
}
