// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package urls provides functions to work with the server URLs.
// [AbsoluteURL] deals with the configured prefix so that
// AbsoluteURL(r, "/distill") gives a full URL with a prefixed path.
package urls

import (
	"net/http"
	"net/url"
	"strings"

	"codeberg.org/readeck/distiller/configs"
)

// Prefix returns the configured URL prefix, always ending with a slash.
func Prefix() string {
	p := configs.Config.Server.Prefix
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// CurrentPath returns the path of the current request
// after striping the server's prefix.
func CurrentPath(r *http.Request) string {
	p, ok := strings.CutPrefix(r.URL.Path, Prefix())
	if !ok {
		return ""
	}
	p = "/" + p
	if r.URL.RawQuery != "" {
		p += "?" + r.URL.RawQuery
	}

	return p
}

// AbsoluteURL resolves the absolute URL for the given ref path parts.
// If the ref starts with "./", it resolves relative to the current
// URL.
// The request must have been initialized with [request.InitRequest].
func AbsoluteURL(r *http.Request, parts ...string) *url.URL {
	for i, p := range parts {
		if i == 0 && strings.HasPrefix(p, "./") {
			p = "."
		}
		if i > 0 {
			parts[i] = strings.TrimLeft(p, "/")
		}
	}

	cur := &url.URL{}
	*cur = *r.URL

	// A full URL never passes through the parts.
	p, err := url.Parse(strings.Join(parts, "/"))
	if err != nil {
		return cur
	}
	pathName := p.Path

	if strings.HasPrefix(pathName, "./") && !strings.HasSuffix(cur.Path, "/") {
		cur.Path += "/"
	}
	if strings.HasPrefix(pathName, "/") {
		pathName = Prefix() + pathName[1:]
	}

	u := &url.URL{Path: pathName, RawQuery: p.RawQuery}
	return cur.ResolveReference(u)
}

// DistillURL returns the URL of a conversion of uri with the given
// parameters.
func DistillURL(r *http.Request, uri string, params url.Values) *url.URL {
	u := AbsoluteURL(r, "/distill")
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("uri", uri)
	u.RawQuery = q.Encode()
	return u
}

// PathOnly returns the URL path + query + fragment.
func PathOnly(u *url.URL) string {
	var buf strings.Builder
	p := u.EscapedPath()
	if p != "" && p[0] != '/' {
		buf.WriteByte('/')
	}
	buf.WriteString(p)

	if u.RawQuery != "" {
		buf.WriteByte('?')
		buf.WriteString(u.RawQuery)
	}

	if u.Fragment != "" {
		buf.WriteByte('#')
		buf.WriteString(u.EscapedFragment())
	}

	return buf.String()
}
