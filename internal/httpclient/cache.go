// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package httpclient

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
)

// CacheTransport is a wrapper around [Transport] that adds a cache layer.
// A source named several times in one batch is only fetched once.
type CacheTransport struct {
	*Transport
	sync.RWMutex

	entries   map[string]*cacheResource
	checkFunc func(*http.Request) bool
}

type cacheResource struct {
	status int
	header http.Header
	body   []byte

	// location is the URL the entry was finally served from,
	// when it differs from the cache key.
	location *url.URL
}

// RoundTrip implements [http.RoundTripper].
// When an entry is found in the cache, it sends a response made out of it. Otherwise,
// it calls the wrapped RoundTrip method.
func (t *CacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	entry := t.getEntry(req)
	if entry == nil {
		return t.Transport.RoundTrip(req)
	}

	t.Log().Debug("cache hit", slog.String("url", req.URL.String()))

	rsp := &http.Response{
		Status:     http.StatusText(entry.status),
		StatusCode: entry.status,
		Header:     entry.header.Clone(),
		Request:    req,
		Body:       http.NoBody,
	}
	if entry.location != nil {
		rsp.Request = req.Clone(req.Context())
		rsp.Request.URL = entry.location
		rsp.Request.Host = entry.location.Host
	}
	if req.Method == http.MethodGet {
		b := bytes.NewReader(entry.body)
		rsp.Body = io.NopCloser(b)
		rsp.ContentLength = b.Size()
	}

	return rsp, nil
}

func (t *CacheTransport) addEntry(key string, status int, header http.Header, body []byte, location *url.URL) {
	t.Lock()
	defer t.Unlock()

	if location != nil && location.String() == key {
		location = nil
	}

	t.entries[key] = &cacheResource{
		status:   status,
		header:   header.Clone(),
		body:     body,
		location: location,
	}
}

func (t *CacheTransport) hasEntry(url string) bool {
	t.RLock()
	defer t.RUnlock()

	_, ok := t.entries[url]
	return ok
}

// getEntry returns a [cacheResource] when it exists.
// If the transport has a "checkFunc", it must return true for
// the entry to be returned.
func (t *CacheTransport) getEntry(req *http.Request) *cacheResource {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return nil
	}

	t.RLock()
	defer t.RUnlock()

	entry, ok := t.entries[req.URL.String()]
	if !ok {
		return nil
	}

	if t.checkFunc != nil && !t.checkFunc(req) {
		return nil
	}
	return entry
}

// NewCacheClient returns a new [http.Client] with a [CacheTransport] round tripper.
// The "check" function, when not null, can be used to exclude a request from
// any cache request.
func NewCacheClient(check func(*http.Request) bool) *http.Client {
	client := New()
	client.Transport = &CacheTransport{
		Transport: client.Transport.(*Transport),
		entries:   map[string]*cacheResource{},
		checkFunc: check,
	}

	return client
}

// AddToCache adds a URL, its status, headers and body to an [http.Client] cache.
// If the client's transport is not a [CacheTransport] instance, it does nothing.
func AddToCache(client *http.Client, url string, status int, headers http.Header, body []byte) {
	if t, ok := client.Transport.(*CacheTransport); ok {
		t.addEntry(url, status, headers, body, nil)
	}
}

// AddResponseToCache adds a response and its body to an [http.Client] cache,
// under the given key. When the response comes from a redirect, the final
// URL is kept so that a cached response reports the same request URL.
func AddResponseToCache(client *http.Client, key string, rsp *http.Response, body []byte) {
	t, ok := client.Transport.(*CacheTransport)
	if !ok {
		return
	}
	var location *url.URL
	if rsp.Request != nil && rsp.Request.URL != nil {
		u := *rsp.Request.URL
		location = &u
	}
	t.addEntry(key, rsp.StatusCode, rsp.Header, body, location)
}

// IsInCache returns true if a URL exists in an [http.Client] cache.
// If the client's transport is not a [CacheTransport] instance, it does nothing.
func IsInCache(client *http.Client, url string) bool {
	if t, ok := client.Transport.(*CacheTransport); ok {
		return t.hasEntry(url)
	}
	return false
}

// SetLogger sets the logger of a client's [Transport] or [CacheTransport].
func SetLogger(client *http.Client, l *slog.Logger) {
	switch t := client.Transport.(type) {
	case *Transport:
		t.SetLogger(l)
	case *CacheTransport:
		t.SetLogger(l)
	}
}
