// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package source_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-shiori/dom"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"codeberg.org/readeck/distiller/internal/httpclient"
	"codeberg.org/readeck/distiller/pkg/source"
)

const page = `<!DOCTYPE html><html><head><title>Page</title></head>
<body><div itemscope itemtype="http://schema.org/Thing"><p itemprop="name">Été</p></div></body></html>`

func newOpener(t *testing.T, options ...source.Option) (*source.Opener, *httpmock.MockTransport) {
	t.Helper()
	client := httpclient.NewCacheClient(nil)
	mt := httpmock.NewMockTransport()
	client.Transport.(*httpclient.CacheTransport).RoundTripper = mt

	mt.RegisterResponder("GET", "https://example.org/page", func(r *http.Request) (*http.Response, error) {
		rsp := httpmock.NewStringResponse(200, page)
		rsp.Header.Set("Content-Type", "text/html; charset=utf-8")
		return rsp, nil
	})
	mt.RegisterResponder("GET", "https://example.org/latin1", func(r *http.Request) (*http.Response, error) {
		rsp := httpmock.NewBytesResponse(200, []byte("<p>\xe9t\xe9</p>"))
		rsp.Header.Set("Content-Type", "text/html; charset=iso-8859-1")
		return rsp, nil
	})
	mt.RegisterResponder("GET", "https://example.org/located", func(r *http.Request) (*http.Response, error) {
		rsp := httpmock.NewStringResponse(200, page)
		rsp.Header.Set("Content-Location", "/other/place")
		return rsp, nil
	})
	mt.RegisterResponder("GET", "https://example.org/redirect",
		httpmock.NewStringResponder(301, "").HeaderSet(http.Header{"Location": {"/moved/"}}))
	mt.RegisterResponder("GET", "https://example.org/moved/", func(r *http.Request) (*http.Response, error) {
		rsp := httpmock.NewStringResponse(200, page)
		rsp.Header.Set("Content-Type", "text/html; charset=utf-8")
		return rsp, nil
	})
	mt.RegisterResponder("GET", "https://example.org/image",
		httpmock.NewBytesResponder(200, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")))
	mt.RegisterResponder("GET", "https://example.org/404",
		httpmock.NewStringResponder(404, "not found"))
	mt.RegisterResponder("GET", "https://example.org/error",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	options = append([]source.Option{source.WithClient(client)}, options...)
	return source.NewOpener(options...), mt
}

func textOf(src *source.Source) string {
	return strings.TrimSpace(dom.TextContent(dom.QuerySelector(src.Root, "p")))
}

func TestOpenURL(t *testing.T) {
	t.Run("page", func(t *testing.T) {
		assert := require.New(t)
		o, mt := newOpener(t)

		src, err := o.Open(context.Background(), "https://example.org/page#section")
		assert.NoError(err)
		assert.Equal("https://example.org/page#section", src.Name)
		assert.Equal("https://example.org/page", src.Base)
		assert.Equal(200, src.Status)
		assert.Equal("text/html; charset=utf-8", src.Header.Get("Content-Type"))
		assert.Equal("Été", textOf(src))

		_, err = o.Open(context.Background(), "https://example.org/page")
		assert.NoError(err)
		assert.Equal(1, mt.GetTotalCallCount())
		assert.True(httpclient.IsInCache(o.Client(), "https://example.org/page"))
	})

	t.Run("redirect", func(t *testing.T) {
		assert := require.New(t)
		o, mt := newOpener(t)

		for range 2 {
			src, err := o.Open(context.Background(), "https://example.org/redirect")
			assert.NoError(err)
			assert.Equal("https://example.org/redirect", src.Name)
			assert.Equal("https://example.org/moved/", src.Base)
		}
		assert.Equal(2, mt.GetTotalCallCount())
	})

	t.Run("charset", func(t *testing.T) {
		assert := require.New(t)
		o, _ := newOpener(t)

		src, err := o.Open(context.Background(), "https://example.org/latin1")
		assert.NoError(err)
		assert.Equal("été", textOf(src))
	})

	t.Run("content location", func(t *testing.T) {
		assert := require.New(t)
		o, _ := newOpener(t)

		src, err := o.Open(context.Background(), "https://example.org/located")
		assert.NoError(err)
		assert.Equal("https://example.org/other/place", src.Base)
	})

	t.Run("http error", func(t *testing.T) {
		assert := require.New(t)
		o, _ := newOpener(t)

		_, err := o.Open(context.Background(), "https://example.org/404")
		var httpErr *source.HTTPError
		assert.ErrorAs(err, &httpErr)
		assert.Equal(404, httpErr.StatusCode())
		assert.Equal("Not Found", httpErr.Message)
		assert.Equal("HTTP 404 Not Found (https://example.org/404)", err.Error())
	})

	t.Run("network error", func(t *testing.T) {
		o, _ := newOpener(t)
		_, err := o.Open(context.Background(), "https://example.org/error")
		require.ErrorContains(t, err, "connection refused")
	})

	t.Run("binary", func(t *testing.T) {
		o, _ := newOpener(t)
		_, err := o.Open(context.Background(), "https://example.org/image")
		require.ErrorIs(t, err, source.ErrUnsupportedType)
	})

	t.Run("too large", func(t *testing.T) {
		o, _ := newOpener(t, source.WithMaxSize(10))
		_, err := o.Open(context.Background(), "https://example.org/page")
		require.ErrorIs(t, err, source.ErrTooLarge)
	})
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(filename, []byte(page), 0o600))

	t.Run("path", func(t *testing.T) {
		assert := require.New(t)
		o, _ := newOpener(t)

		src, err := o.Open(context.Background(), filename)
		assert.NoError(err)
		assert.Equal(filename, src.Name)
		assert.Equal("file://"+filepath.ToSlash(filename), src.Base)
		assert.Equal(200, src.Status)
		assert.Equal("Été", textOf(src))
	})

	t.Run("file URL", func(t *testing.T) {
		assert := require.New(t)
		o, _ := newOpener(t)

		src, err := o.Open(context.Background(), "file://"+filepath.ToSlash(filename))
		assert.NoError(err)
		assert.Equal("Été", textOf(src))
	})

	t.Run("missing", func(t *testing.T) {
		o, _ := newOpener(t)
		_, err := o.Open(context.Background(), filepath.Join(dir, "nope.html"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("stdin", func(t *testing.T) {
		assert := require.New(t)
		o, _ := newOpener(t, source.WithStdin(strings.NewReader(page)))

		src, err := o.Open(context.Background(), "-")
		assert.NoError(err)
		assert.Equal("-", src.Name)
		assert.Empty(src.Base)
		assert.Equal("Été", textOf(src))
	})

	t.Run("empty name", func(t *testing.T) {
		o, _ := newOpener(t)
		_, err := o.Open(context.Background(), " ")
		require.Error(t, err)
	})
}

func TestParse(t *testing.T) {
	assert := require.New(t)
	o, _ := newOpener(t)

	src, err := o.Parse(strings.NewReader(`<span itemprop="name">x</span>`), "", "http://example.org/")
	assert.NoError(err)
	assert.Equal("http://example.org/", src.Base)
	assert.NotNil(dom.QuerySelector(src.Root, "span"))
}
