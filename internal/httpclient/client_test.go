// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package httpclient_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"codeberg.org/readeck/distiller/configs"
	"codeberg.org/readeck/distiller/internal/httpclient"
)

type echoResponse struct {
	URL    string
	Method string
	Header http.Header
}

func mockTransport() *httpmock.MockTransport {
	mt := httpmock.NewMockTransport()
	mt.RegisterResponder("GET", `=~.*`,
		func(req *http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(200, echoResponse{
				URL:    req.URL.String(),
				Method: req.Method,
				Header: req.Header,
			})
		})
	return mt
}

func getEcho(t *testing.T, client *http.Client, url string) echoResponse {
	t.Helper()
	rsp, err := client.Get(url)
	require.NoError(t, err)
	defer rsp.Body.Close() //nolint:errcheck

	var data echoResponse
	require.NoError(t, json.NewDecoder(rsp.Body).Decode(&data))
	return data
}

func TestClient(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		t.Run("request", func(t *testing.T) {
			assert := require.New(t)

			client := httpclient.New()
			client.Transport.(*httpclient.Transport).RoundTripper = mockTransport()

			data := getEcho(t, client, "https://example.net/")
			assert.Equal("https://example.net/", data.URL)
			assert.Equal("GET", data.Method)
			assert.Equal(configs.Config.Distiller.UserAgent, data.Header.Get("User-Agent"))
			assert.Contains(data.Header.Get("Accept"), "text/html")
		})

		t.Run("request header", func(t *testing.T) {
			assert := require.New(t)

			client := httpclient.New()
			client.Transport.(*httpclient.Transport).RoundTripper = mockTransport()

			req, _ := http.NewRequest(http.MethodGet, "https://example.net/", nil)
			req.Header.Set("Accept", "application/rdf+xml")
			rsp, err := client.Do(req)
			assert.NoError(err)
			defer rsp.Body.Close() //nolint:errcheck

			var data echoResponse
			assert.NoError(json.NewDecoder(rsp.Body).Decode(&data))
			assert.Equal("application/rdf+xml", data.Header.Get("Accept"))
		})

		t.Run("SetHeader", func(t *testing.T) {
			assert := require.New(t)

			client := httpclient.New()
			client.Transport.(*httpclient.Transport).RoundTripper = mockTransport()

			client.Transport.(*httpclient.Transport).SetHeader(func(h http.Header) {
				h.Set("x-test", "abc")
			})

			data := getEcho(t, client, "https://example.net/")
			assert.Equal("abc", data.Header.Get("x-test"))
		})
	})

	t.Run("denied IPs", func(t *testing.T) {
		t.Cleanup(configs.Reset)
		assert := require.New(t)

		network := configs.IPNet{}
		assert.NoError(network.UnmarshalText([]byte("127.0.0.0/8")))
		configs.Config.Distiller.DeniedIPs = []configs.IPNet{network}

		client := httpclient.New()
		client.Transport.(*httpclient.Transport).RoundTripper = mockTransport()

		_, err := client.Get("http://127.0.0.1/")
		assert.ErrorIs(err, httpclient.ErrDeniedIP)

		data := getEcho(t, client, "http://192.0.2.1/")
		assert.Equal("http://192.0.2.1/", data.URL)
	})
}

func TestCacheClient(t *testing.T) {
	assert := require.New(t)

	client := httpclient.NewCacheClient(func(r *http.Request) bool {
		return r.URL.Query().Get("nocache") == ""
	})
	mt := httpmock.NewMockTransport()
	mt.RegisterResponder("GET", "https://example.net/page",
		httpmock.NewStringResponder(200, "from network"))
	mt.RegisterResponder("GET", "https://example.net/page?nocache=1",
		httpmock.NewStringResponder(200, "from network"))
	client.Transport.(*httpclient.CacheTransport).RoundTripper = mt

	assert.False(httpclient.IsInCache(client, "https://example.net/page"))
	httpclient.AddToCache(client, "https://example.net/page", 404,
		http.Header{"Content-Type": {"text/html"}}, []byte("from cache"))
	httpclient.AddToCache(client, "https://example.net/page?nocache=1", 200, nil, []byte("from cache"))
	assert.True(httpclient.IsInCache(client, "https://example.net/page"))

	read := func(url string) (int, string) {
		rsp, err := client.Get(url)
		assert.NoError(err)
		defer rsp.Body.Close() //nolint:errcheck
		b, err := io.ReadAll(rsp.Body)
		assert.NoError(err)
		return rsp.StatusCode, string(b)
	}

	status, body := read("https://example.net/page")
	assert.Equal(404, status)
	assert.Equal("from cache", body)

	status, body = read("https://example.net/page?nocache=1")
	assert.Equal(200, status)
	assert.Equal("from network", body)

	assert.Equal(1, mt.GetTotalCallCount())

	plain := httpclient.New()
	httpclient.AddToCache(plain, "https://example.net/page", 200, nil, nil)
	assert.False(httpclient.IsInCache(plain, "https://example.net/page"))
}

func TestCacheRedirect(t *testing.T) {
	assert := require.New(t)

	client := httpclient.NewCacheClient(nil)
	mt := httpmock.NewMockTransport()
	mt.RegisterResponder("GET", "https://example.net/old",
		httpmock.NewStringResponder(302, "").HeaderSet(http.Header{"Location": {"/new"}}))
	mt.RegisterResponder("GET", "https://example.net/new",
		httpmock.NewStringResponder(200, "moved"))
	client.Transport.(*httpclient.CacheTransport).RoundTripper = mt

	rsp, err := client.Get("https://example.net/old")
	assert.NoError(err)
	body, err := io.ReadAll(rsp.Body)
	assert.NoError(err)
	assert.NoError(rsp.Body.Close())
	assert.Equal("https://example.net/new", rsp.Request.URL.String())
	httpclient.AddResponseToCache(client, "https://example.net/old", rsp, body)

	rsp, err = client.Get("https://example.net/old")
	assert.NoError(err)
	defer rsp.Body.Close() //nolint:errcheck
	assert.Equal("https://example.net/new", rsp.Request.URL.String())
	assert.Equal("example.net", rsp.Request.Host)
	assert.Equal(2, mt.GetTotalCallCount())
}
