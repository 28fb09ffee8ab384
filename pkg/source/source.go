// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package source opens the documents to convert. A source is an HTTP(S)
// URL, a local file or "-" for the standard input. Its content is
// decoded to UTF-8 and parsed as HTML5.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"codeberg.org/readeck/distiller/configs"
	"codeberg.org/readeck/distiller/internal/httpclient"
)

// Stdin is the name of the standard input source.
const Stdin = "-"

var (
	// ErrUnsupportedType is returned when the content is not text.
	ErrUnsupportedType = errors.New("unsupported content type")
	// ErrTooLarge is returned when the content exceeds the size limit.
	ErrTooLarge = errors.New("content too large")
)

// HTTPError is returned when a server answers with an error status.
type HTTPError struct {
	URL     string
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return "HTTP " + strconv.Itoa(e.Code) + " " + e.Message + " (" + e.URL + ")"
}

// StatusCode returns the HTTP status of the error.
func (e *HTTPError) StatusCode() int {
	return e.Code
}

// Source is an opened and parsed document.
type Source struct {
	// Name is the source as given by the caller.
	Name string
	// Base is the URI relative references are resolved against.
	Base string
	// Status is the HTTP status, 200 for files and readers.
	Status int
	// Header holds the response headers of an HTTP source.
	Header http.Header
	// ContentType is the detected media type.
	ContentType string
	// Root is the document tree.
	Root *html.Node
}

// Option is an [Opener] option.
type Option func(*Opener)

// WithClient sets the HTTP client used to fetch URLs.
func WithClient(client *http.Client) Option {
	return func(o *Opener) {
		o.client = client
	}
}

// WithLogger sets the opener's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Opener) {
		o.logger = logger
	}
}

// WithMaxSize sets the maximum size of a document.
func WithMaxSize(size int64) Option {
	return func(o *Opener) {
		o.maxSize = size
	}
}

// WithStdin sets the reader used for the "-" source.
func WithStdin(r io.Reader) Option {
	return func(o *Opener) {
		o.stdin = r
	}
}

// Opener opens sources. It is safe for concurrent use.
type Opener struct {
	client  *http.Client
	logger  *slog.Logger
	maxSize int64
	stdin   io.Reader
}

// NewOpener returns an [Opener]. Unless another client is given, URLs
// are fetched with a caching client so a URL is only fetched once by
// an opener.
func NewOpener(options ...Option) *Opener {
	o := &Opener{
		logger:  slog.Default(),
		maxSize: configs.Config.Distiller.MaxBodySize,
		stdin:   os.Stdin,
	}
	for _, f := range options {
		f(o)
	}
	if o.client == nil {
		o.client = httpclient.NewCacheClient(nil)
		httpclient.SetLogger(o.client, o.logger)
	}
	return o
}

// Log returns the opener's logger.
func (o *Opener) Log() *slog.Logger {
	return o.logger
}

// Client returns the opener's HTTP client.
func (o *Opener) Client() *http.Client {
	return o.client
}

// Open opens and parses a source.
func (o *Opener) Open(ctx context.Context, name string) (*Source, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, errors.New("empty source name")
	case name == Stdin:
		src, err := o.Parse(o.stdin, "", "")
		if err != nil {
			return nil, err
		}
		src.Name = name
		return src, nil
	}

	if u, err := url.Parse(name); err == nil {
		switch u.Scheme {
		case "http", "https":
			return o.fetch(ctx, name, u)
		case "file":
			return o.openFile(name, u.Path)
		}
	}

	return o.openFile(name, name)
}

// Parse reads a document and parses it. The content type, when not
// empty, provides the character encoding.
func (o *Opener) Parse(r io.Reader, contentType, base string) (*Source, error) {
	body, err := o.readAll(r)
	if err != nil {
		return nil, err
	}
	return o.parse(body, contentType, base)
}

func (o *Opener) fetch(ctx context.Context, name string, u *url.URL) (*Source, error) {
	u.Fragment = ""
	u.RawFragment = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	rsp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close() //nolint:errcheck

	if rsp.StatusCode >= 400 {
		return nil, &HTTPError{
			URL:     u.String(),
			Code:    rsp.StatusCode,
			Message: http.StatusText(rsp.StatusCode),
		}
	}

	body, err := o.readAll(rsp.Body)
	if err != nil {
		return nil, err
	}
	httpclient.AddResponseToCache(o.client, u.String(), rsp, body)

	// The base is the final URL, after redirects, unless the server
	// gives a Content-Location.
	base := u
	if rsp.Request != nil {
		base = rsp.Request.URL
	}
	if loc := rsp.Header.Get("Content-Location"); loc != "" {
		if l, err := base.Parse(loc); err == nil {
			base = l
		}
	}

	src, err := o.parse(body, rsp.Header.Get("Content-Type"), base.String())
	if err != nil {
		return nil, err
	}
	src.Name = name
	src.Status = rsp.StatusCode
	src.Header = rsp.Header

	o.Log().Debug("source fetched",
		slog.String("url", u.String()),
		slog.String("base", src.Base),
		slog.Int("status", src.Status),
		slog.String("type", src.ContentType),
	)
	return src, nil
}

func (o *Opener) openFile(name, path string) (*Source, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close() //nolint:errcheck

	base := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	src, err := o.Parse(fd, "", base.String())
	if err != nil {
		return nil, err
	}
	src.Name = name
	return src, nil
}

func (o *Opener) readAll(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, o.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > o.maxSize {
		return nil, fmt.Errorf("%w (more than %d bytes)", ErrTooLarge, o.maxSize)
	}
	return body, nil
}

func (o *Opener) parse(body []byte, contentType, base string) (*Source, error) {
	mt := mimetype.Detect(body)
	if !isText(mt) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	return &Source{
		Base:        base,
		Status:      http.StatusOK,
		Header:      http.Header{},
		ContentType: mt.String(),
		Root:        root,
	}, nil
}

// isText returns true for any text based type, including HTML and XML.
func isText(mt *mimetype.MIME) bool {
	for ; mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}
