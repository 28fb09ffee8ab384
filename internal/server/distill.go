// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"codeberg.org/readeck/distiller/configs"
	"codeberg.org/readeck/distiller/internal/metrics"
	"codeberg.org/readeck/distiller/internal/server/urls"
	"codeberg.org/readeck/distiller/pkg/distiller"
	"codeberg.org/readeck/distiller/pkg/rdf"
	"codeberg.org/readeck/distiller/pkg/source"
)

const (
	uriText     = "text:"
	uriUploaded = "uploaded:"
)

var errBadInput = errors.New("bad input")

// maxMemory is the part of a multipart form kept in memory.
const maxMemory = 8 << 20

// distillQuery holds the parameters of a conversion request.
type distillQuery struct {
	URI       string
	Format    rdf.Format
	RDFOutput bool
	Text      string
	Filename  string
}

func indexRoutes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		RenderTemplate(w, r, http.StatusOK, "/index", TC{})
	})
	return r
}

func distillRoutes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", distillHandler)
	r.Post("/", distillHandler)
	return r
}

// formatNames returns the names of the output formats.
func formatNames() []string {
	res := []string{}
	for _, f := range rdf.Formats() {
		res = append(res, string(f))
	}
	return res
}

// defaultFormat returns the configured output format.
func defaultFormat() rdf.Format {
	return rdf.ParseFormat(configs.Config.Distiller.DefaultFormat)
}

// requestFormat returns the output format of a request. An explicit
// "format" parameter comes first, then the Accept header.
func requestFormat(r *http.Request) rdf.Format {
	def := defaultFormat()
	if v := r.Form.Get("format"); v != "" {
		if f, ok := rdf.LookupFormat(v); ok {
			return f
		}
		return def
	}

	offers := rdf.ContentTypes()
	i := slices.Index(offers, def.ContentType())
	offers = append([]string{def.ContentType()}, slices.Delete(offers, i, i+1)...)

	if f, ok := rdf.FormatFromContentType(negotiate(r, offers, def.ContentType())); ok {
		return f
	}
	return def
}

func isTrue(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b || v == "on"
}

// parseForm reads the query and the request body. Multipart bodies
// are only parsed when the content type says so, in order to keep the
// error of an urlencoded body.
func parseForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "multipart/form-data" {
		return nil
	}
	return r.ParseMultipartForm(maxMemory)
}

func distillHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, configs.Config.Distiller.MaxBodySize)
	if err := parseForm(r); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			Status(w, r, http.StatusRequestEntityTooLarge)
			return
		}
		Log(r).Warn("invalid form", slog.Any("err", err))
		Status(w, r, http.StatusBadRequest)
		return
	}

	q := distillQuery{
		URI:       strings.TrimSpace(r.Form.Get("uri")),
		Format:    requestFormat(r),
		RDFOutput: isTrue(r.Form.Get("rdf_output")) || r.Form.Has("forceRDFOutput"),
	}
	if q.URI == "" {
		Status(w, r, http.StatusBadRequest)
		return
	}

	p := distiller.New(
		distiller.WithLogger(Log(r)),
		distiller.WithRDFOutput(q.RDFOutput),
	)

	ctx, cancel := context.WithTimeout(r.Context(), configs.Config.Distiller.Timeout.Duration)
	defer cancel()

	g, err := q.graph(ctx, r, p)
	if err != nil {
		if errors.Is(err, errBadInput) {
			Status(w, r, http.StatusBadRequest)
			return
		}
		metrics.ObserveConversion(string(q.Format), 0, err)
		q.renderError(w, r, err)
		return
	}

	buf := new(bytes.Buffer)
	if err = rdf.Serialize(buf, g, q.Format); err != nil {
		metrics.ObserveConversion(string(q.Format), 0, err)
		q.renderError(w, r, err)
		return
	}
	metrics.ObserveConversion(string(q.Format), g.Len(), nil)

	w.Header().Set("Content-Type", q.Format.ContentType()+"; charset=utf-8")
	w.Header().Add("Vary", "Accept")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// graph runs the conversion of the request's source.
func (q *distillQuery) graph(ctx context.Context, r *http.Request, p *distiller.Processor) (*rdf.Graph, error) {
	switch q.URI {
	case uriText:
		q.Text = r.Form.Get("text")
		if strings.TrimSpace(q.Text) == "" {
			return nil, errBadInput
		}
		g := p.NewGraph()
		if err := p.GraphFromReader(ctx, strings.NewReader(q.Text), "", g); err != nil {
			return nil, err
		}
		return g, nil
	case uriUploaded:
		fd, header, err := r.FormFile("uploaded")
		if err != nil {
			return nil, errBadInput
		}
		defer fd.Close() //nolint:errcheck
		q.Filename = header.Filename

		g := p.NewGraph()
		if err := p.GraphFromReader(ctx, fd, "", g); err != nil {
			return nil, err
		}
		return g, nil
	}

	u, err := url.Parse(q.URI)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errBadInput
	}
	return p.GraphFromSources(ctx, []string{q.URI})
}

// renderError sends the HTML page describing a failed conversion.
func (q *distillQuery) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var e *distiller.Error
	switch {
	case errors.As(err, &e):
		status = e.StatusCode()
		message = e.Message()
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}

	rdfLink := ""
	if q.URI != uriText && q.URI != uriUploaded {
		rdfLink = urls.PathOnly(urls.DistillURL(r, q.URI, url.Values{
			"format":     {string(q.Format)},
			"rdf_output": {"1"},
		}))
	}

	var httpErr *source.HTTPError
	RenderTemplate(w, r, status, "/distill_error", TC{
		"HTTPError": errors.As(err, &httpErr),
		"Message":   message,
		"URI":       q.URI,
		"Text":      q.Text,
		"Filename":  q.Filename,
		"Format":    string(q.Format),
		"RequestID": GetReqID(r),
		"RDFLink":   rdfLink,
	})
}
