// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package distiller extracts the microdata of one or several sources
// into a single RDF graph and serializes it.
//
// Failures either return an [*Error] or, when the processor is set to
// produce RDF output, are described in the graph itself.
package distiller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"codeberg.org/readeck/distiller/configs"
	"codeberg.org/readeck/distiller/pkg/microdata"
	"codeberg.org/readeck/distiller/pkg/rdf"
	"codeberg.org/readeck/distiller/pkg/source"
)

// NSDistiller is the namespace of the error descriptions.
const NSDistiller = "https://readeck.org/ns/distiller#"

// defaultBindings are the prefixes bound on every graph made out of sources.
var defaultBindings = map[string]string{
	"gr":    "http://purl.org/goodrelations/v1#",
	"cc":    "http://creativecommons.org/ns#",
	"sioc":  "http://rdfs.org/sioc/ns#",
	"skos":  rdf.NSSKOS,
	"rdfs":  rdf.NSRDFS,
	"foaf":  rdf.NSFOAF,
	"vcard": "http://www.w3.org/2006/vcard/ns#",
	"rdf":   rdf.NSRDF,
	"xsd":   rdf.NSXSD,
}

// Error is a processing failure with the HTTP status it maps to.
type Error struct {
	URI    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	return e.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of the error.
func (e *Error) StatusCode() int {
	return e.Status
}

// Message returns the error description.
func (e *Error) Message() string {
	var httpErr *source.HTTPError
	if errors.As(e.Err, &httpErr) {
		return "HTTP Error: " + strconv.Itoa(httpErr.Code) + " (" + httpErr.Message + ")"
	}
	return e.Err.Error()
}

// Option is a [Processor] option.
type Option func(*Processor)

// WithOpener sets the source opener.
func WithOpener(o *source.Opener) Option {
	return func(p *Processor) {
		p.opener = o
	}
}

// WithLogger sets the processor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithRDFOutput sets whether failures are described in the graph
// instead of being returned.
func WithRDFOutput(v bool) Option {
	return func(p *Processor) {
		p.rdfOutput = v
	}
}

// WithWorkers sets how many sources are fetched at the same time.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		p.workers = max(n, 1)
	}
}

// WithPrefixes adds prefix bindings to the graphs made out of sources.
func WithPrefixes(prefixes map[string]string) Option {
	return func(p *Processor) {
		maps.Copy(p.prefixes, prefixes)
	}
}

// WithClock sets the function giving the date of error descriptions.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// Processor converts sources. Every graph it produces uses the same
// blank node allocator, so several documents can be merged in one graph.
type Processor struct {
	opener    *source.Opener
	logger    *slog.Logger
	bnodes    *rdf.BlankNodeAllocator
	rdfOutput bool
	workers   int
	prefixes  map[string]string
	now       func() time.Time

	mu     sync.Mutex
	status int
}

// New returns a [Processor] configured after [configs.Config].
func New(options ...Option) *Processor {
	p := &Processor{
		logger:    slog.Default(),
		bnodes:    &rdf.BlankNodeAllocator{},
		rdfOutput: configs.Config.Distiller.RDFOutput,
		workers:   max(configs.Config.Distiller.Workers, 1),
		prefixes:  maps.Clone(defaultBindings),
		now:       time.Now,
		status:    http.StatusOK,
	}
	maps.Copy(p.prefixes, configs.Config.Distiller.Prefixes)

	for _, f := range options {
		f(p)
	}
	if p.opener == nil {
		p.opener = source.NewOpener(source.WithLogger(p.logger))
	}
	return p
}

// Log returns the processor's logger.
func (p *Processor) Log() *slog.Logger {
	return p.logger
}

// Status returns the HTTP status of the last failure, or 200.
func (p *Processor) Status() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Processor) setStatus(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
}

// NewGraph returns an empty graph with the processor's prefix bindings.
func (p *Processor) NewGraph() *rdf.Graph {
	g := rdf.NewGraph()
	for _, prefix := range slices.Sorted(maps.Keys(p.prefixes)) {
		g.BindPrefix(prefix, p.prefixes[prefix])
	}
	return g
}

// GraphFromNode converts a document tree into g.
func (p *Processor) GraphFromNode(ctx context.Context, root *html.Node, base string, g *rdf.Graph) error {
	return microdata.Convert(ctx, root, g, base,
		microdata.WithLogger(p.logger),
		microdata.WithBlankNodes(p.bnodes),
	)
}

// GraphFromReader parses a document and converts it into g.
func (p *Processor) GraphFromReader(ctx context.Context, r io.Reader, base string, g *rdf.Graph) error {
	src, err := p.opener.Parse(r, "", base)
	if err != nil {
		return p.fail(g, "", http.StatusBadRequest, err)
	}
	return p.convert(ctx, src, g)
}

// GraphFromSource opens a source and converts it into g.
func (p *Processor) GraphFromSource(ctx context.Context, name string, g *rdf.Graph) error {
	src, err := p.open(ctx, name)
	if err != nil {
		return p.openFailure(g, name, err)
	}
	return p.convert(ctx, src, g)
}

// GraphFromSources converts sources into one graph with the processor's
// prefix bindings. Sources are fetched concurrently and converted in
// order.
func (p *Processor) GraphFromSources(ctx context.Context, names []string) (*rdf.Graph, error) {
	sources := make([]*source.Source, len(names))
	errs := make([]error, len(names))

	eg := new(errgroup.Group)
	eg.SetLimit(p.workers)
	for i, name := range names {
		eg.Go(func() error {
			sources[i], errs[i] = p.open(ctx, name)
			return nil
		})
	}
	_ = eg.Wait()

	g := p.NewGraph()
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if errs[i] != nil {
			if err := p.openFailure(g, name, errs[i]); err != nil {
				return nil, err
			}
			continue
		}
		if err := p.convert(ctx, sources[i], g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// RDFFromSources converts sources into one graph and writes it in the
// given format.
func (p *Processor) RDFFromSources(ctx context.Context, w io.Writer, names []string, format rdf.Format) error {
	g, err := p.GraphFromSources(ctx, names)
	if err != nil {
		return err
	}
	return rdf.Serialize(w, g, format)
}

// RDFFromSource is [Processor.RDFFromSources] with a single source.
func (p *Processor) RDFFromSource(ctx context.Context, w io.Writer, name string, format rdf.Format) error {
	return p.RDFFromSources(ctx, w, []string{name}, format)
}

// RDFFromReader converts the document read from r and writes its graph
// in the given format.
func (p *Processor) RDFFromReader(ctx context.Context, w io.Writer, r io.Reader, base string, format rdf.Format) error {
	g := p.NewGraph()
	if err := p.GraphFromReader(ctx, r, base, g); err != nil {
		return err
	}
	return rdf.Serialize(w, g, format)
}

func (p *Processor) open(ctx context.Context, name string) (*source.Source, error) {
	return p.opener.Open(ctx, name)
}

func (p *Processor) openFailure(g *rdf.Graph, name string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := http.StatusInternalServerError
	var httpErr *source.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
	}
	return p.fail(g, name, status, err)
}

func (p *Processor) convert(ctx context.Context, src *source.Source, g *rdf.Graph) error {
	err := p.GraphFromNode(ctx, src.Root, src.Base, g)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return p.fail(g, src.Name, http.StatusBadRequest, err)
}

// fail records a failure. It returns the failure as an [*Error], or
// adds its description to g and returns nil when the processor
// produces RDF output.
func (p *Processor) fail(g *rdf.Graph, uri string, status int, err error) error {
	p.setStatus(status)
	e := &Error{URI: uri, Status: status, Err: err}

	p.Log().Warn("distiller error",
		slog.String("uri", uri),
		slog.Int("status", status),
		slog.Any("err", err),
	)

	if !p.rdfOutput || g == nil {
		return e
	}
	p.errorGraph(g, e)
	return nil
}

// errorGraph adds the description of an error to g.
func (p *Processor) errorGraph(g *rdf.Graph, e *Error) {
	g.BindPrefix("dcterms", rdf.NSDCTerms)
	g.BindPrefix("xsd", rdf.NSXSD)
	g.BindPrefix("ht", rdf.NSHTTP)
	g.BindPrefix("distiller", NSDistiller)

	node := p.bnodes.New()
	g.AddTriple(node, rdf.RDFType, rdf.IRI(NSDistiller+"Error"))
	g.AddTriple(node, rdf.NSDCTerms+"identifier", rdf.NewLiteral(uuid.NewString()))
	g.AddTriple(node, rdf.NSDCTerms+"description", rdf.NewLiteral(e.Message()))
	g.AddTriple(node, rdf.NSDCTerms+"date", rdf.NewTypedLiteral(
		p.now().UTC().Format(time.RFC3339), rdf.XSDDateTime,
	))

	if e.URI != "" {
		req := p.bnodes.New()
		g.AddTriple(node, NSDistiller+"context", req)
		g.AddTriple(req, rdf.RDFType, rdf.IRI(rdf.NSHTTP+"Request"))
		g.AddTriple(req, rdf.NSHTTP+"requestURI", rdf.NewLiteral(e.URI))
	}

	if e.Status != http.StatusOK {
		rsp := p.bnodes.New()
		g.AddTriple(node, NSDistiller+"context", rsp)
		g.AddTriple(rsp, rdf.RDFType, rdf.IRI(rdf.NSHTTP+"Response"))
		g.AddTriple(rsp, rdf.NSHTTP+"responseCode", rdf.IRI(rdf.NSHTTP+strconv.Itoa(e.Status)))
	}
}
