// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package microdata

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"codeberg.org/readeck/distiller/pkg/rdf"
)

// Option is a [Converter] option.
type Option func(*Converter)

// WithLogger sets the converter's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithBlankNodes sets the allocator used for anonymous subjects.
// Converters sharing a sink must share an allocator.
func WithBlankNodes(a *rdf.BlankNodeAllocator) Option {
	return func(c *Converter) {
		c.bnodes = a
	}
}

// Stats holds the counters of a conversion.
type Stats struct {
	Items   int
	Triples int
	Dropped int
}

// Converter converts the microdata of one document.
// It must not be used concurrently.
type Converter struct {
	doc    *Document
	sink   Sink
	base   *url.URL
	bnodes *rdf.BlankNodeAllocator
	logger *slog.Logger
	stats  Stats

	// memory maps every item already seen to its subject.
	// An item is recorded before its properties are processed.
	memory map[*html.Node]rdf.Term
}

// itemState is an item whose properties are still to be processed.
type itemState struct {
	node       *html.Node
	subject    rdf.Term
	vocabulary string
}

// NewConverter returns a [Converter] for a document tree.
func NewConverter(root *html.Node, sink Sink, base string, options ...Option) (*Converter, error) {
	if sink == nil {
		return nil, ErrNoSink
	}
	doc, err := NewDocument(root)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBase, err)
	}

	c := &Converter{
		doc:    doc,
		sink:   sink,
		base:   u,
		logger: slog.Default(),
		memory: map[*html.Node]rdf.Term{},
	}
	for _, f := range options {
		f(c)
	}
	if c.bnodes == nil {
		c.bnodes = &rdf.BlankNodeAllocator{}
	}

	return c, nil
}

// Log returns the converter's logger.
func (c *Converter) Log() *slog.Logger {
	return c.logger
}

// Stats returns the conversion counters.
func (c *Converter) Stats() Stats {
	return c.stats
}

// Convert processes every top-level item of the document, in tree order.
// The context is checked between items and between properties.
func (c *Converter) Convert(ctx context.Context) error {
	c.sink.BindPrefix("rdf", rdf.NSRDF)
	c.sink.BindPrefix("xsd", rdf.NSXSD)

	items, err := c.doc.TopLevelItems()
	if err != nil {
		return err
	}

	for _, n := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.Process(ctx, n); err != nil {
			return err
		}
	}

	c.Log().Debug("microdata conversion done",
		slog.Int("items", c.stats.Items),
		slog.Int("triples", c.stats.Triples),
		slog.Int("dropped", c.stats.Dropped),
	)
	return nil
}

// Process emits the triples of an item and of all the items reachable
// from its properties, and returns its subject. An item that was
// already processed only returns its subject.
func (c *Converter) Process(ctx context.Context, node *html.Node) (rdf.Term, error) {
	if node == nil || node.Type != html.ElementNode {
		return nil, ErrNoItem
	}
	return c.process(ctx, node, "")
}

func (c *Converter) process(ctx context.Context, node *html.Node, vocabulary string) (rdf.Term, error) {
	subject, created := c.subjectOf(node)
	if !created {
		return subject, nil
	}

	// Nested items are pushed on a work list instead of being processed
	// recursively. Their subject exists as soon as they are found.
	pending := []itemState{c.startItem(node, subject, vocabulary)}
	for len(pending) > 0 {
		item := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		for _, prop := range c.doc.Properties(item.node) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			var value rdf.Term
			for _, name := range propertyNames(prop) {
				predicate, ok := PredicateFor(item.vocabulary, name)
				if !ok {
					c.stats.Dropped++
					c.Log().Debug("property dropped",
						slog.String("name", name),
						slog.String("vocabulary", item.vocabulary),
					)
					continue
				}

				if value == nil {
					if hasAttr(prop, "itemscope") {
						nested, created := c.subjectOf(prop)
						if created {
							pending = append(pending, c.startItem(prop, nested, item.vocabulary))
						}
						value = nested
					} else {
						value = c.extractValue(prop)
					}
				}

				c.emit(item.subject, predicate, value)
			}
		}
	}

	return subject, nil
}

// subjectOf returns the subject of an item and true when it was
// created by this call.
func (c *Converter) subjectOf(node *html.Node) (rdf.Term, bool) {
	if s, ok := c.memory[node]; ok {
		return s, false
	}

	var subject rdf.Term
	if id, ok := getAttr(node, "itemid"); ok {
		if u, ok := Resolve(id, c.base); ok {
			subject = rdf.IRI(u)
		} else {
			c.Log().Debug("invalid itemid", slog.String("value", id))
		}
	}
	if subject == nil {
		subject = c.bnodes.New()
	}

	c.memory[node] = subject
	c.stats.Items++
	return subject, true
}

// startItem emits the type triples of a new item and returns its
// processing state. An item without a valid type uses the vocabulary
// of the item it belongs to.
func (c *Converter) startItem(node *html.Node, subject rdf.Term, inherited string) itemState {
	types := []string{}
	if s, ok := getAttr(node, "itemtype"); ok {
		for t := range strings.FieldsSeq(s) {
			if !IsAbsolute(t) {
				c.Log().Debug("invalid itemtype", slog.String("value", t))
				continue
			}
			types = append(types, t)
			c.emit(subject, rdf.RDFType, rdf.IRI(t))
		}
	}

	vocabulary := VocabularyFor(types)
	if vocabulary == "" {
		vocabulary = inherited
	} else if b, ok := c.sink.(namespaceBinder); ok {
		b.BindNamespace(vocabulary)
	} else if prefix, ok := rdf.WellKnownPrefixes[vocabulary]; ok {
		c.sink.BindPrefix(prefix, vocabulary)
	}

	return itemState{
		node:       node,
		subject:    subject,
		vocabulary: vocabulary,
	}
}

func (c *Converter) emit(s rdf.Term, p rdf.IRI, o rdf.Term) {
	c.stats.Triples++
	c.sink.AddTriple(s, p, o)
}
