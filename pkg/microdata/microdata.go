// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package microdata converts HTML microdata to RDF triples, following the
// W3C microdata to RDF mapping.
//
// Items (elements with itemscope) become subjects, identified by their
// itemid or by a blank node. Each itemprop of an item yields a triple whose
// predicate is either the absolute property name or the property name
// appended to the vocabulary of the item's type. Values depend on the
// element carrying the property (links, media, time, meta, etc.).
//
// The conversion never fails on malformed microdata. Invalid URIs,
// unknown itemref ids and property names that cannot be expanded are
// silently skipped.
package microdata

import (
	"context"
	"errors"

	"golang.org/x/net/html"

	"codeberg.org/readeck/distiller/pkg/rdf"
)

var (
	// ErrNoDocument is returned when there is no document tree to convert.
	ErrNoDocument = errors.New("no document")
	// ErrNoItem is returned when an item to process is not an element.
	ErrNoItem = errors.New("not an item element")
	// ErrNoSink is returned when there is no triple sink.
	ErrNoSink = errors.New("no triple sink")
	// ErrInvalidBase is returned when the base URI cannot be parsed.
	ErrInvalidBase = errors.New("invalid base URI")
)

// Sink receives the triples produced by a conversion.
// Duplicate triples can be added; removing them is up to the sink.
type Sink interface {
	AddTriple(s rdf.Term, p rdf.IRI, o rdf.Term)
	BindPrefix(prefix, ns string)
}

// namespaceBinder is implemented by sinks that can choose a prefix for
// a namespace, such as [rdf.Graph].
type namespaceBinder interface {
	BindNamespace(ns string)
}

// Convert converts all the items of a document tree and sends the
// resulting triples to sink. Relative URLs are resolved against base.
func Convert(ctx context.Context, root *html.Node, sink Sink, base string, options ...Option) error {
	c, err := NewConverter(root, sink, base, options...)
	if err != nil {
		return err
	}
	return c.Convert(ctx)
}
