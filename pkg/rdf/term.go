// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package rdf provides a minimal RDF graph model and its serializations.
// A [Graph] collects triples and prefix bindings; [Serialize] writes it
// as Turtle, N-Triples, RDF/XML or JSON-LD.
package rdf

import (
	"strconv"
	"sync/atomic"
)

// TermKind identifies a term type.
type TermKind uint8

const (
	// KindIRI is an IRI term.
	KindIRI TermKind = iota + 1
	// KindBlankNode is an anonymous node.
	KindBlankNode
	// KindLiteral is a literal value.
	KindLiteral
)

// Term is a value that can appear in a triple.
type Term interface {
	Kind() TermKind
	String() string
}

// IRI is an absolute IRI.
type IRI string

// Kind returns [KindIRI].
func (i IRI) Kind() TermKind { return KindIRI }

func (i IRI) String() string { return string(i) }

// BlankNode is an anonymous node, identified by an opaque label that
// is only meaningful within one graph.
type BlankNode string

// Kind returns [KindBlankNode].
func (b BlankNode) Kind() TermKind { return KindBlankNode }

func (b BlankNode) String() string { return "_:" + string(b) }

// Literal is a literal value with an optional datatype or language.
// A literal with a language never has a datatype.
type Literal struct {
	Lexical  string
	Datatype IRI
	Lang     string
}

// Kind returns [KindLiteral].
func (l Literal) Kind() TermKind { return KindLiteral }

func (l Literal) String() string {
	switch {
	case l.Lang != "":
		return strconv.Quote(l.Lexical) + "@" + l.Lang
	case l.Datatype != "":
		return strconv.Quote(l.Lexical) + "^^<" + string(l.Datatype) + ">"
	}
	return strconv.Quote(l.Lexical)
}

// NewLiteral returns a plain literal.
func NewLiteral(s string) Literal {
	return Literal{Lexical: s}
}

// NewLangLiteral returns a literal with a language tag.
func NewLangLiteral(s, lang string) Literal {
	return Literal{Lexical: s, Lang: lang}
}

// NewTypedLiteral returns a literal with a datatype.
func NewTypedLiteral(s string, datatype IRI) Literal {
	return Literal{Lexical: s, Datatype: datatype}
}

// Triple is one statement of a graph.
type Triple struct {
	S Term
	P IRI
	O Term
}

func (t Triple) String() string {
	return t.S.String() + " " + t.P.String() + " " + t.O.String()
}

// BlankNodeAllocator mints blank node labels. The zero value is ready
// to use and starts at "b0". It is safe for concurrent use.
type BlankNodeAllocator struct {
	n atomic.Uint64
}

// New returns a blank node that was never returned before by this allocator.
func (a *BlankNodeAllocator) New() BlankNode {
	return BlankNode("b" + strconv.FormatUint(a.n.Add(1)-1, 10))
}
