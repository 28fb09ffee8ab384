// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package rdf

import (
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Namespace is a prefix binding.
type Namespace struct {
	Prefix string
	URI    string
}

// Graph is a set of triples with prefix bindings.
// Adding a triple that already exists does nothing.
// A Graph is not safe for concurrent use.
type Graph struct {
	triples    []Triple
	index      map[Triple]struct{}
	namespaces []Namespace
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		index: map[Triple]struct{}{},
	}
}

// AddTriple adds a triple to the graph.
func (g *Graph) AddTriple(s Term, p IRI, o Term) {
	t := Triple{S: s, P: p, O: o}
	if _, ok := g.index[t]; ok {
		return
	}
	g.index[t] = struct{}{}
	g.triples = append(g.triples, t)
}

// Add adds a triple to the graph.
func (g *Graph) Add(t Triple) {
	g.AddTriple(t.S, t.P, t.O)
}

// Has returns true when the triple exists in the graph.
func (g *Graph) Has(s Term, p IRI, o Term) bool {
	_, ok := g.index[Triple{S: s, P: p, O: o}]
	return ok
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns an iterator over the triples, in insertion order.
func (g *Graph) Triples() iter.Seq[Triple] {
	return func(yield func(Triple) bool) {
		for _, t := range g.triples {
			if !yield(t) {
				return
			}
		}
	}
}

// Match returns the triples matching a pattern. A nil subject, empty
// predicate or nil object matches anything.
func (g *Graph) Match(s Term, p IRI, o Term) []Triple {
	res := []Triple{}
	for _, t := range g.triples {
		if s != nil && t.S != s {
			continue
		}
		if p != "" && t.P != p {
			continue
		}
		if o != nil && t.O != o {
			continue
		}
		res = append(res, t)
	}
	return res
}

// Subjects returns the distinct subjects, in order of first appearance.
func (g *Graph) Subjects() []Term {
	seen := map[Term]struct{}{}
	res := []Term{}
	for _, t := range g.triples {
		if _, ok := seen[t.S]; !ok {
			seen[t.S] = struct{}{}
			res = append(res, t.S)
		}
	}
	return res
}

// BindPrefix binds a prefix to a namespace. A prefix that is already
// bound is replaced. A namespace that is already bound under another
// prefix is ignored.
func (g *Graph) BindPrefix(prefix, ns string) {
	if ns == "" {
		return
	}
	for i, x := range g.namespaces {
		if x.URI == ns {
			return
		}
		if x.Prefix == prefix {
			g.namespaces[i].URI = ns
			return
		}
	}
	g.namespaces = append(g.namespaces, Namespace{Prefix: prefix, URI: ns})
}

// BindNamespace binds a namespace under a well known or a generated
// prefix, avoiding collisions with existing bindings.
func (g *Graph) BindNamespace(ns string) {
	if _, ok := g.PrefixOf(ns); ok {
		return
	}
	base := prefixFor(ns)
	prefix := base
	for i := 1; g.prefixUsed(prefix); i++ {
		prefix = base + strconv.Itoa(i)
	}
	g.BindPrefix(prefix, ns)
}

// Namespaces returns the prefix bindings, sorted by prefix.
func (g *Graph) Namespaces() []Namespace {
	res := slices.Clone(g.namespaces)
	slices.SortFunc(res, func(a, b Namespace) int {
		return strings.Compare(a.Prefix, b.Prefix)
	})
	return res
}

// PrefixOf returns the prefix bound to a namespace.
func (g *Graph) PrefixOf(ns string) (string, bool) {
	for _, x := range g.namespaces {
		if x.URI == ns {
			return x.Prefix, true
		}
	}
	return "", false
}

func (g *Graph) prefixUsed(prefix string) bool {
	for _, x := range g.namespaces {
		if x.Prefix == prefix {
			return true
		}
	}
	return false
}
