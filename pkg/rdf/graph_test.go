// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package rdf_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/readeck/distiller/pkg/rdf"
)

func TestGraph(t *testing.T) {
	t.Run("duplicates", func(t *testing.T) {
		assert := require.New(t)
		g := rdf.NewGraph()
		g.AddTriple(rdf.BlankNode("b0"), "http://schema.org/name", rdf.NewLiteral("Ann"))
		g.AddTriple(rdf.BlankNode("b0"), "http://schema.org/name", rdf.NewLiteral("Ann"))
		g.AddTriple(rdf.BlankNode("b0"), "http://schema.org/name", rdf.NewLangLiteral("Ann", "en"))
		g.Add(rdf.Triple{S: rdf.BlankNode("b0"), P: "http://schema.org/name", O: rdf.NewLiteral("Ann")})

		assert.Equal(2, g.Len())
		assert.True(g.Has(rdf.BlankNode("b0"), "http://schema.org/name", rdf.NewLangLiteral("Ann", "en")))
		assert.False(g.Has(rdf.IRI("b0"), "http://schema.org/name", rdf.NewLiteral("Ann")))
	})

	t.Run("match", func(t *testing.T) {
		assert := require.New(t)
		g := rdf.NewGraph()
		g.AddTriple(rdf.IRI("http://example.org/a"), rdf.RDFType, rdf.IRI("http://schema.org/Thing"))
		g.AddTriple(rdf.IRI("http://example.org/a"), "http://schema.org/name", rdf.NewLiteral("A"))
		g.AddTriple(rdf.IRI("http://example.org/b"), "http://schema.org/name", rdf.NewLiteral("B"))

		assert.Len(g.Match(nil, "", nil), 3)
		assert.Len(g.Match(rdf.IRI("http://example.org/a"), "", nil), 2)
		assert.Len(g.Match(nil, "http://schema.org/name", nil), 2)
		assert.Len(g.Match(nil, "", rdf.NewLiteral("B")), 1)
		assert.Empty(g.Match(rdf.IRI("http://example.org/c"), "", nil))

		assert.Equal([]rdf.Term{
			rdf.IRI("http://example.org/a"),
			rdf.IRI("http://example.org/b"),
		}, g.Subjects())

		n := 0
		for range g.Triples() {
			n++
		}
		assert.Equal(3, n)
	})

	t.Run("prefixes", func(t *testing.T) {
		assert := require.New(t)
		g := rdf.NewGraph()
		g.BindPrefix("schema", rdf.NSSchema)
		g.BindPrefix("s", rdf.NSSchema)
		g.BindPrefix("ex", "http://example.org/")
		g.BindPrefix("ex", "http://example.net/")
		g.BindPrefix("empty", "")
		g.BindNamespace(rdf.NSFOAF)
		g.BindNamespace("http://example.com/vocab#")
		g.BindNamespace("http://other.com/vocab/")
		g.BindNamespace(rdf.NSSchema)

		assert.Equal([]rdf.Namespace{
			{Prefix: "ex", URI: "http://example.net/"},
			{Prefix: "foaf", URI: rdf.NSFOAF},
			{Prefix: "schema", URI: rdf.NSSchema},
			{Prefix: "vocab", URI: "http://example.com/vocab#"},
			{Prefix: "vocab1", URI: "http://other.com/vocab/"},
		}, g.Namespaces())

		g.BindNamespace("http://example.org/ns/日本/")
		prefix, ok := g.PrefixOf("http://example.org/ns/日本/")
		assert.True(ok)
		assert.Equal("日本", prefix)

		_, ok = g.PrefixOf("http://example.org/Person")
		assert.False(ok)
	})
}

func TestSplitIRI(t *testing.T) {
	tests := []struct {
		iri   rdf.IRI
		ns    string
		local string
		ok    bool
	}{
		{"http://schema.org/name", "http://schema.org/", "name", true},
		{"http://www.w3.org/2006/vcard/ns#fn", "http://www.w3.org/2006/vcard/ns#", "fn", true},
		{"http://example.org/v1.2/item-3", "http://example.org/v1.2/", "item-3", true},
		{"http://example.org/2020abc", "http://example.org/2020", "abc", true},
		{"http://example.org/ns#名前", "http://example.org/ns#", "名前", true},
		{"http://example.org/été", "http://example.org/", "été", true},
		{"http://example.org/ns#a·b", "http://example.org/ns#", "a·b", true},
		{"http://example.org/123", "", "", false},
		{"http://example.org/", "", "", false},
		{"name", "", "", false},
	}

	for _, test := range tests {
		t.Run(string(test.iri), func(t *testing.T) {
			assert := require.New(t)
			ns, local, ok := rdf.SplitIRI(test.iri)
			assert.Equal(test.ok, ok)
			assert.Equal(test.ns, ns)
			assert.Equal(test.local, local)
		})
	}
}

func TestBlankNodeAllocator(t *testing.T) {
	assert := require.New(t)
	a := &rdf.BlankNodeAllocator{}
	assert.Equal(rdf.BlankNode("b0"), a.New())
	assert.Equal(rdf.BlankNode("b1"), a.New())
	assert.Equal("_:b2", a.New().String())

	res := make([][]rdf.BlankNode, 10)
	wg := sync.WaitGroup{}
	for i := range res {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				res[i] = append(res[i], a.New())
			}
		}()
	}
	wg.Wait()

	seen := map[rdf.BlankNode]bool{}
	for _, list := range res {
		for _, b := range list {
			assert.False(seen[b], b)
			seen[b] = true
		}
	}
	assert.Len(seen, 1000)
}

func TestTerms(t *testing.T) {
	assert := require.New(t)
	assert.Equal(rdf.KindIRI, rdf.IRI("http://example.org/").Kind())
	assert.Equal(rdf.KindBlankNode, rdf.BlankNode("b0").Kind())
	assert.Equal(rdf.KindLiteral, rdf.NewLiteral("x").Kind())

	assert.Equal(`"x"`, rdf.NewLiteral("x").String())
	assert.Equal(`"x"@fr`, rdf.NewLangLiteral("x", "fr").String())
	assert.Equal(`"2020"^^<http://www.w3.org/2001/XMLSchema#gYear>`,
		rdf.NewTypedLiteral("2020", rdf.XSDGYear).String())
	assert.Equal(`_:b0 http://schema.org/name "x"`, rdf.Triple{
		S: rdf.BlankNode("b0"),
		P: "http://schema.org/name",
		O: rdf.NewLiteral("x"),
	}.String())
}
