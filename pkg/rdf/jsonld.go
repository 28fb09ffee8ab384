// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package rdf

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/piprate/json-gold/ld"
)

// writeJSONLD converts the graph to JSON-LD with json-gold and compacts
// the result using the graph's prefixes.
func writeJSONLD(w io.Writer, g *Graph) error {
	proc := ld.NewJsonLdProcessor()

	doc, err := proc.FromRDF(dataset(g), ld.NewJsonLdOptions(""))
	if err != nil {
		return fmt.Errorf("json-ld conversion: %w", err)
	}

	var res any = doc
	if namespaces := g.Namespaces(); len(namespaces) > 0 {
		ctx := map[string]any{}
		for _, ns := range namespaces {
			ctx[ns.Prefix] = ns.URI
		}
		res, err = proc.Compact(doc, map[string]any{"@context": ctx}, ld.NewJsonLdOptions(""))
		if err != nil {
			return fmt.Errorf("json-ld compaction: %w", err)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// dataset returns the graph as a json-gold default graph.
func dataset(g *Graph) *ld.RDFDataset {
	ds := ld.NewRDFDataset()
	quads := []*ld.Quad{}
	for t := range g.Triples() {
		quads = append(quads, ld.NewQuad(ldNode(t.S), ld.NewIRI(string(t.P)), ldNode(t.O), "@default"))
	}
	ds.Graphs["@default"] = quads
	return ds
}

func ldNode(t Term) ld.Node {
	switch v := t.(type) {
	case IRI:
		return ld.NewIRI(string(v))
	case BlankNode:
		return ld.NewBlankNode(v.String())
	case Literal:
		switch {
		case v.Lang != "":
			return ld.NewLiteral(v.Lexical, ld.RDFLangString, v.Lang)
		case v.Datatype != "":
			return ld.NewLiteral(v.Lexical, string(v.Datatype), "")
		}
		return ld.NewLiteral(v.Lexical, ld.XSDString, "")
	}
	return nil
}
