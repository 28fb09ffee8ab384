// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package rdf

import (
	"io"

	rdfgo "github.com/geoknoesis/rdf-go/rdf"
)

// writeStatements writes the graph, grouped by subject, with an rdf-go
// writer.
func writeStatements(w io.Writer, g *Graph, format rdfgo.Format) error {
	enc, err := rdfgo.NewWriter(w, format)
	if err != nil {
		return err
	}

	for _, s := range g.Subjects() {
		for _, t := range g.Match(s, "", nil) {
			err = enc.Write(rdfgo.Statement{
				S: goTerm(t.S),
				P: rdfgo.IRI{Value: string(t.P)},
				O: goTerm(t.O),
			})
			if err != nil {
				return err
			}
		}
	}

	if err = enc.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

func goTerm(t Term) rdfgo.Term {
	switch v := t.(type) {
	case IRI:
		return rdfgo.IRI{Value: string(v)}
	case BlankNode:
		return rdfgo.BlankNode{ID: string(v)}
	case Literal:
		l := rdfgo.Literal{Lexical: v.Lexical, Lang: v.Lang}
		if v.Lang == "" && v.Datatype != "" && v.Datatype != XSDString {
			l.Datatype = rdfgo.IRI{Value: string(v.Datatype)}
		}
		return l
	}
	return nil
}
