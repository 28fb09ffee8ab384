// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package rdf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

func writeRDFXML(w io.Writer, g *Graph) error {
	// Every predicate needs a namespace prefix. Missing ones are
	// generated for this output only.
	prefixes := map[string]string{NSRDF: "rdf"}
	namespaces := []Namespace{{Prefix: "rdf", URI: NSRDF}}
	usedPrefix := map[string]bool{"rdf": true}
	for t := range g.Triples() {
		ns, _, ok := SplitIRI(t.P)
		if !ok {
			return fmt.Errorf("cannot serialize predicate %s as XML", t.P)
		}
		if _, ok := prefixes[ns]; ok {
			continue
		}
		p, ok := g.PrefixOf(ns)
		if !ok || usedPrefix[p] || p == "" {
			for i := len(namespaces); ; i++ {
				p = "ns" + strconv.Itoa(i)
				if !usedPrefix[p] {
					break
				}
			}
		}
		prefixes[ns] = p
		usedPrefix[p] = true
		namespaces = append(namespaces, Namespace{Prefix: p, URI: ns})
	}

	bw := new(bytes.Buffer)
	bw.WriteString(xml.Header)
	bw.WriteString("<rdf:RDF")
	for _, ns := range namespaces {
		bw.WriteString("\n  xmlns:" + ns.Prefix + `="` + xmlEscape(ns.URI) + `"`)
	}
	bw.WriteString(">\n")

	for _, s := range g.Subjects() {
		bw.WriteString("  <rdf:Description " + xmlSubject(s) + ">\n")
		for _, t := range g.Match(s, "", nil) {
			ns, local, _ := SplitIRI(t.P)
			name := prefixes[ns] + ":" + local
			bw.WriteString("    <" + name)
			switch o := t.O.(type) {
			case IRI:
				bw.WriteString(` rdf:resource="` + xmlEscape(string(o)) + `"/>` + "\n")
			case BlankNode:
				bw.WriteString(` rdf:nodeID="` + xmlEscape(string(o)) + `"/>` + "\n")
			case Literal:
				switch {
				case o.Lang != "":
					bw.WriteString(` xml:lang="` + xmlEscape(o.Lang) + `"`)
				case o.Datatype != "":
					bw.WriteString(` rdf:datatype="` + xmlEscape(string(o.Datatype)) + `"`)
				}
				bw.WriteString(">" + xmlEscape(o.Lexical) + "</" + name + ">\n")
			}
		}
		bw.WriteString("  </rdf:Description>\n")
	}

	bw.WriteString("</rdf:RDF>\n")

	_, err := bw.WriteTo(w)
	return err
}

func xmlSubject(s Term) string {
	if b, ok := s.(BlankNode); ok {
		return `rdf:nodeID="` + xmlEscape(string(b)) + `"`
	}
	return `rdf:about="` + xmlEscape(s.String()) + `"`
}

func xmlEscape(s string) string {
	buf := new(bytes.Buffer)
	_ = xml.EscapeText(buf, []byte(s))
	return buf.String()
}
