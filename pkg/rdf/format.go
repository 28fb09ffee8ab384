// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package rdf

import (
	"fmt"
	"io"
	"strings"

	rdfgo "github.com/geoknoesis/rdf-go/rdf"
)

// Format is a graph serialization format.
type Format string

const (
	// Turtle is the default format.
	Turtle Format = "turtle"
	// NTriples is the line based format.
	NTriples Format = "nt"
	// RDFXML is the RDF/XML format.
	RDFXML Format = "xml"
	// JSONLD is the JSON-LD format.
	JSONLD Format = "json-ld"
)

var formatAliases = map[string]Format{
	"turtle":     Turtle,
	"ttl":        Turtle,
	"n3":         Turtle,
	"nt":         NTriples,
	"ntriples":   NTriples,
	"xml":        RDFXML,
	"pretty-xml": RDFXML,
	"rdfxml":     RDFXML,
	"json-ld":    JSONLD,
	"jsonld":     JSONLD,
	"json":       JSONLD,
}

// ParseFormat returns the format matching a name or one of its aliases.
// Unknown names yield [Turtle], so any user provided value ends up in a
// known format.
func ParseFormat(name string) Format {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f
	}
	return Turtle
}

// LookupFormat is like [ParseFormat] but reports whether the name was known.
func LookupFormat(name string) (Format, bool) {
	f, ok := formatAliases[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// ContentType returns the media type of the format.
func (f Format) ContentType() string {
	switch f {
	case NTriples:
		return "application/n-triples"
	case RDFXML:
		return "application/rdf+xml"
	case JSONLD:
		return "application/ld+json"
	}
	return "text/turtle"
}

// Extension returns the usual file extension of the format.
func (f Format) Extension() string {
	switch f {
	case NTriples:
		return ".nt"
	case RDFXML:
		return ".rdf"
	case JSONLD:
		return ".jsonld"
	}
	return ".ttl"
}

// FormatFromContentType returns the format of a media type.
func FormatFromContentType(ct string) (Format, bool) {
	ct, _, _ = strings.Cut(ct, ";")
	switch strings.ToLower(strings.TrimSpace(ct)) {
	case "text/turtle", "text/rdf+n3", "text/n3":
		return Turtle, true
	case "application/n-triples":
		return NTriples, true
	case "application/rdf+xml":
		return RDFXML, true
	case "application/ld+json", "application/json":
		return JSONLD, true
	}
	return "", false
}

// Formats returns all the formats, the default one first.
func Formats() []Format {
	return []Format{Turtle, NTriples, RDFXML, JSONLD}
}

// ContentTypes returns the media types of all the formats, the
// default one first.
func ContentTypes() []string {
	res := []string{}
	for _, f := range Formats() {
		res = append(res, f.ContentType())
	}
	return res
}

// Serialize writes a graph in the given format.
func Serialize(w io.Writer, g *Graph, f Format) error {
	switch f {
	case Turtle:
		return writeStatements(w, g, rdfgo.FormatTurtle)
	case NTriples:
		return writeStatements(w, g, rdfgo.FormatNTriples)
	case RDFXML:
		return writeRDFXML(w, g)
	case JSONLD:
		return writeJSONLD(w, g)
	}
	return fmt.Errorf("unknown format %q", f)
}
