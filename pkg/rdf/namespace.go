// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package rdf

import (
	"strings"
	"unicode/utf8"
)

// Well known namespaces.
const (
	NSRDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSRDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	NSXSD     = "http://www.w3.org/2001/XMLSchema#"
	NSDCTerms = "http://purl.org/dc/terms/"
	NSFOAF    = "http://xmlns.com/foaf/0.1/"
	NSSKOS    = "http://www.w3.org/2004/02/skos/core#"
	NSHTTP    = "http://www.w3.org/2006/http#"
	NSSchema  = "http://schema.org/"
)

// Common terms.
const (
	RDFType IRI = NSRDF + "type"

	XSDString     IRI = NSXSD + "string"
	XSDDate       IRI = NSXSD + "date"
	XSDTime       IRI = NSXSD + "time"
	XSDDateTime   IRI = NSXSD + "dateTime"
	XSDDuration   IRI = NSXSD + "duration"
	XSDGYear      IRI = NSXSD + "gYear"
	XSDGYearMonth IRI = NSXSD + "gYearMonth"
	XSDGMonthDay  IRI = NSXSD + "gMonthDay"
)

// WellKnownPrefixes maps some vocabulary namespaces to their usual prefix.
var WellKnownPrefixes = map[string]string{
	NSRDF:                               "rdf",
	NSRDFS:                              "rdfs",
	NSXSD:                               "xsd",
	NSDCTerms:                           "dcterms",
	NSFOAF:                              "foaf",
	NSSKOS:                              "skos",
	NSHTTP:                              "http",
	NSSchema:                            "schema",
	"https://schema.org/":               "schema",
	"http://purl.org/goodrelations/v1#": "gr",
	"http://creativecommons.org/ns#":    "cc",
	"http://rdfs.org/sioc/ns#":          "sioc",
	"http://www.w3.org/2006/vcard/ns#":  "vcard",
	"http://data-vocabulary.org/":       "dv",
	"http://ogp.me/ns#":                 "og",
	"http://www.w3.org/ns/prov#":        "prov",
	"http://www.w3.org/2002/07/owl#":    "owl",
	"http://purl.org/dc/elements/1.1/":  "dc",
}

// SplitIRI splits an IRI into a namespace and a local name. The local
// name is the longest suffix that is a valid XML name without colons,
// so that the result can be used for prefixed names and XML elements.
// It returns false when no such split exists.
func SplitIRI(iri IRI) (ns string, local string, ok bool) {
	s := string(iri)
	i := len(s)
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		if !isNameChar(r) {
			break
		}
		i -= size
	}
	// The local name must start with a name start character.
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if isNameStartChar(r) {
			break
		}
		i += size
	}
	if i == 0 || i >= len(s) {
		return "", "", false
	}
	return s[:i], s[i:], true
}

func isNameStartChar(r rune) bool {
	switch {
	case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		return true
	case r < 0xC0:
		return false
	}
	return (r <= 0x2FF && r != 0xD7 && r != 0xF7) ||
		(0x370 <= r && r <= 0x1FFF && r != 0x37E) ||
		r == 0x200C || r == 0x200D ||
		(0x2070 <= r && r <= 0x218F) ||
		(0x2C00 <= r && r <= 0x2FEF) ||
		(0x3001 <= r && r <= 0xD7FF) ||
		(0xF900 <= r && r <= 0xFDCF) ||
		(0xFDF0 <= r && r <= 0xFFFD) ||
		(0x10000 <= r && r <= 0xEFFFF)
}

func isNameChar(r rune) bool {
	return isNameStartChar(r) ||
		r == '-' || r == '.' || ('0' <= r && r <= '9') ||
		r == 0xB7 || (0x300 <= r && r <= 0x36F) || r == 0x203F || r == 0x2040
}

// prefixFor returns a prefix for a namespace, either a well known one or
// one derived from its last path segment.
func prefixFor(ns string) string {
	if p, ok := WellKnownPrefixes[ns]; ok {
		return p
	}
	s := strings.TrimRight(ns, "/#_")
	if i := strings.LastIndexAny(s, "/#:"); i >= 0 {
		s = s[i+1:]
	}
	b := new(strings.Builder)
	for _, r := range strings.ToLower(s) {
		if isNameChar(r) && r != '.' {
			b.WriteRune(r)
		}
	}
	p := b.String()
	if r, _ := utf8.DecodeRuneInString(p); p == "" || !isNameStartChar(r) {
		p = "ns" + p
	}
	return p
}
