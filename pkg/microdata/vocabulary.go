// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package microdata

import (
	"strings"

	"codeberg.org/readeck/distiller/pkg/rdf"
)

// VocabularyFor returns the vocabulary given by the first absolute
// type of a list. It is the type URI up to and including its last "/"
// or "#". A type URI without any of those is its own vocabulary.
// It returns an empty string when no type is absolute.
func VocabularyFor(types []string) string {
	for _, t := range types {
		if !IsAbsolute(t) {
			continue
		}
		if i := strings.LastIndexAny(t, "/#"); i >= 0 {
			return t[:i+1]
		}
		return t
	}
	return ""
}

// PredicateFor returns the predicate URI of a property name.
// A name with a ":" is an absolute URI and is returned as is when
// valid. Other names are appended to the vocabulary, with a "#"
// separator unless the vocabulary already ends with "/", "#" or "_".
// It returns false when no valid predicate can be made, including when
// there is no vocabulary for a short name.
func PredicateFor(vocabulary, name string) (rdf.IRI, bool) {
	if strings.Contains(name, ":") {
		if !IsAbsolute(name) {
			return "", false
		}
		return rdf.IRI(name), true
	}

	if vocabulary == "" || name == "" {
		return "", false
	}

	p := vocabulary
	if !strings.HasSuffix(p, "/") && !strings.HasSuffix(p, "#") && !strings.HasSuffix(p, "_") {
		p += "#"
	}
	p += name

	if !IsAbsolute(p) {
		return "", false
	}
	return rdf.IRI(p), true
}
