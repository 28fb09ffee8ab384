// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package microdata

import (
	"log/slog"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/language"

	"codeberg.org/readeck/distiller/pkg/rdf"
)

// extractValue returns the value of a property element that is not an
// item. When the attribute holding the value is missing, or is an
// invalid URL, the element's text content is used instead.
func (c *Converter) extractValue(n *html.Node) rdf.Term {
	switch n.DataAtom {
	case atom.Meta:
		if v, ok := getAttr(n, "content"); ok {
			return c.textLiteral(n, v)
		}
	case atom.Audio, atom.Embed, atom.Iframe, atom.Img, atom.Source, atom.Track, atom.Video:
		if v, ok := c.urlAttr(n, "src"); ok {
			return v
		}
	case atom.A, atom.Area, atom.Link:
		if v, ok := c.urlAttr(n, "href"); ok {
			return v
		}
	case atom.Object:
		if v, ok := c.urlAttr(n, "data"); ok {
			return v
		}
	case atom.Data, atom.Meter:
		if v, ok := getAttr(n, "value"); ok {
			return rdf.NewLiteral(v)
		}
	case atom.Time:
		v, ok := getAttr(n, "datetime")
		if !ok {
			v = dom.TextContent(n)
		}
		if dt, ok := DatatypeOf(v); ok {
			return rdf.NewTypedLiteral(v, dt)
		}
		return rdf.NewLiteral(v)
	}

	return c.textLiteral(n, dom.TextContent(n))
}

// urlAttr returns an attribute as an absolute URL.
func (c *Converter) urlAttr(n *html.Node, name string) (rdf.IRI, bool) {
	v, ok := getAttr(n, name)
	if !ok {
		return "", false
	}
	u, ok := Resolve(v, c.base)
	if !ok {
		c.Log().Debug("invalid URL",
			slog.String("tag", dom.TagName(n)),
			slog.String("attr", name),
			slog.String("value", v),
		)
		return "", false
	}
	return rdf.IRI(u), true
}

// textLiteral returns a literal with the language of the element, if any.
func (c *Converter) textLiteral(n *html.Node, s string) rdf.Literal {
	lang := langOf(n)
	if lang == "" {
		return rdf.NewLiteral(s)
	}
	tag, ok := languageTag(lang)
	if !ok {
		c.Log().Debug("invalid language tag", slog.String("value", lang))
		return rdf.NewLiteral(s)
	}
	return rdf.NewLangLiteral(s, tag)
}

// languageTag returns the canonical form of a BCP 47 language tag.
// Underscores are accepted as separators.
func languageTag(s string) (string, bool) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
	if err != nil {
		return "", false
	}
	return tag.String(), true
}
