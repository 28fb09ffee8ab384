// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package microdata

import (
	"cmp"
	"iter"
	"slices"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// topLevelItems selects the elements with itemscope that are not
// themselves a property value, including the context node.
const topLevelItems = "descendant-or-self::*[@itemscope and not(@itemprop)]"

// Document is an HTML tree indexed for microdata processing.
type Document struct {
	root  *html.Node
	ids   map[string]*html.Node
	order map[*html.Node]int
}

// NewDocument indexes the elements of a tree, in tree order.
func NewDocument(root *html.Node) (*Document, error) {
	if root == nil {
		return nil, ErrNoDocument
	}

	d := &Document{
		root:  root,
		ids:   map[string]*html.Node{},
		order: map[*html.Node]int{},
	}

	for n := range iterNodes(root) {
		if n.Type != html.ElementNode {
			continue
		}
		d.order[n] = len(d.order)
		if id, _ := getAttr(n, "id"); id != "" {
			if _, ok := d.ids[id]; !ok {
				d.ids[id] = n
			}
		}
	}

	return d, nil
}

// Root returns the document's root node.
func (d *Document) Root() *html.Node {
	return d.root
}

// ElementByID returns the first element, in tree order, with the given id.
func (d *Document) ElementByID(id string) *html.Node {
	return d.ids[id]
}

// TopLevelItems returns the top-level items in tree order.
func (d *Document) TopLevelItems() ([]*html.Node, error) {
	nodes, err := htmlquery.QueryAll(d.root, topLevelItems)
	if err != nil {
		return nil, err
	}
	d.sort(nodes)
	return nodes, nil
}

// Properties returns the property elements of an item, in tree order.
// They are the item's descendants with an itemprop, without crossing
// nested items, plus the elements referenced by itemref and their own
// descendants. An element is never visited twice, so an itemref to the
// item itself or to one of its ancestors contributes nothing new.
func (d *Document) Properties(item *html.Node) []*html.Node {
	memory := map[*html.Node]bool{item: true}
	pending := []*html.Node{}
	results := []*html.Node{}

	pending = appendChildElements(pending, item)
	if refs, ok := getAttr(item, "itemref"); ok {
		for id := range strings.FieldsSeq(refs) {
			if n := d.ElementByID(id); n != nil {
				pending = append(pending, n)
			}
		}
	}

	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if memory[current] {
			continue
		}
		memory[current] = true

		if !hasAttr(current, "itemscope") {
			pending = appendChildElements(pending, current)
		}
		if len(propertyNames(current)) > 0 {
			results = append(results, current)
		}
	}

	d.sort(results)
	return results
}

func (d *Document) sort(nodes []*html.Node) {
	slices.SortStableFunc(nodes, func(a, b *html.Node) int {
		return cmp.Compare(d.order[a], d.order[b])
	})
}

func appendChildElements(list []*html.Node, n *html.Node) []*html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			list = append(list, c)
		}
	}
	return list
}

// propertyNames returns the itemprop tokens of an element.
func propertyNames(n *html.Node) []string {
	s, _ := getAttr(n, "itemprop")
	return strings.Fields(s)
}

// iterNodes walks a tree in tree order without recursion, so that
// deeply nested documents cannot exhaust the stack.
func iterNodes(root *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		n := root
		for n != nil {
			if !yield(n) {
				return
			}
			if n.FirstChild != nil {
				n = n.FirstChild
				continue
			}
			for n != root && n.NextSibling == nil {
				n = n.Parent
			}
			if n == root {
				return
			}
			n = n.NextSibling
		}
	}
}

// getAttr returns an element's attribute. Non element nodes have none.
func getAttr(n *html.Node, name string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && name == attr.Key {
			return attr.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, name string) bool {
	_, ok := getAttr(n, name)
	return ok
}

// langOf returns the language of an element, given by the closest
// lang attribute. When an element also has an xml:lang attribute, both
// must match or the element's language is unknown.
func langOf(n *html.Node) string {
	for ; n != nil; n = n.Parent {
		lang, ok := getAttr(n, "lang")
		if !ok {
			continue
		}
		if xmlLang, ok := getAttr(n, "xml:lang"); ok && !strings.EqualFold(xmlLang, lang) {
			continue
		}
		return lang
	}
	return ""
}
