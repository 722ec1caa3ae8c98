// Package document owns the rendered HTML document as a node tree.
//
// Handlers render templates into a buffer, parse the result with Parse, and
// may then touch document-level resources (currently only the favicon)
// before writing it out with Render. Keeping those mutations here means
// exactly one code path ever edits <head>.
package document

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("document: parsing html: %w", err)
	}
	return &Document{root: root}, nil
}

// Render writes the document back out.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// SetIcon points the document favicon at href.
//
// The first <link rel="icon"> in <head> is updated in place; if there is none
// one is appended. Any further icon links are removed, so however many
// times this runs the document ends with exactly one icon link, pointing at
// the last href.
func (d *Document) SetIcon(href string) {
	head := d.head()
	if head == nil {
		return
	}

	var icon *html.Node
	for _, link := range iconLinks(head) {
		if icon == nil {
			icon = link
			continue
		}
		head.RemoveChild(link)
	}

	if icon == nil {
		icon = &html.Node{
			Type:     html.ElementNode,
			Data:     "link",
			DataAtom: atom.Link,
			Attr:     []html.Attribute{{Key: "rel", Val: "icon"}},
		}
		head.AppendChild(icon)
	}

	setAttr(icon, "href", href)
}

// Icons returns the href of every icon link in <head>, in document order.
func (d *Document) Icons() []string {
	head := d.head()
	if head == nil {
		return nil
	}

	var hrefs []string
	for _, link := range iconLinks(head) {
		hrefs = append(hrefs, attr(link, "href"))
	}
	return hrefs
}

func (d *Document) head() *html.Node {
	return find(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Head
	})
}

func iconLinks(head *html.Node) []*html.Node {
	var links []*html.Node
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Link && isIconRel(attr(c, "rel")) {
			links = append(links, c)
		}
	}
	return links
}

// isIconRel matches rel="icon" and the legacy rel="shortcut icon".
func isIconRel(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if token == "icon" {
			return true
		}
	}
	return false
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
