// Package listing turns saved product listings into content units.
package listing

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
	"github.com/cognicore/keyroot/pkg/keyroot/keyword"
)

// Unit names used for listing sections.
const (
	UnitTitle       = "title"
	UnitDescription = "description"
	UnitSearchTerms = "search_terms"
)

// BulletName names the i-th (1-based) bullet unit.
func BulletName(i int) string {
	return fmt.Sprintf("bullet_%d", i)
}

// Listing is the copy of one product listing.
type Listing struct {
	Name  string
	Units []keyword.ContentUnit
}

// Unit returns the unit with the given name.
func (l Listing) Unit(name string) (keyword.ContentUnit, bool) {
	for _, u := range l.Units {
		if u.Name == name {
			return u, true
		}
	}
	return keyword.ContentUnit{}, false
}

// Document is the JSON listing format.
type Document struct {
	Name        string   `json:"name"`
	ASIN        string   `json:"asin"`
	Title       string   `json:"title"`
	Bullets     []string `json:"bullets"`
	Description string   `json:"description"`
	SearchTerms string   `json:"search_terms"`
}

// Listing converts the document, dropping blank sections.
func (d Document) Listing() Listing {
	l := Listing{Name: d.Name}
	if l.Name == "" {
		l.Name = d.ASIN
	}
	l.add(UnitTitle, d.Title)
	for i, b := range d.Bullets {
		l.add(BulletName(i+1), b)
	}
	l.add(UnitDescription, d.Description)
	l.add(UnitSearchTerms, d.SearchTerms)
	return l
}

func (l *Listing) add(name, text string) {
	u := keyword.ContentUnit{Name: name, Text: cleanText(text)}
	if !u.Blank() {
		l.Units = append(l.Units, u)
	}
}

// LoadFile reads a .json listing or a saved .html product page.
// The file name (without extension) names listings that carry no name.
func LoadFile(path string) (Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return Listing{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var l Listing
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		l, err = ParseJSON(f)
	case ".html", ".htm":
		l, err = ParseHTML(f)
	default:
		return Listing{}, fmt.Errorf("%w: unsupported listing file type %q", internalerr.ErrInvalidInput, ext)
	}
	if err != nil {
		return Listing{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if l.Name == "" {
		l.Name = base
	}
	return l, nil
}

// ParseJSON decodes a Document.
func ParseJSON(r io.Reader) (Listing, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Listing{}, err
	}
	l := d.Listing()
	if len(l.Units) == 0 {
		return Listing{}, fmt.Errorf("%w: listing has no copy", internalerr.ErrInvalidInput)
	}
	return l, nil
}

// ParseHTML extracts the title, feature bullets, description and ASIN
// from a saved product page. Without a #productTitle element the document
// <title> is used.
func ParseHTML(r io.Reader) (Listing, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Listing{}, err
	}

	var (
		title, pageTitle, description, asin string
		bullets                             []string
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "title" && pageTitle == "":
				pageTitle = textOf(n)
			case attr(n, "id") == "productTitle":
				title = textOf(n)
				return
			case attr(n, "id") == "feature-bullets":
				bullets = append(bullets, listItems(n)...)
				return
			case attr(n, "id") == "productDescription":
				description = textOf(n)
				return
			case n.Data == "input" && attr(n, "name") == "ASIN":
				asin = attr(n, "value")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if title == "" {
		title = pageTitle
	}
	l := Document{ASIN: asin, Title: title, Bullets: bullets, Description: description}.Listing()
	if len(l.Units) == 0 {
		return Listing{}, fmt.Errorf("%w: no listing copy found in page", internalerr.ErrInvalidInput)
	}
	return l, nil
}

func listItems(n *html.Node) []string {
	var items []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			if text := textOf(n); text != "" {
				items = append(items, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return items
}

// textOf returns the visible text below n.
func textOf(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return cleanText(buf.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// cleanText collapses whitespace.
func cleanText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
