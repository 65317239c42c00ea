package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Collapse trims s and folds every whitespace run (including NBSP) into one space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Text returns the whitespace-collapsed text of the first node in sel.
func Text(sel *goquery.Selection) string {
	return Collapse(sel.First().Text())
}

// FirstText finds the first match of selector under sel and returns its text.
// ok is false when nothing matched.
func FirstText(sel *goquery.Selection, selector string) (string, bool) {
	match := sel.Find(selector).First()
	if match.Length() == 0 {
		return "", false
	}
	return Text(match), true
}

// JoinedText collects every non-empty text node under the first node of sel,
// trimming each one, and joins them with sep.
func JoinedText(sel *goquery.Selection, sep string) string {
	if sel.Length() == 0 {
		return ""
	}
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(sel.Get(0))
	return strings.Join(parts, sep)
}

// NormalizeKey lower-cases a label and applies r to produce a map key.
func NormalizeKey(label string, r *strings.Replacer) string {
	key := strings.ToLower(Collapse(label))
	if r != nil {
		key = r.Replace(key)
	}
	return key
}

// firstIn narrows doc to the first match of each selector in turn.
// An empty selector keeps the current scope.
func firstIn(sel *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, s := range selectors {
		if s == "" {
			continue
		}
		sel = sel.Find(s).First()
	}
	return sel
}
