package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// LabelSibling finds the element <tag> whose normalized text equals label
// under the first node of scope, then follows axis (an XPath step such as
// "following-sibling::p[1]") and returns that node's collapsed text.
func LabelSibling(scope *goquery.Selection, tag, label, axis string) (string, bool, error) {
	if scope.Length() == 0 {
		return "", false, nil
	}
	node, err := labelSiblingNode(scope.Get(0), tag, label, axis)
	if err != nil || node == nil {
		return "", false, err
	}
	return Collapse(htmlquery.InnerText(node)), true, nil
}

func labelSiblingNode(root *html.Node, tag, label, axis string) (*html.Node, error) {
	expr := fmt.Sprintf(".//%s[normalize-space(.)=%s]/%s", tag, xpathLiteral(label), axis)
	node, err := htmlquery.Query(root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath %q: %w", expr, err)
	}
	return node, nil
}

// xpathLiteral quotes s for use inside an XPath 1.0 expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
