package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkFilter decides whether a resolved link is kept.
type LinkFilter func(link string) bool

// ContainsFilter keeps links containing substr. An empty substr keeps everything.
func ContainsFilter(substr string) LinkFilter {
	return func(link string) bool {
		return substr == "" || strings.Contains(link, substr)
	}
}

// ExtractLinks finds all <a href> targets in doc, resolved against baseURL,
// in document order and without duplicates.
func ExtractLinks(doc *goquery.Document, baseURL string, filter LinkFilter) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}

		// Skip anchors, javascript:, mailto:, tel:
		href = strings.TrimSpace(href)
		if href == "" ||
			strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "data:") {
			return
		}

		parsedHref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(parsedHref)

		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		resolved.Fragment = ""

		absURL := resolved.String()
		if filter != nil && !filter(absURL) {
			return
		}
		if !seen[absURL] {
			seen[absURL] = true
			links = append(links, absURL)
		}
	})

	return links
}
