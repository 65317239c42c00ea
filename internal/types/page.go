package types

import (
	"bytes"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is a rendered document snapshot returned by a renderer.
type Page struct {
	// URL is the address that was requested.
	URL string

	// FinalURL is the address the renderer ended on after redirects.
	FinalURL string

	// HTML is the serialized document after client-side rendering.
	HTML []byte

	// RenderDuration is how long navigation and the readiness wait took.
	RenderDuration time.Duration

	// RenderedAt is when the snapshot was taken.
	RenderedAt time.Time

	// Ready reports whether the readiness condition was met before the snapshot.
	Ready bool

	doc *goquery.Document
}

// NewPage creates a Page from rendered output.
func NewPage(url, finalURL string, html []byte, duration time.Duration) *Page {
	if finalURL == "" {
		finalURL = url
	}
	return &Page{
		URL:            url,
		FinalURL:       finalURL,
		HTML:           html,
		RenderDuration: duration,
		RenderedAt:     time.Now(),
		Ready:          true,
	}
}

// Document returns a parsed goquery document, lazily initializing it.
func (p *Page) Document() (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.HTML))
	if err != nil {
		return nil, err
	}
	p.doc = doc
	return doc, nil
}

// Size returns the document size in bytes.
func (p *Page) Size() int {
	return len(p.HTML)
}
