package parser

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/WedScrape/internal/types"
)

// Extractor applies a category schema to rendered documents.
// Extraction is a pure function of the document and the source URL.
type Extractor struct {
	schema *Schema
	logger *slog.Logger
}

// NewExtractor creates an extractor for schema.
func NewExtractor(schema *Schema, logger *slog.Logger) *Extractor {
	return &Extractor{
		schema: schema,
		logger: logger.With("component", "extractor", "category", schema.Category),
	}
}

// Schema returns the schema the extractor applies.
func (e *Extractor) Schema() *Schema {
	return e.schema
}

// Extract parses html and builds a record. Missing nodes never fail extraction;
// only a parse-layer failure returns a *types.ParseError.
func (e *Extractor) Extract(html []byte, sourceURL string) (*types.VendorRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &types.ParseError{URL: sourceURL, Region: "document", Err: err}
	}
	return e.ExtractDocument(doc, sourceURL)
}

// ExtractPage extracts a rendered page, reusing its parsed document.
func (e *Extractor) ExtractPage(page *types.Page) (*types.VendorRecord, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, &types.ParseError{URL: page.URL, Region: "document", Err: err}
	}
	return e.ExtractDocument(doc, page.URL)
}

// ExtractDocument builds a record from an already parsed document.
func (e *Extractor) ExtractDocument(doc *goquery.Document, sourceURL string) (rec *types.VendorRecord, err error) {
	region := "document"
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = &types.ParseError{URL: sourceURL, Region: region, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	rec = e.schema.newRecord(sourceURL)
	for _, s := range e.schema.steps(doc.Selection, rec) {
		region = s.region
		if err := s.run(); err != nil {
			return nil, &types.ParseError{URL: sourceURL, Region: s.region, Err: err}
		}
	}

	e.logger.Debug("extracted record",
		"url", sourceURL,
		"name", rec.Name,
		"prices", len(rec.Pricing),
	)
	return rec, nil
}
