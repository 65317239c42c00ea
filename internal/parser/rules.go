package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/WedScrape/internal/types"
)

// TextRule locates a required text field. A missing node yields types.Sentinel.
type TextRule struct {
	Selector string

	// Before keeps only the text preceding the first occurrence of this separator.
	Before string
}

func (r TextRule) extract(doc *goquery.Selection) string {
	text, ok := FirstText(doc, r.Selector)
	if !ok {
		return types.Sentinel
	}
	if r.Before != "" {
		text, _, _ = strings.Cut(text, r.Before)
		text = strings.TrimSpace(text)
	}
	return text
}

// PriceRule fills one or more pricing entries from a document.
type PriceRule interface {
	Apply(doc *goquery.Selection, pricing types.Pricing) error
	Validate() error
}

// RowPrice scans candidate rows for a phrase and reads the value node of a matching row.
type RowPrice struct {
	Key   string
	Scope string
	Rows  string

	// Phrases are matched case-insensitively against the collapsed row text.
	Phrases []string
	Exclude []string

	Value     string
	Normalize Normalizer

	// First stops at the first row that carries a value node.
	First bool
}

func (r RowPrice) Apply(doc *goquery.Selection, pricing types.Pricing) error {
	firstIn(doc, r.Scope).Find(r.Rows).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		text := strings.ToLower(Collapse(row.Text()))
		if !containsAny(text, r.Phrases) || containsAny(text, r.Exclude) {
			return true
		}
		raw, ok := FirstText(row, r.Value)
		if !ok {
			return true
		}
		if v, ok := r.Normalize(raw); ok {
			pricing[r.Key] = types.Amount(v)
		}
		return !r.First
	})
	return nil
}

func (r RowPrice) Validate() error {
	switch {
	case r.Key == "":
		return errors.New("row price: empty key")
	case r.Rows == "" || r.Value == "":
		return fmt.Errorf("row price %q: rows and value selectors are required", r.Key)
	case len(r.Phrases) == 0:
		return fmt.Errorf("row price %q: no phrases", r.Key)
	case r.Normalize == nil:
		return fmt.Errorf("row price %q: no normalizer", r.Key)
	}
	return nil
}

// SiblingPrice reads the price found at an XPath step from a labelled element.
type SiblingPrice struct {
	Key       string
	Scope     string
	LabelTag  string
	Label     string
	Axis      string
	Normalize Normalizer
}

func (r SiblingPrice) Apply(doc *goquery.Selection, pricing types.Pricing) error {
	text, ok, err := LabelSibling(firstIn(doc, r.Scope), r.LabelTag, r.Label, r.Axis)
	if err != nil {
		return fmt.Errorf("%s: %w", r.Key, err)
	}
	if !ok {
		return nil
	}
	if v, ok := r.Normalize(text); ok {
		pricing[r.Key] = types.Amount(v)
	}
	return nil
}

func (r SiblingPrice) Validate() error {
	if r.Key == "" || r.LabelTag == "" || r.Label == "" || r.Axis == "" || r.Normalize == nil {
		return fmt.Errorf("sibling price %q: key, label tag, label, axis and normalizer are required", r.Key)
	}
	return nil
}

// SelectorPrice reads the first node matching Selector inside Scope.
type SelectorPrice struct {
	Key       string
	Scope     string
	Selector  string
	Normalize Normalizer
}

func (r SelectorPrice) Apply(doc *goquery.Selection, pricing types.Pricing) error {
	text, ok := FirstText(firstIn(doc, r.Scope), r.Selector)
	if !ok {
		return nil
	}
	if v, ok := r.Normalize(text); ok {
		pricing[r.Key] = types.Amount(v)
	}
	return nil
}

func (r SelectorPrice) Validate() error {
	if r.Key == "" || r.Selector == "" || r.Normalize == nil {
		return fmt.Errorf("selector price %q: key, selector and normalizer are required", r.Key)
	}
	return nil
}

// ValueFunc reads a price from one labelled item.
type ValueFunc func(item *goquery.Selection) (types.Price, bool)

// LabeledPrices emits one entry per item, keyed by the item's normalized label.
type LabeledPrices struct {
	Items string

	// Label is searched under each item; empty uses the item itself.
	Label string
	Key   *strings.Replacer
	Value ValueFunc

	// First only considers the first item.
	First bool
}

func (r LabeledPrices) Apply(doc *goquery.Selection, pricing types.Pricing) error {
	items := doc.Find(r.Items)
	if r.First {
		items = items.First()
	}
	items.Each(func(_ int, item *goquery.Selection) {
		label := item
		if r.Label != "" {
			label = item.Find(r.Label).First()
		}
		if label.Length() == 0 {
			return
		}
		key := NormalizeKey(label.Text(), r.Key)
		if key == "" {
			return
		}
		if v, ok := r.Value(item); ok {
			pricing[key] = v
		}
	})
	return nil
}

func (r LabeledPrices) Validate() error {
	if r.Items == "" || r.Value == nil {
		return fmt.Errorf("labeled prices %q: items selector and value are required", r.Items)
	}
	return nil
}

// ParentSpanAmount reads the n-th span under the item's parent and normalizes it.
func ParentSpanAmount(spans string, n int, normalize Normalizer) ValueFunc {
	return func(item *goquery.Selection) (types.Price, bool) {
		found := item.Parent().Find(spans)
		if found.Length() <= n {
			return types.Price{}, false
		}
		v, ok := normalize(found.Eq(n).Text())
		if !ok {
			return types.Price{}, false
		}
		return types.Amount(v), true
	}
}

// PriceWithUnit formats the price node and optional unit node as a currency string.
func PriceWithUnit(price, unit string) ValueFunc {
	return func(item *goquery.Selection) (types.Price, bool) {
		amount, ok := FirstText(item, price)
		if !ok {
			return types.Price{}, false
		}
		u, _ := FirstText(item, unit)
		return types.Formatted(FormatCurrency(amount, u)), true
	}
}

// SpanPattern joins every span's text and matches it against re, which must
// capture the amount and the unit.
func SpanPattern(spans string, re *regexp.Regexp) ValueFunc {
	return func(item *goquery.Selection) (types.Price, bool) {
		found := item.Find(spans)
		if found.Length() == 0 {
			return types.Price{}, false
		}
		var sb strings.Builder
		found.Each(func(_ int, s *goquery.Selection) {
			sb.WriteString(Collapse(s.Text()))
		})
		m := re.FindStringSubmatch(strings.TrimSpace(sb.String()))
		if len(m) < 3 {
			return types.Price{}, false
		}
		value := strings.TrimSpace("₹" + strings.TrimSpace(m[1]) + " " + strings.TrimSpace(m[2]))
		return types.Formatted(value), true
	}
}

// SpanConcat joins the first two spans, typically a currency glyph and its value.
func SpanConcat(spans string) ValueFunc {
	return func(item *goquery.Selection) (types.Price, bool) {
		found := item.Find(spans)
		if found.Length() < 2 {
			return types.Price{}, false
		}
		value := strings.TrimSpace(Collapse(found.Eq(0).Text()) + Collapse(found.Eq(1).Text()))
		return types.Formatted(value), true
	}
}

// CapacityRule parses venue area entries.
type CapacityRule struct {
	Container string
	Items     string

	// Figures holds "seating | floating".
	Figures string
	Area    string
	Type    string
}

func (r CapacityRule) extract(doc *goquery.Selection) []types.CapacityEntry {
	entries := []types.CapacityEntry{}
	container := firstIn(doc, r.Container)
	if container.Length() == 0 {
		return entries
	}
	container.Find(r.Items).Each(func(_ int, item *goquery.Selection) {
		var entry types.CapacityEntry
		if figures, ok := FirstText(item, r.Figures); ok {
			if seating, floating, found := strings.Cut(figures, "|"); found {
				entry.Seating = intPtr(FirstInt(seating))
				floating, _, _ = strings.Cut(floating, "|")
				entry.Floating = intPtr(FirstInt(floating))
			}
		}
		entry.Area = textOr(item, r.Area, types.Sentinel)
		entry.Type = textOr(item, r.Type, types.Sentinel)
		entries = append(entries, entry)
	})
	return entries
}

// PolicyLabel maps a label shown on the page to its output key.
type PolicyLabel struct {
	Label string
	Key   string
}

// PolicyRule reads label/value pairs where the value is an XPath step away from the label.
type PolicyRule struct {
	Region   string
	LabelTag string
	Axis     string
	Labels   []PolicyLabel
}

func (r PolicyRule) extract(doc *goquery.Selection) (map[string]string, error) {
	policies := map[string]string{}
	region := firstIn(doc, r.Region)
	if region.Length() == 0 {
		return policies, nil
	}
	for _, l := range r.Labels {
		text, ok, err := LabelSibling(region, r.LabelTag, l.Label, r.Axis)
		if err != nil {
			return policies, err
		}
		if ok {
			policies[l.Key] = text
		}
	}
	return policies, nil
}

// RoomCountRule reads the first number at an XPath step from a labelled element.
type RoomCountRule struct {
	Region   string
	LabelTag string
	Label    string
	Axis     string
}

func (r RoomCountRule) extract(doc *goquery.Selection) (*int, error) {
	text, ok, err := LabelSibling(firstIn(doc, r.Region), r.LabelTag, r.Label, r.Axis)
	if err != nil || !ok {
		return nil, err
	}
	return intPtr(FirstInt(text)), nil
}

// AboutRule extracts the free-text summary of a vendor.
type AboutRule struct {
	Block string

	// Separator joins the block's text nodes into the text fed to the tagger.
	Separator string

	// Paragraph, when set, prefers the first matching node's text as the summary.
	Paragraph string

	// CutMarker truncates the summary at the first match.
	CutMarker *regexp.Regexp

	// Default is used when Block is absent. Nil serializes as null.
	Default *string
}

// extract returns the summary and the block's full text.
func (r AboutRule) extract(doc *goquery.Selection) (*string, string) {
	block := firstIn(doc, r.Block)
	if block.Length() == 0 {
		return r.Default, ""
	}
	full := JoinedText(block, r.Separator)
	about := full
	if r.Paragraph != "" {
		if p, ok := FirstText(block, r.Paragraph); ok {
			about = p
		}
	}
	if r.CutMarker != nil {
		if loc := r.CutMarker.FindStringIndex(about); loc != nil {
			about = strings.TrimSpace(about[:loc[0]])
		}
	}
	return &about, full
}

// TagRule tags the about block's full text.
type TagRule struct {
	Key    string
	Tagger *Tagger
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func textOr(sel *goquery.Selection, selector, fallback string) string {
	if text, ok := FirstText(sel, selector); ok {
		return text
	}
	return fallback
}

func intPtr(n int, ok bool) *int {
	if !ok {
		return nil
	}
	return &n
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
