package parser

import (
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/WedScrape/internal/types"
)

// RetainFunc decides whether an extracted record carries enough signal to keep.
type RetainFunc func(rec *types.VendorRecord) bool

// Schema is the declarative extraction table of one vendor category.
// Schemas are immutable once built and safe to share.
type Schema struct {
	Category types.Category

	// Wait and ReadySelector are the category's rendering defaults.
	Wait          time.Duration
	ReadySelector string

	name      TextRule
	location  TextRule
	prices    []PriceRule
	capacity  *CapacityRule
	policies  *PolicyRule
	roomCount *RoomCountRule
	about     *AboutRule
	tags      *TagRule
	retain    RetainFunc
}

// Retains reports whether rec should be kept in the output.
func (s *Schema) Retains(rec *types.VendorRecord) bool {
	if s.retain == nil {
		return true
	}
	return s.retain(rec)
}

func (s *Schema) hasVenueDetails() bool {
	return s.capacity != nil || s.policies != nil || s.roomCount != nil
}

func (s *Schema) hasDetails() bool {
	return s.about != nil || s.tags != nil
}

// step is one named extraction stage; the name is reported when the stage fails.
type step struct {
	region string
	run    func() error
}

func (s *Schema) steps(doc *goquery.Selection, rec *types.VendorRecord) []step {
	steps := []step{
		{"name", func() error { rec.Name = s.name.extract(doc); return nil }},
		{"location", func() error { rec.Location = s.location.extract(doc); return nil }},
		{"pricing", func() error {
			for _, rule := range s.prices {
				if err := rule.Apply(doc, rec.Pricing); err != nil {
					return err
				}
			}
			return nil
		}},
	}

	if s.capacity != nil {
		steps = append(steps, step{"capacity", func() error {
			rec.Capacity = s.capacity.extract(doc)
			return nil
		}})
	}
	if s.policies != nil {
		steps = append(steps, step{"policies", func() error {
			policies, err := s.policies.extract(doc)
			rec.Policies = policies
			return err
		}})
	}
	if s.roomCount != nil {
		steps = append(steps, step{"room_count", func() error {
			n, err := s.roomCount.extract(doc)
			rec.RoomCount = n
			return err
		}})
	}
	if s.hasDetails() {
		steps = append(steps, step{"details", func() error {
			var full string
			if s.about != nil {
				rec.Details.About, full = s.about.extract(doc)
			}
			if s.tags != nil {
				rec.Details.TagsKey = s.tags.Key
				if full != "" {
					rec.Details.Tags = s.tags.Tagger.Tags(full)
				}
			}
			return nil
		}})
	}
	return steps
}

// newRecord allocates a record with every collection present but empty.
func (s *Schema) newRecord(sourceURL string) *types.VendorRecord {
	rec := &types.VendorRecord{
		Category:  s.Category,
		Name:      types.Sentinel,
		Location:  types.Sentinel,
		Pricing:   types.Pricing{},
		SourceURL: sourceURL,
	}
	if s.hasVenueDetails() {
		rec.VenueDetails = &types.VenueDetails{
			Capacity: []types.CapacityEntry{},
			Policies: map[string]string{},
		}
	}
	if s.hasDetails() {
		rec.Details = &types.Details{Tags: []string{}}
		if s.tags != nil {
			rec.Details.TagsKey = s.tags.Key
		}
	}
	return rec
}

// SchemaBuilder assembles a Schema. Errors are collected and reported by Build.
type SchemaBuilder struct {
	schema *Schema
	errs   []error
}

// NewSchemaBuilder starts a schema for category.
func NewSchemaBuilder(category types.Category) *SchemaBuilder {
	return &SchemaBuilder{schema: &Schema{Category: category}}
}

// Name sets the rule for the vendor name.
func (b *SchemaBuilder) Name(rule TextRule) *SchemaBuilder {
	b.schema.name = rule
	return b
}

// Location sets the rule for the vendor location.
func (b *SchemaBuilder) Location(rule TextRule) *SchemaBuilder {
	b.schema.location = rule
	return b
}

// Price appends pricing rules. Later rules overwrite keys set by earlier ones.
func (b *SchemaBuilder) Price(rules ...PriceRule) *SchemaBuilder {
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			b.errs = append(b.errs, err)
			continue
		}
		b.schema.prices = append(b.schema.prices, r)
	}
	return b
}

func (b *SchemaBuilder) Capacity(rule CapacityRule) *SchemaBuilder {
	if rule.Items == "" {
		b.errs = append(b.errs, errors.New("capacity: items selector is required"))
	}
	b.schema.capacity = &rule
	return b
}

func (b *SchemaBuilder) Policies(rule PolicyRule) *SchemaBuilder {
	if rule.LabelTag == "" || rule.Axis == "" {
		b.errs = append(b.errs, errors.New("policies: label tag and axis are required"))
	}
	b.schema.policies = &rule
	return b
}

func (b *SchemaBuilder) RoomCount(rule RoomCountRule) *SchemaBuilder {
	if rule.LabelTag == "" || rule.Label == "" || rule.Axis == "" {
		b.errs = append(b.errs, errors.New("room count: label tag, label and axis are required"))
	}
	b.schema.roomCount = &rule
	return b
}

func (b *SchemaBuilder) About(rule AboutRule) *SchemaBuilder {
	if rule.Block == "" {
		b.errs = append(b.errs, errors.New("about: block selector is required"))
	}
	b.schema.about = &rule
	return b
}

// Tags tags the about block with tagger and emits the result under key.
func (b *SchemaBuilder) Tags(key string, tagger *Tagger) *SchemaBuilder {
	if key == "" || tagger == nil {
		b.errs = append(b.errs, fmt.Errorf("tags %q: key and tagger are required", key))
	}
	b.schema.tags = &TagRule{Key: key, Tagger: tagger}
	return b
}

// Render sets the rendering defaults used when the configuration leaves them empty.
func (b *SchemaBuilder) Render(wait time.Duration, readySelector string) *SchemaBuilder {
	if wait < 0 {
		b.errs = append(b.errs, errors.New("render: wait must be >= 0"))
	}
	b.schema.Wait = wait
	b.schema.ReadySelector = readySelector
	return b
}

// Retain sets the post-extraction emptiness check.
func (b *SchemaBuilder) Retain(fn RetainFunc) *SchemaBuilder {
	b.schema.retain = fn
	return b
}

// Build validates and returns the schema.
func (b *SchemaBuilder) Build() (*Schema, error) {
	errs := b.errs
	if _, err := types.ParseCategory(string(b.schema.Category)); err != nil {
		errs = append(errs, err)
	}
	if b.schema.name.Selector == "" {
		errs = append(errs, errors.New("name: selector is required"))
	}
	if b.schema.location.Selector == "" {
		errs = append(errs, errors.New("location: selector is required"))
	}
	if b.schema.tags != nil && b.schema.about == nil {
		errs = append(errs, errors.New("tags: an about block is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("schema %s: %w", b.schema.Category, err)
	}
	return b.schema, nil
}

// SchemaFor returns the built-in schema of category.
func SchemaFor(category types.Category) (*Schema, error) {
	switch category {
	case types.CategoryVenue:
		return VenueSchema()
	case types.CategoryCaterer:
		return CatererSchema()
	case types.CategoryMakeup:
		return MakeupSchema()
	case types.CategoryPhotographer:
		return PhotographerSchema()
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnknownCategory, category)
}
