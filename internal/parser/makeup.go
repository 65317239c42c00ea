package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/IshaanNene/WedScrape/internal/types"
)

// MakeupVocabulary is the controlled vocabulary for makeup artist services.
var MakeupVocabulary = []string{
	"Bridal Makeup", "Engagement Makeup", "Party Makeup", "Family Makeup", "Roka",
	"Mehendi", "Receptions", "HD Makeup", "Airbrush Makeup", "Waterproof Makeup",
	"Sweat-resistant", "Glam Makeup", "Natural Makeup", "Draping", "Hair Styling",
	"False Lashes", "Extensions", "Chic hairstyles", "Travels to venue", "Paid trial",
}

var breakupPrice = regexp.MustCompile(`^₹([\d,]+)(.*)`)

// breakupKey turns "Engagement - Makeup" style labels into keys.
var breakupKey = strings.NewReplacer("-", "_", " ", "_")

func MakeupSchema() (*Schema, error) {
	return NewSchemaBuilder(types.CategoryMakeup).
		Name(TextRule{Selector: "h1.h4.text-bold"}).
		Location(TextRule{Selector: "div.addr-right h6 > span"}).
		Price(
			LabeledPrices{
				Items: "div.VendorPricing div.f-space-between.sc-jzJRlG.emSbxZ",
				First: true,
				Label: "h6.regular",
				Key:   strings.NewReplacer(" ", "_"),
				Value: PriceWithUnit("p.h5", "p.regular"),
			},
			LabeledPrices{
				Items: "div.pricing-breakup div.grid__col--1-of-2",
				Label: "p.text-bold",
				Key:   breakupKey,
				Value: SpanPattern("span.text-tertiary", breakupPrice),
			},
		).
		About(AboutRule{
			Block:     "div.AboutSection div.info",
			Separator: " ",
			Paragraph: "p",
			Default:   StringPtr(types.Sentinel),
		}).
		Tags("services_offered", NewTagger(MakeupVocabulary, nil)).
		Render(8*time.Second, "h1.h4.text-bold").
		Retain(func(rec *types.VendorRecord) bool { return rec.HasName() }).
		Build()
}
