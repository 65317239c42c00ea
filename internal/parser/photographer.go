package parser

import (
	"strings"
	"time"

	"github.com/IshaanNene/WedScrape/internal/types"
)

// PhotographyVocabulary is the controlled vocabulary for photographer services.
// Matches are folded with CollapsePhotographyTag.
var PhotographyVocabulary = []string{
	// core
	"Candid Photography", "Traditional Photography", "Wedding Shoots",
	"Wedding Cinematography", "Cinematic Video", "Wedding Films",
	"Traditional Videography", "Bridal Photography", "Bridal Portraits",
	// pre-wedding
	"Pre-Wedding Shoots", "Pre-Wedding Films", "Couple Shoots",
	// other events
	"Engagement Photography", "Maternity Shoots", "Fashion Shoots",
	"Anniversary Shoots", "Newborn Photography", "Baby Shoots",
	// deliverables
	"Albums", "Wedding Albums", "Photo Books", "Digital Albums", "Online Gallery",
	"Drone", "Crane", "Live Streaming", "Same Day Edit", "Teaser Videos",
	"Highlight Reel", "Photo Booth",
	// styles
	"Photojournalistic", "Fine Art Wedding Photography", "Documentary Photography",
	"Destination Wedding", "Event photography",
}

func PhotographerSchema() (*Schema, error) {
	return NewSchemaBuilder(types.CategoryPhotographer).
		Name(TextRule{Selector: "h1.h4.text-bold"}).
		Location(TextRule{Selector: "div.addr-right h6 > span"}).
		Price(
			LabeledPrices{
				Items: "div.VendorPricing .f-space-between.sc-jzJRlG.emSbxZ div > div",
				Label: "h6.text-secondary",
				Key:   strings.NewReplacer(" + ", "_", " ", "_"),
				Value: PriceWithUnit("p.h5", "p.regular"),
			},
			LabeledPrices{
				Items: "div.pricing-breakup div.grid__col--1-of-2",
				Label: "p.text-bold",
				Key:   breakupKey,
				Value: SpanConcat("span.text-tertiary"),
			},
		).
		About(AboutRule{
			Block:     "div.AboutSection div.info",
			Separator: " ",
			Paragraph: "p",
			Default:   StringPtr(types.Sentinel),
		}).
		Tags("services_offered", NewTagger(PhotographyVocabulary, CollapsePhotographyTag)).
		Render(8*time.Second, "h1.h4.text-bold").
		Retain(func(rec *types.VendorRecord) bool { return rec.HasName() }).
		Build()
}
