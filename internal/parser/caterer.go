package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/IshaanNene/WedScrape/internal/types"
)

// CuisineVocabulary is the controlled vocabulary for caterer cuisines.
var CuisineVocabulary = []string{
	"North Indian", "South Indian", "Chinese", "Italian", "Thai",
	"Desserts", "Rajasthani", "Maharashtrian", "Gujarati", "Bengali", "Japanese",
}

var cuisinesMarker = regexp.MustCompile(`(?i)Cuisines offered:?`)

func CatererSchema() (*Schema, error) {
	return NewSchemaBuilder(types.CategoryCaterer).
		Name(TextRule{Selector: "div.vendor-details h1"}).
		Location(TextRule{Selector: "div.addr-right span"}).
		Price(
			LabeledPrices{
				Items: "div.grid__col p.text-bold",
				Key:   strings.NewReplacer(" ", "_"),
				Value: ParentSpanAmount("span.text-tertiary", 1, ConcatDigits),
			},
			RowPrice{
				Key:       "veg_price_per_plate",
				Rows:      "div.frow",
				Phrases:   []string{"veg price per plate"},
				Exclude:   []string{"non veg price per plate", "non-veg price per plate"},
				Value:     "p.h5",
				Normalize: ConcatDigits,
			},
			RowPrice{
				Key:       "non_veg_price_per_plate",
				Rows:      "div.frow",
				Phrases:   []string{"non veg price per plate", "non-veg price per plate"},
				Value:     "p.h5",
				Normalize: ConcatDigits,
			},
		).
		About(AboutRule{
			Block:     "div.about-body.border-t div.info.padding-h-20.padding-v-20",
			Separator: "\n",
			CutMarker: cuisinesMarker,
		}).
		Tags("cuisines", NewTagger(CuisineVocabulary, nil)).
		Render(8*time.Second, "div.vendor-details h1").
		Retain(func(rec *types.VendorRecord) bool { return rec.HasName() }).
		Build()
}
