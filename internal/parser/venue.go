package parser

import (
	"time"

	"github.com/IshaanNene/WedScrape/internal/types"
)

// VenueSchema extracts venue listings: plate prices, decor and rental costs,
// bookable areas, house policies and room count.
func VenueSchema() (*Schema, error) {
	const pricing = "div.VendorPricing"

	return NewSchemaBuilder(types.CategoryVenue).
		Name(TextRule{Selector: "title", Before: "|"}).
		Location(TextRule{Selector: "div.addr-right"}).
		Price(
			RowPrice{
				Key:       "veg_price_per_plate",
				Scope:     pricing,
				Rows:      "div.f-space-between",
				Phrases:   []string{"veg price"},
				Exclude:   []string{"non veg price", "non-veg price"},
				Value:     "p.h5",
				Normalize: NormalizePrice,
			},
			RowPrice{
				Key:       "non_veg_price_per_plate",
				Scope:     pricing,
				Rows:      "div.f-space-between",
				Phrases:   []string{"non veg price", "non-veg price"},
				Value:     "p.h5",
				Normalize: NormalizePrice,
			},
			SiblingPrice{
				Key:       "starting_price_decor",
				Scope:     pricing,
				LabelTag:  "p",
				Label:     "Starting Price of Decor",
				Axis:      "following-sibling::span[2]",
				Normalize: NormalizePrice,
			},
			RowPrice{
				Key:       "rental_cost",
				Scope:     pricing,
				Rows:      "div.frow",
				Phrases:   []string{"rental cost", "per function"},
				Value:     "p.h5",
				Normalize: NormalizePrice,
				First:     true,
			},
			SelectorPrice{
				Key:       "destination_wedding_price",
				Scope:     "div.DestinationWeddingPricing",
				Selector:  "div.price",
				Normalize: NormalizePrice,
			},
		).
		Capacity(CapacityRule{
			Container: "div.AreasAvailable",
			Items:     ".flex-50",
			Figures:   "h6",
			Area:      "p",
			Type:      "div.small",
		}).
		Policies(PolicyRule{
			Region:   "div.AboutSection div.faqs",
			LabelTag: "p",
			Axis:     "following-sibling::p[1]",
			Labels: []PolicyLabel{
				{Label: "Catering policy", Key: "catering"},
				{Label: "Decor Policy", Key: "decor"},
				{Label: "Outside Alcohol", Key: "alcohol"},
				{Label: "DJ Policy", Key: "dj"},
			},
		}).
		RoomCount(RoomCountRule{
			Region:   "div.AboutSection div.faqs",
			LabelTag: "p",
			Label:    "Room Count",
			Axis:     "following-sibling::p[1]",
		}).
		Render(5*time.Second, "div.addr-right").
		Retain(func(rec *types.VendorRecord) bool {
			return rec.HasName() && (rec.HasPricing() || rec.HasCapacity())
		}).
		Build()
}
