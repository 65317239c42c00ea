package parser

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/WedScrape/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var priceCmp = cmp.AllowUnexported(types.Price{})

const venueHTML = `<!DOCTYPE html>
<html>
<head><title>Grand Palace Banquets | WedMeGood</title></head>
<body>
    <div class="addr-right">  Whitefield,
        Bangalore </div>
    <div class="VendorPricing">
        <div class="f-space-between"><h6>Veg price</h6><p class="h5">₹1,200</p></div>
        <div class="f-space-between"><h6>Non Veg price</h6><p class="h5">₹1,500</p></div>
        <div class="decor"><p>Starting Price of Decor</p><span>₹</span><span>1.5 Lakhs</span></div>
        <div class="frow"><p>Price per plate</p></div>
        <div class="frow"><p>Rental Cost<!-- --> </p><p class="h5">₹2,00,000</p></div>
        <div class="frow"><p>Per function</p><p class="h5">₹9</p></div>
    </div>
    <div class="DestinationWeddingPricing"><div class="price">₹1 Crore</div></div>
    <div class="AreasAvailable">
        <div class="flex-50"><h6>150 Seating | 300 Floating</h6><p>Lawn</p><div class="small">Outdoor</div></div>
        <div class="flex-50"><h6>80 Seating</h6><p>Hall</p></div>
    </div>
    <div class="AboutSection"><div class="faqs">
        <div><p>Catering policy</p><p>Inhouse catering only</p></div>
        <div><p>Outside Alcohol</p><p>Allowed</p></div>
        <div><p>Room Count</p><p>24 rooms</p></div>
    </div></div>
</body>
</html>`

const catererHTML = `<html><body>
    <div class="vendor-details"><h1> Spice Route Caterers </h1></div>
    <div class="addr-right"><span>Indiranagar, Bangalore</span><span>Get directions</span></div>
    <div class="grid__col"><p class="text-bold">Veg Menu</p><span class="text-tertiary">₹</span><span class="text-tertiary">450<!-- -->&nbsp;</span></div>
    <div class="grid__col"><p class="text-bold">Non Veg Menu</p><span class="text-tertiary">₹</span></div>
    <div class="frow"><p>Veg price per plate</p><p class="h5">₹499<!-- -->&nbsp;</p></div>
    <div class="frow"><p>Non Veg price per plate</p><p class="h5">₹1,099</p></div>
    <div class="about-body border-t"><div class="info padding-h-20 padding-v-20">
        <p>Spice Route has served North Indian and Chinese food since 2005.</p>
        <p>Cuisines offered: Thai, South Indian</p>
    </div></div>
</body></html>`

const makeupHTML = `<html><body>
    <h1 class="h4 text-bold">Glam by Riya</h1>
    <div class="addr-right"><h6><span>Koramangala, Bangalore</span></h6></div>
    <div class="VendorPricing">
        <div class="f-space-between sc-jzJRlG emSbxZ"><h6 class="regular">Bridal Makeup Price</h6><p class="h5">15,000</p><p class="regular">per&nbsp;function</p></div>
        <div class="f-space-between sc-jzJRlG emSbxZ"><h6 class="regular">Other</h6><p class="h5">1</p></div>
    </div>
    <div class="pricing-breakup">
        <div class="grid__col--1-of-2"><p class="text-bold">Engagement Makeup</p><span class="text-tertiary">₹</span><span class="text-tertiary">10,000<!-- --> onwards</span></div>
        <div class="grid__col--1-of-2"><p class="text-bold">Trial</p><span class="text-tertiary">On request</span></div>
    </div>
    <div class="AboutSection"><div class="info">
        <p>Certified in HD Makeup and Airbrush Makeup.</p>
        <div>We also do Draping and Hair Styling. Travels to venue.</div>
    </div></div>
</body></html>`

const photographerHTML = `<html><body>
    <h1 class="h4 text-bold">Frames &amp; Films</h1>
    <div class="addr-right"><h6><span>HSR Layout, Bangalore</span></h6></div>
    <div class="VendorPricing"><div class="f-space-between sc-jzJRlG emSbxZ"><div>
        <div><h6 class="text-secondary">Photo + Video</h6><p class="h5">1,20,000</p><p class="regular">per day</p></div>
        <div><h6 class="text-secondary">Photo Package</h6><p class="h5">60,000</p><p class="regular">per&nbsp;day</p></div>
    </div></div></div>
    <div class="pricing-breakup">
        <div class="grid__col--1-of-2"><p class="text-bold">Pre-Wedding Shoot</p><span class="text-tertiary">₹</span><span class="text-tertiary">40,000<!-- --> onwards</span></div>
    </div>
    <div class="AboutSection"><div class="info">
        <div>Wedding Cinematography, Pre-Wedding Films, Wedding Albums and Drone coverage.</div>
    </div></div>
</body></html>`

func intp(n int) *int { return &n }

func extractor(t *testing.T, category types.Category) *Extractor {
	t.Helper()
	schema, err := SchemaFor(category)
	require.NoError(t, err)
	return NewExtractor(schema, testLogger)
}

func TestVenueExtract(t *testing.T) {
	e := extractor(t, types.CategoryVenue)

	rec, err := e.Extract([]byte(venueHTML), "https://example.com/venue")
	require.NoError(t, err)

	want := &types.VendorRecord{
		Category: types.CategoryVenue,
		Name:     "Grand Palace Banquets",
		Location: "Whitefield, Bangalore",
		Pricing: types.Pricing{
			"veg_price_per_plate":       types.Amount(1200),
			"non_veg_price_per_plate":   types.Amount(1500),
			"starting_price_decor":      types.Amount(150000),
			"rental_cost":               types.Amount(200000),
			"destination_wedding_price": types.Amount(10000000),
		},
		VenueDetails: &types.VenueDetails{
			Capacity: []types.CapacityEntry{
				{Area: "Lawn", Type: "Outdoor", Seating: intp(150), Floating: intp(300)},
				{Area: "Hall", Type: types.Sentinel},
			},
			Policies: map[string]string{
				"catering": "Inhouse catering only",
				"alcohol":  "Allowed",
			},
			RoomCount: intp(24),
		},
		SourceURL: "https://example.com/venue",
	}

	if diff := cmp.Diff(want, rec, priceCmp); diff != "" {
		t.Errorf("venue record mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, e.Schema().Retains(rec))
}

func TestVenueWithoutPricingOrCapacityIsDiscarded(t *testing.T) {
	e := extractor(t, types.CategoryVenue)
	doc := `<html><head><title>Test Venue | WedMeGood</title></head>
<body><div class="addr-right">Bangalore</div></body></html>`

	rec, err := e.Extract([]byte(doc), "https://example.com/test")
	require.NoError(t, err)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Test Venue",
		"location": "Bangalore",
		"pricing": {},
		"capacity": [],
		"policies": {},
		"room_count": null,
		"source_url": "https://example.com/test"
	}`, string(out))

	assert.False(t, e.Schema().Retains(rec))
}

func TestVenueVegRowDoesNotTakeNonVegPrice(t *testing.T) {
	e := extractor(t, types.CategoryVenue)
	doc := `<title>V | W</title><div class="VendorPricing">
<div class="f-space-between"><h6>Non Veg price</h6><p class="h5">₹900</p></div>
</div>`

	rec, err := e.Extract([]byte(doc), "u")
	require.NoError(t, err)
	assert.NotContains(t, rec.Pricing, "veg_price_per_plate")
	assert.Equal(t, types.Amount(900), rec.Pricing["non_veg_price_per_plate"])
}

func TestCatererExtract(t *testing.T) {
	e := extractor(t, types.CategoryCaterer)

	rec, err := e.Extract([]byte(catererHTML), "https://example.com/caterer")
	require.NoError(t, err)

	about := "Spice Route has served North Indian and Chinese food since 2005."
	want := &types.VendorRecord{
		Category: types.CategoryCaterer,
		Name:     "Spice Route Caterers",
		Location: "Indiranagar, Bangalore",
		Pricing: types.Pricing{
			"veg_menu":                types.Amount(450),
			"veg_price_per_plate":     types.Amount(499),
			"non_veg_price_per_plate": types.Amount(1099),
		},
		Details: &types.Details{
			About:   &about,
			Tags:    []string{"Chinese", "North Indian", "South Indian", "Thai"},
			TagsKey: "cuisines",
		},
		SourceURL: "https://example.com/caterer",
	}

	if diff := cmp.Diff(want, rec, priceCmp); diff != "" {
		t.Errorf("caterer record mismatch (-want +got):\n%s", diff)
	}
}

func TestCatererMissingAboutIsNull(t *testing.T) {
	e := extractor(t, types.CategoryCaterer)

	rec, err := e.Extract([]byte(`<div class="vendor-details"><h1>Only Name</h1></div>`), "u")
	require.NoError(t, err)

	out, err := json.Marshal(rec.Details)
	require.NoError(t, err)
	assert.JSONEq(t, `{"about": null, "cuisines": []}`, string(out))
	assert.Equal(t, types.Sentinel, rec.Location)
	assert.True(t, e.Schema().Retains(rec))
}

func TestMakeupExtract(t *testing.T) {
	e := extractor(t, types.CategoryMakeup)

	rec, err := e.Extract([]byte(makeupHTML), "https://example.com/makeup")
	require.NoError(t, err)

	about := "Certified in HD Makeup and Airbrush Makeup."
	want := &types.VendorRecord{
		Category: types.CategoryMakeup,
		Name:     "Glam by Riya",
		Location: "Koramangala, Bangalore",
		Pricing: types.Pricing{
			"bridal_makeup_price": types.Formatted("₹15000 per function"),
			"engagement_makeup":   types.Formatted("₹10,000 onwards"),
		},
		Details: &types.Details{
			About:   &about,
			Tags:    []string{"Airbrush Makeup", "Draping", "HD Makeup", "Hair Styling", "Travels to venue"},
			TagsKey: "services_offered",
		},
		SourceURL: "https://example.com/makeup",
	}

	if diff := cmp.Diff(want, rec, priceCmp); diff != "" {
		t.Errorf("makeup record mismatch (-want +got):\n%s", diff)
	}
}

func TestPhotographerExtract(t *testing.T) {
	e := extractor(t, types.CategoryPhotographer)

	rec, err := e.Extract([]byte(photographerHTML), "https://example.com/photo")
	require.NoError(t, err)

	about := "Wedding Cinematography, Pre-Wedding Films, Wedding Albums and Drone coverage."
	want := &types.VendorRecord{
		Category: types.CategoryPhotographer,
		Name:     "Frames & Films",
		Location: "HSR Layout, Bangalore",
		Pricing: types.Pricing{
			"photo_video":       types.Formatted("₹120000 per day"),
			"photo_package":     types.Formatted("₹60000 per day"),
			"pre_wedding_shoot": types.Formatted("₹40,000 onwards"),
		},
		Details: &types.Details{
			About:   &about,
			Tags:    []string{"Albums", "Drone", "Pre-Wedding Films", "Wedding Cinematography / Films"},
			TagsKey: "services_offered",
		},
		SourceURL: "https://example.com/photo",
	}

	if diff := cmp.Diff(want, rec, priceCmp); diff != "" {
		t.Errorf("photographer record mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyDocumentYieldsSentinels(t *testing.T) {
	for _, c := range types.Categories() {
		t.Run(c.String(), func(t *testing.T) {
			e := extractor(t, c)

			rec, err := e.Extract(nil, "https://example.com/empty")
			require.NoError(t, err)
			assert.Equal(t, types.Sentinel, rec.Name)
			assert.Equal(t, types.Sentinel, rec.Location)
			assert.Empty(t, rec.Pricing)
			assert.False(t, e.Schema().Retains(rec))
		})
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	fixtures := map[types.Category]string{
		types.CategoryVenue:        venueHTML,
		types.CategoryCaterer:      catererHTML,
		types.CategoryMakeup:       makeupHTML,
		types.CategoryPhotographer: photographerHTML,
	}

	for c, doc := range fixtures {
		t.Run(c.String(), func(t *testing.T) {
			e := extractor(t, c)

			first, err := e.Extract([]byte(doc), "https://example.com/x")
			require.NoError(t, err)
			second, err := e.Extract([]byte(doc), "https://example.com/x")
			require.NoError(t, err)

			a, err := types.MarshalNoEscape(first)
			require.NoError(t, err)
			b, err := types.MarshalNoEscape(second)
			require.NoError(t, err)
			assert.Equal(t, string(a), string(b))
		})
	}
}

func TestExtractPageUsesRequestedURL(t *testing.T) {
	e := extractor(t, types.CategoryMakeup)
	page := types.NewPage("https://example.com/a", "https://example.com/b", []byte(makeupHTML), 0)

	rec, err := e.ExtractPage(page)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", rec.SourceURL)
}

type panickyRule struct{}

func (panickyRule) Apply(*goquery.Selection, types.Pricing) error { panic("boom") }
func (panickyRule) Validate() error                               { return nil }

type failingRule struct{}

func (failingRule) Apply(*goquery.Selection, types.Pricing) error {
	return errors.New("bad selector")
}
func (failingRule) Validate() error { return nil }

func TestExtractRecoversPanics(t *testing.T) {
	schema, err := NewSchemaBuilder(types.CategoryMakeup).
		Name(TextRule{Selector: "h1"}).
		Location(TextRule{Selector: "h2"}).
		Price(panickyRule{}).
		Build()
	require.NoError(t, err)

	_, err = NewExtractor(schema, testLogger).Extract([]byte("<h1>x</h1>"), "https://example.com/p")
	require.Error(t, err)

	var pe *types.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "pricing", pe.Region)
	assert.Equal(t, "https://example.com/p", pe.URL)
}

func TestExtractReportsRuleErrors(t *testing.T) {
	schema, err := NewSchemaBuilder(types.CategoryCaterer).
		Name(TextRule{Selector: "h1"}).
		Location(TextRule{Selector: "h2"}).
		Price(failingRule{}).
		Build()
	require.NoError(t, err)

	_, err = NewExtractor(schema, testLogger).Extract([]byte("<h1>x</h1>"), "u")
	var pe *types.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "bad selector")
}

func TestSchemaBuilderValidation(t *testing.T) {
	_, err := NewSchemaBuilder("florist").
		Name(TextRule{Selector: "h1"}).
		Location(TextRule{Selector: "h2"}).
		Build()
	assert.ErrorIs(t, err, types.ErrUnknownCategory)

	_, err = NewSchemaBuilder(types.CategoryVenue).
		Location(TextRule{Selector: "h2"}).
		Price(RowPrice{Key: "x"}).
		Tags("services_offered", nil).
		Build()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "name: selector is required")
	assert.Contains(t, msg, `row price "x"`)
	assert.Contains(t, msg, "tags")
}

func TestSchemaForUnknownCategory(t *testing.T) {
	_, err := SchemaFor("florist")
	assert.ErrorIs(t, err, types.ErrUnknownCategory)
}

func TestJoinedText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div id="x"> <p>One</p>  <p> Two <b>Three</b></p><!-- skip --></div>`))
	require.NoError(t, err)

	sel := doc.Find("#x")
	assert.Equal(t, "One\nTwo\nThree", JoinedText(sel, "\n"))
	assert.Equal(t, "One Two Three", JoinedText(sel, " "))
	assert.Equal(t, "", JoinedText(doc.Find("#missing"), " "))
}

func TestNormalizeKey(t *testing.T) {
	r := strings.NewReplacer(" + ", "_", " ", "_")
	assert.Equal(t, "photo_video", NormalizeKey("Photo + Video", r))
	assert.Equal(t, "candid_photo_package", NormalizeKey("  Candid   Photo Package ", r))
	assert.Equal(t, "mixed case", NormalizeKey("Mixed Case", nil))
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, "'Room Count'", xpathLiteral("Room Count"))
	assert.Equal(t, `"Chef's Table"`, xpathLiteral("Chef's Table"))
	assert.Equal(t, `concat('a"b', "'", 'c')`, xpathLiteral(`a"b'c`))
}

func TestLabelSibling(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div class="faqs"><p> Room Count </p><span>ignored</span><p>12 rooms</p></div>`))
	require.NoError(t, err)

	text, ok, err := LabelSibling(doc.Find("div.faqs"), "p", "Room Count", "following-sibling::p[1]")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "12 rooms", text)

	_, ok, err = LabelSibling(doc.Find("div.faqs"), "p", "DJ Policy", "following-sibling::p[1]")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtractLinks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body>
		<a href="/profile/Glam-by-Riya-1">Riya</a>
		<a href="https://www.wedmegood.com/profile/Glam-by-Riya-1#reviews">Riya again</a>
		<a href="/vendors/bangalore/">Listing</a>
		<a href="#top">Top</a>
		<a href="javascript:void(0)">JS</a>
		<a href="mailto:hi@example.com">Mail</a>
		<a href="">Empty</a>
		<a href="https://cdn.example.com/profile/x">CDN</a>
	</body></html>`))
	require.NoError(t, err)

	base := "https://www.wedmegood.com/vendors/bangalore/bridal-makeup/?page=5"

	all := ExtractLinks(doc, base, nil)
	assert.Equal(t, []string{
		"https://www.wedmegood.com/profile/Glam-by-Riya-1",
		"https://www.wedmegood.com/vendors/bangalore/",
		"https://cdn.example.com/profile/x",
	}, all)

	profiles := ExtractLinks(doc, base, ContainsFilter("wedmegood.com/profile/"))
	assert.Equal(t, []string{"https://www.wedmegood.com/profile/Glam-by-Riya-1"}, profiles)
}
