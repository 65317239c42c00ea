package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Sentinel is the placeholder for a required text field that could not be located.
const Sentinel = "N/A"

// VendorRecord is the structured result of extracting one rendered vendor page.
// It is built once per URL and never modified afterwards.
type VendorRecord struct {
	Category Category `json:"-"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Pricing  Pricing  `json:"pricing"`

	// Venue-only fields; nil for every other category so they are left out of the output.
	*VenueDetails

	Details   *Details `json:"details,omitempty"`
	SourceURL string   `json:"source_url"`
}

// VenueDetails holds the capacity, policy and room information of a venue.
type VenueDetails struct {
	Capacity  []CapacityEntry   `json:"capacity"`
	Policies  map[string]string `json:"policies"`
	RoomCount *int              `json:"room_count"`
}

// CapacityEntry describes one bookable area of a venue.
type CapacityEntry struct {
	Area     string `json:"area"`
	Type     string `json:"type"`
	Seating  *int   `json:"seating"`
	Floating *int   `json:"floating"`
}

// HasName reports whether a name was found.
func (r *VendorRecord) HasName() bool {
	return r.Name != "" && r.Name != Sentinel
}

// HasPricing reports whether at least one price was extracted.
func (r *VendorRecord) HasPricing() bool {
	return len(r.Pricing) > 0
}

// HasCapacity reports whether at least one capacity entry was extracted.
func (r *VendorRecord) HasCapacity() bool {
	return r.VenueDetails != nil && len(r.Capacity) > 0
}

// Pricing maps normalized price labels to values.
type Pricing map[string]Price

// Price is either a whole-rupee amount or a formatted currency string.
type Price struct {
	amount    int64
	text      string
	formatted bool
}

// Amount creates a numeric price.
func Amount(v int64) Price {
	return Price{amount: v}
}

// Formatted creates a currency-string price.
func Formatted(s string) Price {
	return Price{text: s, formatted: true}
}

// Int returns the numeric amount; ok is false for formatted prices.
func (p Price) Int() (int64, bool) {
	return p.amount, !p.formatted
}

// IsFormatted reports whether the price is a currency string.
func (p Price) IsFormatted() bool { return p.formatted }

func (p Price) String() string {
	if p.formatted {
		return p.text
	}
	return strconv.FormatInt(p.amount, 10)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.formatted {
		return MarshalNoEscape(p.text)
	}
	return []byte(strconv.FormatInt(p.amount, 10)), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Formatted(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = Amount(n)
	return nil
}

// Details carries the free-text summary and controlled-vocabulary tags of a vendor.
type Details struct {
	About *string
	Tags  []string

	// TagsKey names the tag list in the output ("cuisines", "services_offered").
	TagsKey string
}

func (d *Details) MarshalJSON() ([]byte, error) {
	key := d.TagsKey
	if key == "" {
		key = "tags"
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}

	about, err := MarshalNoEscape(d.About)
	if err != nil {
		return nil, err
	}
	keyJSON, err := MarshalNoEscape(key)
	if err != nil {
		return nil, err
	}
	tagsJSON, err := MarshalNoEscape(tags)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"about":`)
	buf.Write(about)
	buf.WriteByte(',')
	buf.Write(keyJSON)
	buf.WriteByte(':')
	buf.Write(tagsJSON)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalNoEscape encodes v as compact JSON without escaping <, > and &.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
