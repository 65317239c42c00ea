package types

import (
	"fmt"
	"strings"
)

// Category identifies a vendor category and selects its extraction schema.
type Category string

const (
	CategoryVenue        Category = "venue"
	CategoryCaterer      Category = "caterer"
	CategoryMakeup       Category = "makeup"
	CategoryPhotographer Category = "photographer"
)

// Categories lists every supported category in display order.
func Categories() []Category {
	return []Category{CategoryVenue, CategoryCaterer, CategoryMakeup, CategoryPhotographer}
}

var categoryAliases = map[string]Category{
	"venue":          CategoryVenue,
	"venues":         CategoryVenue,
	"wedding-venues": CategoryVenue,
	"caterer":        CategoryCaterer,
	"caterers":       CategoryCaterer,
	"catering":       CategoryCaterer,
	"makeup":         CategoryMakeup,
	"makeup-artist":  CategoryMakeup,
	"makeup-artists": CategoryMakeup,
	"bridal-makeup":  CategoryMakeup,
	"photographer":   CategoryPhotographer,
	"photographers":  CategoryPhotographer,
	"photography":    CategoryPhotographer,
}

// ParseCategory resolves a category name or one of its aliases.
func ParseCategory(name string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

func (c Category) String() string { return string(c) }
