package catalog

import (
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter describes browse-view constraints on a product listing. Every
// field is independently optional; the zero value matches everything.
type Filter struct {
	// Category matches exactly when non-empty.
	Category string
	// MinPrice and MaxPrice are inclusive bounds, applied when non-nil.
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// SearchTerm, when non-empty after trimming, matches case-insensitively
	// against title, description, or category. A set search term decides
	// membership on its own: category and price bounds are not additionally
	// enforced for that product.
	SearchTerm string
}

// Apply returns the products matching the filter, preserving input order.
func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f Filter) matches(p Product) bool {
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		term = strings.ToLower(term)
		return strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term) ||
			strings.Contains(strings.ToLower(p.Category), term)
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// SortBy returns a sorted copy of products. The key has the form
// "field-direction" where field is one of price, title, or rating and
// direction is asc or desc. Title comparison is case-insensitive; rating
// comparison treats a missing rating as 0. An unknown field leaves the
// order unchanged. The sort is stable: products with equal keys keep
// their original relative order in both directions.
func SortBy(products []Product, key string) []Product {
	out := slices.Clone(products)

	field, dir, _ := strings.Cut(key, "-")
	var less func(a, b Product) bool
	switch field {
	case "price":
		less = func(a, b Product) bool { return a.Price.LessThan(b.Price) }
	case "title":
		less = func(a, b Product) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case "rating":
		less = func(a, b Product) bool { return a.rate() < b.rate() }
	default:
		return out
	}

	desc := dir == "desc"
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}
