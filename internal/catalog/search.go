package catalog

import (
	"sort"
	"strings"
)

// SortKey selects the client-side product ordering.
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByPriceLow  SortKey = "price-low"
	SortByPriceHigh SortKey = "price-high"
	SortByRating    SortKey = "rating"
)

// SearchProducts returns products whose title or description contains
// the term, case-insensitively. An empty term matches everything.
func SearchProducts(products []Product, term string) []Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]Product(nil), products...)
	}
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			matched = append(matched, p)
		}
	}
	return matched
}

// FilterByCategory returns products in the given category. An empty
// category matches everything.
func FilterByCategory(products []Product, category string) []Product {
	if category == "" {
		return append([]Product(nil), products...)
	}
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	return matched
}

// SortProducts orders a copy of products by the given key. Unknown
// keys fall back to name ordering.
func SortProducts(products []Product, key SortKey) []Product {
	sorted := append([]Product(nil), products...)
	sort.SliceStable(sorted, func(i, j int) bool {
		switch key {
		case SortByPriceLow:
			return sorted[i].Price.LessThan(sorted[j].Price)
		case SortByPriceHigh:
			return sorted[j].Price.LessThan(sorted[i].Price)
		case SortByRating:
			return sorted[j].Rating.Rate < sorted[i].Rating.Rate
		default:
			return sorted[i].Title < sorted[j].Title
		}
	})
	return sorted
}
