package catalog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/junaidrashid-git/swiftcart-api/models"
)

// Query filters and orders a product listing. The zero value keeps every product
// in stored order.
type Query struct {
	Search       string
	Category     string
	Brand        string
	MinPrice     *float64
	MaxPrice     *float64
	TrendingOnly bool
	SortBy       string // price, rating, title, discount
	Desc         bool
}

// ParseQuery reads a Query from URL parameters such as
// ?search=phone&category=Mobiles&min_price=100&sort_by=price&order=desc.
func ParseQuery(v url.Values) (Query, error) {
	q := Query{
		Search:       strings.TrimSpace(v.Get("search")),
		Category:     v.Get("category"),
		Brand:        v.Get("brand"),
		TrendingOnly: v.Get("trending") == "true",
		SortBy:       v.Get("sort_by"),
		Desc:         strings.EqualFold(v.Get("order"), "desc"),
	}
	for param, dst := range map[string]**float64{"min_price": &q.MinPrice, "max_price": &q.MaxPrice} {
		raw := v.Get(param)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Query{}, &QueryError{Param: param}
		}
		*dst = &f
	}
	switch q.SortBy {
	case "", "price", "rating", "title", "discount":
	default:
		return Query{}, &QueryError{Param: "sort_by"}
	}
	return q, nil
}

type QueryError struct {
	Param string
}

func (e *QueryError) Error() string { return "invalid " + e.Param }

func (q Query) match(p models.Product) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) &&
			!strings.Contains(strings.ToLower(p.Brand), needle) {
			return false
		}
	}
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if q.Brand != "" && !strings.EqualFold(p.Brand, q.Brand) {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	return !q.TrendingOnly || p.Trending
}

func (q Query) Apply(products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q.match(p) {
			out = append(out, p)
		}
	}
	if q.SortBy == "" {
		return out
	}

	less := func(a, b models.Product) bool {
		switch q.SortBy {
		case "rating":
			return a.Rating < b.Rating
		case "title":
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case "discount":
			return Discount(a) < Discount(b)
		default:
			return a.Price < b.Price
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// Discount is the percentage off the original price, rounded down.
func Discount(p models.Product) int {
	if p.OriginalPrice <= 0 || p.Price >= p.OriginalPrice {
		return 0
	}
	return int((p.OriginalPrice - p.Price) / p.OriginalPrice * 100)
}
