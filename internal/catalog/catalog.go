// Package catalog implements the storefront listing engine: filter by search
// text, category, difficulty and price bucket, sort by a named key, then cut
// one page. Everything here is pure and works on already-loaded slices.
package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Filter value meaning "no restriction".
const All = "all"

// Sort keys.
const (
	SortName       = "name"
	SortPriceAsc   = "price-asc"
	SortPriceDesc  = "price-desc"
	SortDifficulty = "difficulty"
	SortTime       = "time"
)

// Price range keys.
const (
	RangeLow    = "low"
	RangeMedium = "medium"
	RangeHigh   = "high"
)

// Default page sizes used by the storefront.
const (
	ProductPageSize = 6
	RecipePageSize  = 8
)

// Item is anything the listing engine can filter and sort.
type Item interface {
	ItemName() string
	ItemPrice() float64
	ItemCategory() string
}

// Ranked items additionally carry a difficulty label.
type Ranked interface {
	ItemDifficulty() string
}

// Timed items additionally carry a preparation time in minutes.
type Timed interface {
	ItemMinutes() int
}

// Buckets are the two thresholds splitting prices into low/medium/high:
// low < Medium <= medium < High <= high.
type Buckets struct {
	Medium float64
	High   float64
}

var (
	ProductBuckets = Buckets{Medium: 200, High: 300}
	RecipeBuckets  = Buckets{Medium: 400, High: 600}
)

// Contains reports whether price falls in the named range. Unknown ranges and
// "all" match everything.
func (b Buckets) Contains(rng string, price float64) bool {
	switch rng {
	case RangeLow:
		return price < b.Medium
	case RangeMedium:
		return price >= b.Medium && price < b.High
	case RangeHigh:
		return price >= b.High
	default:
		return true
	}
}

var difficultyRank = map[string]int{
	"Fácil":   1,
	"Medio":   2,
	"Difícil": 3,
}

// DifficultyRank orders difficulty labels; unknown labels sort last.
func DifficultyRank(d string) int {
	if r, ok := difficultyRank[d]; ok {
		return r
	}
	return len(difficultyRank) + 1
}

// Query holds every listing parameter.
type Query struct {
	Search     string `form:"search"`
	Sort       string `form:"sort"`
	Category   string `form:"category"`
	Difficulty string `form:"difficulty"`
	PriceRange string `form:"price"`
	Page       int    `form:"page"`
	PageSize   int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// WithFilter returns q with one filter changed. Any change resets the page
// to 1, mirroring how the listing screens behave.
func (q Query) WithFilter(kind, value string) Query {
	switch kind {
	case "search":
		q.Search = value
	case "sort":
		q.Sort = value
	case "category":
		q.Category = value
	case "difficulty":
		q.Difficulty = value
	case "price":
		q.PriceRange = value
	default:
		return q
	}
	q.Page = 1
	return q
}

// Page is one slice of a filtered, sorted listing.
type Page[T Item] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Filter keeps the items matching every active predicate of q. The input is
// not modified.
func Filter[T Item](items []T, q Query, b Buckets) []T {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if search != "" && !strings.Contains(strings.ToLower(it.ItemName()), search) {
			continue
		}
		if active(q.Category) && it.ItemCategory() != q.Category {
			continue
		}
		if active(q.Difficulty) {
			r, ok := any(it).(Ranked)
			if !ok || r.ItemDifficulty() != q.Difficulty {
				continue
			}
		}
		if active(q.PriceRange) && !b.Contains(q.PriceRange, it.ItemPrice()) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func active(v string) bool {
	return v != "" && v != All
}

// Sort orders items in place by key. The sort is stable so ties keep input
// order.
func Sort[T Item](items []T, key string) {
	var cmp func(a, b T) int
	switch key {
	case SortPriceAsc:
		cmp = func(a, b T) int { return compareFloat(a.ItemPrice(), b.ItemPrice()) }
	case SortPriceDesc:
		cmp = func(a, b T) int { return compareFloat(b.ItemPrice(), a.ItemPrice()) }
	case SortDifficulty:
		cmp = func(a, b T) int { return DifficultyRank(difficulty(a)) - DifficultyRank(difficulty(b)) }
	case SortTime:
		cmp = func(a, b T) int { return minutes(a) - minutes(b) }
	default:
		col := collate.New(language.Spanish)
		cmp = func(a, b T) int { return col.CompareString(a.ItemName(), b.ItemName()) }
	}
	slices.SortStableFunc(items, cmp)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func difficulty(it Item) string {
	if r, ok := any(it).(Ranked); ok {
		return r.ItemDifficulty()
	}
	return ""
}

func minutes(it Item) int {
	if t, ok := any(it).(Timed); ok {
		return t.ItemMinutes()
	}
	return 0
}

// Paginate cuts one page out of items. The page is clamped to
// [1, max(1, TotalPages)].
func Paginate[T Item](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = ProductPageSize
	}
	total := len(items)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	page = max(1, min(page, pages))
	start := (page - 1) * size
	end := min(start+size, total)
	return Page[T]{
		Items:      slices.Clone(items[start:end]),
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
	}
}

// Apply runs filter, sort and pagination in order.
func Apply[T Item](items []T, q Query, b Buckets) Page[T] {
	filtered := Filter(items, q, b)
	Sort(filtered, q.Sort)
	return Paginate(filtered, q.Page, q.PageSize)
}
