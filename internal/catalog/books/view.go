package books

import (
	"golang.org/x/text/language"
	"golang.org/x/text/search"
)

// Badge is the stock indicator next to a book card.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// lowStockThreshold is where the badge turns yellow.
const lowStockThreshold = 2

// StockBadge maps the available count to the card badge.
func StockBadge(available int) Badge {
	switch {
	case available <= 0:
		return Badge{Label: "Habis", Color: "red"}
	case available <= lowStockThreshold:
		return Badge{Label: "Stok Terbatas", Color: "yellow"}
	default:
		return Badge{Label: "Tersedia", Color: "green"}
	}
}

var titleMatcher = search.New(language.Indonesian, search.IgnoreCase, search.IgnoreDiacritics)

// MatchesQuery is the catalog page filter: case-insensitive substring
// match over title and author.
func MatchesQuery(b *Book, query string) bool {
	if query == "" {
		return true
	}
	if start, _ := titleMatcher.IndexString(b.Title, query); start >= 0 {
		return true
	}
	if start, _ := titleMatcher.IndexString(b.Author, query); start >= 0 {
		return true
	}
	return false
}

// FilterBooks keeps the load-all-then-filter contract of the catalog
// page: the full list comes from one query, the search box narrows it.
func FilterBooks(all []Book, query string) []Book {
	if query == "" {
		return all
	}
	out := make([]Book, 0, len(all))
	for i := range all {
		if MatchesQuery(&all[i], query) {
			out = append(out, all[i])
		}
	}
	return out
}
