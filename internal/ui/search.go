package ui

import (
	"github.com/sahilm/fuzzy"

	"github.com/five82/hoard/internal/hoarder"
)

// bookmarkSource implements fuzzy.Source over title and URL.
type bookmarkSource []hoarder.Bookmark

func (s bookmarkSource) String(i int) string {
	return s[i].Title + " " + s[i].URL
}

func (s bookmarkSource) Len() int {
	return len(s)
}

// fuzzyFilter returns the bookmarks matching query, best match first. An
// empty query returns the input unchanged.
func fuzzyFilter(bookmarks []hoarder.Bookmark, query string) []hoarder.Bookmark {
	if query == "" {
		return bookmarks
	}
	matches := fuzzy.FindFrom(query, bookmarkSource(bookmarks))
	out := make([]hoarder.Bookmark, len(matches))
	for i, m := range matches {
		out[i] = bookmarks[m.Index]
	}
	return out
}
