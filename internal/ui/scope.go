package ui

import (
	"context"

	"github.com/five82/hoard/internal/hoarder"
	"github.com/five82/hoard/internal/session"
)

// scopeKind says which collection the list view pages through.
type scopeKind int

const (
	scopeFilter scopeKind = iota // GET /bookmarks with the active Filter
	scopeSearch
	scopeList
	scopeTag
)

// scope is the collection behind the list view. For a search, name holds
// the search text; for a list or tag, id and name identify it.
type scope struct {
	kind scopeKind
	id   string
	name string
}

// Label names the scope kind for the header chip.
func (s scope) Label() string {
	switch s.kind {
	case scopeSearch:
		return "Search"
	case scopeList:
		return "List"
	case scopeTag:
		return "Tag"
	default:
		return "Filter"
	}
}

// pageLoader returns the request for one page of s. Cursors from one scope
// are never replayed against another; the pager is reset on every change.
func (s scope) pageLoader(store *session.Store, filter Filter, cursor *string, limit int) func(context.Context) (hoarder.BookmarkPage, error) {
	page := hoarder.PageQuery{Cursor: cursor}
	if limit > 0 {
		page.Limit = hoarder.Int(limit)
	}
	switch s.kind {
	case scopeSearch:
		query := hoarder.SearchQuery{Text: s.name, Cursor: page.Cursor, Limit: page.Limit}
		return func(ctx context.Context) (hoarder.BookmarkPage, error) {
			return store.SearchBookmarks(ctx, query)
		}
	case scopeList:
		id := s.id
		return func(ctx context.Context) (hoarder.BookmarkPage, error) {
			return store.FetchListBookmarks(ctx, id, page)
		}
	case scopeTag:
		id := s.id
		return func(ctx context.Context) (hoarder.BookmarkPage, error) {
			return store.FetchTagBookmarks(ctx, id, page)
		}
	}
	query := filter.Query(cursor, limit)
	return func(ctx context.Context) (hoarder.BookmarkPage, error) {
		return store.FetchBookmarks(ctx, query)
	}
}

// collectionEntries flattens lists and tags into picker rows, lists first.
func collectionEntries(lists []hoarder.List, tags []hoarder.Tag) []scope {
	out := make([]scope, 0, len(lists)+len(tags))
	for _, l := range lists {
		out = append(out, scope{kind: scopeList, id: l.ID, name: l.Name})
	}
	for _, t := range tags {
		out = append(out, scope{kind: scopeTag, id: t.ID, name: t.Name})
	}
	return out
}
