package ui

import "github.com/five82/hoard/internal/hoarder"

// Filter is the bookmark list filter mode.
type Filter int

const (
	FilterAll Filter = iota
	FilterFavourites
	FilterArchived
	FilterInbox
)

// Label returns the display label for the filter.
func (f Filter) Label() string {
	switch f {
	case FilterFavourites:
		return "Favourites"
	case FilterArchived:
		return "Archived"
	case FilterInbox:
		return "Inbox"
	default:
		return "All"
	}
}

// Next returns the filter after f in the cycle.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterFavourites
	case FilterFavourites:
		return FilterArchived
	case FilterArchived:
		return FilterInbox
	default:
		return FilterAll
	}
}

// flag names the badge color used for the filter chip.
func (f Filter) flag() string {
	switch f {
	case FilterFavourites:
		return "favourited"
	case FilterArchived:
		return "archived"
	default:
		return ""
	}
}

// Query builds the list query for the filter. FilterAll sends no flags at
// all; FilterInbox sends archived=false explicitly.
func (f Filter) Query(cursor *string, limit int) hoarder.BookmarkQuery {
	q := hoarder.BookmarkQuery{Cursor: cursor}
	if limit > 0 {
		q.Limit = hoarder.Int(limit)
	}
	switch f {
	case FilterFavourites:
		q.Favourited = hoarder.Bool(true)
	case FilterArchived:
		q.Archived = hoarder.Bool(true)
	case FilterInbox:
		q.Archived = hoarder.Bool(false)
	}
	return q
}

// pager tracks cursor pagination. The server only hands out forward
// cursors, so going back replays the cursor that produced an earlier page.
// Cursors are opaque and never modified.
type pager struct {
	current *string   // cursor that produced the page on screen; nil is the first page
	history []*string // cursors of the pages before current
	next    *string   // next_cursor of the page on screen
}

// Page returns the 1-based page number.
func (p pager) Page() int {
	return len(p.history) + 1
}

// HasNext reports whether the server announced another page.
func (p pager) HasNext() bool {
	return p.next != nil
}

// HasPrev reports whether there is an earlier page to return to.
func (p pager) HasPrev() bool {
	return len(p.history) > 0
}

// Forward returns the pager positioned on the next page. ok is false at
// the end of the collection.
func (p pager) Forward() (pager, bool) {
	if p.next == nil {
		return p, false
	}
	history := make([]*string, len(p.history), len(p.history)+1)
	copy(history, p.history)
	return pager{current: p.next, history: append(history, p.current)}, true
}

// Back returns the pager positioned on the previous page.
func (p pager) Back() (pager, bool) {
	if len(p.history) == 0 {
		return p, false
	}
	last := len(p.history) - 1
	history := make([]*string, last)
	copy(history, p.history[:last])
	return pager{current: p.history[last], history: history}, true
}

// Loaded records the next cursor of the page that was just fetched.
func (p pager) Loaded(page hoarder.BookmarkPage) pager {
	p.next = page.NextCursor
	return p
}
