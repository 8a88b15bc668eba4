package hoarder

import (
	"net/url"
	"strconv"
)

// Bookmark mirrors one entry of the /v1/bookmarks payload.
// CreatedAt is passed through as the server sent it.
type Bookmark struct {
	ID         string `json:"bookmark_id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Favourited bool   `json:"favourited"`
	Archived   bool   `json:"archived"`
	CreatedAt  string `json:"created_at"`
}

// BookmarkPage is one page of bookmarks. A nil NextCursor marks the end of
// the collection; a non-nil cursor must be sent back unchanged.
type BookmarkPage struct {
	Bookmarks  []Bookmark `json:"bookmarks"`
	NextCursor *string    `json:"next_cursor"`
}

// HasMore reports whether another page can be requested.
func (p BookmarkPage) HasMore() bool {
	return p.NextCursor != nil
}

// BookmarkQuery filters GET /bookmarks. Nil fields are left out of the
// request entirely.
type BookmarkQuery struct {
	Favourited *bool
	Archived   *bool
	Cursor     *string
	Limit      *int
}

// Values encodes the query as URL parameters.
func (q BookmarkQuery) Values() url.Values {
	values := url.Values{}
	if q.Favourited != nil {
		values.Set("favourited", strconv.FormatBool(*q.Favourited))
	}
	if q.Archived != nil {
		values.Set("archived", strconv.FormatBool(*q.Archived))
	}
	setPage(values, q.Cursor, q.Limit)
	return values
}

// PageQuery pages through a collection that takes no filters, such as the
// bookmarks of a list or a tag.
type PageQuery struct {
	Cursor *string
	Limit  *int
}

// Values encodes the query as URL parameters.
func (q PageQuery) Values() url.Values {
	values := url.Values{}
	setPage(values, q.Cursor, q.Limit)
	return values
}

// SearchQuery is a full-text search. Text is always sent as "q"; the
// cursor follows the same round-trip rules as BookmarkPage.NextCursor.
type SearchQuery struct {
	Text   string
	Cursor *string
	Limit  *int
}

// Values encodes the query as URL parameters.
func (q SearchQuery) Values() url.Values {
	values := url.Values{}
	values.Set("q", q.Text)
	setPage(values, q.Cursor, q.Limit)
	return values
}

func setPage(values url.Values, cursor *string, limit *int) {
	if cursor != nil {
		values.Set("cursor", *cursor)
	}
	if limit != nil {
		values.Set("limit", strconv.Itoa(*limit))
	}
}

// BookmarkCreate is the POST body for a new bookmark.
type BookmarkCreate struct {
	URL   string  `json:"url"`
	Title *string `json:"title,omitempty"`
}

// List is a user-curated collection of bookmarks.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tag labels bookmarks.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BookmarkUpdate is the PATCH body for a bookmark. Nil fields are not sent.
type BookmarkUpdate struct {
	Favourited *bool   `json:"favourited,omitempty"`
	Archived   *bool   `json:"archived,omitempty"`
	Title      *string `json:"title,omitempty"`
}

// Empty reports whether the update carries no changes.
func (u BookmarkUpdate) Empty() bool {
	return u.Favourited == nil && u.Archived == nil && u.Title == nil
}

// Bool returns a pointer to v, for building queries and updates.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
