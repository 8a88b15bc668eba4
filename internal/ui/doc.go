// Package ui provides the Bubble Tea terminal front-end for hoard.
//
// # Architecture Overview
//
// Model is the single Bubble Tea model. It owns no credentials itself: the
// server URL and the validated API key live in the injected session.Store,
// and every network call goes through it from a tea.Cmd so Update never
// blocks.
//
// # Views
//
//   - Setup: server URL and API key form. Submitting normalizes the URL via
//     Store.SetOrigin, then validates the key with Store.ValidateAndStore.
//     The key field is cleared whatever the outcome.
//   - List: one page of bookmarks from the current scope: the filtered
//     listing, a server search, a list or a tag. Typing a search
//     fuzzy-filters the loaded page; enter sends it to the server.
//   - Collections: a picker over the account's lists and tags.
//   - Logs: the tail of this session's diagnostics file.
//
// # Paging
//
// The server only returns forward cursors. pager keeps the cursors of the
// pages already visited so "previous" replays an earlier cursor verbatim.
// Changing scope starts a fresh pager.
// Each fetch carries a sequence number; a page that arrives after a newer
// request was issued is dropped.
//
// # Key Bindings
//
//   - j/k, g/G: Move selection
//   - n/p: Next/previous page
//   - f: Cycle filter (All, Favourites, Archived, Inbox)
//   - /: Filter the page as you type, enter searches the server
//   - b: Browse lists and tags
//   - esc: Clear the page filter, then leave a search, list or tag
//   - s/a: Toggle favourite/archived
//   - d then y: Delete
//   - c: Copy URL to the clipboard
//   - u: Change server or key
//   - l: Diagnostics log
//   - T: Cycle theme (saved to prefs)
//   - h/?: Help
//   - e or Ctrl+C: Exit
package ui
