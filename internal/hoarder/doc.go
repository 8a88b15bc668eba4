// Package hoarder provides an HTTP client for the bookmark service's /v1 API.
//
// # Overview
//
// The package turns a user-supplied server address into a canonical origin,
// builds authenticated requests against {origin}/v1, and classifies every
// failure into one of three error types. It holds no credentials: the API
// key is passed to each call by the session layer.
//
// # Architecture
//
//   - origin.go: NormalizeOrigin, the only way an address becomes an origin
//   - client.go: Client, request construction and response classification
//   - types.go: Bookmark, BookmarkPage, BookmarkQuery, BookmarkUpdate
//   - errors.go: URLError, TransportError, APIError
//
// # Client Usage
//
//	client, err := hoarder.NewClient("https://hoarder.example.com/dashboard")
//	if err != nil {
//		return err // *hoarder.URLError
//	}
//	page, err := client.ListBookmarks(ctx, apiKey, hoarder.BookmarkQuery{
//		Favourited: hoarder.Bool(true),
//	})
//
// # Origin Normalization
//
// NormalizeOrigin keeps scheme, host and a non-default port:
//
//   - "https://h.example.com/dash?x=1#y" → "https://h.example.com"
//   - "HTTP://H.Example.com:80/"          → "http://h.example.com"
//   - "https://Bücher.example"            → "https://xn--bcher-kva.example"
//
// The result is idempotent under NormalizeOrigin.
//
// # Authentication
//
// The canonical header is "X-API-Key: <key>". WithAuthScheme(AuthBearer)
// switches a client to "Authorization: Bearer <key>" for servers that only
// accept bearer tokens. A client never sends both.
//
// # Error Handling
//
//   - *URLError: the address could not be parsed as an absolute URL
//   - *TransportError: DNS, connect, TLS, timeout, or a 2xx body that is
//     not valid JSON
//   - *APIError: any non-2xx status; Body is the raw response text
//
// Requests are never retried. Callers decide whether to try again.
package hoarder
