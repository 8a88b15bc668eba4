// Package session holds the server origin and the validated API key for one
// hoard process.
//
// # Lifecycle
//
//	Unauthenticated ──ValidateAndStore ok──▶ Authenticated
//	       ▲                                     │
//	       └──────── (process restart) ──────────┘
//
// A failed ValidateAndStore leaves the store as it was: an unauthenticated
// store stays unauthenticated, an authenticated one keeps its old key.
//
// # Validate-then-store
//
// ValidateAndStore is Probe followed by Commit:
//
//	cred, err := store.Probe(ctx, store.Origin(), key) // network, no lock
//	if err == nil {
//		err = store.Commit(cred)                        // lock, no network
//	}
//
// The two halves are exported so front-ends can, for example, probe a key
// against a server before switching to it.
//
// # Concurrency Model
//
// One sync.RWMutex guards origin and credential together:
//
//   - SetOrigin, Commit: write lock, no I/O
//   - Origin, State, Credential, APIKey: read lock, copy out
//   - FetchBookmarks, SearchBookmarks, Lists, Tags and the other API calls:
//     read lock for the snapshot only, then
//     network I/O with the lock released
//
// Each credential remembers the origin that accepted it. Bookmark calls
// and APIKey refuse to hand a key to any other origin and return
// ErrNotFound instead, so a concurrent SetOrigin can never route a key to
// the wrong server. Credential is the one accessor that returns the raw
// credential regardless of origin.
//
// # Errors
//
//   - ErrNotFound: no key validated (for the current origin)
//   - ErrNoOrigin: no server URL set yet
//   - ErrStorage: nil store
//   - hoarder.URLError, hoarder.TransportError, hoarder.APIError: passed
//     through unchanged from normalization and the API client
package session
