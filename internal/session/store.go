package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/five82/hoard/internal/hoarder"
	"github.com/five82/hoard/internal/logger"
)

var (
	// ErrNotFound means no API key has been validated for the current server.
	ErrNotFound = errors.New("no API key found")
	// ErrNoOrigin means SetOrigin has not succeeded yet.
	ErrNoOrigin = errors.New("no server URL configured")
	// ErrStorage means the store itself is unusable.
	ErrStorage = errors.New("credential store unavailable")
)

// State is the credential lifecycle state.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Credential is an API key together with the origin that accepted it.
type Credential struct {
	Key         string
	Origin      string
	ValidatedAt time.Time
}

// ClientFactory builds an API client for an origin.
type ClientFactory func(origin string) (hoarder.BookmarkAPI, error)

// DefaultFactory returns a ClientFactory backed by hoarder.NewClient.
func DefaultFactory(opts ...hoarder.Option) ClientFactory {
	return func(origin string) (hoarder.BookmarkAPI, error) {
		return hoarder.NewClient(origin, opts...)
	}
}

// Store owns the server origin and the validated credential.
//
// Both fields are read and written under one lock so callers never see an
// origin from one update paired with a key from another. The lock is never
// held across network I/O.
type Store struct {
	mu        sync.RWMutex
	origin    string
	cred      *Credential
	newClient ClientFactory
	log       logger.Logger
	now       func() time.Time
}

// New returns an unauthenticated store with no origin.
func New(factory ClientFactory, log logger.Logger) *Store {
	if factory == nil {
		factory = DefaultFactory()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{newClient: factory, log: log, now: time.Now}
}

// SetOrigin normalizes raw and replaces the stored origin.
func (s *Store) SetOrigin(raw string) (string, error) {
	if s == nil {
		return "", ErrStorage
	}
	origin, err := hoarder.NormalizeOrigin(raw)
	if err != nil {
		s.log.Error("server URL rejected", logger.String("input", hoarder.RedactURL(raw)), logger.Error(err))
		return "", err
	}

	s.mu.Lock()
	s.origin = origin
	s.mu.Unlock()

	s.log.Info("server URL set", logger.String("origin", origin))
	return origin, nil
}

// Origin returns the stored origin, or "" if none was set.
func (s *Store) Origin() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.origin
}

// State reports whether a key has ever been validated.
func (s *Store) State() State {
	if s == nil {
		return Unauthenticated
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return Unauthenticated
	}
	return Authenticated
}

// Probe checks apiKey against origin with a one-item bookmark listing. It
// never touches the store.
func (s *Store) Probe(ctx context.Context, origin, apiKey string) (Credential, error) {
	if s == nil {
		return Credential{}, ErrStorage
	}
	if origin == "" {
		return Credential{}, ErrNoOrigin
	}
	client, err := s.newClient(origin)
	if err != nil {
		return Credential{}, err
	}
	if _, err := client.ListBookmarks(ctx, apiKey, hoarder.BookmarkQuery{Limit: hoarder.Int(1)}); err != nil {
		return Credential{}, err
	}
	return Credential{Key: apiKey, Origin: client.Origin(), ValidatedAt: s.now()}, nil
}

// Commit stores a credential produced by Probe.
func (s *Store) Commit(cred Credential) error {
	if s == nil {
		return ErrStorage
	}
	if cred.Origin == "" {
		return fmt.Errorf("commit credential: %w", ErrNoOrigin)
	}
	s.mu.Lock()
	s.cred = &cred
	s.mu.Unlock()
	return nil
}

// ValidateAndStore probes apiKey against the current origin and keeps it
// only if the probe succeeds. On failure the previous credential, if any,
// is left exactly as it was.
func (s *Store) ValidateAndStore(ctx context.Context, apiKey string) error {
	if s == nil {
		return ErrStorage
	}
	origin := s.Origin()
	s.log.Info("validating API key", logger.String("origin", origin))

	cred, err := s.Probe(ctx, origin, apiKey)
	if err != nil {
		s.log.Error("API key validation failed", logger.String("origin", origin), logger.Error(err))
		return err
	}
	if err := s.Commit(cred); err != nil {
		return err
	}
	s.log.Info("API key validated and stored", logger.String("origin", cred.Origin))
	return nil
}

// Credential returns a copy of the stored credential whatever its origin.
// Callers that send the key anywhere should use APIKey instead.
func (s *Store) Credential() (Credential, error) {
	if s == nil {
		return Credential{}, ErrStorage
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return Credential{}, ErrNotFound
	}
	return *s.cred, nil
}

// APIKey returns the stored key if it was validated against the current
// origin. After SetOrigin moves to another server it reports ErrNotFound,
// the same as every authenticated request would.
func (s *Store) APIKey() (string, error) {
	cred, err := s.current()
	if err != nil {
		return "", err
	}
	return cred.Key, nil
}

// FetchBookmarks lists bookmarks with the stored origin and key.
func (s *Store) FetchBookmarks(ctx context.Context, query hoarder.BookmarkQuery) (hoarder.BookmarkPage, error) {
	client, key, err := s.authorized()
	if err != nil {
		return hoarder.BookmarkPage{}, err
	}
	return client.ListBookmarks(ctx, key, query)
}

// GetBookmark fetches one bookmark.
func (s *Store) GetBookmark(ctx context.Context, id string) (hoarder.Bookmark, error) {
	client, key, err := s.authorized()
	if err != nil {
		return hoarder.Bookmark{}, err
	}
	return client.GetBookmark(ctx, key, id)
}

// UpdateBookmark patches a bookmark.
func (s *Store) UpdateBookmark(ctx context.Context, id string, update hoarder.BookmarkUpdate) (hoarder.Bookmark, error) {
	client, key, err := s.authorized()
	if err != nil {
		return hoarder.Bookmark{}, err
	}
	return client.UpdateBookmark(ctx, key, id, update)
}

// SetFavourited flips the favourited flag of a bookmark.
func (s *Store) SetFavourited(ctx context.Context, id string, favourited bool) (hoarder.Bookmark, error) {
	return s.UpdateBookmark(ctx, id, hoarder.BookmarkUpdate{Favourited: hoarder.Bool(favourited)})
}

// SetArchived flips the archived flag of a bookmark.
func (s *Store) SetArchived(ctx context.Context, id string, archived bool) (hoarder.Bookmark, error) {
	return s.UpdateBookmark(ctx, id, hoarder.BookmarkUpdate{Archived: hoarder.Bool(archived)})
}

// DeleteBookmark removes a bookmark.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	client, key, err := s.authorized()
	if err != nil {
		return err
	}
	return client.DeleteBookmark(ctx, key, id)
}

// SearchBookmarks runs a server-side search.
func (s *Store) SearchBookmarks(ctx context.Context, query hoarder.SearchQuery) (hoarder.BookmarkPage, error) {
	client, key, err := s.authorized()
	if err != nil {
		return hoarder.BookmarkPage{}, err
	}
	return client.SearchBookmarks(ctx, key, query)
}

// CreateBookmark saves a new bookmark.
func (s *Store) CreateBookmark(ctx context.Context, create hoarder.BookmarkCreate) (hoarder.Bookmark, error) {
	client, key, err := s.authorized()
	if err != nil {
		return hoarder.Bookmark{}, err
	}
	return client.CreateBookmark(ctx, key, create)
}

// Lists returns the lists of the account.
func (s *Store) Lists(ctx context.Context) ([]hoarder.List, error) {
	client, key, err := s.authorized()
	if err != nil {
		return nil, err
	}
	return client.ListLists(ctx, key)
}

// Tags returns the tags of the account.
func (s *Store) Tags(ctx context.Context) ([]hoarder.Tag, error) {
	client, key, err := s.authorized()
	if err != nil {
		return nil, err
	}
	return client.ListTags(ctx, key)
}

// FetchListBookmarks pages through the bookmarks of one list.
func (s *Store) FetchListBookmarks(ctx context.Context, listID string, query hoarder.PageQuery) (hoarder.BookmarkPage, error) {
	client, key, err := s.authorized()
	if err != nil {
		return hoarder.BookmarkPage{}, err
	}
	return client.ListListBookmarks(ctx, key, listID, query)
}

// FetchTagBookmarks pages through the bookmarks carrying one tag.
func (s *Store) FetchTagBookmarks(ctx context.Context, tagID string, query hoarder.PageQuery) (hoarder.BookmarkPage, error) {
	client, key, err := s.authorized()
	if err != nil {
		return hoarder.BookmarkPage{}, err
	}
	return client.ListTagBookmarks(ctx, key, tagID, query)
}

// authorized builds a client for the current credential. A key is only ever
// sent to the origin that validated it.
func (s *Store) authorized() (hoarder.BookmarkAPI, string, error) {
	cred, err := s.current()
	if err != nil {
		return nil, "", err
	}
	client, err := s.newClient(cred.Origin)
	if err != nil {
		return nil, "", err
	}
	return client, cred.Key, nil
}

// current takes one consistent snapshot of origin and credential and
// returns the credential only if it belongs to the current origin.
func (s *Store) current() (Credential, error) {
	if s == nil {
		return Credential{}, ErrStorage
	}
	s.mu.RLock()
	origin := s.origin
	var cred Credential
	hasCred := s.cred != nil
	if hasCred {
		cred = *s.cred
	}
	s.mu.RUnlock()

	if !hasCred {
		return Credential{}, ErrNotFound
	}
	if origin == "" {
		return Credential{}, ErrNoOrigin
	}
	if cred.Origin != origin {
		return Credential{}, fmt.Errorf("%w for %s", ErrNotFound, origin)
	}
	return cred, nil
}
