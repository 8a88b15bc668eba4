package hoarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http/httpguts"

	"github.com/five82/hoard/internal/logger"
)

// BookmarkAPI defines the bookmark operations of the service.
// This interface is implemented by *Client and can be used for testing.
type BookmarkAPI interface {
	Origin() string
	ListBookmarks(ctx context.Context, apiKey string, query BookmarkQuery) (BookmarkPage, error)
	GetBookmark(ctx context.Context, apiKey, id string) (Bookmark, error)
	UpdateBookmark(ctx context.Context, apiKey, id string, update BookmarkUpdate) (Bookmark, error)
	DeleteBookmark(ctx context.Context, apiKey, id string) error
	CreateBookmark(ctx context.Context, apiKey string, create BookmarkCreate) (Bookmark, error)
	SearchBookmarks(ctx context.Context, apiKey string, query SearchQuery) (BookmarkPage, error)
	ListLists(ctx context.Context, apiKey string) ([]List, error)
	ListListBookmarks(ctx context.Context, apiKey, listID string, query PageQuery) (BookmarkPage, error)
	ListTags(ctx context.Context, apiKey string) ([]Tag, error)
	ListTagBookmarks(ctx context.Context, apiKey, tagID string, query PageQuery) (BookmarkPage, error)
}

// Ensure Client implements BookmarkAPI at compile time.
var _ BookmarkAPI = (*Client)(nil)

// AuthScheme selects how the API key is attached to requests.
type AuthScheme int

const (
	// AuthAPIKey sends "X-API-Key: <key>". This is the default.
	AuthAPIKey AuthScheme = iota
	// AuthBearer sends "Authorization: Bearer <key>".
	AuthBearer
)

func (s AuthScheme) String() string {
	switch s {
	case AuthBearer:
		return "bearer"
	default:
		return "x-api-key"
	}
}

// ParseAuthScheme maps a config value onto an AuthScheme. Empty means AuthAPIKey.
func ParseAuthScheme(value string) (AuthScheme, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "x-api-key", "api-key", "apikey":
		return AuthAPIKey, nil
	case "bearer", "authorization":
		return AuthBearer, nil
	default:
		return AuthAPIKey, fmt.Errorf("unknown auth header %q (want x-api-key or bearer)", value)
	}
}

const (
	apiVersionPrefix = "/v1"
	bookmarksPath    = "/bookmarks"
	searchPath       = "/bookmarks/search"
	listsPath        = "/lists"
	tagsPath         = "/tags"
	defaultUserAgent = "hoard/0.1"
	requestTimeout   = 15 * time.Second
	requestIDHeader  = "X-Request-Id"
)

var errInvalidAPIKey = errors.New("API key contains characters not allowed in a header")

// Client talks to the bookmark service's /v1 REST API. It holds the origin
// it was built for and nothing else; every call carries its own API key.
type Client struct {
	origin    string
	http      *http.Client
	auth      AuthScheme
	userAgent string
	log       logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the request timeout on the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithAuthScheme selects the auth header used for every request.
func WithAuthScheme(s AuthScheme) Option {
	return func(c *Client) { c.auth = s }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the diagnostics sink.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient builds a Client for the given server address. The address is
// normalized first, so anything NormalizeOrigin accepts is fine here.
func NewClient(origin string, opts ...Option) (*Client, error) {
	normalized, err := NormalizeOrigin(origin)
	if err != nil {
		return nil, err
	}
	c := &Client{
		origin:    normalized,
		http:      &http.Client{Timeout: requestTimeout},
		auth:      AuthAPIKey,
		userAgent: defaultUserAgent,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log.Debug("api client created",
		logger.String("origin", c.origin),
		logger.String("auth", c.auth.String()))
	return c, nil
}

// Origin returns the normalized origin the client targets.
func (c *Client) Origin() string {
	return c.origin
}

// BuildURL joins the origin, the API version prefix and path.
func (c *Client) BuildURL(path string) string {
	return c.origin + apiVersionPrefix + path
}

// ListBookmarks fetches one page of bookmarks.
func (c *Client) ListBookmarks(ctx context.Context, apiKey string, query BookmarkQuery) (BookmarkPage, error) {
	if c == nil {
		return BookmarkPage{}, fmt.Errorf("client is nil")
	}
	return c.page(ctx, bookmarksPath, apiKey, query.Values())
}

// GetBookmark fetches a single bookmark by id.
func (c *Client) GetBookmark(ctx context.Context, apiKey, id string) (Bookmark, error) {
	if c == nil {
		return Bookmark{}, fmt.Errorf("client is nil")
	}
	path, err := bookmarkPath(id)
	if err != nil {
		return Bookmark{}, err
	}
	var payload Bookmark
	if err := c.Do(ctx, http.MethodGet, path, apiKey, nil, nil, &payload); err != nil {
		return Bookmark{}, err
	}
	return payload, nil
}

// UpdateBookmark patches the given fields and returns the updated bookmark.
func (c *Client) UpdateBookmark(ctx context.Context, apiKey, id string, update BookmarkUpdate) (Bookmark, error) {
	if c == nil {
		return Bookmark{}, fmt.Errorf("client is nil")
	}
	if update.Empty() {
		return Bookmark{}, fmt.Errorf("update has no fields")
	}
	path, err := bookmarkPath(id)
	if err != nil {
		return Bookmark{}, err
	}
	var payload Bookmark
	if err := c.Do(ctx, http.MethodPatch, path, apiKey, nil, update, &payload); err != nil {
		return Bookmark{}, err
	}
	return payload, nil
}

// DeleteBookmark removes a bookmark.
func (c *Client) DeleteBookmark(ctx context.Context, apiKey, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	path, err := bookmarkPath(id)
	if err != nil {
		return err
	}
	return c.Do(ctx, http.MethodDelete, path, apiKey, nil, nil, nil)
}

// CreateBookmark saves a new bookmark and returns it as stored.
func (c *Client) CreateBookmark(ctx context.Context, apiKey string, create BookmarkCreate) (Bookmark, error) {
	if c == nil {
		return Bookmark{}, fmt.Errorf("client is nil")
	}
	create.URL = strings.TrimSpace(create.URL)
	if create.URL == "" {
		return Bookmark{}, fmt.Errorf("bookmark url required")
	}
	var payload Bookmark
	if err := c.Do(ctx, http.MethodPost, bookmarksPath, apiKey, nil, create, &payload); err != nil {
		return Bookmark{}, err
	}
	return payload, nil
}

// SearchBookmarks runs a server-side search and returns one page of hits.
func (c *Client) SearchBookmarks(ctx context.Context, apiKey string, query SearchQuery) (BookmarkPage, error) {
	if c == nil {
		return BookmarkPage{}, fmt.Errorf("client is nil")
	}
	query.Text = strings.TrimSpace(query.Text)
	if query.Text == "" {
		return BookmarkPage{}, fmt.Errorf("search text required")
	}
	return c.page(ctx, searchPath, apiKey, query.Values())
}

// ListLists returns every list of the account.
func (c *Client) ListLists(ctx context.Context, apiKey string) ([]List, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload struct {
		Lists []List `json:"lists"`
	}
	if err := c.Do(ctx, http.MethodGet, listsPath, apiKey, nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Lists, nil
}

// ListListBookmarks returns one page of the bookmarks in a list.
func (c *Client) ListListBookmarks(ctx context.Context, apiKey, listID string, query PageQuery) (BookmarkPage, error) {
	if c == nil {
		return BookmarkPage{}, fmt.Errorf("client is nil")
	}
	path, err := itemPath(listsPath, "list", listID)
	if err != nil {
		return BookmarkPage{}, err
	}
	return c.page(ctx, path+bookmarksPath, apiKey, query.Values())
}

// ListTags returns every tag of the account.
func (c *Client) ListTags(ctx context.Context, apiKey string) ([]Tag, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload struct {
		Tags []Tag `json:"tags"`
	}
	if err := c.Do(ctx, http.MethodGet, tagsPath, apiKey, nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Tags, nil
}

// ListTagBookmarks returns one page of the bookmarks carrying a tag.
func (c *Client) ListTagBookmarks(ctx context.Context, apiKey, tagID string, query PageQuery) (BookmarkPage, error) {
	if c == nil {
		return BookmarkPage{}, fmt.Errorf("client is nil")
	}
	path, err := itemPath(tagsPath, "tag", tagID)
	if err != nil {
		return BookmarkPage{}, err
	}
	return c.page(ctx, path+bookmarksPath, apiKey, query.Values())
}

func (c *Client) page(ctx context.Context, path, apiKey string, query url.Values) (BookmarkPage, error) {
	var payload BookmarkPage
	if err := c.Do(ctx, http.MethodGet, path, apiKey, query, nil, &payload); err != nil {
		return BookmarkPage{}, err
	}
	return payload, nil
}

// Do sends one authenticated request and decodes a success body into dest.
//
// A nil body sends no payload. A nil dest, or a 204 response, skips
// decoding. There is no retry: one request in, one outcome out.
func (c *Client) Do(ctx context.Context, method, path, apiKey string, query url.Values, body, dest any) error {
	reqURL := c.BuildURL(path)
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: "encode request", Err: err}
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, payload)
	if err != nil {
		return &TransportError{Op: "create request", Err: err}
	}
	if err := c.authorize(req, apiKey); err != nil {
		c.log.Error("request not sent", logger.String("url", reqURL), logger.Error(err))
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Info("api request",
		logger.String("method", method),
		logger.String("url", reqURL),
		logger.String("request_id", requestID))
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("api request failed",
			logger.String("url", reqURL),
			logger.String("request_id", requestID),
			logger.Error(err))
		return &TransportError{Op: "execute request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Info("api response",
		logger.Int("status", resp.StatusCode),
		logger.String("request_id", requestID),
		logger.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransportError{Op: "read error response", Err: err}
		}
		c.log.Error("api error response",
			logger.Int("status", resp.StatusCode),
			logger.String("request_id", requestID),
			logger.String("body", string(text)))
		return &APIError{Status: resp.StatusCode, Body: string(text)}
	}

	if dest == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		c.log.Error("api response not decodable", logger.Error(err))
		return &TransportError{Op: "decode response", Err: err}
	}
	return nil
}

func (c *Client) authorize(req *http.Request, apiKey string) error {
	if !httpguts.ValidHeaderFieldValue(apiKey) {
		return &TransportError{Op: "build auth header", Err: errInvalidAPIKey}
	}
	switch c.auth {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+apiKey)
	default:
		req.Header.Set("X-API-Key", apiKey)
	}
	return nil
}

func bookmarkPath(id string) (string, error) {
	return itemPath(bookmarksPath, "bookmark", id)
}

// itemPath joins a collection path and an escaped item id.
func itemPath(collection, kind, id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("%s id required", kind)
	}
	return collection + "/" + url.PathEscape(trimmed), nil
}
