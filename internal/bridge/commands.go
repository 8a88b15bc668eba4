package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/five82/hoard/internal/hoarder"
	"github.com/five82/hoard/internal/logger"
	"github.com/five82/hoard/internal/logtail"
	"github.com/five82/hoard/internal/session"
)

const (
	defaultTailLines = 200
	maxTailLines     = 5000
)

var errBadRequest = errors.New("bad request")

type command func(ctx context.Context, args json.RawMessage) (any, error)

func (s *Server) registry() map[string]command {
	return map[string]command{
		"set_base_url":         s.setBaseURL,
		"store_api_key":        s.storeAPIKey,
		"get_api_key":          s.getAPIKey,
		"fetch_bookmarks":      s.fetchBookmarks,
		"get_bookmark":         s.getBookmark,
		"update_bookmark":      s.updateBookmark,
		"delete_bookmark":      s.deleteBookmark,
		"create_bookmark":      s.createBookmark,
		"search_bookmarks":     s.searchBookmarks,
		"get_lists":            s.getLists,
		"get_tags":             s.getTags,
		"fetch_list_bookmarks": s.fetchListBookmarks,
		"fetch_tag_bookmarks":  s.fetchTagBookmarks,
		"get_log_path":         s.getLogPath,
		"tail_log":             s.tailLog,
	}
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cmd, ok := s.commands[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown command: "+name)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	result, err := cmd(r.Context(), body)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("bridge command failed", logger.String("command", name), logger.Error(err))
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// statusFor maps an error kind to the HTTP status the bridge answers with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), hoarder.IsURLError(err):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrNoOrigin):
		return http.StatusPreconditionFailed
	case hoarder.IsTransportError(err):
		return http.StatusBadGateway
	}
	if _, ok := hoarder.AsAPIError(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// decodeArgs strictly decodes a command body into dst. An empty body leaves
// dst untouched.
func decodeArgs(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// requireArg trims value and rejects it when empty.
func requireArg(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", errBadRequest, field)
	}
	return value, nil
}

func requireID(id string) (string, error) {
	return requireArg("bookmark_id", id)
}

func checkLimit(limit *int) error {
	if limit != nil && *limit <= 0 {
		return fmt.Errorf("%w: limit must be positive", errBadRequest)
	}
	return nil
}

func (s *Server) setBaseURL(_ context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		URL string `json:"url"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	origin, err := s.deps.Store.SetOrigin(args.URL)
	if err != nil {
		return nil, err
	}
	return map[string]string{"origin": origin}, nil
}

func (s *Server) storeAPIKey(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		APIKey string `json:"api_key"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := s.deps.Store.ValidateAndStore(ctx, args.APIKey); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) getAPIKey(_ context.Context, _ json.RawMessage) (any, error) {
	key, err := s.deps.Store.APIKey()
	if err != nil {
		return nil, err
	}
	return map[string]string{"api_key": key}, nil
}

func (s *Server) fetchBookmarks(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Favourited *bool   `json:"favourited"`
		Archived   *bool   `json:"archived"`
		Cursor     *string `json:"cursor"`
		Limit      *int    `json:"limit"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := checkLimit(args.Limit); err != nil {
		return nil, err
	}
	return s.deps.Store.FetchBookmarks(ctx, hoarder.BookmarkQuery{
		Favourited: args.Favourited,
		Archived:   args.Archived,
		Cursor:     args.Cursor,
		Limit:      args.Limit,
	})
}

type bookmarkArgs struct {
	ID string `json:"bookmark_id"`
}

func (s *Server) getBookmark(ctx context.Context, raw json.RawMessage) (any, error) {
	var args bookmarkArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	id, err := requireID(args.ID)
	if err != nil {
		return nil, err
	}
	return s.deps.Store.GetBookmark(ctx, id)
}

func (s *Server) updateBookmark(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		ID         string  `json:"bookmark_id"`
		Favourited *bool   `json:"favourited"`
		Archived   *bool   `json:"archived"`
		Title      *string `json:"title"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	id, err := requireID(args.ID)
	if err != nil {
		return nil, err
	}
	update := hoarder.BookmarkUpdate{Favourited: args.Favourited, Archived: args.Archived, Title: args.Title}
	if update.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", errBadRequest)
	}
	return s.deps.Store.UpdateBookmark(ctx, id, update)
}

func (s *Server) deleteBookmark(ctx context.Context, raw json.RawMessage) (any, error) {
	var args bookmarkArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	id, err := requireID(args.ID)
	if err != nil {
		return nil, err
	}
	return nil, s.deps.Store.DeleteBookmark(ctx, id)
}

func (s *Server) createBookmark(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		URL   string  `json:"url"`
		Title *string `json:"title"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	bookmarkURL, err := requireArg("url", args.URL)
	if err != nil {
		return nil, err
	}
	return s.deps.Store.CreateBookmark(ctx, hoarder.BookmarkCreate{URL: bookmarkURL, Title: args.Title})
}

func (s *Server) searchBookmarks(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Query  string  `json:"query"`
		Cursor *string `json:"cursor"`
		Limit  *int    `json:"limit"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	text, err := requireArg("query", args.Query)
	if err != nil {
		return nil, err
	}
	if err := checkLimit(args.Limit); err != nil {
		return nil, err
	}
	return s.deps.Store.SearchBookmarks(ctx, hoarder.SearchQuery{Text: text, Cursor: args.Cursor, Limit: args.Limit})
}

func (s *Server) getLists(ctx context.Context, _ json.RawMessage) (any, error) {
	lists, err := s.deps.Store.Lists(ctx)
	if err != nil {
		return nil, err
	}
	if lists == nil {
		lists = []hoarder.List{}
	}
	return map[string][]hoarder.List{"lists": lists}, nil
}

func (s *Server) getTags(ctx context.Context, _ json.RawMessage) (any, error) {
	tags, err := s.deps.Store.Tags(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []hoarder.Tag{}
	}
	return map[string][]hoarder.Tag{"tags": tags}, nil
}

type collectionArgs struct {
	Cursor *string `json:"cursor"`
	Limit  *int    `json:"limit"`
}

func (a collectionArgs) query() (hoarder.PageQuery, error) {
	if err := checkLimit(a.Limit); err != nil {
		return hoarder.PageQuery{}, err
	}
	return hoarder.PageQuery{Cursor: a.Cursor, Limit: a.Limit}, nil
}

func (s *Server) fetchListBookmarks(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		ListID string `json:"list_id"`
		collectionArgs
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	id, err := requireArg("list_id", args.ListID)
	if err != nil {
		return nil, err
	}
	query, err := args.query()
	if err != nil {
		return nil, err
	}
	return s.deps.Store.FetchListBookmarks(ctx, id, query)
}

func (s *Server) fetchTagBookmarks(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		TagID string `json:"tag_id"`
		collectionArgs
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	id, err := requireArg("tag_id", args.TagID)
	if err != nil {
		return nil, err
	}
	query, err := args.query()
	if err != nil {
		return nil, err
	}
	return s.deps.Store.FetchTagBookmarks(ctx, id, query)
}

func (s *Server) logPath() (string, error) {
	if path := s.log.Path(); path != "" {
		return path, nil
	}
	if s.deps.LogDir == "" {
		return "", nil
	}
	return logtail.Latest(s.deps.LogDir, logger.FilePrefix)
}

func (s *Server) getLogPath(_ context.Context, _ json.RawMessage) (any, error) {
	path, err := s.logPath()
	if err != nil {
		return nil, err
	}
	return map[string]string{"path": path}, nil
}

func (s *Server) tailLog(_ context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Lines int  `json:"lines"`
		Raw   bool `json:"raw"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	switch {
	case args.Lines <= 0:
		args.Lines = defaultTailLines
	case args.Lines > maxTailLines:
		args.Lines = maxTailLines
	}

	path, err := s.logPath()
	if err != nil {
		return nil, err
	}
	lines := []string{}
	if path != "" {
		read, err := logtail.Read(path, args.Lines)
		if err != nil {
			return nil, err
		}
		if !args.Raw {
			read = logtail.FormatLines(read)
		}
		lines = append(lines, read...)
	}
	return struct {
		Path  string   `json:"path"`
		Lines []string `json:"lines"`
	}{Path: path, Lines: lines}, nil
}
