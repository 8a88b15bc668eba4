package bridge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/hoard/internal/hoarder"
	"github.com/five82/hoard/internal/logger"
	"github.com/five82/hoard/internal/session"
)

const goodKey = "k-good"

// fakeHoarder is a minimal /v1 API that accepts goodKey only.
func fakeHoarder(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/bookmarks", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("X-API-Key") != goodKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("unauthorized"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			var body hoarder.BookmarkCreate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusCreated)
			out, _ := json.Marshal(hoarder.Bookmark{ID: "b9", URL: body.URL, Title: "Created"})
			_, _ = w.Write(out)
			return
		}
		if r.URL.Query().Get("cursor") == "c1" {
			_, _ = w.Write([]byte(`{"bookmarks":[{"bookmark_id":"b2","url":"https://two.example","title":"Two","favourited":true,"archived":false,"created_at":"2026-01-02T00:00:00Z"}],"next_cursor":null}`))
			return
		}
		_, _ = w.Write([]byte(`{"bookmarks":[{"bookmark_id":"b1","url":"https://one.example","title":"One","favourited":false,"archived":false,"created_at":"2026-01-01T00:00:00Z"}],"next_cursor":"c1"}`))
	})
	mux.HandleFunc("/v1/bookmarks/b1", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"bookmark_id":"b1","url":"https://one.example","title":"One"}`))
		case http.MethodPatch:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			fav, _ := body["favourited"].(bool)
			out, _ := json.Marshal(hoarder.Bookmark{ID: "b1", URL: "https://one.example", Favourited: fav})
			_, _ = w.Write(out)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	authed := func(body func(w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.Header.Get("X-API-Key") != goodKey {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte("unauthorized"))
				return
			}
			body(w, r)
		}
	}
	mux.HandleFunc("GET /v1/bookmarks/search", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "s1" {
			_, _ = w.Write([]byte(`{"bookmarks":[],"next_cursor":null}`))
			return
		}
		_, _ = w.Write([]byte(`{"bookmarks":[{"bookmark_id":"b1","url":"https://one.example","title":"` + r.URL.Query().Get("q") + `"}],"next_cursor":"s1"}`))
	}))
	mux.HandleFunc("GET /v1/lists", authed(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"lists":[{"id":"l1","name":"Reading"}]}`))
	}))
	mux.HandleFunc("GET /v1/tags", authed(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tags":[{"id":"t1","name":"go"}]}`))
	}))
	collection := authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bookmarks":[{"bookmark_id":"b1","url":"https://one.example","title":"` + r.URL.Path + `"}],"next_cursor":null}`))
	})
	mux.HandleFunc("GET /v1/lists/l1/bookmarks", collection)
	mux.HandleFunc("GET /v1/tags/t1/bookmarks", collection)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newBridge(t *testing.T, d Deps) *Server {
	t.Helper()
	if d.Store == nil {
		d.Store = session.New(session.DefaultFactory(hoarder.WithTimeout(2*time.Second)), logger.Nop())
	}
	return New("127.0.0.1:0", d)
}

func call(t *testing.T, s *Server, name, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/commands/"+name, strings.NewReader(body))
	req.Host = "127.0.0.1:7611"
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// login points s at api and stores goodKey.
func login(t *testing.T, s *Server, api *httptest.Server) {
	t.Helper()
	rec := call(t, s, "set_base_url", `{"url":"`+api.URL+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = call(t, s, "store_api_key", `{"api_key":"`+goodKey+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func errorText(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg), "body %q", rec.Body.String())
	return msg
}

func TestBridge_FullSession(t *testing.T) {
	var calls atomic.Int32
	api := fakeHoarder(t, &calls)
	s := newBridge(t, Deps{})

	rec := call(t, s, "set_base_url", `{"url":"`+api.URL+`/dashboard?x=1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var origin map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &origin))
	assert.Equal(t, api.URL, origin["origin"])

	rec = call(t, s, "store_api_key", `{"api_key":"`+goodKey+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = call(t, s, "get_api_key", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"api_key":"k-good"}`, rec.Body.String())

	rec = call(t, s, "fetch_bookmarks", `{}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page hoarder.BookmarkPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Bookmarks, 1)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "c1", *page.NextCursor)

	rec = call(t, s, "fetch_bookmarks", `{"cursor":"c1","favourited":true,"limit":10}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page = hoarder.BookmarkPage{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Nil(t, page.NextCursor)
	assert.Equal(t, "b2", page.Bookmarks[0].ID)

	rec = call(t, s, "get_bookmark", `{"bookmark_id":"b1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, s, "update_bookmark", `{"bookmark_id":"b1","favourited":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated hoarder.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Favourited)

	rec = call(t, s, "delete_bookmark", `{"bookmark_id":"b1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestBridge_ErrorsArePlainStrings(t *testing.T) {
	var calls atomic.Int32
	api := fakeHoarder(t, &calls)
	s := newBridge(t, Deps{})

	rec := call(t, s, "set_base_url", `{"url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(errorText(t, rec), "invalid URL: "))

	rec = call(t, s, "store_api_key", `{"api_key":"k"}`)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, session.ErrNoOrigin.Error(), errorText(t, rec))

	_ = call(t, s, "set_base_url", `{"url":"`+api.URL+`"}`)

	rec = call(t, s, "fetch_bookmarks", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, session.ErrNotFound.Error(), errorText(t, rec))
	assert.Zero(t, calls.Load(), "fetch without a key must not reach the server")

	rec = call(t, s, "store_api_key", `{"api_key":"wrong"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "API error: unauthorized", errorText(t, rec))

	rec = call(t, s, "get_api_key", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBridge_BadRequests(t *testing.T) {
	s := newBridge(t, Deps{})

	cases := map[string][2]string{
		"malformed json":   {"set_base_url", `{"url":`},
		"unknown field":    {"fetch_bookmarks", `{"tag":"x"}`},
		"zero limit":       {"fetch_bookmarks", `{"limit":0}`},
		"missing id":       {"get_bookmark", `{}`},
		"blank id":         {"delete_bookmark", `{"bookmark_id":"  "}`},
		"empty update":     {"update_bookmark", `{"bookmark_id":"b1"}`},
		"wrong field type": {"update_bookmark", `{"bookmark_id":"b1","favourited":"yes"}`},
		"empty query":      {"search_bookmarks", `{"query":" "}`},
		"search limit":     {"search_bookmarks", `{"query":"go","limit":-1}`},
		"missing url":      {"create_bookmark", `{"title":"x"}`},
		"missing list id":  {"fetch_list_bookmarks", `{"cursor":"c"}`},
		"missing tag id":   {"fetch_tag_bookmarks", `{}`},
		"tag limit":        {"fetch_tag_bookmarks", `{"tag_id":"t1","limit":0}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := call(t, s, tc[0], tc[1])
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.NotEmpty(t, errorText(t, rec))
		})
	}
}

func TestBridge_UnknownCommand(t *testing.T) {
	s := newBridge(t, Deps{})
	rec := call(t, s, "logout", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown command: logout", errorText(t, rec))
}

func TestBridge_NilStoreIsStorageError(t *testing.T) {
	s := New("127.0.0.1:0", Deps{})
	rec := call(t, s, "get_api_key", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, session.ErrStorage.Error(), errorText(t, rec))
}

func TestBridge_RejectsForeignHost(t *testing.T) {
	s := newBridge(t, Deps{})
	req := httptest.NewRequest(http.MethodPost, "/commands/get_api_key", nil)
	req.Host = "evil.example:7611"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBridge_SearchCreateAndCollections(t *testing.T) {
	var calls atomic.Int32
	api := fakeHoarder(t, &calls)
	s := newBridge(t, Deps{})

	for _, name := range []string{"search_bookmarks", "create_bookmark", "get_lists", "get_tags", "fetch_list_bookmarks", "fetch_tag_bookmarks"} {
		rec := call(t, s, name, `{}`)
		assert.NotEqual(t, http.StatusOK, rec.Code, name)
	}
	assert.Zero(t, calls.Load())

	login(t, s, api)

	rec := call(t, s, "search_bookmarks", `{"query":"golang","limit":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page hoarder.BookmarkPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "golang", page.Bookmarks[0].Title)

	rec = call(t, s, "search_bookmarks", `{"query":"golang","cursor":"`+*page.NextCursor+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"bookmarks":[],"next_cursor":null}`, rec.Body.String())

	rec = call(t, s, "create_bookmark", `{"url":" https://new.example "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created hoarder.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "https://new.example", created.URL)

	rec = call(t, s, "get_lists", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"lists":[{"id":"l1","name":"Reading"}]}`, rec.Body.String())

	rec = call(t, s, "get_tags", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"tags":[{"id":"t1","name":"go"}]}`, rec.Body.String())

	rec = call(t, s, "fetch_list_bookmarks", `{"list_id":"l1","limit":20}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page = hoarder.BookmarkPage{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "/v1/lists/l1/bookmarks", page.Bookmarks[0].Title)

	rec = call(t, s, "fetch_tag_bookmarks", `{"tag_id":"t1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page = hoarder.BookmarkPage{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "/v1/tags/t1/bookmarks", page.Bookmarks[0].Title)
}

func TestBridge_CrossSiteRequestsRejected(t *testing.T) {
	var calls atomic.Int32
	api := fakeHoarder(t, &calls)
	s := newBridge(t, Deps{})
	login(t, s, api)
	before := calls.Load()

	send := func(contentType, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/commands/delete_bookmark", strings.NewReader(`{"bookmark_id":"b1"}`))
		req.Host = "127.0.0.1:7611"
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		return rec
	}

	cases := []struct {
		name        string
		contentType string
		origin      string
		status      int
	}{
		{"simple form post from foreign page", "text/plain;charset=UTF-8", "https://evil.example", http.StatusForbidden},
		{"json from foreign page", "application/json", "https://evil.example", http.StatusForbidden},
		{"foreign page on loopback port lookalike", "application/json", "http://127.0.0.1.evil.example", http.StatusForbidden},
		{"sandboxed page", "application/json", "null", http.StatusForbidden},
		{"simple post without origin", "text/plain;charset=UTF-8", "", http.StatusUnsupportedMediaType},
		{"form encoded", "application/x-www-form-urlencoded", "", http.StatusUnsupportedMediaType},
		{"no content type", "", "", http.StatusUnsupportedMediaType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := send(tc.contentType, tc.origin)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, errorText(t, rec))
		})
	}
	assert.Equal(t, before, calls.Load(), "rejected requests must not reach the server")

	rec := send("application/json; charset=utf-8", "http://localhost:5173")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, before+1, calls.Load())
}

func TestBridge_APIKeyHiddenAfterOriginSwitch(t *testing.T) {
	var calls atomic.Int32
	api := fakeHoarder(t, &calls)
	s := newBridge(t, Deps{})
	login(t, s, api)

	rec := call(t, s, "set_base_url", `{"url":"https://other.example"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, s, "get_api_key", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), goodKey)

	_ = call(t, s, "set_base_url", `{"url":"`+api.URL+`"}`)
	rec = call(t, s, "get_api_key", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIsLoopbackOrigin(t *testing.T) {
	for origin, want := range map[string]bool{
		"http://127.0.0.1:7611":   true,
		"http://localhost:5173":   true,
		"https://[::1]":           true,
		"https://evil.example":    false,
		"null":                    false,
		"file://":                 false,
		"chrome-extension://abc":  false,
		"http://localhost.evil.x": false,
	} {
		assert.Equal(t, want, isLoopbackOrigin(origin), origin)
	}
}

func TestBridge_ListAndHealth(t *testing.T) {
	s := newBridge(t, Deps{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/commands")
	require.NoError(t, err)
	defer resp.Body.Close()
	var names []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&names))
	assert.Contains(t, names, "fetch_bookmarks")
	assert.Contains(t, names, "tail_log")
	assert.Contains(t, names, "search_bookmarks")
	assert.Len(t, names, 15)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	var body map[string]string
	require.NoError(t, json.NewDecoder(health.Body).Decode(&body))
	assert.Equal(t, "unauthenticated", body["state"])
}

func TestBridge_LogCommands(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, logger.FileName(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)))
	content := `{"level":"info","ts":"2026-10-18 09:00:00.000","msg":"server URL set","origin":"https://a.example"}` + "\n" +
		`{"level":"error","ts":"2026-10-18 09:00:01.000","msg":"API key validation failed"}` + "\n"
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0o644))

	s := newBridge(t, Deps{LogDir: dir})

	rec := call(t, s, "get_log_path", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path":"`+logPath+`"}`, rec.Body.String())

	rec = call(t, s, "tail_log", `{"lines":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tail struct {
		Path  string   `json:"path"`
		Lines []string `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tail))
	assert.Equal(t, logPath, tail.Path)
	assert.Equal(t, []string{"2026-10-18 09:00:01.000 ERROR API key validation failed"}, tail.Lines)

	rec = call(t, s, "tail_log", `{"raw":true}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tail))
	require.Len(t, tail.Lines, 2)
	assert.True(t, strings.HasPrefix(tail.Lines[0], "{"))
}

func TestBridge_TailLogWithoutFile(t *testing.T) {
	s := newBridge(t, Deps{})
	rec := call(t, s, "tail_log", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path":"","lines":[]}`, rec.Body.String())
}

func TestIsLoopbackHost(t *testing.T) {
	for host, want := range map[string]bool{
		"127.0.0.1:7611": true,
		"localhost":      true,
		"LOCALHOST:80":   true,
		"[::1]:7611":     true,
		"10.0.0.5:7611":  false,
		"example.com":    false,
		"":               false,
	} {
		assert.Equal(t, want, isLoopbackHost(host), host)
	}
}
