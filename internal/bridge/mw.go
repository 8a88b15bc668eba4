package bridge

import (
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/five82/hoard/internal/logger"
)

// statusWriter captures status code and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// requestLog logs one line per command. Request bodies are never logged;
// store_api_key carries the key in its body.
func requestLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(ww, r)

			fields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", ww.status),
				logger.Int("bytes", ww.bytes),
				logger.Duration("duration", time.Since(start)),
				logger.String("request_id", middleware.GetReqID(r.Context())),
			}
			if ww.status >= http.StatusInternalServerError {
				log.Warn("bridge request", fields...)
				return
			}
			log.Debug("bridge request", fields...)
		})
	}
}

// localOnly rejects requests whose Host header is not a loopback name, and
// browser requests sent from a page that is not itself served from loopback.
func localOnly(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isLoopbackHost(r.Host) {
				log.Warn("bridge request from foreign host rejected", logger.String("host", r.Host))
				writeError(w, http.StatusForbidden, "forbidden host")
				return
			}
			if origin, ok := r.Header["Origin"]; ok && !isLoopbackOrigin(origin[0]) {
				log.Warn("bridge request from foreign origin rejected", logger.String("origin", origin[0]))
				writeError(w, http.StatusForbidden, "forbidden origin")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// jsonOnly requires an application/json body. Browsers cannot send that
// cross-site without a CORS preflight, and the bridge answers no preflight.
func jsonOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			writeError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isLoopbackOrigin accepts an http(s) Origin header naming a loopback host.
// The opaque "null" origin of sandboxed pages and file URLs is refused.
func isLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return isLoopbackHost(u.Host)
}
