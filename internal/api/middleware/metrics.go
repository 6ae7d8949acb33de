package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/nickfox/LLMCreativeStudio/internal/metrics"
)

// Metrics records request counts and latencies per method and route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := normalizePath(r.URL.Path)
		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, path, strconv.Itoa(ww.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method, path,
		).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses per-resource paths so metric cardinality stays
// bounded by the route table, not by session and project ids.
func normalizePath(path string) string {
	for _, p := range []struct{ prefix, route string }{
		{"/session/", "/session/:id"},
		{"/project/", "/project/:id"},
	} {
		if strings.HasPrefix(path, p.prefix) && len(path) > len(p.prefix) {
			return p.route
		}
	}
	return path
}
