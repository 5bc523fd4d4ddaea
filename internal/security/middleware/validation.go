package middleware

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"unicode"
)

// maxQueryValueLen bounds free-text filters such as the reviews search box
const maxQueryValueLen = 200

// RequireJSONBody rejects API writes whose body is not declared as JSON.
// Bodiless writes (logout, settings reset) pass through.
func RequireJSONBody(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isWrite(r.Method) || r.ContentLength == 0 || !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				log.Warn("rejected non-json body",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("content_type", r.Header.Get("Content-Type")),
				)
				writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SanitizeQuery rejects markup, control characters and oversized values in
// query parameters, plus traversal patterns in the path.
func SanitizeQuery(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "..") || strings.Contains(r.URL.Path, "//") {
				log.Warn("suspicious path", slog.String("path", r.URL.Path))
				writeError(w, http.StatusBadRequest, "Invalid path")
				return
			}

			for key, values := range r.URL.Query() {
				for _, val := range values {
					if reason := queryValueProblem(val); reason != "" {
						log.Warn("rejected query parameter",
							slog.String("path", r.URL.Path),
							slog.String("param", key),
							slog.String("reason", reason),
						)
						writeError(w, http.StatusBadRequest, "Invalid query parameter: "+key)
						return
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func queryValueProblem(v string) string {
	if len(v) > maxQueryValueLen {
		return "too long"
	}
	if strings.ContainsAny(v, `<>"'`) {
		return "markup"
	}
	if strings.IndexFunc(v, unicode.IsControl) >= 0 {
		return "control character"
	}
	return ""
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
