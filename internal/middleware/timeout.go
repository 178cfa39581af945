package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds each request with a context deadline so database work
// cannot outlive the client. Exceeding the deadline fails the request, not
// the process.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
