package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// HTTPObserver receives one observation per finished request
type HTTPObserver interface {
	ObserveHTTP(method, route, status string, d time.Duration)
	InFlight(delta float64)
}

// Metrics tracks request metrics per chi route pattern
func Metrics(obs HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			obs.InFlight(1)
			defer obs.InFlight(-1)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			// pattern dipakai supaya label tidak meledak karena {id}
			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			obs.ObserveHTTP(r.Method, route, strconv.Itoa(wrapped.statusCode), time.Since(start))
		})
	}
}
