package api

import (
	"net/http"
	"net/netip"

	"github.com/gorilla/mux"

	"github.com/shehryarbajwa/scenegate/internal/ratelimit"
)

// SetupRoutes configures all HTTP routes. Forwarding headers are honoured
// only from peers inside trustedProxies.
func (h *Handler) SetupRoutes(rateLimiter *ratelimit.Limiter, requestsPerHour int, trustedProxies []netip.Prefix) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.Health).Methods("GET")

	// API v1 routes
	api := r.PathPrefix("/v1").Subrouter()
	api.Use(RateLimitMiddleware(rateLimiter, requestsPerHour, NewClientIPResolver(trustedProxies)))

	api.HandleFunc("/capabilities", h.ClassifyRequest).Methods("GET", "OPTIONS")
	api.HandleFunc("/capabilities", h.ClassifySnapshot).Methods("POST")

	// CORS is outermost: preflights return before rate limiting
	r.Use(corsMiddleware, RequestIDMiddleware, loggingMiddleware)

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, X-WebGL-Context, X-WebGL-Renderer, Device-Memory, Sec-CH-Device-Memory")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
