package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimiter caps each client IP at rps requests per second. Requests
// over the cap get a 429 from httprate.
func RateLimiter(rps int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(rps, time.Second)
}
