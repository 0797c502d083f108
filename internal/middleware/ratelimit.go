package middleware

import (
	"net"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	inHttp "github.com/shopique/storefront/internal/http"
	"github.com/shopique/storefront/internal/log"
)

// RateLimit applies a per-client token bucket keyed by remote IP.
func RateLimit(r rate.Limit, burst int) func(http.Handler) http.Handler {
	var mu sync.Mutex
	limiters := map[string]*rate.Limiter{}

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(r, burst)
			limiters[ip] = limiter
		}
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger := zerolog.Ctx(req.Context()).
				With().
				Str(log.KeyTag, "middleware RateLimit").
				Logger()

			ip, _, err := net.SplitHostPort(req.RemoteAddr)
			if err != nil {
				ip = req.RemoteAddr
			}

			if !limiterFor(ip).Allow() {
				logger.Warn().Str(log.KeyRequestIp, ip).Msg("request rate limited")
				inHttp.WriteJsonResponse(req.Context(), w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusTooManyRequests,
					"message":    "too many requests, please retry later",
				})
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}
