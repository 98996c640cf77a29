package middleware

import (
	"booknotify/shared"
	"booknotify/shared/cache"
	"booknotify/shared/constant"
	"booknotify/transport/http/response"
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit = "limiter"
	unknownUserAgent  = "unknown"
)

// RateLimit counts requests per client IP and user agent in a fixed window. The limiter
// fails open: when the cache cannot be read or written the request goes through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	limits := a.config.App.RateLimiter

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limits.Enable {
				next.ServeHTTP(w, r)

				return
			}

			key := shared.BuildCacheKey(cacheKeyRateLimit, clientIP(r), userAgent(r))

			count, counted := a.count(r.Context(), key)
			if counted && count > limits.MaxRequests {
				response.WithRequestLimitExceeded(w)

				return
			}

			if counted {
				if err := a.cache.Save(r.Context(), key, count, limits.WindowSeconds); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("rate limiter could not store count")
				} else {
					w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(limits.MaxRequests))
					w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, limits.MaxRequests-count)))
					w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(limits.WindowSeconds))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// count returns the request number within the current window, including this one.
func (a *appMiddleware) count(ctx context.Context, key string) (int, bool) {
	var count int

	err := a.cache.Get(ctx, key, &count)
	if cache.IsMiss(err) {
		return 1, true
	}

	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limiter cache unavailable")

		return 0, false
	}

	return count + 1, true
}

func userAgent(r *http.Request) string {
	if ua := r.Header.Get(constant.RequestHeaderUserAgent); ua != "" {
		return ua
	}

	return unknownUserAgent
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get(constant.RequestHeaderRealIP); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
