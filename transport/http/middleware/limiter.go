package middleware

import (
	"errors"
	"net"
	"net/http"
	"roomsense/shared"
	"roomsense/shared/cache"
	"roomsense/shared/constant"
	"roomsense/transport/http/response"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const cacheKeyRateLimit = "limiter"

// RateLimit counts requests per client in a fixed Redis window. Sensor
// devices presenting the configured API key are never throttled. A cache
// outage lets traffic through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := a.config.App.RateLimiter
			if !limiter.Enable || a.isDevice(r) {
				next.ServeHTTP(w, r)

				return
			}

			key := shared.BuildCacheKey(cacheKeyRateLimit, a.getClientIP(r), a.getUA(r))

			var hits int

			err := a.cache.Get(r.Context(), key, &hits)

			switch {
			case errors.Is(err, cache.Nil):
				hits = 1
			case err != nil:
				log.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable")
				next.ServeHTTP(w, r)

				return
			default:
				hits++
			}

			if hits > limiter.MaxRequests {
				w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(limiter.MaxRequests))
				w.Header().Set(constant.RequestHeaderRateLimitRemaining, "0")
				response.WithRequestLimitExceeded(w)

				return
			}

			if err = a.cache.Save(r.Context(), key, hits, limiter.WindowSeconds); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable")
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(limiter.MaxRequests))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, limiter.MaxRequests-hits)))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(limiter.WindowSeconds))

			next.ServeHTTP(w, r)
		})
	}
}

func (a *appMiddleware) isDevice(r *http.Request) bool {
	key := r.Header.Get(constant.RequestHeaderAPIKey)

	return key != constant.Empty && key == a.config.App.APIKey
}

func (a *appMiddleware) getUA(r *http.Request) string {
	if ua := r.Header.Get(constant.RequestHeaderUserAgent); ua != constant.Empty {
		return ua
	}

	return "unknown"
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket address without its port.
func (a *appMiddleware) getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get(constant.RequestHeaderForwardedFor); forwarded != constant.Empty {
		first, _, _ := strings.Cut(forwarded, ",")

		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get(constant.RequestHeaderRealIP); realIP != constant.Empty {
		return strings.TrimSpace(realIP)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
