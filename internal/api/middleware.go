package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/cyberone/financial-mesh/internal/auth"
	"github.com/cyberone/financial-mesh/internal/models"
)

type contextKey string

const claimsKey contextKey = "claims"

// authenticate parses the bearer token and stores the session claims in the
// request context
func (h *Handler) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := auth.ParseToken(h.jwtSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid session token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// requireCommission restricts a route to the privileged role
func (h *Handler) requireCommission(next http.HandlerFunc) http.HandlerFunc {
	return h.authenticate(func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r).Role != models.RoleCommission {
			respondError(w, http.StatusForbidden, "commission clearance required")
			return
		}
		next(w, r)
	})
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

// RateLimiter counts requests per key in Redis. A nil client disables it,
// which also keeps the limiter out of the way in tests.
type RateLimiter struct {
	redis  radix.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client radix.Client, limit, windowSeconds int) *RateLimiter {
	return &RateLimiter{
		redis:  client,
		limit:  limit,
		window: time.Duration(windowSeconds) * time.Second,
	}
}

// Allow reports whether the key is still under its window budget
func (l *RateLimiter) Allow(key string) bool {
	if l == nil || l.redis == nil || l.limit <= 0 {
		return true
	}

	key = "mesh:ratelimit:" + key
	var count int
	if err := l.redis.Do(radix.Cmd(&count, "INCR", key)); err != nil {
		// fail open: a limiter outage must not take logins down
		return true
	}
	if count == 1 {
		_ = l.redis.Do(radix.FlatCmd(nil, "EXPIRE", key, int64(l.window/time.Second)))
	}
	return count <= l.limit
}

// rateLimit guards an endpoint keyed by the caller's address
func (h *Handler) rateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !h.limiter.Allow(host) {
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}
