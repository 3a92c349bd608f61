package core

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsContextKey = "auth_claims"

// CORSMiddleware validates the Origin header against the allowed list and
// sets CORS headers. Requests without an Origin header (same-origin, curl)
// pass through untouched.
func CORSMiddleware(cfg Config) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.ToLower(o)] = struct{}{}
	}

	isAllowed := func(origin string) bool {
		if len(allowed) == 0 {
			return false
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		if !isAllowed(origin) {
			respondError(c, http.StatusForbidden, "FORBIDDEN", "origin not allowed")
			c.Abort()
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Vary", "Origin")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuth is the hard gate: requests without a verifiable token are
// rejected before any handler runs. The Authorization header carries the
// bare token and is verified as-is.
func RequireAuth(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if raw == "" {
			respondError(c, http.StatusUnauthorized, "AUTH_REQUIRED", "authorization required")
			c.Abort()
			return
		}
		claims, err := tokens.Verify(raw)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "AUTH_INVALID", "token not valid")
			c.Abort()
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// OptionalAuth is the soft gate: a verifiable token attaches an identity, a
// missing or invalid one degrades to anonymous. It never rejects.
func OptionalAuth(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("Authorization"); raw != "" {
			if claims, err := tokens.Verify(raw); err == nil {
				c.Set(claimsContextKey, claims)
			}
		}
		c.Next()
	}
}

// currentClaims returns the identity attached by a gate, or nil for anonymous
// requests.
func currentClaims(c *gin.Context) *Claims {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
