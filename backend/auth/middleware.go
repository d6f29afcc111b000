package auth

import (
	"net/http"
	"strings"
	"sync"

	"civicfix/backend/server/api"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const actorContextKey = "actor"

// Middleware validates the Bearer token and attaches the actor to the
// request context.
func Middleware(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "You need to log in first."})
			c.Abort()
			return
		}

		actor, err := s.ValidateToken(tokenString)
		if err != nil {
			log.Warnf("Rejected token from %s: %v", c.ClientIP(), err)
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token."})
			c.Abort()
			return
		}

		c.Set(actorContextKey, *actor)
		c.Next()
	}
}

// RequireAdmin guards admin-only routes. It must run after Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok || !actor.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"message": "Not authenticated or not authorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentActor returns the actor placed by Middleware.
func CurrentActor(c *gin.Context) (api.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return api.Actor{}, false
	}
	actor, ok := v.(api.Actor)
	return actor, ok
}

// tokenFromRequest reads the Bearer header, falling back to the token
// query parameter for websocket upgrades.
func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

// RateLimit applies a per-client token bucket keyed by IP.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rps, burst)
			limiters[ip] = l
		}
		return l
	}
	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
