package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// InFlightGuard refuses a save while the same user's previous save of the
// same action is still running.
type InFlightGuard struct {
	mu      sync.Mutex
	running map[string]bool
}

func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{running: make(map[string]bool)}
}

// TryAcquire marks (userID, action) as running. It returns false when it
// already is.
func (g *InFlightGuard) TryAcquire(userID, action string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := userID + "|" + action
	if g.running[key] {
		return false
	}
	g.running[key] = true
	return true
}

func (g *InFlightGuard) Release(userID, action string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, userID+"|"+action)
}

// Guard wraps a route. Requests without an authenticated user fall back to
// the client IP.
func (g *InFlightGuard) Guard(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := GetUserID(c)
		if owner == "" {
			owner = c.ClientIP()
		}
		if !g.TryAcquire(owner, action) {
			c.JSON(http.StatusConflict, gin.H{"error": "request already in progress"})
			c.Abort()
			return
		}
		defer g.Release(owner, action)
		c.Next()
	}
}
