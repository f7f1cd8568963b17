package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// Serialize lets one request at a time through. The store session is a
// single transaction and must not be shared between goroutines.
func Serialize() gin.HandlerFunc {
	var mu sync.Mutex
	return func(c *gin.Context) {
		mu.Lock()
		defer mu.Unlock()
		c.Next()
	}
}
