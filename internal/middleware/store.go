package middleware

import (
	"crisk/internal/database"

	"github.com/gin-gonic/gin"
)

const storeKey = "Store"

// InjectStore makes the open store available to handlers.
func InjectStore(s *database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(storeKey, s)
		c.Next()
	}
}

// StoreFrom returns the store set by InjectStore. It panics if the
// middleware is missing.
func StoreFrom(c *gin.Context) *database.Store {
	return c.MustGet(storeKey).(*database.Store)
}
