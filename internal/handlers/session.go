package handlers

import (
	"net/http"

	"crisk/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Commit makes every change since the last commit durable.
func Commit(c *gin.Context) {
	if err := middleware.StoreFrom(c).Commit(); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Rollback discards every change since the last commit.
func Rollback(c *gin.Context) {
	if err := middleware.StoreFrom(c).Rollback(); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
