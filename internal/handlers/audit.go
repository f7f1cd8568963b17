package handlers

import (
	"net/http"
	"strconv"

	"crisk/internal/middleware"
	"crisk/internal/report"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs returns the journal, newest first. ?limit= caps the rows.
func ListAuditLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	logs, err := middleware.StoreFrom(c).AuditLogs(limit)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func Report(c *gin.Context) {
	snap, err := report.Build(middleware.StoreFrom(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
