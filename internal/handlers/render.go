package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"crisk/internal/database"
	"crisk/internal/risk"

	"github.com/gin-gonic/gin"
)

// renderError maps store errors to HTTP status codes and writes them as JSON.
func renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, database.ErrValidation), errors.Is(err, risk.ErrInvalidValue):
		status = http.StatusBadRequest
	}

	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// paramID parses a positive integer path parameter. It writes a 400 and
// returns false otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// optional tells an absent JSON field apart from an explicit null. Numbers
// decoded into an interface arrive as json.Number.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v T
	if err := dec.Decode(&v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// apply copies a set value into dst. A null leaves the zero value.
func (o optional[T]) apply(dst *T) {
	if !o.Set {
		return
	}
	var zero T
	if o.Value == nil {
		*dst = zero
		return
	}
	*dst = *o.Value
}

// applyPtr copies a set value into a nullable field.
func (o optional[T]) applyPtr(dst **T) {
	if o.Set {
		*dst = o.Value
	}
}

func (o optional[T]) get() (any, bool) {
	if !o.Set || o.Value == nil {
		return nil, o.Set
	}
	return *o.Value, true
}
