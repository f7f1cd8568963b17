package handlers

import (
	"net/http"

	"crisk/internal/database"

	"github.com/gin-gonic/gin"
)

type entity interface {
	GetID() uint
}

// The helpers below serve the list, read and delete routes every entity
// kind shares. Create and update decode kind specific bodies.

func list[T entity](c *gin.Context, repo *database.GormRepository[T], preload ...string) {
	rows, err := repo.All(preload...)
	if err != nil {
		renderError(c, err)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	c.JSON(http.StatusOK, rows)
}

func show[T entity](c *gin.Context, repo *database.GormRepository[T], preload ...string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	row, err := repo.Read(id, preload...)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func remove[T entity](c *gin.Context, repo *database.GormRepository[T]) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := repo.Delete(id); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// loadForUpdate reads the row named by the id parameter.
func loadForUpdate[T entity](c *gin.Context, repo *database.GormRepository[T]) (T, bool) {
	var zero T
	id, ok := paramID(c, "id")
	if !ok {
		return zero, false
	}
	row, err := repo.Read(id)
	if err != nil {
		renderError(c, err)
		return zero, false
	}
	return row, true
}

func save[T entity](c *gin.Context, repo *database.GormRepository[T], row *T, status int) {
	var err error
	if status == http.StatusCreated {
		err = repo.Create(row)
	} else {
		err = repo.Save(row)
	}
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(status, row)
}
