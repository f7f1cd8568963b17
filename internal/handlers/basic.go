package handlers

import (
	"net/http"
	"time"

	"crisk/internal/middleware"

	"github.com/gin-gonic/gin"
)

type basicBody struct {
	Name        optional[string]    `json:"name"`
	Location    optional[string]    `json:"location"`
	InitialDate optional[time.Time] `json:"initialDate"`
	Scope       optional[string]    `json:"scope"`
}

func Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func ShowBasic(c *gin.Context) {
	basic, err := middleware.StoreFrom(c).Basic()
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, basic)
}

// UpdateBasic changes the assessment header. A null initialDate keeps the
// stored date.
func UpdateBasic(c *gin.Context) {
	store := middleware.StoreFrom(c)
	basic, err := store.Basic()
	if err != nil {
		renderError(c, err)
		return
	}
	var body basicBody
	if !bindJSON(c, &body) {
		return
	}
	body.Name.apply(&basic.Name)
	body.Location.apply(&basic.Location)
	body.InitialDate.apply(&basic.InitialDate)
	body.Scope.apply(&basic.Scope)

	if err := store.SaveBasic(&basic); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, basic)
}
