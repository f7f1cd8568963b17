package handlers

import (
	"net/http"

	"crisk/internal/middleware"
	"crisk/internal/models"

	"github.com/gin-gonic/gin"
)

type ownerBody struct {
	Name optional[string] `json:"name"`
}

func ListOwners(c *gin.Context) {
	list(c, middleware.StoreFrom(c).Owners().GormRepository)
}

func ShowOwner(c *gin.Context) {
	show(c, middleware.StoreFrom(c).Owners().GormRepository, "Assets")
}

func CreateOwner(c *gin.Context) {
	var body ownerBody
	if !bindJSON(c, &body) {
		return
	}
	var owner models.Owner
	body.Name.apply(&owner.Name)
	save(c, middleware.StoreFrom(c).Owners().GormRepository, &owner, http.StatusCreated)
}

func UpdateOwner(c *gin.Context) {
	repo := middleware.StoreFrom(c).Owners().GormRepository
	owner, ok := loadForUpdate(c, repo)
	if !ok {
		return
	}
	var body ownerBody
	if !bindJSON(c, &body) {
		return
	}
	body.Name.apply(&owner.Name)
	save(c, repo, &owner, http.StatusOK)
}

// DeleteOwner detaches the owner's assets, they are kept.
func DeleteOwner(c *gin.Context) {
	remove(c, middleware.StoreFrom(c).Owners().GormRepository)
}
