package handlers

import (
	"net/http"

	"crisk/internal/middleware"
	"crisk/internal/models"

	"github.com/gin-gonic/gin"
)

type assetBody struct {
	Name        optional[string] `json:"name"`
	Description optional[string] `json:"description"`
	// number or string, null clears
	Value   optional[any]  `json:"value"`
	OwnerID optional[uint] `json:"ownerId"`
}

// applyTo writes the body into a. A bad value leaves a untouched.
func (b assetBody) applyTo(a *models.Asset) error {
	next := *a
	if v, set := b.Value.get(); set {
		if v == nil {
			next.ClearValue()
		} else if err := next.SetValue(v); err != nil {
			return err
		}
	}
	b.Name.apply(&next.Name)
	b.Description.apply(&next.Description)
	b.OwnerID.applyPtr(&next.OwnerID)
	if b.OwnerID.Set {
		next.Owner = nil
	}
	*a = next
	return nil
}

func ListAssets(c *gin.Context) {
	list(c, middleware.StoreFrom(c).Assets().GormRepository, "Owner")
}

func ShowAsset(c *gin.Context) {
	show(c, middleware.StoreFrom(c).Assets().GormRepository, "Owner", "Vulnerabilities", "AppliedControls")
}

func CreateAsset(c *gin.Context) {
	var body assetBody
	if !bindJSON(c, &body) {
		return
	}
	var asset models.Asset
	if err := body.applyTo(&asset); err != nil {
		renderError(c, err)
		return
	}
	save(c, middleware.StoreFrom(c).Assets().GormRepository, &asset, http.StatusCreated)
}

func UpdateAsset(c *gin.Context) {
	repo := middleware.StoreFrom(c).Assets().GormRepository
	asset, ok := loadForUpdate(c, repo)
	if !ok {
		return
	}
	var body assetBody
	if !bindJSON(c, &body) {
		return
	}
	if err := body.applyTo(&asset); err != nil {
		renderError(c, err)
		return
	}
	save(c, repo, &asset, http.StatusOK)
}

func DeleteAsset(c *gin.Context) {
	remove(c, middleware.StoreFrom(c).Assets().GormRepository)
}

func LinkAssetVulnerability(c *gin.Context) {
	assetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	vulnID, ok := paramID(c, "vid")
	if !ok {
		return
	}
	if err := middleware.StoreFrom(c).Assets().LinkVulnerability(assetID, vulnID); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func UnlinkAssetVulnerability(c *gin.Context) {
	assetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	vulnID, ok := paramID(c, "vid")
	if !ok {
		return
	}
	if err := middleware.StoreFrom(c).Assets().UnlinkVulnerability(assetID, vulnID); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
