package handlers

import (
	"net/http"

	"crisk/internal/middleware"
	"crisk/internal/models"

	"github.com/gin-gonic/gin"
)

// ====== CONTROL CATALOG ======

type controlBody struct {
	Ref             optional[string] `json:"ref"`
	Description     optional[string] `json:"description"`
	LongDescription optional[string] `json:"longDescription"`
}

func (b controlBody) applyTo(ctl *models.Control) {
	b.Ref.apply(&ctl.Ref)
	b.Description.apply(&ctl.Description)
	b.LongDescription.apply(&ctl.LongDescription)
}

func ListControls(c *gin.Context) {
	list(c, middleware.StoreFrom(c).Controls().GormRepository)
}

func ShowControl(c *gin.Context) {
	show(c, middleware.StoreFrom(c).Controls().GormRepository, "AppliedControls")
}

func CreateControl(c *gin.Context) {
	var body controlBody
	if !bindJSON(c, &body) {
		return
	}
	var ctl models.Control
	body.applyTo(&ctl)
	save(c, middleware.StoreFrom(c).Controls().GormRepository, &ctl, http.StatusCreated)
}

func UpdateControl(c *gin.Context) {
	repo := middleware.StoreFrom(c).Controls().GormRepository
	ctl, ok := loadForUpdate(c, repo)
	if !ok {
		return
	}
	var body controlBody
	if !bindJSON(c, &body) {
		return
	}
	body.applyTo(&ctl)
	save(c, repo, &ctl, http.StatusOK)
}

func DeleteControl(c *gin.Context) {
	remove(c, middleware.StoreFrom(c).Controls().GormRepository)
}

// ====== APPLIED CONTROLS ======

type appliedControlBody struct {
	ControlID       optional[uint]                 `json:"controlId"`
	AssetID         optional[uint]                 `json:"assetId"`
	VulnerabilityID optional[uint]                 `json:"vulnerabilityId"`
	Status          optional[models.ControlStatus] `json:"status"`
}

func (b appliedControlBody) applyTo(ac *models.AppliedControl) {
	b.ControlID.applyPtr(&ac.ControlID)
	b.AssetID.applyPtr(&ac.AssetID)
	b.VulnerabilityID.applyPtr(&ac.VulnerabilityID)
	b.Status.apply(&ac.Status)
	ac.Control, ac.Asset, ac.Vulnerability = nil, nil, nil
}

func ListAppliedControls(c *gin.Context) {
	list(c, middleware.StoreFrom(c).AppliedControls().GormRepository, "Control")
}

func ShowAppliedControl(c *gin.Context) {
	show(c, middleware.StoreFrom(c).AppliedControls().GormRepository, "Control", "Asset", "Vulnerability")
}

func CreateAppliedControl(c *gin.Context) {
	var body appliedControlBody
	if !bindJSON(c, &body) {
		return
	}
	var ac models.AppliedControl
	body.applyTo(&ac)
	save(c, middleware.StoreFrom(c).AppliedControls().GormRepository, &ac, http.StatusCreated)
}

func UpdateAppliedControl(c *gin.Context) {
	repo := middleware.StoreFrom(c).AppliedControls().GormRepository
	ac, ok := loadForUpdate(c, repo)
	if !ok {
		return
	}
	var body appliedControlBody
	if !bindJSON(c, &body) {
		return
	}
	body.applyTo(&ac)
	save(c, repo, &ac, http.StatusOK)
}

func DeleteAppliedControl(c *gin.Context) {
	remove(c, middleware.StoreFrom(c).AppliedControls().GormRepository)
}
