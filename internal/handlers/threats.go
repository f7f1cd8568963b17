package handlers

import (
	"net/http"

	"crisk/internal/middleware"
	"crisk/internal/models"
	"crisk/internal/risk"

	"github.com/gin-gonic/gin"
)

// ====== VULNERABILITIES ======

type vulnerabilityView struct {
	models.Vulnerability
	TotalRisk float64 `json:"totalRisk"`
}

func viewVulnerability(v models.Vulnerability) vulnerabilityView {
	return vulnerabilityView{Vulnerability: v, TotalRisk: v.TotalRisk()}
}

type vulnerabilityBody struct {
	Description optional[string] `json:"description"`
	// number, numeric string or null. Anything else is stored as unset.
	Severity optional[any] `json:"severity"`
	Chance   optional[any] `json:"chance"`
}

func (b vulnerabilityBody) applyTo(v *models.Vulnerability) {
	b.Description.apply(&v.Description)
	if s, set := b.Severity.get(); set {
		v.Severity = risk.OperandPtr(s)
	}
	if ch, set := b.Chance.get(); set {
		v.Chance = risk.OperandPtr(ch)
	}
}

func ListVulnerabilities(c *gin.Context) {
	vulns, err := middleware.StoreFrom(c).Vulnerabilities().All()
	if err != nil {
		renderError(c, err)
		return
	}
	views := make([]vulnerabilityView, 0, len(vulns))
	for _, v := range vulns {
		views = append(views, viewVulnerability(v))
	}
	c.JSON(http.StatusOK, views)
}

func ShowVulnerability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	vuln, err := middleware.StoreFrom(c).Vulnerabilities().Read(id, "Assets", "Threats", "AppliedControls")
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewVulnerability(vuln))
}

func CreateVulnerability(c *gin.Context) {
	var body vulnerabilityBody
	if !bindJSON(c, &body) {
		return
	}
	var vuln models.Vulnerability
	body.applyTo(&vuln)
	if err := middleware.StoreFrom(c).Vulnerabilities().Create(&vuln); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewVulnerability(vuln))
}

func UpdateVulnerability(c *gin.Context) {
	repo := middleware.StoreFrom(c).Vulnerabilities()
	vuln, ok := loadForUpdate(c, repo.GormRepository)
	if !ok {
		return
	}
	var body vulnerabilityBody
	if !bindJSON(c, &body) {
		return
	}
	body.applyTo(&vuln)
	if err := repo.Save(&vuln); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewVulnerability(vuln))
}

func DeleteVulnerability(c *gin.Context) {
	remove(c, middleware.StoreFrom(c).Vulnerabilities().GormRepository)
}

func LinkVulnerabilityThreat(c *gin.Context) {
	vulnID, ok := paramID(c, "id")
	if !ok {
		return
	}
	threatID, ok := paramID(c, "tid")
	if !ok {
		return
	}
	if err := middleware.StoreFrom(c).Vulnerabilities().LinkThreat(vulnID, threatID); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func UnlinkVulnerabilityThreat(c *gin.Context) {
	vulnID, ok := paramID(c, "id")
	if !ok {
		return
	}
	threatID, ok := paramID(c, "tid")
	if !ok {
		return
	}
	if err := middleware.StoreFrom(c).Vulnerabilities().UnlinkThreat(vulnID, threatID); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ====== THREATS ======

type threatBody struct {
	Name        optional[string] `json:"name"`
	Description optional[string] `json:"description"`
}

func (b threatBody) applyTo(t *models.Threat) {
	b.Name.apply(&t.Name)
	b.Description.apply(&t.Description)
}

func ListThreats(c *gin.Context) {
	list(c, middleware.StoreFrom(c).Threats().GormRepository)
}

func ShowThreat(c *gin.Context) {
	show(c, middleware.StoreFrom(c).Threats().GormRepository, "Vulnerabilities")
}

func CreateThreat(c *gin.Context) {
	var body threatBody
	if !bindJSON(c, &body) {
		return
	}
	var threat models.Threat
	body.applyTo(&threat)
	save(c, middleware.StoreFrom(c).Threats().GormRepository, &threat, http.StatusCreated)
}

func UpdateThreat(c *gin.Context) {
	repo := middleware.StoreFrom(c).Threats().GormRepository
	threat, ok := loadForUpdate(c, repo)
	if !ok {
		return
	}
	var body threatBody
	if !bindJSON(c, &body) {
		return
	}
	body.applyTo(&threat)
	save(c, repo, &threat, http.StatusOK)
}

func DeleteThreat(c *gin.Context) {
	remove(c, middleware.StoreFrom(c).Threats().GormRepository)
}
