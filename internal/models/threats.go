package models

import (
	"fmt"

	"crisk/internal/risk"
)

type Vulnerability struct {
	Model
	Description string   `gorm:"size:256" json:"description" validate:"max=256"`
	Severity    *float64 `json:"severity"`
	Chance      *float64 `json:"chance"`

	Assets          []Asset          `gorm:"many2many:asset_vulnerabilities;constraint:OnDelete:CASCADE" json:"assets,omitempty"`
	Threats         []Threat         `gorm:"many2many:vulnerability_threats;constraint:OnDelete:CASCADE" json:"threats,omitempty"`
	AppliedControls []AppliedControl `gorm:"foreignKey:VulnerabilityID;constraint:OnDelete:SET NULL" json:"appliedControls,omitempty"`
}

func (Vulnerability) TableName() string {
	return "vulnerability"
}

// TotalRisk is severity * chance, 0 while either is unset. Never stored.
func (v Vulnerability) TotalRisk() float64 {
	return risk.Total(v.Severity, v.Chance)
}

type Threat struct {
	Model
	Name        string `gorm:"size:64" json:"name" validate:"max=64"`
	Description string `gorm:"size:256" json:"description" validate:"max=256"`

	Vulnerabilities []Vulnerability `gorm:"many2many:vulnerability_threats;constraint:OnDelete:CASCADE" json:"vulnerabilities,omitempty"`
}

func (Threat) TableName() string {
	return "threat"
}

// Control is a catalog entry, e.g. an ISO 27002 clause.
type Control struct {
	Model
	Ref             string `gorm:"size:16" json:"ref" validate:"max=16"`
	Description     string `gorm:"size:256" json:"description" validate:"max=256"`
	LongDescription string `gorm:"type:text" json:"longDescription"`

	AppliedControls []AppliedControl `gorm:"foreignKey:ControlID;constraint:OnDelete:SET NULL" json:"appliedControls,omitempty"`
}

func (Control) TableName() string {
	return "control"
}

type ControlStatus int

const (
	StatusPlanned ControlStatus = iota
	StatusInProgress
	StatusImplemented
	StatusNotApplicable
)

func (s ControlStatus) String() string {
	switch s {
	case StatusPlanned:
		return "planned"
	case StatusInProgress:
		return "in progress"
	case StatusImplemented:
		return "implemented"
	case StatusNotApplicable:
		return "not applicable"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// AppliedControl links a control to the asset and vulnerability it mitigates.
type AppliedControl struct {
	Model
	ControlID       *uint         `json:"controlId"`
	AssetID         *uint         `json:"assetId"`
	VulnerabilityID *uint         `json:"vulnerabilityId"`
	Status          ControlStatus `json:"status"`

	Control       *Control       `json:"control,omitempty"`
	Asset         *Asset         `json:"asset,omitempty"`
	Vulnerability *Vulnerability `json:"vulnerability,omitempty"`
}

func (AppliedControl) TableName() string {
	return "applied_controls"
}
