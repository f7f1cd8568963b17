package models

import (
	"crisk/internal/risk"
)

type Asset struct {
	Model
	Name        string `gorm:"size:64" json:"name" validate:"max=64"`
	Description string `gorm:"type:text" json:"description"`
	// stored as integer, written through SetValue
	Value *int64 `gorm:"column:value" json:"value"`

	OwnerID *uint  `json:"ownerId"`
	Owner   *Owner `json:"owner,omitempty"`

	Vulnerabilities []Vulnerability  `gorm:"many2many:asset_vulnerabilities;constraint:OnDelete:CASCADE" json:"vulnerabilities,omitempty"`
	AppliedControls []AppliedControl `gorm:"foreignKey:AssetID;constraint:OnDelete:SET NULL" json:"appliedControls,omitempty"`
}

func (Asset) TableName() string {
	return "asset"
}

// SetValue normalizes v to an integer. On error the asset is unchanged.
func (a *Asset) SetValue(v any) error {
	n, err := risk.NormalizeValue(v)
	if err != nil {
		return err
	}
	a.Value = &n
	return nil
}

func (a *Asset) ClearValue() {
	a.Value = nil
}

// GetValue returns the normalized value and whether one is set.
func (a Asset) GetValue() (int64, bool) {
	if a.Value == nil {
		return 0, false
	}
	return *a.Value, true
}

func (a Asset) OwnerName() string {
	if a.Owner == nil {
		return ""
	}
	return a.Owner.String()
}

type Owner struct {
	Model
	Name string `gorm:"size:64" json:"name" validate:"max=64"`

	Assets []Asset `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"assets,omitempty"`
}

func (Owner) TableName() string {
	return "owner"
}

func (o Owner) String() string {
	return o.Name
}
