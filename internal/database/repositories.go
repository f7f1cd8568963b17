package database

import (
	"fmt"

	"crisk/internal/models"

	"gorm.io/gorm"
)

// Association cleanup on delete, per relationship:
//
//	asset          -> asset_vulnerabilities rows removed, applied_controls.asset_id cleared
//	vulnerability  -> asset_vulnerabilities and vulnerability_threats rows removed,
//	                  applied_controls.vulnerability_id cleared
//	threat         -> vulnerability_threats rows removed
//	owner          -> asset.owner_id cleared
//	control        -> applied_controls.control_id cleared
//
// Entities on the other side are never deleted.
func clearAssociations(tx *gorm.DB, model any, names ...string) error {
	for _, name := range names {
		if err := tx.Model(model).Association(name).Clear(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func checkRef[T entity](tx *gorm.DB, repo *GormRepository[T], id *uint) error {
	if id == nil {
		return nil
	}
	return repo.exists(tx, *id)
}

type AssetRepository struct {
	*GormRepository[models.Asset]
}

func newAssetRepository(s *Store) *AssetRepository {
	r := &AssetRepository{newGormRepository[models.Asset](s, "asset")}
	r.beforeSave = func(tx *gorm.DB, a *models.Asset) error {
		return checkRef(tx, s.owners.GormRepository, a.OwnerID)
	}
	r.beforeDelete = func(tx *gorm.DB, id uint) error {
		return clearAssociations(tx, &models.Asset{Model: models.Model{ID: id}}, "Vulnerabilities", "AppliedControls")
	}
	r.describe = func(a *models.Asset) string { return a.Name }
	return r
}

func (r *AssetRepository) ByOwner(ownerID uint) ([]models.Asset, error) {
	return r.FindBy(map[string]any{"owner_id": ownerID})
}

// ForVulnerability lists the assets linked to a vulnerability.
func (r *AssetRepository) ForVulnerability(vulnID uint) ([]models.Asset, error) {
	tx := r.db()
	if err := r.store.vulnerabilities.exists(tx, vulnID); err != nil {
		return nil, err
	}
	var assets []models.Asset
	err := tx.Model(&models.Vulnerability{Model: models.Model{ID: vulnID}}).
		Order("asset.id asc").
		Association("Assets").
		Find(&assets)
	return assets, err
}

// UpdateValue coerces v to an integer and stores it. Invalid input leaves
// the row untouched and returns risk.ErrInvalidValue.
func (r *AssetRepository) UpdateValue(id uint, v any) (models.Asset, error) {
	asset, err := r.Read(id)
	if err != nil {
		return asset, err
	}
	if err := asset.SetValue(v); err != nil {
		return asset, err
	}
	if err := r.Save(&asset); err != nil {
		return asset, err
	}
	return asset, nil
}

func (r *AssetRepository) LinkVulnerability(assetID, vulnID uint) error {
	asset, err := r.Read(assetID)
	if err != nil {
		return err
	}
	vuln, err := r.store.vulnerabilities.Read(vulnID)
	if err != nil {
		return err
	}
	if err := r.db().Model(&asset).Association("Vulnerabilities").Append(&vuln); err != nil {
		return err
	}
	r.store.audit("asset", assetID, models.ActionLink, fmt.Sprintf("vulnerability %d", vulnID))
	return nil
}

// UnlinkVulnerability removes the association row only.
func (r *AssetRepository) UnlinkVulnerability(assetID, vulnID uint) error {
	asset, err := r.Read(assetID)
	if err != nil {
		return err
	}
	vuln, err := r.store.vulnerabilities.Read(vulnID)
	if err != nil {
		return err
	}
	if err := r.db().Model(&asset).Association("Vulnerabilities").Delete(&vuln); err != nil {
		return err
	}
	r.store.audit("asset", assetID, models.ActionUnlink, fmt.Sprintf("vulnerability %d", vulnID))
	return nil
}

type VulnerabilityRepository struct {
	*GormRepository[models.Vulnerability]
}

func newVulnerabilityRepository(s *Store) *VulnerabilityRepository {
	r := &VulnerabilityRepository{newGormRepository[models.Vulnerability](s, "vulnerability")}
	r.beforeDelete = func(tx *gorm.DB, id uint) error {
		return clearAssociations(tx, &models.Vulnerability{Model: models.Model{ID: id}}, "Assets", "Threats", "AppliedControls")
	}
	r.describe = func(v *models.Vulnerability) string { return v.Description }
	return r
}

// ForAsset lists the vulnerabilities linked to an asset.
func (r *VulnerabilityRepository) ForAsset(assetID uint) ([]models.Vulnerability, error) {
	tx := r.db()
	if err := r.store.assets.exists(tx, assetID); err != nil {
		return nil, err
	}
	var vulns []models.Vulnerability
	err := tx.Model(&models.Asset{Model: models.Model{ID: assetID}}).
		Order("vulnerability.id asc").
		Association("Vulnerabilities").
		Find(&vulns)
	return vulns, err
}

// ForThreat lists the vulnerabilities a threat exploits.
func (r *VulnerabilityRepository) ForThreat(threatID uint) ([]models.Vulnerability, error) {
	tx := r.db()
	if err := r.store.threats.exists(tx, threatID); err != nil {
		return nil, err
	}
	var vulns []models.Vulnerability
	err := tx.Model(&models.Threat{Model: models.Model{ID: threatID}}).
		Order("vulnerability.id asc").
		Association("Vulnerabilities").
		Find(&vulns)
	return vulns, err
}

func (r *VulnerabilityRepository) LinkThreat(vulnID, threatID uint) error {
	vuln, err := r.Read(vulnID)
	if err != nil {
		return err
	}
	threat, err := r.store.threats.Read(threatID)
	if err != nil {
		return err
	}
	if err := r.db().Model(&vuln).Association("Threats").Append(&threat); err != nil {
		return err
	}
	r.store.audit("vulnerability", vulnID, models.ActionLink, fmt.Sprintf("threat %d", threatID))
	return nil
}

func (r *VulnerabilityRepository) UnlinkThreat(vulnID, threatID uint) error {
	vuln, err := r.Read(vulnID)
	if err != nil {
		return err
	}
	threat, err := r.store.threats.Read(threatID)
	if err != nil {
		return err
	}
	if err := r.db().Model(&vuln).Association("Threats").Delete(&threat); err != nil {
		return err
	}
	r.store.audit("vulnerability", vulnID, models.ActionUnlink, fmt.Sprintf("threat %d", threatID))
	return nil
}

type ThreatRepository struct {
	*GormRepository[models.Threat]
}

func newThreatRepository(s *Store) *ThreatRepository {
	r := &ThreatRepository{newGormRepository[models.Threat](s, "threat")}
	r.beforeDelete = func(tx *gorm.DB, id uint) error {
		return clearAssociations(tx, &models.Threat{Model: models.Model{ID: id}}, "Vulnerabilities")
	}
	r.describe = func(t *models.Threat) string { return t.Name }
	return r
}

func (r *ThreatRepository) ForVulnerability(vulnID uint) ([]models.Threat, error) {
	tx := r.db()
	if err := r.store.vulnerabilities.exists(tx, vulnID); err != nil {
		return nil, err
	}
	var threats []models.Threat
	err := tx.Model(&models.Vulnerability{Model: models.Model{ID: vulnID}}).
		Order("threat.id asc").
		Association("Threats").
		Find(&threats)
	return threats, err
}

type OwnerRepository struct {
	*GormRepository[models.Owner]
}

func newOwnerRepository(s *Store) *OwnerRepository {
	r := &OwnerRepository{newGormRepository[models.Owner](s, "owner")}
	r.beforeDelete = func(tx *gorm.DB, id uint) error {
		return clearAssociations(tx, &models.Owner{Model: models.Model{ID: id}}, "Assets")
	}
	r.describe = func(o *models.Owner) string { return o.Name }
	return r
}

type ControlRepository struct {
	*GormRepository[models.Control]
}

func newControlRepository(s *Store) *ControlRepository {
	r := &ControlRepository{newGormRepository[models.Control](s, "control")}
	r.beforeDelete = func(tx *gorm.DB, id uint) error {
		return clearAssociations(tx, &models.Control{Model: models.Model{ID: id}}, "AppliedControls")
	}
	r.describe = func(c *models.Control) string { return c.Ref }
	return r
}

type AppliedControlRepository struct {
	*GormRepository[models.AppliedControl]
}

func newAppliedControlRepository(s *Store) *AppliedControlRepository {
	r := &AppliedControlRepository{newGormRepository[models.AppliedControl](s, "applied_control")}
	r.beforeSave = func(tx *gorm.DB, ac *models.AppliedControl) error {
		if err := checkRef(tx, s.controls.GormRepository, ac.ControlID); err != nil {
			return err
		}
		if err := checkRef(tx, s.assets.GormRepository, ac.AssetID); err != nil {
			return err
		}
		return checkRef(tx, s.vulnerabilities.GormRepository, ac.VulnerabilityID)
	}
	r.describe = func(ac *models.AppliedControl) string { return ac.Status.String() }
	return r
}

func (r *AppliedControlRepository) ForAsset(assetID uint) ([]models.AppliedControl, error) {
	return r.FindBy(map[string]any{"asset_id": assetID})
}

func (r *AppliedControlRepository) ForVulnerability(vulnID uint) ([]models.AppliedControl, error) {
	return r.FindBy(map[string]any{"vulnerability_id": vulnID})
}

func (r *AppliedControlRepository) ForControl(controlID uint) ([]models.AppliedControl, error) {
	return r.FindBy(map[string]any{"control_id": controlID})
}
