package database

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"crisk/internal/models"
	"crisk/internal/risk"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assessment"+Extension)
	s, err := Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func float(f float64) *float64 { return &f }

func joinRows(t *testing.T, s *Store, table, column string, id uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.session().Table(table).Where(column+" = ?", id).Count(&n).Error)
	return n
}

func TestCreate(t *testing.T) {
	t.Run("fresh path yields exactly one basic record", func(t *testing.T) {
		s := newTestStore(t)

		var basics []models.Basic
		require.NoError(t, s.session().Find(&basics).Error)
		require.Len(t, basics, 1)
		assert.False(t, basics[0].InitialDate.IsZero())

		for name, count := range map[string]func() (int64, error){
			"assets":           s.Assets().Count,
			"vulnerabilities":  s.Vulnerabilities().Count,
			"threats":          s.Threats().Count,
			"owners":           s.Owners().Count,
			"controls":         s.Controls().Count,
			"applied controls": s.AppliedControls().Count,
		} {
			n, err := count()
			require.NoError(t, err)
			assert.Zero(t, n, name)
		}
	})

	t.Run("existing path is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "taken.crisk")
		require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o600))

		_, err := Create(path)
		assert.ErrorIs(t, err, ErrStoreExists)
		assert.ErrorIs(t, err, ErrStoreAccess)

		content, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, "keep me", string(content))
	})

	t.Run("file name with uri characters", func(t *testing.T) {
		for _, name := range []string{"q?x.crisk", "a#b.crisk", "50%.crisk", "has space.crisk"} {
			dir := t.TempDir()
			path := filepath.Join(dir, name)

			s, err := Create(path)
			require.NoError(t, err, name)
			require.NoError(t, s.Close(), name)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1, name)
			assert.Equal(t, name, entries[0].Name())

			s, err = Open(path)
			require.NoError(t, err, name)
			_, err = s.Basic()
			assert.NoError(t, err, name)
			require.NoError(t, s.Close())
		}
	})

	t.Run("does not touch the file before the question mark", func(t *testing.T) {
		dir := t.TempDir()
		prefix := filepath.Join(dir, "q")
		other, err := gorm.Open(sqlite.Open(prefix), &gorm.Config{})
		require.NoError(t, err)
		require.NoError(t, other.Exec("CREATE TABLE something (id integer primary key)").Error)
		closeDB(other)
		before, err := os.ReadFile(prefix)
		require.NoError(t, err)

		s, err := Create(prefix + "?x.crisk")
		require.NoError(t, err)
		require.NoError(t, s.Close())

		after, err := os.ReadFile(prefix)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("missing directory is a store access error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "a.crisk")
		_, err := Create(path)
		assert.ErrorIs(t, err, ErrStoreAccess)

		var storeErr *StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "create", storeErr.Op)
		assert.Equal(t, path, storeErr.Path)
	})
}

func TestOpen(t *testing.T) {
	t.Run("nonexistent path", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope.crisk"))
		assert.ErrorIs(t, err, ErrStoreNotFound)
		assert.ErrorIs(t, err, ErrStoreAccess)
	})

	t.Run("garbage file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "garbage.crisk")
		require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a database ", 100)), 0o600))

		_, err := Open(path)
		assert.ErrorIs(t, err, ErrStoreCorrupt)
		assert.ErrorIs(t, err, ErrStoreAccess)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.crisk")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		_, err := Open(path)
		assert.ErrorIs(t, err, ErrStoreCorrupt)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Open(t.TempDir())
		assert.ErrorIs(t, err, ErrStoreCorrupt)
	})

	t.Run("sqlite database of another application", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "other.db")
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
		require.NoError(t, err)
		require.NoError(t, db.Exec("CREATE TABLE something (id integer primary key)").Error)
		closeDB(db)

		_, err = Open(path)
		assert.ErrorIs(t, err, ErrStoreCorrupt)
	})

	t.Run("reopens a created store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.crisk")
		s, err := Create(path)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		s, err = Open(path)
		require.NoError(t, err)
		defer s.Close()

		b, err := s.Basic()
		require.NoError(t, err)
		assert.NotZero(t, b.ID)
	})
}

func TestOpenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.crisk")
	s, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	s, err = Open(path, ReadOnly())
	require.NoError(t, err)
	_, err = s.Basic()
	require.NoError(t, err)
	assert.Error(t, s.Owners().Create(&models.Owner{Name: "IT"}))
	require.NoError(t, s.Close())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Owners().Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.crisk")
	s, err := Create(path)
	require.NoError(t, err)

	committed := models.Asset{Name: "Mail server"}
	require.NoError(t, s.Assets().Create(&committed))
	require.NoError(t, s.Commit())

	discarded := models.Asset{Name: "Scratch"}
	require.NoError(t, s.Assets().Create(&discarded))
	require.NoError(t, s.Rollback())

	assets, err := s.Assets().All()
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "Mail server", assets[0].Name)

	closedOnExit := models.Asset{Name: "Laptop"}
	require.NoError(t, s.Assets().Create(&closedOnExit))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Assets().All()
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, s.Commit(), ErrStoreClosed)

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	assets, err = s.Assets().All()
	require.NoError(t, err)
	assert.Len(t, assets, 2)
}

func TestBasic(t *testing.T) {
	s := newTestStore(t)

	b, err := s.Basic()
	require.NoError(t, err)
	created := b.InitialDate

	require.NoError(t, s.SaveBasic(&models.Basic{Name: "ACME 2026", Location: "Recife", Scope: "HQ network"}))

	b, err = s.Basic()
	require.NoError(t, err)
	assert.Equal(t, "ACME 2026", b.Name)
	assert.Equal(t, "HQ network", b.Scope)
	assert.WithinDuration(t, created, b.InitialDate, time.Second)

	var n int64
	require.NoError(t, s.session().Model(&models.Basic{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	err = s.SaveBasic(&models.Basic{Name: strings.Repeat("x", 65)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRepositoryCRUD(t *testing.T) {
	s := newTestStore(t)

	owner := models.Owner{Name: "IT"}
	require.NoError(t, s.Owners().Create(&owner))

	asset := models.Asset{Name: "File server", OwnerID: &owner.ID}
	require.NoError(t, asset.SetValue("1500"))
	require.NoError(t, s.Assets().Create(&asset))
	require.NotZero(t, asset.ID)

	got, err := s.Assets().Read(asset.ID, "Owner")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), *got.Value)
	assert.Equal(t, "IT", got.OwnerName())

	got.Description = "Samba share"
	require.NoError(t, s.Assets().Save(&got))

	got, err = s.Assets().Read(asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "Samba share", got.Description)
	assert.False(t, got.CreatedAt.IsZero())

	byOwner, err := s.Assets().ByOwner(owner.ID)
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)

	found, err := s.Assets().FindBy(map[string]any{"name": "File server"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = s.Assets().Read(9999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Assets().Delete(9999), ErrNotFound)

	missing := models.Asset{Model: models.Model{ID: 9999}, Name: "ghost"}
	assert.ErrorIs(t, s.Assets().Save(&missing), ErrNotFound)

	require.NoError(t, s.Assets().Delete(asset.ID))
	_, err = s.Assets().Read(asset.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidation(t *testing.T) {
	s := newTestStore(t)

	err := s.Assets().Create(&models.Asset{Name: strings.Repeat("a", 65)})
	assert.ErrorIs(t, err, ErrValidation)

	err = s.Controls().Create(&models.Control{Ref: "A.5.1.1.1.1.1.1.1"})
	assert.ErrorIs(t, err, ErrValidation)

	ownerID := uint(42)
	err = s.Assets().Create(&models.Asset{Name: "orphan", OwnerID: &ownerID})
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.Assets().Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateValue(t *testing.T) {
	s := newTestStore(t)

	asset := models.Asset{Name: "Database"}
	require.NoError(t, s.Assets().Create(&asset))

	updated, err := s.Assets().UpdateValue(asset.ID, "1500")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), *updated.Value)

	_, err = s.Assets().UpdateValue(asset.ID, "fifteen hundred")
	assert.ErrorIs(t, err, risk.ErrInvalidValue)

	got, err := s.Assets().Read(asset.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), *got.Value)
}

func TestVulnerabilityTotalRiskRoundTrip(t *testing.T) {
	s := newTestStore(t)

	scored := models.Vulnerability{Description: "Weak passwords", Severity: float(4), Chance: float(0.5)}
	unscored := models.Vulnerability{Description: "Unknown", Chance: float(3)}
	require.NoError(t, s.Vulnerabilities().Create(&scored))
	require.NoError(t, s.Vulnerabilities().Create(&unscored))

	got, err := s.Vulnerabilities().Read(scored.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.TotalRisk())

	got, err = s.Vulnerabilities().Read(unscored.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Severity)
	assert.Equal(t, 0.0, got.TotalRisk())
}

type graph struct {
	asset, other models.Asset
	vuln         models.Vulnerability
	threat       models.Threat
	control      models.Control
	applied      models.AppliedControl
}

func newGraph(t *testing.T, s *Store) graph {
	t.Helper()
	g := graph{
		asset:   models.Asset{Name: "Web server"},
		other:   models.Asset{Name: "Backup"},
		vuln:    models.Vulnerability{Description: "Outdated TLS", Severity: float(3), Chance: float(2)},
		threat:  models.Threat{Name: "Eavesdropping"},
		control: models.Control{Ref: "A.10.1.1", Description: "Cryptographic policy"},
	}
	require.NoError(t, s.Assets().Create(&g.asset))
	require.NoError(t, s.Assets().Create(&g.other))
	require.NoError(t, s.Vulnerabilities().Create(&g.vuln))
	require.NoError(t, s.Threats().Create(&g.threat))
	require.NoError(t, s.Controls().Create(&g.control))

	require.NoError(t, s.Assets().LinkVulnerability(g.asset.ID, g.vuln.ID))
	require.NoError(t, s.Assets().LinkVulnerability(g.other.ID, g.vuln.ID))
	require.NoError(t, s.Vulnerabilities().LinkThreat(g.vuln.ID, g.threat.ID))

	g.applied = models.AppliedControl{
		ControlID:       &g.control.ID,
		AssetID:         &g.asset.ID,
		VulnerabilityID: &g.vuln.ID,
		Status:          models.StatusInProgress,
	}
	require.NoError(t, s.AppliedControls().Create(&g.applied))
	return g
}

func TestLinks(t *testing.T) {
	s := newTestStore(t)
	g := newGraph(t, s)

	// linking twice keeps a single row
	require.NoError(t, s.Assets().LinkVulnerability(g.asset.ID, g.vuln.ID))
	assert.Equal(t, int64(1), joinRows(t, s, "asset_vulnerabilities", "asset_id", g.asset.ID))

	vulns, err := s.Vulnerabilities().ForAsset(g.asset.ID)
	require.NoError(t, err)
	require.Len(t, vulns, 1)
	assert.Equal(t, "Outdated TLS", vulns[0].Description)

	assets, err := s.Assets().ForVulnerability(g.vuln.ID)
	require.NoError(t, err)
	assert.Len(t, assets, 2)

	threats, err := s.Threats().ForVulnerability(g.vuln.ID)
	require.NoError(t, err)
	assert.Len(t, threats, 1)

	byThreat, err := s.Vulnerabilities().ForThreat(g.threat.ID)
	require.NoError(t, err)
	assert.Len(t, byThreat, 1)

	require.NoError(t, s.Assets().UnlinkVulnerability(g.other.ID, g.vuln.ID))
	assets, err = s.Assets().ForVulnerability(g.vuln.ID)
	require.NoError(t, err)
	assert.Len(t, assets, 1)

	require.NoError(t, s.Vulnerabilities().UnlinkThreat(g.vuln.ID, g.threat.ID))
	threats, err = s.Threats().ForVulnerability(g.vuln.ID)
	require.NoError(t, err)
	assert.Empty(t, threats)

	assert.ErrorIs(t, s.Assets().LinkVulnerability(g.asset.ID, 9999), ErrNotFound)
	assert.ErrorIs(t, s.Vulnerabilities().LinkThreat(9999, g.threat.ID), ErrNotFound)
	_, err = s.Vulnerabilities().ForAsset(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAsset(t *testing.T) {
	s := newTestStore(t)
	g := newGraph(t, s)

	require.NoError(t, s.Assets().Delete(g.asset.ID))

	assert.Zero(t, joinRows(t, s, "asset_vulnerabilities", "asset_id", g.asset.ID))
	assert.Equal(t, int64(1), joinRows(t, s, "asset_vulnerabilities", "asset_id", g.other.ID))

	vuln, err := s.Vulnerabilities().Read(g.vuln.ID)
	require.NoError(t, err)
	assert.Equal(t, "Outdated TLS", vuln.Description)

	applied, err := s.AppliedControls().Read(g.applied.ID)
	require.NoError(t, err)
	assert.Nil(t, applied.AssetID)
	require.NotNil(t, applied.VulnerabilityID)
	assert.Equal(t, g.vuln.ID, *applied.VulnerabilityID)

	require.NoError(t, s.Commit())
}

func TestDeleteFailureKeepsAssociations(t *testing.T) {
	s := newTestStore(t)
	g := newGraph(t, s)

	cleanup := s.assets.beforeDelete
	s.assets.beforeDelete = func(tx *gorm.DB, id uint) error {
		if err := cleanup(tx, id); err != nil {
			return err
		}
		return errors.New("disk full")
	}

	assert.Error(t, s.Assets().Delete(g.asset.ID))

	assert.Equal(t, int64(1), joinRows(t, s, "asset_vulnerabilities", "asset_id", g.asset.ID))
	applied, err := s.AppliedControls().Read(g.applied.ID)
	require.NoError(t, err)
	require.NotNil(t, applied.AssetID)
	assert.Equal(t, g.asset.ID, *applied.AssetID)

	_, err = s.Assets().Read(g.asset.ID)
	require.NoError(t, err)

	// the session is still usable
	s.assets.beforeDelete = cleanup
	require.NoError(t, s.Assets().Delete(g.asset.ID))
	assert.Zero(t, joinRows(t, s, "asset_vulnerabilities", "asset_id", g.asset.ID))
}

func TestDeleteVulnerability(t *testing.T) {
	s := newTestStore(t)
	g := newGraph(t, s)

	require.NoError(t, s.Vulnerabilities().Delete(g.vuln.ID))

	assert.Zero(t, joinRows(t, s, "asset_vulnerabilities", "vulnerability_id", g.vuln.ID))
	assert.Zero(t, joinRows(t, s, "vulnerability_threats", "vulnerability_id", g.vuln.ID))

	n, err := s.Assets().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = s.Threats().Read(g.threat.ID)
	require.NoError(t, err)

	applied, err := s.AppliedControls().ForAsset(g.asset.ID)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Nil(t, applied[0].VulnerabilityID)

	require.NoError(t, s.Commit())
}

func TestDeleteThreatOwnerControl(t *testing.T) {
	s := newTestStore(t)
	g := newGraph(t, s)

	owner := models.Owner{Name: "Ops"}
	require.NoError(t, s.Owners().Create(&owner))
	g.asset.OwnerID = &owner.ID
	require.NoError(t, s.Assets().Save(&g.asset))

	require.NoError(t, s.Threats().Delete(g.threat.ID))
	assert.Zero(t, joinRows(t, s, "vulnerability_threats", "threat_id", g.threat.ID))
	_, err := s.Vulnerabilities().Read(g.vuln.ID)
	require.NoError(t, err)

	require.NoError(t, s.Owners().Delete(owner.ID))
	asset, err := s.Assets().Read(g.asset.ID)
	require.NoError(t, err)
	assert.Nil(t, asset.OwnerID)

	require.NoError(t, s.Controls().Delete(g.control.ID))
	byControl, err := s.AppliedControls().ForControl(g.control.ID)
	require.NoError(t, err)
	assert.Empty(t, byControl)

	applied, err := s.AppliedControls().Read(g.applied.ID)
	require.NoError(t, err)
	assert.Nil(t, applied.ControlID)
	assert.Equal(t, models.StatusInProgress, applied.Status)

	require.NoError(t, s.Commit())
}

func TestAppliedControlReferences(t *testing.T) {
	s := newTestStore(t)

	missing := uint(77)
	err := s.AppliedControls().Create(&models.AppliedControl{ControlID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.AppliedControls().Create(&models.AppliedControl{Status: models.StatusPlanned})
	assert.NoError(t, err)
}

func TestAuditLogs(t *testing.T) {
	s := newTestStore(t)

	logs, err := s.AuditLogs(0)
	require.NoError(t, err)
	assert.Empty(t, logs)

	g := newGraph(t, s)
	require.NoError(t, s.Assets().Delete(g.other.ID))

	logs, err = s.AuditLogs(1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "asset", logs[0].Entity)
	assert.Equal(t, g.other.ID, logs[0].EntityID)
	assert.Equal(t, models.ActionDelete, logs[0].Action)

	logs, err = s.AuditLogs(100)
	require.NoError(t, err)
	// 5 creates, 3 links, 1 applied control, 1 delete
	assert.Len(t, logs, 10)
}

func TestWithExtension(t *testing.T) {
	assert.Equal(t, "a.crisk", WithExtension("a"))
	assert.Equal(t, "a.crisk", WithExtension("a.crisk"))
	assert.Equal(t, "a.CRISK", WithExtension("a.CRISK"))
	assert.Equal(t, "a.db.crisk", WithExtension("a.db"))
}
