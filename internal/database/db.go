package database

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"crisk/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Extension is the file name suffix of crisk stores.
const Extension = ".crisk"

var sqliteHeader = []byte("SQLite format 3\x00")

// entity tables in dependency order
var schema = []any{
	&models.Basic{},
	&models.Owner{},
	&models.Asset{},
	&models.Threat{},
	&models.Vulnerability{},
	&models.Control{},
	&models.AppliedControl{},
	&models.AuditLog{},
}

type Option func(*options)

type options struct {
	sqlDebug bool
	readOnly bool
}

func collect(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithSQLDebug logs every statement at debug level.
func WithSQLDebug(enabled bool) Option {
	return func(o *options) {
		o.sqlDebug = enabled
	}
}

// ReadOnly opens the file without write access and skips schema
// migration. Close rolls the session back instead of committing.
func ReadOnly() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

// Store is a handle on one open backing file. All repository calls run in
// the store's current session, which stays open until Commit or Rollback.
// A Store is not safe for concurrent use.
type Store struct {
	path     string
	db       *gorm.DB
	tx       *gorm.DB
	readOnly bool

	assets          *AssetRepository
	vulnerabilities *VulnerabilityRepository
	threats         *ThreatRepository
	owners          *OwnerRepository
	controls        *ControlRepository
	appliedControls *AppliedControlRepository
}

// WithExtension appends Extension to path unless it already has it.
func WithExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), Extension) {
		return path
	}
	return path + Extension
}

// Create makes a new store at path holding exactly one Basic record.
// The file must not exist yet. On failure nothing is left behind.
func Create(path string, opts ...Option) (*Store, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return nil, storeErr("create", path, ErrStoreExists)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, storeErr("create", path, err)
	}

	o := collect(opts)
	o.readOnly = false
	db, err := connect(path, o)
	if err != nil {
		removeStoreFiles(path)
		return nil, storeErr("create", path, err)
	}

	err = db.AutoMigrate(schema...)
	if err != nil {
		err = fmt.Errorf("failed to migrate: %w", err)
	} else {
		err = db.Create(&models.Basic{}).Error
	}
	if err != nil {
		closeDB(db)
		removeStoreFiles(path)
		return nil, storeErr("create", path, err)
	}

	slog.Info("created store", "path", path)
	return newStore(path, db, false)
}

// Open opens an existing store. Missing files report ErrStoreNotFound,
// anything that is not a crisk store reports ErrStoreCorrupt.
func Open(path string, opts ...Option) (*Store, error) {
	if err := checkHeader(path); err != nil {
		return nil, storeErr("open", path, err)
	}

	o := collect(opts)
	db, err := connect(path, o)
	if err != nil {
		return nil, storeErr("open", path, err)
	}

	if !db.Migrator().HasTable(&models.Basic{}) {
		closeDB(db)
		return nil, storeErr("open", path, fmt.Errorf("%w: missing table basic", ErrStoreCorrupt))
	}

	if !o.readOnly {
		if err := db.AutoMigrate(schema...); err != nil {
			closeDB(db)
			return nil, storeErr("open", path, fmt.Errorf("failed to migrate: %w", err))
		}
	}

	slog.Info("opened store", "path", path, "readOnly", o.readOnly)
	return newStore(path, db, o.readOnly)
}

func connect(path string, o options) (*gorm.DB, error) {
	dsn, err := fileURI(path, o.readOnly)
	if err != nil {
		return nil, err
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newSlogLogger(o.sqlDebug),
	})
}

// fileURI turns path into an sqlite file: URI. The path is made absolute
// and escaped so '?', '#' and '%' stay part of the file name.
func fileURI(path string, readOnly bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		// windows drive letter
		abs = "/" + abs
	}

	q := url.Values{}
	q.Set("_pragma", "foreign_keys(1)")
	if readOnly {
		q.Set("mode", "ro")
	}
	u := url.URL{Scheme: "file", Path: abs, RawQuery: q.Encode()}
	return u.String(), nil
}

func checkHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrStoreNotFound
		}
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrStoreCorrupt, path)
	}

	header := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreCorrupt, err)
	}
	if !bytes.Equal(header, sqliteHeader) {
		return fmt.Errorf("%w: not an sqlite database", ErrStoreCorrupt)
	}
	return nil
}

func newStore(path string, db *gorm.DB, readOnly bool) (*Store, error) {
	s := &Store{path: path, db: db, readOnly: readOnly}
	if err := s.begin(); err != nil {
		closeDB(db)
		return nil, storeErr("begin", path, err)
	}

	s.assets = newAssetRepository(s)
	s.vulnerabilities = newVulnerabilityRepository(s)
	s.threats = newThreatRepository(s)
	s.owners = newOwnerRepository(s)
	s.controls = newControlRepository(s)
	s.appliedControls = newAppliedControlRepository(s)
	return s, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Warn("failed to close database", "err", err)
	}
}

func removeStoreFiles(path string) {
	for _, p := range []string{path, path + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to remove store file", "path", p, "err", err)
		}
	}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) begin() error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	s.tx = tx
	return nil
}

// session returns the open transaction. On a closed store the returned
// handle carries ErrStoreClosed so every query fails with it.
func (s *Store) session() *gorm.DB {
	if s.tx == nil {
		tx := s.db.Session(&gorm.Session{NewDB: true})
		_ = tx.AddError(ErrStoreClosed)
		return tx
	}
	return s.tx
}

// Commit makes the session durable and starts a new one.
func (s *Store) Commit() error {
	if s.tx == nil {
		return storeErr("commit", s.path, ErrStoreClosed)
	}
	if err := s.tx.Commit().Error; err != nil {
		return storeErr("commit", s.path, err)
	}
	s.tx = nil
	if err := s.begin(); err != nil {
		return storeErr("begin", s.path, err)
	}
	return nil
}

// Rollback discards everything since the last commit and starts a new session.
func (s *Store) Rollback() error {
	if s.tx == nil {
		return storeErr("rollback", s.path, ErrStoreClosed)
	}
	if err := s.tx.Rollback().Error; err != nil {
		return storeErr("rollback", s.path, err)
	}
	s.tx = nil
	if err := s.begin(); err != nil {
		return storeErr("begin", s.path, err)
	}
	return nil
}

// Close commits the session and releases the file. A read-only store rolls
// back instead. Calling Close twice is a no-op.
func (s *Store) Close() error {
	if s.tx == nil {
		return nil
	}
	var err error
	if s.readOnly {
		err = s.tx.Rollback().Error
	} else {
		err = s.tx.Commit().Error
	}
	s.tx = nil

	sqlDB, dbErr := s.db.DB()
	if dbErr == nil {
		dbErr = sqlDB.Close()
	}
	if err != nil {
		return storeErr("close", s.path, err)
	}
	if dbErr != nil {
		return storeErr("close", s.path, dbErr)
	}
	slog.Info("closed store", "path", s.path)
	return nil
}

func (s *Store) Assets() *AssetRepository                   { return s.assets }
func (s *Store) Vulnerabilities() *VulnerabilityRepository { return s.vulnerabilities }
func (s *Store) Threats() *ThreatRepository                 { return s.threats }
func (s *Store) Owners() *OwnerRepository                   { return s.owners }
func (s *Store) Controls() *ControlRepository               { return s.controls }
func (s *Store) AppliedControls() *AppliedControlRepository {
	return s.appliedControls
}

// Basic returns the assessment header.
func (s *Store) Basic() (models.Basic, error) {
	var b models.Basic
	err := s.session().Order("id asc").First(&b).Error
	if err != nil {
		return b, wrapNotFound(err, "basic", 0)
	}
	return b, nil
}

func (s *Store) SaveBasic(b *models.Basic) error {
	if err := validate(b); err != nil {
		return err
	}
	current, err := s.Basic()
	if err != nil {
		return err
	}
	b.ID = current.ID
	b.CreatedAt = current.CreatedAt
	if b.InitialDate.IsZero() {
		b.InitialDate = current.InitialDate
	}
	if err := s.session().Save(b).Error; err != nil {
		return err
	}
	s.audit("basic", b.ID, models.ActionUpdate, b.Name)
	return nil
}
