package database

import (
	"fmt"

	"crisk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type entity interface {
	GetID() uint
}

// GormRepository implements the operations every entity kind shares. All
// calls run in the owning store's session.
type GormRepository[T entity] struct {
	store *Store
	name  string

	// beforeSave runs after validation on Create and Save, e.g. to check
	// referenced rows exist.
	beforeSave func(tx *gorm.DB, t *T) error
	// beforeDelete detaches or removes association rows of the entity.
	beforeDelete func(tx *gorm.DB, id uint) error
	// describe renders the audit details of a row.
	describe func(t *T) string
}

func newGormRepository[T entity](s *Store, name string) *GormRepository[T] {
	return &GormRepository[T]{
		store: s,
		name:  name,
	}
}

func (g *GormRepository[T]) db() *gorm.DB {
	return g.store.session()
}

func (g *GormRepository[T]) details(t *T) string {
	if g.describe == nil {
		return ""
	}
	return g.describe(t)
}

// All returns every row ordered by id. preload names associations to load.
func (g *GormRepository[T]) All(preload ...string) ([]T, error) {
	var ts []T
	q := g.db()
	for _, p := range preload {
		q = q.Preload(p)
	}
	err := q.Order("id asc").Find(&ts).Error
	return ts, err
}

func (g *GormRepository[T]) Read(id uint, preload ...string) (T, error) {
	var t T
	q := g.db()
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.First(&t, "id = ?", id).Error; err != nil {
		return t, wrapNotFound(err, g.name, id)
	}
	return t, nil
}

// FindBy returns the rows whose columns equal the given values.
func (g *GormRepository[T]) FindBy(conds map[string]any) ([]T, error) {
	var ts []T
	err := g.db().Where(conds).Order("id asc").Find(&ts).Error
	return ts, err
}

func (g *GormRepository[T]) Count() (int64, error) {
	var n int64
	var t T
	err := g.db().Model(&t).Count(&n).Error
	return n, err
}

func (g *GormRepository[T]) exists(tx *gorm.DB, id uint) error {
	var n int64
	var t T
	if err := tx.Model(&t).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", g.name, id, ErrNotFound)
	}
	return nil
}

// Create inserts t. Associations are not written; use the link operations.
func (g *GormRepository[T]) Create(t *T) error {
	if err := validate(t); err != nil {
		return err
	}
	tx := g.db()
	if g.beforeSave != nil {
		if err := g.beforeSave(tx, t); err != nil {
			return err
		}
	}
	if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
		return err
	}
	g.store.audit(g.name, (*t).GetID(), models.ActionCreate, g.details(t))
	return nil
}

// Save writes every column of an existing row except created_at. A zero id
// creates the row.
func (g *GormRepository[T]) Save(t *T) error {
	id := (*t).GetID()
	if id == 0 {
		return g.Create(t)
	}
	if err := validate(t); err != nil {
		return err
	}
	tx := g.db()
	if err := g.exists(tx, id); err != nil {
		return err
	}
	if g.beforeSave != nil {
		if err := g.beforeSave(tx, t); err != nil {
			return err
		}
	}
	if err := tx.Omit(clause.Associations, "created_at").Save(t).Error; err != nil {
		return err
	}
	g.store.audit(g.name, id, models.ActionUpdate, g.details(t))
	return nil
}

// Delete removes the row after beforeDelete cleaned up its associations.
// Both run under a savepoint, a failure leaves the session unchanged.
func (g *GormRepository[T]) Delete(id uint) error {
	tx := g.db()
	if err := g.exists(tx, id); err != nil {
		return err
	}
	err := tx.Transaction(func(tx *gorm.DB) error {
		if g.beforeDelete != nil {
			if err := g.beforeDelete(tx, id); err != nil {
				return fmt.Errorf("failed to clean up %s %d: %w", g.name, id, err)
			}
		}
		var t T
		return tx.Delete(&t, id).Error
	})
	if err != nil {
		return err
	}
	g.store.audit(g.name, id, models.ActionDelete, "")
	return nil
}
