package models

import (
	"time"

	"gorm.io/gorm"
)

// Model replaces gorm.Model: rows are hard deleted so association cleanup
// and "deleted" mean the same thing.
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m Model) GetID() uint {
	return m.ID
}

// Basic is the assessment header. A store holds exactly one.
type Basic struct {
	Model
	Name        string    `gorm:"size:64" json:"name" validate:"max=64"`
	Location    string    `gorm:"size:64" json:"location" validate:"max=64"`
	InitialDate time.Time `json:"initialDate"`
	Scope       string    `gorm:"type:text" json:"scope"`
}

func (Basic) TableName() string {
	return "basic"
}

func (b *Basic) BeforeCreate(tx *gorm.DB) error {
	if b.InitialDate.IsZero() {
		b.InitialDate = time.Now()
	}
	return nil
}
