package models

import "time"

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionLink   AuditAction = "link"
	ActionUnlink AuditAction = "unlink"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Entity   string      `gorm:"size:50;not null" json:"entity"` // "asset", "vulnerability", ...
	EntityID uint        `json:"entityId"`
	Action   AuditAction `gorm:"size:50;not null" json:"action"`
	Details  string      `gorm:"type:text" json:"details"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}
