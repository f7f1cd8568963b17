package database

import (
	"log/slog"

	"crisk/internal/models"
)

// audit appends a journal row in the current session. Journal failures are
// logged, never returned.
func (s *Store) audit(entity string, entityID uint, action models.AuditAction, details string) {
	if s.tx == nil {
		return
	}
	record := models.AuditLog{
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if err := s.session().Create(&record).Error; err != nil {
		slog.Warn("failed to write audit log", "entity", entity, "id", entityID, "err", err)
	}
}

// AuditLogs returns the newest journal rows first. limit <= 0 means 200.
func (s *Store) AuditLogs(limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 200
	}
	var logs []models.AuditLog
	err := s.session().
		Order("id desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
