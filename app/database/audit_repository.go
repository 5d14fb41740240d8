package database

import (
	"fmt"
	"time"
)

var _ AuditRepository = (*AuditRepo)(nil)

// AuditRepo implements AuditRepository over SQLite.
type AuditRepo struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) RecordNotification(entry AuditEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO audit_log (guild_id, name, status, channel_type, success, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.GuildID, entry.Name, entry.Status, entry.ChannelType, entry.Success, entry.Error, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record notification attempt: %w", err)
	}
	return nil
}
