package database

import (
	"strings"
	"time"
)

// Vehicle is a monitored resource: one RSS feed per vehicle, scoped to a
// guild. Names are unique within a guild.
type Vehicle struct {
	GuildID   string
	Name      string
	RSSURL    string
	CreatedAt time.Time
}

// VehicleState is the last known status of a vehicle, upserted after every
// poll that detects a change. The payload hash is the authoritative
// deduplication key for feed content.
type VehicleState struct {
	GuildID         string
	Name            string
	LastStatus      string
	LastSeenAt      time.Time
	LastPayloadHash string
}

// VehicleWithState joins a vehicle with its state, which is nil until the
// first successful poll.
type VehicleWithState struct {
	Vehicle
	State *VehicleState
}

// Subscription links a user to a vehicle for direct-message notifications.
type Subscription struct {
	GuildID   string
	UserID    string
	Name      string
	CreatedAt time.Time
}

// GuildConfig holds per-guild notification settings. RolesCSV keeps the
// mention roles as an ordered comma-separated list; order is preserved in
// the rendered mention text.
type GuildConfig struct {
	GuildID    string
	ChannelID  string
	RolesCSV   string
	PollingSec int
}

// RoleIDs splits the stored CSV into the ordered role id list.
func (c *GuildConfig) RoleIDs() []string {
	if c == nil || c.RolesCSV == "" {
		return nil
	}
	parts := strings.Split(c.RolesCSV, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}

// AuditEntry is one append-only record of a notification attempt. The core
// only ever writes these.
type AuditEntry struct {
	ID          int64
	GuildID     string
	Name        string
	Status      string
	ChannelType string
	Success     bool
	Error       string
	CreatedAt   time.Time
}
