package database

// VehicleRepository handles vehicle registration and lookup. Deleting a
// vehicle cascades to its state and subscriptions in one statement.
type VehicleRepository interface {
	CreateVehicle(guildID, name, rssURL string) error
	DeleteVehicle(guildID, name string) (bool, error)
	GetVehicle(guildID, name string) (*Vehicle, error)
	GetVehicles(guildID string) ([]Vehicle, error)
	GetVehiclesWithState(guildID string) ([]VehicleWithState, error)
	GetDistinctGuildIDs() ([]string, error)
	GetVehicleCount() (int, error)
	GetGuildCount() (int, error)
}

// StateRepository persists last-known vehicle statuses.
type StateRepository interface {
	GetState(guildID, name string) (*VehicleState, error)
	UpsertState(state VehicleState) error
}

// SubscriptionRepository handles user subscriptions to vehicles.
type SubscriptionRepository interface {
	CreateSubscription(guildID, userID, name string) error
	DeleteSubscription(guildID, userID, name string) (bool, error)
	GetSubscriptions(guildID, name string) ([]Subscription, error)
	GetUserSubscriptions(guildID, userID string) ([]Subscription, error)
	GetSubscriptionCount() (int, error)
}

// GuildConfigRepository handles per-guild notification settings.
type GuildConfigRepository interface {
	GetGuildConfig(guildID string) (*GuildConfig, error)
	SetNotificationChannel(guildID, channelID string) error
	AddMentionRoles(guildID string, roleIDs []string) error
	RemoveMentionRoles(guildID string, roleIDs []string) error
	SetPollingInterval(guildID string, seconds int) error
}

// AuditRepository records notification attempts. Append-only; the core
// never reads audit rows back.
type AuditRepository interface {
	RecordNotification(entry AuditEntry) error
}
