package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo implements SubscriptionRepository over SQLite.
type SubscriptionRepo struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

// CreateSubscription registers a user for a vehicle's DM notifications.
// Subscribing twice is a no-op.
func (r *SubscriptionRepo) CreateSubscription(guildID, userID, name string) error {
	_, err := r.db.Exec(`
		INSERT INTO subscriptions (guild_id, user_id, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (guild_id, user_id, name) DO NOTHING
	`, guildID, userID, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) DeleteSubscription(guildID, userID, name string) (bool, error) {
	result, err := r.db.Exec(`
		DELETE FROM subscriptions
		WHERE guild_id = ? AND user_id = ? AND name = ?
	`, guildID, userID, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

// GetSubscriptions returns every subscriber of one vehicle, in a stable
// order for deterministic fan-out.
func (r *SubscriptionRepo) GetSubscriptions(guildID, name string) ([]Subscription, error) {
	rows, err := r.db.Query(`
		SELECT guild_id, user_id, name, created_at
		FROM subscriptions
		WHERE guild_id = ? AND name = ?
		ORDER BY created_at, user_id
	`, guildID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

func (r *SubscriptionRepo) GetUserSubscriptions(guildID, userID string) ([]Subscription, error) {
	rows, err := r.db.Query(`
		SELECT guild_id, user_id, name, created_at
		FROM subscriptions
		WHERE guild_id = ? AND user_id = ?
		ORDER BY name
	`, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user subscriptions: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

func (r *SubscriptionRepo) GetSubscriptionCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM subscriptions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get subscription count: %w", err)
	}
	return count, nil
}

func scanSubscriptions(rows *sql.Rows) ([]Subscription, error) {
	var subs []Subscription
	for rows.Next() {
		var s Subscription
		if err := rows.Scan(&s.GuildID, &s.UserID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		subs = append(subs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}
	return subs, nil
}
