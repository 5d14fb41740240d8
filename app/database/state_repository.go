package database

import (
	"database/sql"
	"fmt"
)

var _ StateRepository = (*StateRepo)(nil)

// StateRepo implements StateRepository over SQLite.
type StateRepo struct {
	db *DB
}

func NewStateRepository(db *DB) *StateRepo {
	return &StateRepo{db: db}
}

func (r *StateRepo) GetState(guildID, name string) (*VehicleState, error) {
	var s VehicleState
	err := r.db.QueryRow(`
		SELECT guild_id, name, last_status, last_seen_at, last_payload_hash
		FROM vehicle_states
		WHERE guild_id = ? AND name = ?
	`, guildID, name).Scan(&s.GuildID, &s.Name, &s.LastStatus, &s.LastSeenAt, &s.LastPayloadHash)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle state: %w", err)
	}
	return &s, nil
}

// UpsertState writes the latest observed status. The ON CONFLICT clause
// makes the read-modify-write of a poll atomic at the storage layer.
func (r *StateRepo) UpsertState(state VehicleState) error {
	_, err := r.db.Exec(`
		INSERT INTO vehicle_states (guild_id, name, last_status, last_seen_at, last_payload_hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (guild_id, name) DO UPDATE SET
			last_status = excluded.last_status,
			last_seen_at = excluded.last_seen_at,
			last_payload_hash = excluded.last_payload_hash
	`, state.GuildID, state.Name, state.LastStatus, state.LastSeenAt, state.LastPayloadHash)
	if err != nil {
		return fmt.Errorf("failed to upsert vehicle state: %w", err)
	}
	return nil
}
