package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ VehicleRepository = (*VehicleRepo)(nil)

// VehicleRepo implements VehicleRepository over SQLite.
type VehicleRepo struct {
	db *DB
}

func NewVehicleRepository(db *DB) *VehicleRepo {
	return &VehicleRepo{db: db}
}

func (r *VehicleRepo) CreateVehicle(guildID, name, rssURL string) error {
	_, err := r.db.Exec(`
		INSERT INTO vehicles (guild_id, name, rss_url, created_at)
		VALUES (?, ?, ?, ?)
	`, guildID, name, rssURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

// DeleteVehicle removes a vehicle. State and subscriptions go with it via
// foreign-key cascade, so the whole removal is one atomic statement.
func (r *VehicleRepo) DeleteVehicle(guildID, name string) (bool, error) {
	result, err := r.db.Exec(`
		DELETE FROM vehicles WHERE guild_id = ? AND name = ?
	`, guildID, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete vehicle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *VehicleRepo) GetVehicle(guildID, name string) (*Vehicle, error) {
	var v Vehicle
	err := r.db.QueryRow(`
		SELECT guild_id, name, rss_url, created_at
		FROM vehicles
		WHERE guild_id = ? AND name = ?
	`, guildID, name).Scan(&v.GuildID, &v.Name, &v.RSSURL, &v.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &v, nil
}

func (r *VehicleRepo) GetVehicles(guildID string) ([]Vehicle, error) {
	rows, err := r.db.Query(`
		SELECT guild_id, name, rss_url, created_at
		FROM vehicles
		WHERE guild_id = ?
		ORDER BY name
	`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.GuildID, &v.Name, &v.RSSURL, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle row: %w", err)
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vehicle rows: %w", err)
	}
	return vehicles, nil
}

// GetVehiclesWithState returns a guild's vehicles joined with their last
// known state. The ordering is stable within a process run; the scheduler
// polls vehicles in this order.
func (r *VehicleRepo) GetVehiclesWithState(guildID string) ([]VehicleWithState, error) {
	rows, err := r.db.Query(`
		SELECT v.guild_id, v.name, v.rss_url, v.created_at,
		       s.last_status, s.last_seen_at, s.last_payload_hash
		FROM vehicles v
		LEFT JOIN vehicle_states s ON s.guild_id = v.guild_id AND s.name = v.name
		WHERE v.guild_id = ?
		ORDER BY v.name
	`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicles with state: %w", err)
	}
	defer rows.Close()

	var vehicles []VehicleWithState
	for rows.Next() {
		var v VehicleWithState
		var lastStatus sql.NullString
		var lastSeenAt sql.NullTime
		var lastHash sql.NullString
		err := rows.Scan(&v.GuildID, &v.Name, &v.RSSURL, &v.CreatedAt,
			&lastStatus, &lastSeenAt, &lastHash)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle state row: %w", err)
		}

		if lastStatus.Valid {
			v.State = &VehicleState{
				GuildID:         v.GuildID,
				Name:            v.Name,
				LastStatus:      lastStatus.String,
				LastSeenAt:      lastSeenAt.Time,
				LastPayloadHash: lastHash.String,
			}
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vehicle state rows: %w", err)
	}
	return vehicles, nil
}

// GetDistinctGuildIDs returns every guild that has at least one vehicle.
// The scheduler derives its tenant list from this at startup.
func (r *VehicleRepo) GetDistinctGuildIDs() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT guild_id FROM vehicles ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct guild ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan guild id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guild id rows: %w", err)
	}
	return ids, nil
}

func (r *VehicleRepo) GetVehicleCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM vehicles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get vehicle count: %w", err)
	}
	return count, nil
}

func (r *VehicleRepo) GetGuildCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(DISTINCT guild_id) FROM vehicles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get guild count: %w", err)
	}
	return count, nil
}
