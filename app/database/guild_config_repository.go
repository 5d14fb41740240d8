package database

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"
)

var _ GuildConfigRepository = (*GuildConfigRepo)(nil)

// GuildConfigRepo implements GuildConfigRepository over SQLite.
type GuildConfigRepo struct {
	db *DB
}

func NewGuildConfigRepository(db *DB) *GuildConfigRepo {
	return &GuildConfigRepo{db: db}
}

func (r *GuildConfigRepo) GetGuildConfig(guildID string) (*GuildConfig, error) {
	var c GuildConfig
	err := r.db.QueryRow(`
		SELECT guild_id, channel_id, roles_csv, polling_sec
		FROM guild_configs
		WHERE guild_id = ?
	`, guildID).Scan(&c.GuildID, &c.ChannelID, &c.RolesCSV, &c.PollingSec)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild config: %w", err)
	}
	return &c, nil
}

func (r *GuildConfigRepo) SetNotificationChannel(guildID, channelID string) error {
	_, err := r.db.Exec(`
		INSERT INTO guild_configs (guild_id, channel_id)
		VALUES (?, ?)
		ON CONFLICT (guild_id) DO UPDATE SET channel_id = excluded.channel_id
	`, guildID, channelID)
	if err != nil {
		return fmt.Errorf("failed to set notification channel: %w", err)
	}
	return nil
}

// AddMentionRoles appends roles to the ordered mention list, skipping ones
// already present. Order of first addition is preserved.
func (r *GuildConfigRepo) AddMentionRoles(guildID string, roleIDs []string) error {
	config, err := r.GetGuildConfig(guildID)
	if err != nil {
		return err
	}

	var roles []string
	if config != nil {
		roles = config.RoleIDs()
	}
	for _, id := range roleIDs {
		if id != "" && !slices.Contains(roles, id) {
			roles = append(roles, id)
		}
	}

	return r.setRoles(guildID, roles)
}

func (r *GuildConfigRepo) RemoveMentionRoles(guildID string, roleIDs []string) error {
	config, err := r.GetGuildConfig(guildID)
	if err != nil {
		return err
	}
	if config == nil {
		return nil
	}

	roles := slices.DeleteFunc(config.RoleIDs(), func(id string) bool {
		return slices.Contains(roleIDs, id)
	})

	return r.setRoles(guildID, roles)
}

func (r *GuildConfigRepo) setRoles(guildID string, roles []string) error {
	_, err := r.db.Exec(`
		INSERT INTO guild_configs (guild_id, roles_csv)
		VALUES (?, ?)
		ON CONFLICT (guild_id) DO UPDATE SET roles_csv = excluded.roles_csv
	`, guildID, strings.Join(roles, ","))
	if err != nil {
		return fmt.Errorf("failed to set mention roles: %w", err)
	}
	return nil
}

func (r *GuildConfigRepo) SetPollingInterval(guildID string, seconds int) error {
	if seconds < 30 || seconds > 120 {
		return fmt.Errorf("polling interval %d out of bounds [30,120]", seconds)
	}

	_, err := r.db.Exec(`
		INSERT INTO guild_configs (guild_id, polling_sec)
		VALUES (?, ?)
		ON CONFLICT (guild_id) DO UPDATE SET polling_sec = excluded.polling_sec
	`, guildID, seconds)
	if err != nil {
		return fmt.Errorf("failed to set polling interval: %w", err)
	}
	return nil
}
