package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/lgarnier/fleetwatch/app/database"
	"github.com/lgarnier/fleetwatch/app/status"
)

// dmRate caps direct-message fan-out to stay under chat platform limits.
const dmRate = rate.Limit(2)

// Dispatcher routes significant status transitions to the right audience:
// public channel broadcasts for equipment failures, direct messages to
// subscribers for returns to availability. Every delivery attempt is
// recorded in the audit log; audit failures never block delivery.
type Dispatcher struct {
	platform Platform
	configs  database.GuildConfigRepository
	subs     database.SubscriptionRepository
	audit    database.AuditRepository
	limiter  *rate.Limiter
}

func NewDispatcher(platform Platform, configs database.GuildConfigRepository,
	subs database.SubscriptionRepository, audit database.AuditRepository) *Dispatcher {
	return &Dispatcher{
		platform: platform,
		configs:  configs,
		subs:     subs,
		audit:    audit,
		limiter:  rate.NewLimiter(dmRate, 1),
	}
}

// Dispatch routes one event according to its status. It returns the number
// of deliveries attempted and the number that failed.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) (attempted, failed int) {
	switch status.ForStatus(event.NewStatus) {
	case status.NotificationPublic:
		if d.SendPublic(ctx, event) {
			return 1, 0
		}
		return 1, 1
	case status.NotificationDM:
		sent, errs := d.SendDirect(ctx, event)
		return sent + errs, errs
	default:
		return 0, 0
	}
}

// SendPublic broadcasts the event to the guild's configured notification
// channel, prefixed with the configured role mentions in their stored order.
// An unconfigured guild drops the event with a warning.
func (d *Dispatcher) SendPublic(ctx context.Context, event Event) bool {
	config, err := d.configs.GetGuildConfig(event.GuildID)
	if err != nil {
		slog.Error("Failed to load guild config for notification",
			"guild_id", event.GuildID, "error", err)
		return false
	}
	if config == nil || config.ChannelID == "" {
		slog.Warn("No notification channel configured, dropping public notification",
			"guild_id", event.GuildID, "vehicle", event.Vehicle)
		return false
	}

	content := mentionPrefix(config.RoleIDs())
	err = d.platform.SendToChannel(ctx, config.ChannelID, content, BuildEmbed(event))
	d.recordAttempt(event, string(status.NotificationPublic), err)
	if err != nil {
		slog.Error("Failed to send public notification",
			"guild_id", event.GuildID, "vehicle", event.Vehicle, "error", err)
		return false
	}

	slog.Info("Sent public notification",
		"guild_id", event.GuildID, "vehicle", event.Vehicle, "status", event.NewStatus)
	return true
}

// SendDirect fans the event out to every subscriber of the vehicle. One
// failing recipient never stops the rest; the counts let the caller log the
// outcome.
func (d *Dispatcher) SendDirect(ctx context.Context, event Event) (sent, failed int) {
	subscriptions, err := d.subs.GetSubscriptions(event.GuildID, event.Vehicle)
	if err != nil {
		slog.Error("Failed to load subscribers",
			"guild_id", event.GuildID, "vehicle", event.Vehicle, "error", err)
		return 0, 0
	}
	if len(subscriptions) == 0 {
		return 0, 0
	}

	embed := BuildEmbed(event)
	for _, sub := range subscriptions {
		if err := d.limiter.Wait(ctx); err != nil {
			slog.Warn("Direct message fan-out interrupted",
				"guild_id", event.GuildID, "vehicle", event.Vehicle,
				"remaining", len(subscriptions)-sent-failed, "error", err)
			return sent, failed
		}

		err := d.platform.SendDirectMessage(ctx, sub.UserID, embed)
		d.recordAttempt(event, string(status.NotificationDM), err)
		if err != nil {
			failed++
			slog.Warn("Failed to send direct message",
				"guild_id", event.GuildID, "vehicle", event.Vehicle,
				"user_id", sub.UserID, "error", err)
			continue
		}
		sent++
	}

	slog.Info("Direct message fan-out complete",
		"guild_id", event.GuildID, "vehicle", event.Vehicle,
		"sent", sent, "failed", failed)
	return sent, failed
}

func (d *Dispatcher) recordAttempt(event Event, channelType string, sendErr error) {
	entry := database.AuditEntry{
		GuildID:     event.GuildID,
		Name:        event.Vehicle,
		Status:      string(event.NewStatus),
		ChannelType: channelType,
		Success:     sendErr == nil,
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}

	if err := d.audit.RecordNotification(entry); err != nil {
		slog.Warn("Failed to record notification attempt",
			"guild_id", event.GuildID, "vehicle", event.Vehicle, "error", err)
	}
}

// mentionPrefix renders role mentions in their configured order.
func mentionPrefix(roleIDs []string) string {
	if len(roleIDs) == 0 {
		return ""
	}
	mentions := make([]string, len(roleIDs))
	for i, id := range roleIDs {
		mentions[i] = fmt.Sprintf("<@&%s>", id)
	}
	return strings.Join(mentions, " ")
}
