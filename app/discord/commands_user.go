package discord

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/lgarnier/fleetwatch/app/database"
)

func (b *Bot) handleSubscribe(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := strings.TrimSpace(stringOption(i, "nom"))
	userID := interactionUserID(i)

	vehicle, err := b.vehicles.GetVehicle(i.GuildID, name)
	if err != nil {
		slog.Error("Failed to check vehicle", "guild_id", i.GuildID, "vehicle", name, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}
	if vehicle == nil {
		respondEphemeral(s, i, fmt.Sprintf("Véhicule **%s** introuvable.", name))
		return
	}

	if err := b.subs.CreateSubscription(i.GuildID, userID, name); err != nil {
		slog.Error("Failed to create subscription",
			"guild_id", i.GuildID, "user_id", userID, "vehicle", name, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf(
		"Vous serez prévenu par message privé quand **%s** redeviendra disponible.", name))
}

func (b *Bot) handleUnsubscribe(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := strings.TrimSpace(stringOption(i, "nom"))
	userID := interactionUserID(i)

	deleted, err := b.subs.DeleteSubscription(i.GuildID, userID, name)
	if err != nil {
		slog.Error("Failed to delete subscription",
			"guild_id", i.GuildID, "user_id", userID, "vehicle", name, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}
	if !deleted {
		respondEphemeral(s, i, fmt.Sprintf("Vous n'étiez pas abonné à **%s**.", name))
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Abonnement à **%s** supprimé.", name))
}

func (b *Bot) handleMySubscriptions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)

	subscriptions, err := b.subs.GetUserSubscriptions(i.GuildID, userID)
	if err != nil {
		slog.Error("Failed to load subscriptions",
			"guild_id", i.GuildID, "user_id", userID, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}
	if len(subscriptions) == 0 {
		respondEphemeral(s, i, "Vous n'avez aucun abonnement.")
		return
	}

	names := make([]string, len(subscriptions))
	for idx, sub := range subscriptions {
		names[idx] = fmt.Sprintf("• %s", sub.Name)
	}
	respondEphemeral(s, i, "Vos abonnements :\n"+strings.Join(names, "\n"))
}

func (b *Bot) handleListVehicles(s *discordgo.Session, i *discordgo.InteractionCreate) {
	vehicles, err := b.vehicles.GetVehiclesWithState(i.GuildID)
	if err != nil {
		slog.Error("Failed to load vehicles", "guild_id", i.GuildID, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}

	respondEmbed(s, i, fleetListEmbed(vehicles))
}

func (b *Bot) handleShowStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := strings.TrimSpace(stringOption(i, "nom"))

	vehicle, err := b.vehicles.GetVehicle(i.GuildID, name)
	if err != nil {
		slog.Error("Failed to load vehicle", "guild_id", i.GuildID, "vehicle", name, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}
	if vehicle == nil {
		respondEphemeral(s, i, fmt.Sprintf("Véhicule **%s** introuvable.", name))
		return
	}

	state, err := b.states.GetState(i.GuildID, name)
	if err != nil {
		slog.Error("Failed to load vehicle state", "guild_id", i.GuildID, "vehicle", name, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}

	respondEmbed(s, i, vehicleStatusEmbed(database.VehicleWithState{
		Vehicle: *vehicle,
		State:   state,
	}))
}

// interactionUserID resolves the invoking user for both guild and DM
// interactions.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
