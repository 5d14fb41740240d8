package discord

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleAddVehicle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		respondEphemeral(s, i, "Cette commande est réservée aux administrateurs.")
		return
	}

	name := strings.TrimSpace(stringOption(i, "nom"))
	feedURL := strings.TrimSpace(stringOption(i, "url"))
	if name == "" {
		respondEphemeral(s, i, "Le nom du véhicule est requis.")
		return
	}
	if err := validateFeedURL(feedURL); err != nil {
		respondEphemeral(s, i, err.Error())
		return
	}

	existing, err := b.vehicles.GetVehicle(i.GuildID, name)
	if err != nil {
		slog.Error("Failed to check vehicle", "guild_id", i.GuildID, "vehicle", name, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}
	if existing != nil {
		respondEphemeral(s, i, fmt.Sprintf("Le véhicule **%s** est déjà suivi.", name))
		return
	}

	if err := b.vehicles.CreateVehicle(i.GuildID, name, feedURL); err != nil {
		slog.Error("Failed to create vehicle", "guild_id", i.GuildID, "vehicle", name, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}

	b.scheduler.StartGuild(i.GuildID)
	slog.Info("Vehicle added", "guild_id", i.GuildID, "vehicle", name)
	respondEphemeral(s, i, fmt.Sprintf("Véhicule **%s** ajouté au suivi.", name))
}

func (b *Bot) handleRemoveVehicle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		respondEphemeral(s, i, "Cette commande est réservée aux administrateurs.")
		return
	}

	name := strings.TrimSpace(stringOption(i, "nom"))
	deleted, err := b.vehicles.DeleteVehicle(i.GuildID, name)
	if err != nil {
		slog.Error("Failed to delete vehicle", "guild_id", i.GuildID, "vehicle", name, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}
	if !deleted {
		respondEphemeral(s, i, fmt.Sprintf("Véhicule **%s** introuvable.", name))
		return
	}

	remaining, err := b.vehicles.GetVehicles(i.GuildID)
	if err == nil && len(remaining) == 0 {
		b.scheduler.StopGuild(i.GuildID)
	}

	slog.Info("Vehicle removed", "guild_id", i.GuildID, "vehicle", name)
	respondEphemeral(s, i, fmt.Sprintf("Véhicule **%s** retiré du suivi.", name))
}

func (b *Bot) handleSetChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		respondEphemeral(s, i, "Cette commande est réservée aux administrateurs.")
		return
	}

	var channelID string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "salon" && opt.Type == discordgo.ApplicationCommandOptionChannel {
			channelID = opt.ChannelValue(nil).ID
		}
	}
	if channelID == "" {
		respondEphemeral(s, i, "Le salon est requis.")
		return
	}

	if err := b.configs.SetNotificationChannel(i.GuildID, channelID); err != nil {
		slog.Error("Failed to set notification channel", "guild_id", i.GuildID, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Salon de notification défini : <#%s>.", channelID))
}

func (b *Bot) handleAddRoles(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		respondEphemeral(s, i, "Cette commande est réservée aux administrateurs.")
		return
	}

	roleID := roleOptionID(i, "role")
	if roleID == "" {
		respondEphemeral(s, i, "Le rôle est requis.")
		return
	}

	if err := b.configs.AddMentionRoles(i.GuildID, []string{roleID}); err != nil {
		slog.Error("Failed to add mention role", "guild_id", i.GuildID, "role_id", roleID, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Rôle <@&%s> ajouté aux mentions.", roleID))
}

func (b *Bot) handleRemoveRoles(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		respondEphemeral(s, i, "Cette commande est réservée aux administrateurs.")
		return
	}

	roleID := roleOptionID(i, "role")
	if roleID == "" {
		respondEphemeral(s, i, "Le rôle est requis.")
		return
	}

	if err := b.configs.RemoveMentionRoles(i.GuildID, []string{roleID}); err != nil {
		slog.Error("Failed to remove mention role", "guild_id", i.GuildID, "role_id", roleID, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Rôle <@&%s> retiré des mentions.", roleID))
}

func (b *Bot) handleSetPolling(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		respondEphemeral(s, i, "Cette commande est réservée aux administrateurs.")
		return
	}

	seconds, ok := intOption(i, "secondes")
	if !ok || seconds < 30 || seconds > 120 {
		respondEphemeral(s, i, "L'intervalle doit être entre 30 et 120 secondes.")
		return
	}

	if err := b.configs.SetPollingInterval(i.GuildID, int(seconds)); err != nil {
		slog.Error("Failed to set polling interval", "guild_id", i.GuildID, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}

	b.scheduler.RestartGuild(i.GuildID)
	slog.Info("Polling interval changed", "guild_id", i.GuildID, "seconds", seconds)
	respondEphemeral(s, i, fmt.Sprintf("Intervalle de vérification réglé à %d secondes.", seconds))
}

func (b *Bot) handleShowConfig(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		respondEphemeral(s, i, "Cette commande est réservée aux administrateurs.")
		return
	}

	config, err := b.configs.GetGuildConfig(i.GuildID)
	if err != nil {
		slog.Error("Failed to load guild config", "guild_id", i.GuildID, "error", err)
		respondEphemeral(s, i, "Erreur interne, réessayez plus tard.")
		return
	}

	channel := "non défini"
	roles := "aucun"
	pollingSec := 120
	if config != nil {
		if config.ChannelID != "" {
			channel = fmt.Sprintf("<#%s>", config.ChannelID)
		}
		if ids := config.RoleIDs(); len(ids) > 0 {
			mentions := make([]string, len(ids))
			for idx, id := range ids {
				mentions[idx] = fmt.Sprintf("<@&%s>", id)
			}
			roles = strings.Join(mentions, " ")
		}
		pollingSec = config.PollingSec
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title: "⚙️ Configuration",
		Color: 0x2b6cb0,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Salon de notification", Value: channel, Inline: true},
			{Name: "Rôles mentionnés", Value: roles, Inline: true},
			{Name: "Intervalle", Value: fmt.Sprintf("%d secondes", pollingSec), Inline: true},
		},
	})
}

func roleOptionID(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionRole {
			return opt.RoleValue(nil, "").ID
		}
	}
	return ""
}
