package discord

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/bwmarrin/discordgo"

	"github.com/lgarnier/fleetwatch/app/database"
	"github.com/lgarnier/fleetwatch/app/scheduler"
)

// Bot wires the slash command surface to the repositories and the
// scheduler. Commands are the only write path into the fleet tables.
type Bot struct {
	client    *Client
	vehicles  database.VehicleRepository
	states    database.StateRepository
	subs      database.SubscriptionRepository
	configs   database.GuildConfigRepository
	scheduler *scheduler.Scheduler
}

func NewBot(client *Client, vehicles database.VehicleRepository,
	states database.StateRepository, subs database.SubscriptionRepository,
	configs database.GuildConfigRepository, sched *scheduler.Scheduler) *Bot {
	bot := &Bot{
		client:    client,
		vehicles:  vehicles,
		states:    states,
		subs:      subs,
		configs:   configs,
		scheduler: sched,
	}
	client.Session().AddHandler(bot.handleInteraction)
	return bot
}

// RegisterCommands overwrites the application's global command set.
func (b *Bot) RegisterCommands() error {
	session := b.client.Session()
	_, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, "", commandDefinitions())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	slog.Info("Registered application commands", "count", len(commandDefinitions()))
	return nil
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" {
		respondEphemeral(s, i, "Cette commande ne fonctionne que dans un serveur.")
		return
	}

	name := i.ApplicationCommandData().Name
	slog.Debug("Handling command", "command", name, "guild_id", i.GuildID)

	switch name {
	case "ajout":
		b.handleAddVehicle(s, i)
	case "suppr":
		b.handleRemoveVehicle(s, i)
	case "salon":
		b.handleSetChannel(s, i)
	case "roles_ajouter":
		b.handleAddRoles(s, i)
	case "roles_retirer":
		b.handleRemoveRoles(s, i)
	case "polling":
		b.handleSetPolling(s, i)
	case "config_voir":
		b.handleShowConfig(s, i)
	case "liste":
		b.handleListVehicles(s, i)
	case "statut":
		b.handleShowStatus(s, i)
	case "abonner":
		b.handleSubscribe(s, i)
	case "desabonner":
		b.handleUnsubscribe(s, i)
	case "mes":
		b.handleMySubscriptions(s, i)
	case "vehicules":
		b.handleListVehicles(s, i)
	case "voir":
		b.handleShowStatus(s, i)
	default:
		slog.Warn("Unknown command", "command", name)
	}
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	adminPerms := int64(discordgo.PermissionAdministrator)

	return []*discordgo.ApplicationCommand{
		{
			Name:                     "ajout",
			Description:              "Ajouter un véhicule à suivre",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "nom", Description: "Nom du véhicule", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "url", Description: "URL du flux RSS", Required: true},
			},
		},
		{
			Name:                     "suppr",
			Description:              "Retirer un véhicule du suivi",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "nom", Description: "Nom du véhicule", Required: true},
			},
		},
		{
			Name:                     "salon",
			Description:              "Définir le salon des notifications publiques",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "salon", Description: "Salon de notification", Required: true},
			},
		},
		{
			Name:                     "roles_ajouter",
			Description:              "Ajouter un rôle mentionné dans les notifications",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Rôle à mentionner", Required: true},
			},
		},
		{
			Name:                     "roles_retirer",
			Description:              "Retirer un rôle mentionné dans les notifications",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Rôle à retirer", Required: true},
			},
		},
		{
			Name:                     "polling",
			Description:              "Régler l'intervalle de vérification (30 à 120 secondes)",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "secondes", Description: "Intervalle en secondes", Required: true},
			},
		},
		{
			Name:                     "config_voir",
			Description:              "Afficher la configuration du serveur",
			DefaultMemberPermissions: &adminPerms,
		},
		{
			Name:                     "liste",
			Description:              "Lister les véhicules suivis",
			DefaultMemberPermissions: &adminPerms,
		},
		{
			Name:                     "statut",
			Description:              "Afficher le statut d'un véhicule",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "nom", Description: "Nom du véhicule", Required: true},
			},
		},
		{
			Name:        "abonner",
			Description: "Recevoir un message privé quand un véhicule redevient disponible",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "nom", Description: "Nom du véhicule", Required: true},
			},
		},
		{
			Name:        "desabonner",
			Description: "Ne plus suivre un véhicule",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "nom", Description: "Nom du véhicule", Required: true},
			},
		},
		{
			Name:        "mes",
			Description: "Lister mes abonnements",
		},
		{
			Name:        "vehicules",
			Description: "Lister les véhicules suivis",
		},
		{
			Name:        "voir",
			Description: "Afficher le statut d'un véhicule",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "nom", Description: "Nom du véhicule", Required: true},
			},
		},
	}
}

// stringOption returns a named string option, or "" when absent.
func stringOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

func intOption(i *discordgo.InteractionCreate, name string) (int64, bool) {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionInteger {
			return opt.IntValue(), true
		}
	}
	return 0, false
}

// validateFeedURL accepts absolute http(s) URLs only.
func validateFeedURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("URL invalide: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL invalide: schéma %q non supporté", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL invalide: hôte manquant")
	}
	return nil
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Warn("Failed to respond to interaction", "error", err)
	}
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Warn("Failed to respond to interaction", "error", err)
	}
}
