package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/lgarnier/fleetwatch/app/database"
	"github.com/lgarnier/fleetwatch/app/notify"
	"github.com/lgarnier/fleetwatch/app/status"
)

// toMessageEmbed converts the platform-neutral embed to discordgo's format.
func toMessageEmbed(embed *notify.Embed) *discordgo.MessageEmbed {
	if embed == nil {
		return nil
	}

	out := &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		Color:       embed.Color,
	}
	if !embed.Timestamp.IsZero() {
		out.Timestamp = embed.Timestamp.Format(time.RFC3339)
	}
	if embed.FooterText != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: embed.FooterText}
	}
	for _, f := range embed.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return out
}

// vehicleStatusEmbed renders one vehicle's last known state for the statut
// and voir commands.
func vehicleStatusEmbed(vehicle database.VehicleWithState) *discordgo.MessageEmbed {
	if vehicle.State == nil {
		return &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("❓ %s", vehicle.Name),
			Description: "Aucun statut observé pour le moment.",
			Color:       0x808080,
		}
	}

	s := status.Status(vehicle.State.LastStatus)
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s", status.Emoji(s), vehicle.Name),
		Description: fmt.Sprintf("Statut : **%s**", s),
		Color:       status.Color(s),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Dernière observation",
		},
		Timestamp: vehicle.State.LastSeenAt.Format(time.RFC3339),
	}
}

// fleetListEmbed renders the whole fleet with one line per vehicle.
func fleetListEmbed(vehicles []database.VehicleWithState) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🚒 Véhicules suivis",
		Color: 0x2b6cb0,
	}
	if len(vehicles) == 0 {
		embed.Description = "Aucun véhicule enregistré."
		return embed
	}

	for _, v := range vehicles {
		line := "Aucun statut observé"
		if v.State != nil {
			s := status.Status(v.State.LastStatus)
			line = fmt.Sprintf("%s %s", status.Emoji(s), s)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   v.Name,
			Value:  line,
			Inline: true,
		})
	}
	return embed
}
