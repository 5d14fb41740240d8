package notify

import (
	"fmt"

	"github.com/lgarnier/fleetwatch/app/status"
)

// BuildEmbed renders an event as the rich message shown in notifications.
// Wording is French to match the statuses themselves.
func BuildEmbed(event Event) *Embed {
	embed := &Embed{
		Title:       fmt.Sprintf("%s %s", status.Emoji(event.NewStatus), event.Vehicle),
		Description: fmt.Sprintf("Nouveau statut : **%s**", event.NewStatus),
		Color:       status.Color(event.NewStatus),
		FooterText:  "Fleetwatch",
		Timestamp:   event.ObservedAt,
	}

	if event.OldStatus != "" {
		embed.Fields = append(embed.Fields, EmbedField{
			Name:   "Statut précédent",
			Value:  event.OldStatus,
			Inline: true,
		})
	}
	if event.SourceURL != "" {
		embed.Fields = append(embed.Fields, EmbedField{
			Name:  "Source",
			Value: event.SourceURL,
		})
	}

	return embed
}
