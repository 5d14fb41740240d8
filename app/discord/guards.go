package discord

import "github.com/bwmarrin/discordgo"

// isAdmin checks the invoking member's resolved permissions. Discord already
// hides admin commands from regular members, but permission overrides can
// re-expose them, so the check is repeated server-side.
func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}
