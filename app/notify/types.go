package notify

import (
	"context"
	"time"

	"github.com/lgarnier/fleetwatch/app/status"
)

// Platform is the chat backend the dispatcher sends through. It is the only
// seam between the notification pipeline and a concrete chat service.
type Platform interface {
	SendToChannel(ctx context.Context, channelID, content string, embed *Embed) error
	SendDirectMessage(ctx context.Context, userID string, embed *Embed) error
}

// Embed is a platform-neutral rich message. The platform adapter converts it
// to its native message format.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	FooterText  string
	Timestamp   time.Time
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Event is one significant status transition ready for delivery.
type Event struct {
	GuildID    string
	Vehicle    string
	OldStatus  string
	NewStatus  status.Status
	ObservedAt time.Time
	SourceURL  string
}
