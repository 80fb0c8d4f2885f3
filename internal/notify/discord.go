package notify

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

const (
	colorGreen  = 0x2ECC71 // new listings
	colorYellow = 0xF1C40F // reminders
	colorOrange = 0xE67E22 // updated listings

	discordMaxEmbeds      = 10
	discordMaxTitle       = 256
	discordMaxDescription = 4096
	discordMaxContent     = 2000
)

// Discord posts notifications to a Discord webhook, one embed per listing.
type Discord struct {
	base
	webhookURL string
	o          *options
}

// NewDiscord creates a Discord channel for webhookURL.
func NewDiscord(name, webhookURL string, opts ...Option) *Discord {
	o := newOptions(opts)
	return &Discord{
		base:       newBase(name, "discord", o),
		webhookURL: webhookURL,
		o:          o,
	}
}

// HasRequiredFields reports whether a webhook URL is set.
func (d *Discord) HasRequiredFields() bool {
	return d.webhookURL != ""
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string            `json:"title"`
	URL         string            `json:"url,omitempty"`
	Color       int               `json:"color"`
	Description string            `json:"description,omitempty"`
	Thumbnail   *discordThumbnail `json:"thumbnail,omitempty"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

// Send posts title as the message content and each listing as an embed.
func (d *Discord) Send(ctx context.Context, _ *domain.User, title, message string) error {
	if !d.HasRequiredFields() {
		return Permanent(ErrMissingFields)
	}

	blocks := splitListings(message)
	color := titleColor(title)
	limit := min(len(blocks), discordMaxEmbeds)

	embeds := make([]discordEmbed, 0, limit+1)
	for _, block := range blocks[:limit] {
		embeds = append(embeds, buildEmbed(block, color))
	}

	if len(blocks) > discordMaxEmbeds {
		embeds[len(embeds)-1] = discordEmbed{
			Title: fmt.Sprintf("... and %d more listings", len(blocks)-discordMaxEmbeds+1),
			Color: colorYellow,
		}
	}

	payload := discordWebhookPayload{
		Content: truncate(title, discordMaxContent),
		Embeds:  embeds,
	}
	_, err := postJSON(ctx, d.o.client, "discord", d.webhookURL, nil, payload)
	return err
}

func buildEmbed(lines []string, color int) discordEmbed {
	embed := discordEmbed{
		Title: truncate(lines[0], discordMaxTitle),
		Color: color,
	}
	var desc []string
	for _, line := range lines[1:] {
		if embed.URL == "" && isURL(line) {
			embed.URL = line
			continue
		}
		desc = append(desc, line)
	}
	embed.Description = truncate(strings.Join(desc, "\n"), discordMaxDescription)
	return embed
}

func titleColor(title string) int {
	switch {
	case strings.HasPrefix(title, "Another look"):
		return colorYellow
	case strings.Contains(title, " updated "):
		return colorOrange
	default:
		return colorGreen
	}
}
