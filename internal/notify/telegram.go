package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	neturl "net/url"
	"strings"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

const (
	telegramURL        = "https://api.telegram.org"
	telegramMaxMessage = 4096
)

// Telegram sends messages to a chat through a Telegram bot.
type Telegram struct {
	base
	token  string
	chatID string
	o      *options
}

// NewTelegram creates a Telegram channel posting as the bot identified by
// token into chatID.
func NewTelegram(name, token, chatID string, opts ...Option) *Telegram {
	o := newOptions(opts)
	if o.baseURL == "" {
		o.baseURL = telegramURL
	}
	return &Telegram{
		base:   newBase(name, "telegram", o),
		token:  token,
		chatID: chatID,
		o:      o,
	}
}

// HasRequiredFields reports whether the bot token and chat id are set.
func (t *Telegram) HasRequiredFields() bool {
	return t.token != "" && t.chatID != ""
}

type telegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts the title and message as one chat message.
func (t *Telegram) Send(ctx context.Context, _ *domain.User, title, message string) error {
	if !t.HasRequiredFields() {
		return Permanent(ErrMissingFields)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.o.baseURL, t.token)
	body, err := postJSON(ctx, t.o.client, "telegram", url, nil, telegramMessage{
		ChatID: t.chatID,
		Text:   truncate(title+"\n\n"+message, telegramMaxMessage),
	})
	if err != nil {
		var ue *neturl.Error
		if errors.As(err, &ue) {
			ue.URL = strings.ReplaceAll(ue.URL, t.token, "<token>")
		}
		return err
	}

	var resp telegramResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decoding telegram response: %w", err)
	}
	if !resp.OK {
		return errors.New("telegram rejected message: " + resp.Description)
	}
	return nil
}
