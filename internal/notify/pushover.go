package notify

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

const (
	pushoverURL        = "https://api.pushover.net"
	pushoverMaxTitle   = 250
	pushoverMaxMessage = 1024
)

// Pushover sends messages through the Pushover API.
type Pushover struct {
	base
	userKey  string
	apiToken string
	o        *options
}

// NewPushover creates a Pushover channel for the user key, authenticated
// by the application API token.
func NewPushover(name, userKey, apiToken string, opts ...Option) *Pushover {
	o := newOptions(opts)
	if o.baseURL == "" {
		o.baseURL = pushoverURL
	}
	return &Pushover{
		base:     newBase(name, "pushover", o),
		userKey:  userKey,
		apiToken: apiToken,
		o:        o,
	}
}

// HasRequiredFields reports whether both the user key and API token are set.
func (p *Pushover) HasRequiredFields() bool {
	return p.userKey != "" && p.apiToken != ""
}

// Send posts the message. Pushover limits message length, so long batches
// are cut.
func (p *Pushover) Send(ctx context.Context, _ *domain.User, title, message string) error {
	if !p.HasRequiredFields() {
		return Permanent(ErrMissingFields)
	}
	form := url.Values{}
	form.Set("token", p.apiToken)
	form.Set("user", p.userKey)
	form.Set("title", truncate(title, pushoverMaxTitle))
	form.Set("message", truncate(message, pushoverMaxMessage))

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err := post(ctx, p.o.client, "pushover", p.o.baseURL+"/1/messages.json", header, strings.NewReader(form.Encode()))
	return err
}
