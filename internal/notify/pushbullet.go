package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

const pushbulletURL = "https://api.pushbullet.com"

// Pushbullet sends notes through the Pushbullet API.
type Pushbullet struct {
	base
	token string
	o     *options
}

// NewPushbullet creates a Pushbullet channel authenticated by token.
func NewPushbullet(name, token string, opts ...Option) *Pushbullet {
	o := newOptions(opts)
	if o.baseURL == "" {
		o.baseURL = pushbulletURL
	}
	return &Pushbullet{
		base:  newBase(name, "pushbullet", o),
		token: token,
		o:     o,
	}
}

// HasRequiredFields reports whether an access token is set.
func (p *Pushbullet) HasRequiredFields() bool {
	return p.token != ""
}

type pushbulletNote struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send pushes a note to every device of the account.
func (p *Pushbullet) Send(ctx context.Context, _ *domain.User, title, message string) error {
	if !p.HasRequiredFields() {
		return Permanent(ErrMissingFields)
	}
	header := http.Header{}
	header.Set("Access-Token", p.token)
	_, err := postJSON(ctx, p.o.client, "pushbullet", p.o.baseURL+"/v2/pushes", header, pushbulletNote{
		Type:  "note",
		Title: title,
		Body:  message,
	})
	return err
}

// proxyClient returns an HTTP client that routes through a proxy of the
// given scheme, e.g. ("socks5", "127.0.0.1:1080").
func proxyClient(base *http.Client, scheme, server string) (*http.Client, error) {
	if scheme == "" {
		scheme = "http"
	}
	u, err := url.Parse(scheme + "://" + server)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy %s://%s: %w", scheme, server, err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(u)
	return &http.Client{Transport: transport, Timeout: base.Timeout}, nil
}
