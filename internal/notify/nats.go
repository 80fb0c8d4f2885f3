package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// NATS publishes notifications as JSON events on a subject so other
// services can fan them out.
type NATS struct {
	base
	url     string
	subject string

	mu sync.Mutex
	nc *nats.Conn
}

// Event is the JSON document published by the NATS channel.
type Event struct {
	User    string    `json:"user"`
	Email   []string  `json:"email,omitempty"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// NewNATS creates a NATS channel. The connection is opened on first use.
func NewNATS(name, url, subject string, opts ...Option) *NATS {
	o := newOptions(opts)
	return &NATS{
		base:    newBase(name, "nats", o),
		url:     url,
		subject: subject,
	}
}

// HasRequiredFields reports whether the server URL and subject are set.
func (n *NATS) HasRequiredFields() bool {
	return n.url != "" && n.subject != ""
}

func (n *NATS) conn() (*nats.Conn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.nc != nil && !n.nc.IsClosed() {
		return n.nc, nil
	}
	nc, err := nats.Connect(n.url,
		nats.Name("marketplace-monitor"),
		nats.Timeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats %s: %w", n.url, err)
	}
	n.nc = nc
	return nc, nil
}

// Send publishes an Event and waits for the server to acknowledge it.
func (n *NATS) Send(ctx context.Context, to *domain.User, title, message string) error {
	if !n.HasRequiredFields() {
		return Permanent(ErrMissingFields)
	}
	nc, err := n.conn()
	if err != nil {
		return err
	}

	event := Event{Title: title, Message: message, SentAt: time.Now().UTC()}
	if to != nil {
		event.User = to.Name
		event.Email = to.Email
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling nats event: %w", err)
	}

	msg := &nats.Msg{Subject: n.subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	if err := nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publishing to %s: %w", n.subject, err)
	}
	if err := nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing nats connection: %w", err)
	}
	return nil
}

// Close drains the connection if one was opened.
func (n *NATS) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.nc == nil {
		return nil
	}
	err := n.nc.Drain()
	n.nc = nil
	return err
}

// natsHeaderCarrier adapts nats.Msg headers for trace propagation.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}
