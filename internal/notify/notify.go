// Package notify delivers listing notifications to users through
// configurable channels such as push services, chat webhooks and email.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// Retry defaults shared by every channel type.
const (
	DefaultMaxRetries = 6
	DefaultRetryDelay = 10 * time.Second
)

// ErrMissingFields is returned when a channel is used without the fields
// its type requires.
var ErrMissingFields = errors.New("channel is missing required fields")

// Channel is a configured notification backend.
type Channel interface {
	// Name is the key of the channel under `notification:` in the config.
	Name() string
	// Type is the registry type, e.g. "pushover".
	Type() string
	// HasRequiredFields reports whether every required field is set.
	// Channels without them are skipped.
	HasRequiredFields() bool
	Policy() RetryPolicy
	Send(ctx context.Context, to *domain.User, title, message string) error
}

// RetryPolicy bounds delivery attempts for one channel.
type RetryPolicy struct {
	// MaxRetries is the total number of attempts.
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultPolicy returns the policy used when a channel sets neither field.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: DefaultMaxRetries, RetryDelay: DefaultRetryDelay}
}

type options struct {
	log     *slog.Logger
	client  *http.Client
	baseURL string
	policy  RetryPolicy
}

// Option configures a channel.
type Option func(*options)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithHTTPClient sets a custom HTTP client for HTTP based channels.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithBaseURL overrides the API endpoint of HTTP based channels.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		log:    slog.Default(),
		client: &http.Client{Timeout: 30 * time.Second},
		policy: DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// base carries the fields every channel has.
type base struct {
	name   string
	kind   string
	policy RetryPolicy
	log    *slog.Logger
}

func newBase(name, kind string, o *options) base {
	return base{
		name:   name,
		kind:   kind,
		policy: o.policy,
		log:    o.log.With("channel", name, "type", kind),
	}
}

func (b *base) Name() string        { return b.name }
func (b *base) Type() string        { return b.kind }
func (b *base) Policy() RetryPolicy { return b.policy }
