package notify

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// Fields is the raw configuration of one channel as decoded from YAML.
type Fields map[string]any

// Type returns the `type` field.
func (f Fields) Type() string {
	return f.String("type")
}

// String returns the field as a string, or "" when it is not set.
func (f Fields) String(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

// Int returns the field as an integer, or def when it is not set.
func (f Fields) Int(key string, def int) (int, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not an integer", key, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%s: unexpected value %v", key, v)
	}
}

// Duration returns the field as a duration, or def when it is not set.
// Integers are seconds.
func (f Fields) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return def, nil
	}
	d, err := domain.ParseDuration(fmt.Sprint(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Policy reads max_retries and retry_delay.
func (f Fields) Policy() (RetryPolicy, error) {
	p := DefaultPolicy()
	var errs []error
	var err error
	if p.MaxRetries, err = f.Int("max_retries", DefaultMaxRetries); err != nil {
		errs = append(errs, err)
	} else if p.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("max_retries: must be at least 1, got %d", p.MaxRetries))
	}
	if p.RetryDelay, err = f.Duration("retry_delay", DefaultRetryDelay); err != nil {
		errs = append(errs, err)
	} else if p.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("retry_delay: must not be negative"))
	}
	return p, errors.Join(errs...)
}

type constructor func(name string, f Fields, opts []Option) (Channel, error)

// Kind describes one channel type.
type Kind struct {
	Required []string
	Optional []string
	build    constructor
}

var retryFields = []string{"max_retries", "retry_delay"}

var registry = map[string]Kind{
	"pushbullet": {
		Required: []string{"pushbullet_token"},
		Optional: []string{"pushbullet_proxy_type", "pushbullet_proxy_server"},
		build: func(name string, f Fields, opts []Option) (Channel, error) {
			if server := f.String("pushbullet_proxy_server"); server != "" {
				client, err := proxyClient(newOptions(opts).client, f.String("pushbullet_proxy_type"), server)
				if err != nil {
					return nil, err
				}
				opts = append(opts, WithHTTPClient(client))
			}
			return NewPushbullet(name, f.String("pushbullet_token"), opts...), nil
		},
	},
	"pushover": {
		Required: []string{"pushover_user_key", "pushover_api_token"},
		build: func(name string, f Fields, opts []Option) (Channel, error) {
			return NewPushover(name, f.String("pushover_user_key"), f.String("pushover_api_token"), opts...), nil
		},
	},
	"telegram": {
		Required: []string{"telegram_token", "telegram_chat_id"},
		build: func(name string, f Fields, opts []Option) (Channel, error) {
			return NewTelegram(name, f.String("telegram_token"), f.String("telegram_chat_id"), opts...), nil
		},
	},
	"discord": {
		Required: []string{"discord_webhook_url"},
		build: func(name string, f Fields, opts []Option) (Channel, error) {
			return NewDiscord(name, f.String("discord_webhook_url"), opts...), nil
		},
	},
	"email": {
		Required: []string{"smtp_server", "smtp_username", "smtp_password"},
		Optional: []string{"smtp_port", "smtp_from"},
		build: func(name string, f Fields, opts []Option) (Channel, error) {
			port, err := f.Int("smtp_port", DefaultSMTPPort)
			if err != nil {
				return nil, err
			}
			return NewEmail(name, EmailConfig{
				Server:   f.String("smtp_server"),
				Port:     port,
				Username: f.String("smtp_username"),
				Password: f.String("smtp_password"),
				From:     f.String("smtp_from"),
			}, opts...), nil
		},
	},
	"nats": {
		Required: []string{"nats_url", "nats_subject"},
		build: func(name string, f Fields, opts []Option) (Channel, error) {
			return NewNATS(name, f.String("nats_url"), f.String("nats_subject"), opts...), nil
		},
	},
	"log": {
		build: func(name string, _ Fields, opts []Option) (Channel, error) {
			return NewLog(name, opts...), nil
		},
	},
}

// Types returns the registered channel types in sorted order.
func Types() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Lookup returns the description of a channel type.
func Lookup(kind string) (Kind, bool) {
	k, ok := registry[strings.ToLower(kind)]
	return k, ok
}

// Validate checks the type and field names of a channel configuration.
// Missing required fields are not an error: such channels are skipped
// when notifying.
func Validate(name string, f Fields) error {
	kind := f.Type()
	if kind == "" {
		return fmt.Errorf("notification %q: type is required (one of %s)", name, strings.Join(Types(), ", "))
	}
	k, ok := Lookup(kind)
	if !ok {
		return fmt.Errorf("notification %q: unknown type %q (one of %s)", name, kind, strings.Join(Types(), ", "))
	}

	allowed := map[string]bool{"type": true}
	for _, list := range [][]string{k.Required, k.Optional, retryFields} {
		for _, field := range list {
			allowed[field] = true
		}
	}

	var errs []error
	for _, field := range slices.Sorted(maps.Keys(f)) {
		if !allowed[field] {
			errs = append(errs, fmt.Errorf("notification %q: unknown field %q for type %s", name, field, kind))
		}
	}
	if _, err := f.Policy(); err != nil {
		errs = append(errs, fmt.Errorf("notification %q: %w", name, err))
	}
	return errors.Join(errs...)
}

// MissingFields lists the required fields of f that are empty.
func MissingFields(f Fields) []string {
	k, ok := Lookup(f.Type())
	if !ok {
		return nil
	}
	var missing []string
	for _, field := range k.Required {
		if f.String(field) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Build validates f and constructs the channel.
func Build(name string, f Fields, opts ...Option) (Channel, error) {
	if err := Validate(name, f); err != nil {
		return nil, err
	}
	policy, _ := f.Policy()
	k, _ := Lookup(f.Type())
	ch, err := k.build(name, f, append(opts, WithRetryPolicy(policy)))
	if err != nil {
		return nil, fmt.Errorf("notification %q: %w", name, err)
	}
	return ch, nil
}

// BuildAll constructs every configured channel keyed by name.
func BuildAll(cfg map[string]Fields, opts ...Option) (map[string]Channel, error) {
	channels := make(map[string]Channel, len(cfg))
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(cfg)) {
		ch, err := Build(name, cfg[name], opts...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		channels[name] = ch
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return channels, nil
}

// CloseAll closes channels that hold connections.
func CloseAll(channels map[string]Channel) error {
	var errs []error
	for _, ch := range channels {
		if c, ok := ch.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
