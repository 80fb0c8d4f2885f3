package notify

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	pluralize "github.com/gertd/go-pluralize"

	"github.com/donaldgifford/marketplace-monitor/internal/metrics"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// Tracker is the notification state the dispatcher consults and updates.
type Tracker interface {
	Status(ctx context.Context, user *domain.User, l *domain.Listing) domain.NotificationStatus
	Record(ctx context.Context, user *domain.User, l *domain.Listing) error
	TimeSince(ctx context.Context, user *domain.User, l *domain.Listing) time.Duration
}

// Dispatcher groups listings per user by notification status and delivers
// one message per group through the user's channels.
type Dispatcher struct {
	tracker  Tracker
	channels map[string]Channel
	names    []string
	plural   *pluralize.Client
	log      *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets a custom logger.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// NewDispatcher creates a Dispatcher over the named channels.
func NewDispatcher(t Tracker, channels map[string]Channel, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		tracker:  t,
		channels: channels,
		names:    slices.Sorted(maps.Keys(channels)),
		plural:   pluralize.NewClient(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Entry is a listing together with its AI rating, if any.
type Entry struct {
	Listing *domain.Listing
	Rating  domain.Rating
}

// Notify delivers listings to users. ratings is parallel to listings and
// may be shorter; missing ratings are treated as not evaluated. Listings a
// user was already told about are skipped unless force is set. A listing is
// recorded as notified for a user only when at least one channel delivered
// its group. Notify reports whether anything was delivered.
func (d *Dispatcher) Notify(
	ctx context.Context,
	users []*domain.User,
	listings []*domain.Listing,
	ratings []domain.Rating,
	force bool,
) bool {
	delivered := false
	for _, user := range users {
		if ctx.Err() != nil {
			return delivered
		}
		if d.notifyUser(ctx, user, listings, ratings, force) {
			delivered = true
		}
	}
	return delivered
}

func (d *Dispatcher) notifyUser(
	ctx context.Context,
	user *domain.User,
	listings []*domain.Listing,
	ratings []domain.Rating,
	force bool,
) bool {
	log := d.log.With("user", user.Name)

	groups := make(map[domain.NotificationStatus][]Entry)
	for i, l := range listings {
		status := d.tracker.Status(ctx, user, l)
		if status == domain.Notified && !force {
			log.Debug("already notified",
				"listing", l.ID,
				"ago", d.tracker.TimeSince(ctx, user, l).Round(time.Second).String(),
			)
			continue
		}
		if status == domain.Expired {
			log.Info("reminding about listing",
				"listing", l.ID,
				"notified_ago", d.tracker.TimeSince(ctx, user, l).Round(time.Minute).String(),
			)
		}
		var r domain.Rating
		if i < len(ratings) {
			r = ratings[i]
		}
		groups[status] = append(groups[status], Entry{Listing: l, Rating: r})
	}
	if len(groups) == 0 {
		return false
	}

	channels := d.channelsFor(user, log)
	if len(channels) == 0 {
		log.Warn("no eligible notification channel for user")
		return false
	}

	delivered := false
	for _, status := range domain.Statuses {
		entries := groups[status]
		if len(entries) == 0 {
			continue
		}
		title := d.Title(status, entries[0].Listing, len(entries))
		message := Message(status, entries)

		if !d.deliver(ctx, log, channels, user, title, message) {
			continue
		}
		delivered = true
		metrics.ListingsNotifiedTotal.WithLabelValues(status.String()).Add(float64(len(entries)))

		for _, e := range entries {
			if err := d.tracker.Record(ctx, user, e.Listing); err != nil {
				log.Error("recording notification", "listing", e.Listing.ID, "error", err)
			}
		}
	}
	return delivered
}

// channelsFor returns the configured channels of user in name order. An
// empty notify_with selects every channel.
func (d *Dispatcher) channelsFor(user *domain.User, log *slog.Logger) []Channel {
	names := d.names
	if len(user.NotifyWith) > 0 {
		names = user.NotifyWith
	}
	out := make([]Channel, 0, len(names))
	for _, name := range names {
		ch, ok := d.channels[name]
		if !ok {
			log.Warn("unknown notification channel", "channel", name)
			continue
		}
		if !ch.HasRequiredFields() {
			log.Debug("skipping channel without required fields", "channel", name)
			continue
		}
		out = append(out, ch)
	}
	return out
}

// deliver sends one message through every channel and reports whether at
// least one succeeded.
func (d *Dispatcher) deliver(
	ctx context.Context,
	log *slog.Logger,
	channels []Channel,
	user *domain.User,
	title, message string,
) bool {
	ok := false
	for _, ch := range channels {
		if ctx.Err() != nil {
			return ok
		}
		kind := ch.Type()
		policy := ch.Policy()
		attempt := 0
		start := time.Now()

		err := Deliver(ctx, func(ctx context.Context) error {
			attempt++
			if attempt > 1 {
				metrics.NotificationRetriesTotal.WithLabelValues(kind).Inc()
			}
			err := ch.Send(ctx, user, title, message)
			if err != nil && attempt < policy.MaxRetries && ctx.Err() == nil {
				log.Warn("delivery failed, retrying",
					"channel", ch.Name(),
					"attempt", attempt,
					"retry_in", policy.RetryDelay.String(),
					"error", err,
				)
			}
			return err
		}, policy.MaxRetries, policy.RetryDelay)

		metrics.NotificationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.NotificationFailuresTotal.WithLabelValues(kind).Inc()
			log.Error("delivery failed",
				"channel", ch.Name(),
				"attempts", attempt,
				"error", err,
			)
			continue
		}
		metrics.NotificationsSentTotal.WithLabelValues(kind).Inc()
		log.Info("notification sent", "channel", ch.Name(), "title", title)
		ok = true
	}
	return ok
}

// Title returns the subject line of a group of n listings found for the
// item of l.
func (d *Dispatcher) Title(status domain.NotificationStatus, l *domain.Listing, n int) string {
	noun := d.noun(l.Name, n)
	switch status {
	case domain.Expired:
		return fmt.Sprintf("Another look at %d %s from %s", n, noun, l.Marketplace)
	case domain.ListingChanged:
		return fmt.Sprintf("Found %d updated %s from %s", n, noun, l.Marketplace)
	case domain.Notified:
		return fmt.Sprintf("Resend %d %s from %s", n, noun, l.Marketplace)
	default:
		return fmt.Sprintf("Found %d new %s from %s", n, noun, l.Marketplace)
	}
}

// noun pluralizes the last word of the item name.
func (d *Dispatcher) noun(name string, n int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "listing"
	}
	i := strings.LastIndex(name, " ")
	return name[:i+1] + d.plural.Pluralize(name[i+1:], n, false)
}

// statusTag marks listings in reminder and update messages.
func statusTag(status domain.NotificationStatus) string {
	switch status {
	case domain.Expired:
		return "[REMINDER] "
	case domain.ListingChanged:
		return "[LISTING UPDATED] "
	default:
		return ""
	}
}

// Message renders the body of a group. Each listing is a block of lines
// separated from the next by a blank line:
//
//	[tag] [Conclusion (score)] title
//	price, location
//	post url
//	AI: comment
func Message(status domain.NotificationStatus, entries []Entry) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, listingMessage(status, e.Listing, e.Rating))
	}
	return strings.Join(blocks, "\n\n")
}

func listingMessage(status domain.NotificationStatus, l *domain.Listing, r domain.Rating) string {
	var b strings.Builder
	b.WriteString(statusTag(status))
	if !r.IsZero() {
		b.WriteString("[" + r.Label() + "] ")
	}
	b.WriteString(l.Title)
	b.WriteString("\n")
	var where []string
	for _, s := range []string{l.Price, l.Location} {
		if s != "" {
			where = append(where, s)
		}
	}
	b.WriteString(strings.Join(where, ", "))
	b.WriteString("\n")
	b.WriteString(l.PostURL)
	if !r.IsZero() && r.Comment != "" {
		b.WriteString("\nAI: " + r.Comment)
	}
	return b.String()
}
