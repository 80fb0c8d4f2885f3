// Package tracker decides whether a user should hear about a listing and
// records what they have been told.
//
// A user's record for a listing holds when they were notified and the
// listing hash at that time. From it the tracker derives a status:
//
//	no record                      -> NotNotified
//	stored hash != current hash    -> ListingChanged
//	reminders disabled             -> Notified
//	now past timestamp + remind    -> Expired
//	otherwise                      -> Notified
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/donaldgifford/marketplace-monitor/internal/store"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// Record is the persisted notification state of one (user, listing) pair.
type Record struct {
	NotifiedAt time.Time `json:"notified_at"`
	Hash       string    `json:"hash"`
}

// Tracker derives and records notification status on top of a Store.
type Tracker struct {
	store store.Store
	now   func() time.Time
	log   *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		t.log = l
	}
}

// New creates a Tracker backed by s.
func New(s store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store: s,
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Key is the store key of a user's record for a listing.
func Key(user *domain.User, l *domain.Listing) store.Key {
	return store.NewKey(store.UserNotified, l.Marketplace, l.ID, user.Name)
}

func (t *Tracker) load(ctx context.Context, user *domain.User, l *domain.Listing) (*Record, error) {
	data, err := t.store.Get(ctx, Key(user, l))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding notification record: %w", err)
	}
	return &rec, nil
}

// Status returns what user has been told about l. Unreadable records count
// as NotNotified: a duplicate message is preferred over a missed listing.
func (t *Tracker) Status(ctx context.Context, user *domain.User, l *domain.Listing) domain.NotificationStatus {
	rec, err := t.load(ctx, user, l)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			t.log.Warn("reading notification record failed, treating as new",
				"user", user.Name,
				"listing", l.ID,
				"error", err,
			)
		}
		return domain.NotNotified
	}

	if rec.Hash != l.Hash() {
		return domain.ListingChanged
	}

	if !user.RemindEnabled() {
		return domain.Notified
	}

	if t.now().After(rec.NotifiedAt.Add(user.Remind.Std())) {
		return domain.Expired
	}
	return domain.Notified
}

// Record marks l as delivered to user now. Recording again overwrites the
// timestamp and hash.
func (t *Tracker) Record(ctx context.Context, user *domain.User, l *domain.Listing) error {
	data, err := json.Marshal(Record{NotifiedAt: t.now(), Hash: l.Hash()})
	if err != nil {
		return fmt.Errorf("encoding notification record: %w", err)
	}
	if err := t.store.Set(ctx, Key(user, l), data); err != nil {
		return fmt.Errorf("recording notification of %s to %s: %w", l.ID, user.Name, err)
	}
	return nil
}

// TimeSince returns how long ago user was notified about l, or -1 when
// there is no readable record. It is meant for log messages.
func (t *Tracker) TimeSince(ctx context.Context, user *domain.User, l *domain.Listing) time.Duration {
	rec, err := t.load(ctx, user, l)
	if err != nil {
		return -1
	}
	return t.now().Sub(rec.NotifiedAt)
}
