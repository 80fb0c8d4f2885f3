package engine

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// Entry is the planned next run of one item.
type Entry struct {
	Item string
	Next time.Time
}

// Scheduler plans when each item is searched next. Items with a cron
// schedule run at its next activation; the others wait a random duration
// between their search_interval and max_search_interval. The scheduler is
// not safe for concurrent use.
type Scheduler struct {
	next   map[string]time.Time
	spec   map[string]string
	now    func() time.Time
	jitter func(n int64) int64
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerClock overrides the time source.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithJitter overrides the random source. f returns a value in [0, n).
func WithJitter(f func(n int64) int64) SchedulerOption {
	return func(s *Scheduler) {
		s.jitter = f
	}
}

// NewScheduler creates an empty Scheduler.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		next:   make(map[string]time.Time),
		spec:   make(map[string]string),
		now:    time.Now,
		jitter: rand.Int64N,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync aligns the plan with the configured items. New interval items are
// due immediately, new cron items at their next activation. Items that
// left the configuration are forgotten, and a changed schedule is planned
// again.
func (s *Scheduler) Sync(items []*domain.Item) {
	keep := make(map[string]bool, len(items))
	for _, item := range items {
		keep[item.Name] = true
		_, planned := s.next[item.Name]
		if planned && s.spec[item.Name] == item.Schedule {
			continue
		}
		s.spec[item.Name] = item.Schedule
		if item.Schedule == "" {
			s.next[item.Name] = s.now()
			continue
		}
		s.next[item.Name] = s.after(item, s.now())
	}
	for name := range s.next {
		if !keep[name] {
			delete(s.next, name)
			delete(s.spec, name)
		}
	}
}

// Next returns the item that is due first, and when. It returns nil when
// no item is planned.
func (s *Scheduler) Next(items []*domain.Item) (*domain.Item, time.Time) {
	var (
		due  *domain.Item
		when time.Time
	)
	for _, item := range items {
		t, ok := s.next[item.Name]
		if !ok {
			continue
		}
		if due == nil || t.Before(when) {
			due, when = item, t
		}
	}
	return due, when
}

// Done plans the run after the one that just finished.
func (s *Scheduler) Done(item *domain.Item) time.Time {
	t := s.after(item, s.now())
	s.next[item.Name] = t
	s.spec[item.Name] = item.Schedule
	return t
}

// Entries returns the plan ordered by next run.
func (s *Scheduler) Entries() []Entry {
	out := make([]Entry, 0, len(s.next))
	for name, t := range s.next {
		out = append(out, Entry{Item: name, Next: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Next.Equal(out[j].Next) {
			return out[i].Item < out[j].Item
		}
		return out[i].Next.Before(out[j].Next)
	})
	return out
}

func (s *Scheduler) after(item *domain.Item, from time.Time) time.Time {
	if item.Schedule != "" {
		if sched, err := cron.ParseStandard(item.Schedule); err == nil {
			return sched.Next(from)
		}
	}
	lo := item.SearchInterval.Std()
	if lo <= 0 {
		lo = domain.DefaultSearchInterval
	}
	hi := max(item.MaxSearchInterval.Std(), lo)
	wait := lo
	if span := int64(hi - lo); span > 0 {
		wait += time.Duration(s.jitter(span + 1))
	}
	return from.Add(wait)
}
