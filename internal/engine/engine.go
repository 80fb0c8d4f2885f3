// Package engine runs the monitor: it searches items when they are due,
// filters and rates what it finds, and hands the survivors to the
// notification dispatcher.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/marketplace-monitor/internal/config"
	"github.com/donaldgifford/marketplace-monitor/internal/filter"
	"github.com/donaldgifford/marketplace-monitor/internal/marketplace"
	"github.com/donaldgifford/marketplace-monitor/internal/metrics"
	"github.com/donaldgifford/marketplace-monitor/internal/notify"
	"github.com/donaldgifford/marketplace-monitor/internal/store"
	"github.com/donaldgifford/marketplace-monitor/internal/tracker"
	"github.com/donaldgifford/marketplace-monitor/pkg/ai"
	"github.com/donaldgifford/marketplace-monitor/pkg/logger"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

const defaultReloadInterval = time.Minute

// reasonRating labels listings dropped for a low AI rating.
const reasonRating = "rating"

var tracer = otel.Tracer("github.com/donaldgifford/marketplace-monitor/internal/engine")

// ScraperFactory builds the scraper of a marketplace.
type ScraperFactory func(name string, mp *config.MarketplaceConfig) (marketplace.Scraper, error)

// EvaluatorFactory builds the evaluator of an AI backend.
type EvaluatorFactory func(a *config.AIConfig) (ai.Evaluator, error)

// Engine orchestrates searching, filtering, rating and notifying.
type Engine struct {
	store   store.Store
	tracker *tracker.Tracker
	log     *slog.Logger

	newScraper     ScraperFactory
	newEvaluator   EvaluatorFactory
	channelOpts    []notify.Option
	now            func() time.Time
	reloadInterval time.Duration
	scheduler      *Scheduler

	// Rebuilt by Apply.
	cfg        *config.Config
	scrapers   map[string]marketplace.Scraper
	scraperKeys map[string]string
	evaluators map[string]ai.Evaluator
	channels   map[string]notify.Channel
	dispatcher *notify.Dispatcher
	ready      atomic.Bool
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithScraperFactory sets how marketplace scrapers are built.
func WithScraperFactory(f ScraperFactory) EngineOption {
	return func(e *Engine) {
		e.newScraper = f
	}
}

// WithEvaluatorFactory sets how AI evaluators are built.
func WithEvaluatorFactory(f EvaluatorFactory) EngineOption {
	return func(e *Engine) {
		e.newEvaluator = f
	}
}

// WithChannelOptions passes options to every notification channel built
// from the configuration.
func WithChannelOptions(opts ...notify.Option) EngineOption {
	return func(e *Engine) {
		e.channelOpts = append(e.channelOpts, opts...)
	}
}

// WithClock overrides the time source of the engine and its tracker.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithReloadInterval sets how often Run re-reads the configuration while
// waiting for the next item.
func WithReloadInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.reloadInterval = d
	}
}

// WithScheduler replaces the scheduler used by Run.
func WithScheduler(s *Scheduler) EngineOption {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// NewEngine creates an Engine that keeps its state in s.
func NewEngine(s store.Store, opts ...EngineOption) *Engine {
	eng := &Engine{
		store:          s,
		log:            slog.Default(),
		now:            time.Now,
		reloadInterval: defaultReloadInterval,
		scrapers:       make(map[string]marketplace.Scraper),
		scraperKeys:    make(map[string]string),
		evaluators:     make(map[string]ai.Evaluator),
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.newEvaluator == nil {
		eng.newEvaluator = DefaultEvaluatorFactory(eng.log)
	}
	if eng.scheduler == nil {
		eng.scheduler = NewScheduler(WithSchedulerClock(eng.now))
	}
	eng.tracker = tracker.New(s, tracker.WithClock(eng.now), tracker.WithLogger(eng.log))
	return eng
}

// DefaultEvaluatorFactory builds LLM evaluators from the provider settings.
func DefaultEvaluatorFactory(log *slog.Logger) EvaluatorFactory {
	return func(a *config.AIConfig) (ai.Evaluator, error) {
		backend, err := ai.NewBackend(a.Backend())
		if err != nil {
			return nil, fmt.Errorf("ai %s: %w", a.Name, err)
		}
		return ai.NewEvaluator(backend,
			ai.WithRetries(a.MaxRetries, time.Second),
			ai.WithLogger(log),
		), nil
	}
}

// Tracker returns the notification state the engine consults.
func (eng *Engine) Tracker() *tracker.Tracker {
	return eng.tracker
}

// Apply switches the engine to cfg: the log level, notification channels
// and AI evaluators are rebuilt, and scrapers whose page interval or login
// changed are replaced. On error the previous configuration stays in effect.
func (eng *Engine) Apply(cfg *config.Config) error {
	evaluators := make(map[string]ai.Evaluator, len(cfg.AI))
	for name, a := range cfg.AI {
		if !a.IsEnabled() {
			continue
		}
		ev, err := eng.newEvaluator(a)
		if err != nil {
			return fmt.Errorf("building ai evaluators: %w", err)
		}
		evaluators[name] = ev
	}

	// Nothing below may fail once new channels are open.
	channelOpts := append([]notify.Option{notify.WithLogger(eng.log)}, eng.channelOpts...)
	channels, err := notify.BuildAll(cfg.Notification, channelOpts...)
	if err != nil {
		return fmt.Errorf("building notification channels: %w", err)
	}

	for name, s := range eng.scrapers {
		mp, ok := cfg.Marketplace[name]
		if ok && mp.ScraperKey() == eng.scraperKeys[name] {
			continue
		}
		if err := s.Close(); err != nil {
			eng.log.Warn("closing scraper", "marketplace", name, "error", err)
		}
		delete(eng.scrapers, name)
	}

	logger.Level.Set(logger.ParseLevel(cfg.Logging.Level))

	if err := notify.CloseAll(eng.channels); err != nil {
		eng.log.Warn("closing notification channels", "error", err)
	}

	eng.cfg = cfg
	eng.evaluators = evaluators
	eng.channels = channels
	eng.dispatcher = notify.NewDispatcher(eng.tracker, channels, notify.WithDispatcherLogger(eng.log))
	eng.ready.Store(true)
	return nil
}

// Ready reports whether a configuration has been applied. It is safe to
// call from other goroutines.
func (eng *Engine) Ready() bool {
	return eng.ready.Load()
}

// Close releases every scraper and notification channel.
func (eng *Engine) Close() error {
	var errs []error
	if err := notify.CloseAll(eng.channels); err != nil {
		errs = append(errs, err)
	}
	eng.channels = nil
	for name, s := range eng.scrapers {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s scraper: %w", name, err))
		}
		delete(eng.scrapers, name)
	}
	return errors.Join(errs...)
}

func (eng *Engine) scraper(name string) (marketplace.Scraper, error) {
	if s, ok := eng.scrapers[name]; ok {
		return s, nil
	}
	if eng.newScraper == nil {
		return nil, fmt.Errorf("no scraper for marketplace %q", name)
	}
	mp := eng.cfg.Marketplace[name]
	if mp == nil {
		mp = &config.MarketplaceConfig{}
	}
	s, err := eng.newScraper(name, mp)
	if err != nil {
		return nil, fmt.Errorf("building %s scraper: %w", name, err)
	}
	eng.scrapers[name] = s
	eng.scraperKeys[name] = mp.ScraperKey()
	return s, nil
}

// RunCycle applies cfg when it is not the current configuration and
// searches every enabled item once. A failing item is logged and the
// cycle moves on.
func (eng *Engine) RunCycle(ctx context.Context, cfg *config.Config) error {
	if cfg != eng.cfg {
		if err := eng.Apply(cfg); err != nil {
			return err
		}
	}
	cycleID := uuid.NewString()
	start := eng.now()
	defer func() {
		metrics.CycleDuration.Observe(eng.now().Sub(start).Seconds())
		metrics.LastCycleTimestamp.Set(float64(eng.now().Unix()))
	}()

	for _, item := range cfg.Items() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := eng.RunItem(ctx, item, cycleID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			eng.log.Error("item failed", "item", item.Name, "cycle_id", cycleID, "error", err)
		}
	}
	return nil
}

// RunItem searches item once and notifies its users about the listings
// that pass its filters and AI rating. It returns an error only when the
// item could not be searched at all; a search that partly failed still
// notifies about what it found.
func (eng *Engine) RunItem(ctx context.Context, item *domain.Item, cycleID string) error {
	if eng.cfg == nil {
		return errors.New("engine has no configuration")
	}
	ctx, span := tracer.Start(ctx, "engine.RunItem", trace.WithAttributes(
		attribute.String("item", item.Name),
		attribute.String("marketplace", item.Marketplace),
		attribute.String("cycle_id", cycleID),
	))
	defer span.End()

	log := eng.log.With("item", item.Name, "marketplace", item.Marketplace, "cycle_id", cycleID)

	scraper, err := eng.scraper(item.Marketplace)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	f := filter.New(item)
	pre := func(l *domain.Listing) bool {
		r := f.Precheck(l)
		if !r.Pass() {
			log.Debug("listing excluded", "listing", l.ID, "title", l.Title, "reason", r.String())
		}
		return r.Pass()
	}

	start := time.Now()
	metrics.SearchesTotal.WithLabelValues(item.Marketplace, item.Name).Inc()
	found, err := scraper.Search(ctx, item, pre)
	metrics.SearchDuration.WithLabelValues(item.Marketplace).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.SearchErrorsTotal.WithLabelValues(item.Marketplace, item.Name).Inc()
		span.RecordError(err)
		if len(found) == 0 {
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("searching %s: %w", item.Name, err)
		}
		log.Warn("search partly failed", "found", len(found), "error", err)
	}
	span.SetAttributes(attribute.Int("listings.found", len(found)))

	var (
		listings []*domain.Listing
		ratings  []domain.Rating
	)
	for _, l := range found {
		if r := f.Check(l); !r.Pass() {
			log.Debug("listing excluded", "listing", l.ID, "title", l.Title, "reason", r.String())
			continue
		}
		rating, ok := eng.verdict(ctx, log, item, l)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !ok {
			continue
		}
		listings = append(listings, l)
		ratings = append(ratings, rating)
	}

	log.Info("search complete", "found", len(found), "matched", len(listings))
	span.SetAttributes(attribute.Int("listings.matched", len(listings)))
	if len(listings) == 0 {
		return nil
	}

	users := eng.cfg.UsersFor(item)
	if len(users) == 0 {
		log.Warn("no users to notify", "matched", len(listings))
		return nil
	}
	eng.dispatcher.Notify(ctx, users, listings, ratings, false)
	return nil
}

// verdict returns the AI rating of l and whether it is good enough to
// notify. A verdict is remembered per listing and reused while the listing
// is unchanged. When every backend fails the listing is notified unrated
// and nothing is remembered, so the next search asks again.
func (eng *Engine) verdict(
	ctx context.Context,
	log *slog.Logger,
	item *domain.Item,
	l *domain.Listing,
) (domain.Rating, bool) {
	backends := eng.evaluatorsFor(item)
	if len(backends) == 0 {
		return domain.Rating{}, true
	}

	firstSeen := eng.now()
	seen, err := store.LoadSeen(ctx, eng.store, item.Name, l)
	switch {
	case err == nil && seen.Hash == l.Hash():
		return seen.Rating, seen.Confirmed
	case err == nil:
		firstSeen = seen.FirstSeen
	case !errors.Is(err, store.ErrNotFound):
		log.Warn("reading seen record failed", "listing", l.ID, "error", err)
	}

	rating, ok := eng.evaluate(ctx, log, backends, item, l)
	if !ok {
		return domain.Rating{}, true
	}

	confirmed := ai.Confirm(item, rating)
	if !confirmed {
		metrics.ListingsExcludedTotal.WithLabelValues(item.Name, reasonRating).Inc()
		log.Info("listing rated too low",
			"listing", l.ID,
			"title", l.Title,
			"rating", rating.Label(),
			"min_rating", item.MinRating(),
		)
	}

	rec := &store.SeenRecord{FirstSeen: firstSeen, Hash: l.Hash(), Confirmed: confirmed, Rating: rating}
	if err := store.MarkSeen(ctx, eng.store, item.Name, l, rec); err != nil {
		log.Warn("recording seen listing failed", "listing", l.ID, "error", err)
	}
	return rating, confirmed
}

// evaluate asks each backend in turn until one answers.
func (eng *Engine) evaluate(
	ctx context.Context,
	log *slog.Logger,
	backends []ai.Evaluator,
	item *domain.Item,
	l *domain.Listing,
) (domain.Rating, bool) {
	ctx, span := tracer.Start(ctx, "engine.evaluate", trace.WithAttributes(
		attribute.String("listing", l.ID),
	))
	defer span.End()

	for _, ev := range backends {
		rating, err := ev.Evaluate(ctx, item, l)
		if err == nil {
			span.SetAttributes(attribute.String("backend", ev.Name()), attribute.Int("rating", rating.Score))
			return rating, true
		}
		if ctx.Err() != nil {
			return domain.Rating{}, false
		}
		span.RecordError(err)
		log.Warn("ai evaluation failed", "backend", ev.Name(), "listing", l.ID, "error", err)
	}
	return domain.Rating{}, false
}

func (eng *Engine) evaluatorsFor(item *domain.Item) []ai.Evaluator {
	configured := eng.cfg.AIFor(item)
	out := make([]ai.Evaluator, 0, len(configured))
	for _, a := range configured {
		if ev, ok := eng.evaluators[a.Name]; ok {
			out = append(out, ev)
		}
	}
	return out
}
