package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/donaldgifford/marketplace-monitor/internal/metrics"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// ErrNoRating is returned when a model answer contains no rating.
var ErrNoRating = errors.New("no rating in model response")

// Evaluator rates listings against an item.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, item *domain.Item, l *domain.Listing) (domain.Rating, error)
}

// LLMEvaluator implements Evaluator with a Backend.
type LLMEvaluator struct {
	backend     Backend
	temperature float64
	maxTokens   int
	attempts    int
	backoff     time.Duration
	log         *slog.Logger
}

// EvaluatorOption configures the LLMEvaluator.
type EvaluatorOption func(*LLMEvaluator)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) EvaluatorOption {
	return func(e *LLMEvaluator) {
		e.temperature = t
	}
}

// WithMaxTokens sets the max tokens for model responses.
func WithMaxTokens(n int) EvaluatorOption {
	return func(e *LLMEvaluator) {
		e.maxTokens = n
	}
}

// WithRetries sets how many times a failed model call is attempted in
// total, with exponential backoff starting at initial between attempts.
func WithRetries(attempts int, initial time.Duration) EvaluatorOption {
	return func(e *LLMEvaluator) {
		e.attempts = attempts
		e.backoff = initial
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EvaluatorOption {
	return func(e *LLMEvaluator) {
		e.log = l
	}
}

// NewEvaluator creates an LLMEvaluator over backend.
func NewEvaluator(backend Backend, opts ...EvaluatorOption) *LLMEvaluator {
	e := &LLMEvaluator{
		backend:     backend,
		temperature: 0.1,
		maxTokens:   1024,
		attempts:    1,
		backoff:     time.Second,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the backend name.
func (e *LLMEvaluator) Name() string {
	return e.backend.Name()
}

// Evaluate asks the model to rate l for item.
func (e *LLMEvaluator) Evaluate(ctx context.Context, item *domain.Item, l *domain.Listing) (domain.Rating, error) {
	prompt, err := RenderPrompt(item, l)
	if err != nil {
		return domain.Rating{}, err
	}

	var resp GenerateResponse
	var rating domain.Rating
	op := func() error {
		start := time.Now()
		r, err := e.backend.Generate(ctx, GenerateRequest{
			Prompt:      prompt,
			SystemMsg:   systemPrompt,
			Temperature: e.temperature,
			MaxTokens:   e.maxTokens,
		})
		metrics.AIEvaluationDuration.WithLabelValues(e.backend.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.AIFailuresTotal.WithLabelValues(e.backend.Name()).Inc()
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if isPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		rating, err = ParseRating(r.Content)
		if err != nil {
			metrics.AIFailuresTotal.WithLabelValues(e.backend.Name()).Inc()
			return backoff.Permanent(err)
		}
		return nil
	}

	if err := backoff.RetryNotify(op, e.policy(ctx), func(err error, wait time.Duration) {
		e.log.Warn("ai backend call failed, retrying",
			"backend", e.backend.Name(),
			"listing", l.ID,
			"wait", wait,
			"error", err,
		)
	}); err != nil {
		return domain.Rating{}, fmt.Errorf("evaluating %s with %s: %w", l.ID, e.backend.Name(), err)
	}
	metrics.AIRatingDistribution.Observe(float64(rating.Score))

	e.log.Debug("listing rated",
		"item", item.Name,
		"listing", l.ID,
		"backend", e.backend.Name(),
		"model", resp.Model,
		"score", rating.Score,
		"tokens", resp.Usage.TotalTokens,
	)
	return rating, nil
}

func (e *LLMEvaluator) policy(ctx context.Context) backoff.BackOff {
	attempts := max(e.attempts, 1)
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.backoff
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

var (
	thinkBlock    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	ratingPattern = regexp.MustCompile(`(?is)\brating\b[^0-9\n]{0,10}([1-5])\b\s*[:.\-]?\s*(.*)`)
	spaces        = regexp.MustCompile(`\s+`)
)

// ParseRating extracts "Rating n: comment" from a model answer. Reasoning
// blocks are ignored and the comment is collapsed to one line.
func ParseRating(answer string) (domain.Rating, error) {
	answer = thinkBlock.ReplaceAllString(answer, "")
	m := ratingPattern.FindStringSubmatch(answer)
	if m == nil {
		return domain.Rating{}, fmt.Errorf("%w: %q", ErrNoRating, truncate(strings.TrimSpace(answer), 80))
	}
	score, _ := strconv.Atoi(m[1])
	comment := strings.TrimLeft(spaces.ReplaceAllString(m[2], " "), "*:.- ")
	comment = strings.TrimSpace(strings.Trim(strings.TrimSpace(comment), `"*`))
	return domain.NewRating(score, truncate(comment, 300)), nil
}

// Confirm reports whether r is high enough to notify about a listing of
// item. An unrated listing is confirmed.
func Confirm(item *domain.Item, r domain.Rating) bool {
	return r.IsZero() || r.Score >= item.MinRating()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
