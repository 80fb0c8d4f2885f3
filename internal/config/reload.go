package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/donaldgifford/marketplace-monitor/internal/metrics"
)

// Reloader re-reads the config files before every cycle. Unchanged files
// return the previous Config. Invalid files block the caller, retrying
// with exponential backoff, and the error is logged again only when the
// file contents change.
type Reloader struct {
	paths      []string
	log        *slog.Logger
	initial    time.Duration
	maxBackoff time.Duration

	current  *Config
	hash     uint64
	errHash  uint64
	reported bool
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithReloadLogger sets a custom logger.
func WithReloadLogger(l *slog.Logger) ReloaderOption {
	return func(r *Reloader) {
		r.log = l
	}
}

// WithReloadBackoff sets the first and the longest wait between attempts
// to read an invalid configuration.
func WithReloadBackoff(initial, maxWait time.Duration) ReloaderOption {
	return func(r *Reloader) {
		r.initial = initial
		r.maxBackoff = maxWait
	}
}

// NewReloader watches paths.
func NewReloader(paths []string, opts ...ReloaderOption) *Reloader {
	r := &Reloader{
		paths:      paths,
		log:        slog.Default(),
		initial:    5 * time.Second,
		maxBackoff: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the last valid configuration, or nil.
func (r *Reloader) Current() *Config {
	return r.current
}

// Reload returns the current configuration and whether it changed since
// the previous call. It only returns an error when ctx ends.
func (r *Reloader) Reload(ctx context.Context) (*Config, bool, error) {
	var (
		cfg     *Config
		changed bool
	)

	op := func() error {
		docs, hash, err := r.read()
		if err == nil && r.current != nil && hash == r.hash {
			cfg = r.current
			return nil
		}
		if err == nil {
			cfg, err = parse(docs)
		}
		if err != nil {
			metrics.ConfigReloadsTotal.WithLabelValues("error").Inc()
			if !r.reported || hash != r.errHash {
				r.log.Error("invalid configuration, waiting for a fix", "files", r.paths, "error", err)
				r.errHash, r.reported = hash, true
			}
			return err
		}

		metrics.ConfigReloadsTotal.WithLabelValues("ok").Inc()
		if r.current != nil {
			r.log.Info("configuration reloaded", "files", r.paths)
		}
		r.current, r.hash, r.reported = cfg, hash, false
		changed = true
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initial
	b.MaxInterval = r.maxBackoff
	b.MaxElapsedTime = 0

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, false, err
	}
	return cfg, changed, nil
}

// read loads every file and hashes their paths and contents together.
func (r *Reloader) read() ([]document, uint64, error) {
	d := xxhash.New()
	docs, err := readAll(r.paths)
	if err != nil {
		_, _ = d.WriteString(err.Error())
		return nil, d.Sum64(), err
	}
	for _, doc := range docs {
		_, _ = d.WriteString(doc.path)
		_, _ = d.Write([]byte{0})
		_, _ = d.Write(doc.data)
		_, _ = d.Write([]byte{0})
	}
	return docs, d.Sum64(), nil
}
