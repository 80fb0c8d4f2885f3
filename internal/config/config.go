// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/cespare/xxhash/v2"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/marketplace-monitor/internal/marketplace"
	"github.com/donaldgifford/marketplace-monitor/internal/marketplace/facebook"
	"github.com/donaldgifford/marketplace-monitor/internal/notify"
	"github.com/donaldgifford/marketplace-monitor/pkg/ai"
	"github.com/donaldgifford/marketplace-monitor/pkg/logger"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

// Cache backends.
const (
	CacheBolt  = "bolt"
	CacheRedis = "redis"
)

// Config is the top-level application configuration.
type Config struct {
	Logging      LoggingConfig                 `yaml:"logging"`
	Cache        CacheConfig                   `yaml:"cache"`
	Monitor      MonitorConfig                 `yaml:"monitor"`
	AI           map[string]*AIConfig          `yaml:"ai"`
	Marketplace  map[string]*MarketplaceConfig `yaml:"marketplace"`
	Region       map[string]*domain.Region     `yaml:"region"`
	User         map[string]*domain.User       `yaml:"user"`
	Notification map[string]notify.Fields      `yaml:"notification"`
	Item         map[string]*domain.Item       `yaml:"item"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// CacheConfig selects where listing details and notification records live.
type CacheConfig struct {
	Backend string      `yaml:"backend"` // bolt, redis
	Dir     string      `yaml:"dir"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig defines the redis cache backend.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// MonitorConfig defines process-level settings of the monitor loop.
type MonitorConfig struct {
	MetricsAddr  string `yaml:"metrics_addr"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Headless     *bool  `yaml:"headless"`
	ProxyServer  string `yaml:"proxy_server"`
}

// IsHeadless reports whether the browser runs without a window.
func (m *MonitorConfig) IsHeadless() bool {
	return m.Headless == nil || *m.Headless
}

// AIConfig defines one AI backend.
type AIConfig struct {
	Name       string          `yaml:"-"`
	Provider   string          `yaml:"provider"`
	APIKey     string          `yaml:"api_key"`
	Model      string          `yaml:"model"`
	BaseURL    string          `yaml:"base_url"`
	Timeout    domain.Duration `yaml:"timeout"`
	MaxRetries int             `yaml:"max_retries"`
	Enabled    *bool           `yaml:"enabled"`
}

// IsEnabled reports whether the backend should be used.
func (a *AIConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// Backend returns the pkg/ai settings of this backend.
func (a *AIConfig) Backend() ai.Config {
	return ai.Config{
		Provider: a.Provider,
		APIKey:   a.APIKey,
		Model:    a.Model,
		BaseURL:  a.BaseURL,
		Timeout:  a.Timeout.Std(),
	}
}

// MarketplaceConfig defines a marketplace and the search options its
// items inherit.
type MarketplaceConfig struct {
	Enabled *bool `yaml:"enabled"`
	// RateLimit is the minimum spacing between page loads.
	RateLimit domain.Duration `yaml:"rate_limit"`

	// Optional sign-in before the first search.
	Username      string          `yaml:"username"`
	Password      string          `yaml:"password"`
	LoginWaitTime domain.Duration `yaml:"login_wait_time"`

	domain.SearchOptions `yaml:",inline"`
}

// IsEnabled reports whether the marketplace should be searched.
func (m *MarketplaceConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// Credentials returns the sign-in settings of the marketplace.
func (m *MarketplaceConfig) Credentials() marketplace.Credentials {
	return marketplace.Credentials{
		Username: m.Username,
		Password: m.Password,
		Wait:     m.LoginWaitTime.Std(),
	}
}

// ScraperKey identifies the settings a running scraper was built with.
// A scraper is rebuilt when its key changes.
func (m *MarketplaceConfig) ScraperKey() string {
	return fmt.Sprintf("%s|%s|%x|%s",
		m.RateLimit.Std(), m.Username, xxhash.Sum64String(m.Password), m.LoginWaitTime.Std())
}

// Defaults for fields left empty.
const (
	DefaultAITimeout    = 60 * time.Second
	DefaultAIMaxRetries = 3
	DefaultRedisPrefix  = "mm"
	MinRemind           = time.Hour
	MinLoginWait        = 10 * time.Second
)

// Load reads, merges and validates one or more YAML config files. Later
// files override earlier ones key by key.
func Load(paths ...string) (*Config, error) {
	docs, err := readAll(paths)
	if err != nil {
		return nil, err
	}
	return parse(docs)
}

type document struct {
	path string
	data []byte
}

func readAll(paths []string) ([]document, error) {
	if len(paths) == 0 {
		return nil, errors.New("no config file given")
	}
	docs := make([]document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		docs = append(docs, document{path: p, data: data})
	}
	return docs, nil
}

func parse(docs []document) (*Config, error) {
	merged := map[string]any{}
	for _, d := range docs {
		// Expand environment variables in the YAML content.
		expanded := os.ExpandEnv(string(d.data))

		var doc map[string]any
		if err := yaml.Unmarshal([]byte(expanded), &doc); err != nil {
			return nil, fmt.Errorf("parsing config YAML %s: %w", d.path, err)
		}
		if doc == nil {
			continue
		}
		if err := mergo.Merge(&merged, doc, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging %s: %w", d.path, err)
		}
	}

	raw, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encoding merged config: %w", err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, fmt.Errorf("applying config defaults: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) error {
	applyLoggingDefaults(&cfg.Logging)
	applyCacheDefaults(&cfg.Cache)

	for name, a := range cfg.AI {
		if a == nil {
			a = &AIConfig{}
			cfg.AI[name] = a
		}
		applyAIDefaults(name, a)
	}
	for name, u := range cfg.User {
		if u == nil {
			u = &domain.User{}
			cfg.User[name] = u
		}
		u.Name = name
	}

	var regionErrs []error
	for name, r := range cfg.Region {
		if r == nil {
			r = &domain.Region{}
			cfg.Region[name] = r
		}
		r.Name = name
		if err := r.Normalize(); err != nil {
			regionErrs = append(regionErrs, err)
		}
	}
	if err := errors.Join(regionErrs...); err != nil {
		return err
	}

	if cfg.Marketplace == nil {
		cfg.Marketplace = map[string]*MarketplaceConfig{}
	}
	for name, m := range cfg.Marketplace {
		if m == nil {
			m = &MarketplaceConfig{}
			cfg.Marketplace[name] = m
		}
		if err := m.ExpandRegions(cfg.Region); err != nil {
			return fmt.Errorf("marketplace %s: %w", name, err)
		}
	}

	for name, item := range cfg.Item {
		if item == nil {
			item = &domain.Item{}
			cfg.Item[name] = item
		}
		if err := applyItemDefaults(cfg, name, item); err != nil {
			return err
		}
	}
	return nil
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyCacheDefaults(c *CacheConfig) {
	if c.Backend == "" {
		c.Backend = CacheBolt
	}
	if c.Dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = ".cache"
		}
		c.Dir = filepath.Join(base, "marketplace-monitor")
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = DefaultRedisPrefix
	}
}

func applyAIDefaults(name string, a *AIConfig) {
	a.Name = name
	if a.Provider == "" {
		// A backend named after a provider needs no provider field.
		if slices.Contains(ai.Providers(), strings.ToLower(name)) {
			a.Provider = strings.ToLower(name)
		} else {
			a.Provider = ai.ProviderOpenAI
		}
	}
	if a.Timeout == 0 {
		a.Timeout = domain.Duration(DefaultAITimeout)
	}
	if a.MaxRetries == 0 {
		a.MaxRetries = DefaultAIMaxRetries
	}
}

// applyItemDefaults names the item, picks its marketplace and fills the
// search options it leaves empty from the marketplace.
func applyItemDefaults(cfg *Config, name string, item *domain.Item) error {
	item.Name = name
	if item.Marketplace == "" {
		item.Marketplace = domain.MarketplaceFacebook
		if len(cfg.Marketplace) == 1 {
			for mp := range cfg.Marketplace {
				item.Marketplace = mp
			}
		}
	}

	if err := item.ExpandRegions(cfg.Region); err != nil {
		return fmt.Errorf("item %s: %w", name, err)
	}

	if mp, ok := cfg.Marketplace[item.Marketplace]; ok {
		inherited := mp.SearchOptions
		if len(item.SearchCity) > 0 {
			// City names and radii belong to the marketplace's own cities.
			inherited.SearchRegion, inherited.CityName = nil, nil
			if len(inherited.Radius) > 1 {
				inherited.Radius = nil
			}
		}
		if err := mergo.Merge(&item.SearchOptions, inherited); err != nil {
			return fmt.Errorf("item %s: inheriting %s options: %w", name, item.Marketplace, err)
		}
	}

	if item.SearchInterval == 0 {
		item.SearchInterval = domain.Duration(domain.DefaultSearchInterval)
	}
	if item.MaxSearchInterval == 0 {
		item.MaxSearchInterval = max(item.SearchInterval, domain.Duration(domain.DefaultMaxSearchInterval))
	}
	return nil
}

func validate(cfg *Config) error {
	var errs []error

	if !logger.ValidLevel(cfg.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
	}
	if f := cfg.Logging.Format; f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("logging.format must be one of: text, json (got %q)", f))
	}

	switch cfg.Cache.Backend {
	case CacheBolt:
	case CacheRedis:
		if cfg.Cache.Redis.URL == "" && cfg.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr or cache.redis.url is required when backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be one of: bolt, redis (got %q)", cfg.Cache.Backend))
	}

	for _, name := range sortedKeys(cfg.AI) {
		a := cfg.AI[name]
		if !slices.Contains(ai.Providers(), strings.ToLower(a.Provider)) {
			errs = append(errs, fmt.Errorf("ai.%s.provider must be one of: %s (got %q)",
				name, strings.Join(ai.Providers(), ", "), a.Provider))
		}
		if a.MaxRetries < 1 {
			errs = append(errs, fmt.Errorf("ai.%s.max_retries must be at least 1", name))
		}
	}

	for _, name := range sortedKeys(cfg.Marketplace) {
		if name != domain.MarketplaceFacebook {
			errs = append(errs, fmt.Errorf("marketplace.%s: unsupported marketplace (supported: %s)", name, domain.MarketplaceFacebook))
			continue
		}
		mp := cfg.Marketplace[name]
		if err := facebook.Validate(&mp.SearchOptions); err != nil {
			errs = append(errs, fmt.Errorf("marketplace.%s: %w", name, err))
		}
		if w := mp.LoginWaitTime.Std(); w != 0 && w < MinLoginWait {
			errs = append(errs, fmt.Errorf("marketplace.%s.login_wait_time must be at least %s (got %s)", name, MinLoginWait, w))
		}
		if mp.Password != "" && mp.Username == "" {
			errs = append(errs, fmt.Errorf("marketplace.%s.password is set without username", name))
		}
	}

	for _, name := range sortedKeys(cfg.Notification) {
		if err := notify.Validate(name, cfg.Notification[name]); err != nil {
			errs = append(errs, err)
		}
	}

	for _, name := range sortedKeys(cfg.User) {
		errs = append(errs, validateUser(cfg, cfg.User[name])...)
	}

	if len(cfg.Item) == 0 {
		errs = append(errs, errors.New("at least one item is required"))
	}
	for _, name := range sortedKeys(cfg.Item) {
		errs = append(errs, validateItem(cfg, cfg.Item[name])...)
	}

	return errors.Join(errs...)
}

func validateUser(cfg *Config, u *domain.User) []error {
	var errs []error
	if r := u.Remind.Std(); r > 0 && r < MinRemind {
		errs = append(errs, fmt.Errorf("user.%s.remind must be at least %s (got %s)", u.Name, MinRemind, r))
	}
	for _, ch := range u.NotifyWith {
		if _, ok := cfg.Notification[ch]; !ok {
			errs = append(errs, fmt.Errorf("user.%s.notify_with: unknown notification %q", u.Name, ch))
		}
	}
	return errs
}

func validateItem(cfg *Config, item *domain.Item) []error {
	var errs []error
	prefix := "item." + item.Name

	if item.Marketplace != domain.MarketplaceFacebook {
		errs = append(errs, fmt.Errorf("%s.marketplace: unsupported marketplace %q", prefix, item.Marketplace))
	} else if err := facebook.Validate(&item.SearchOptions); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
	}
	if len(item.SearchPhrases) == 0 {
		errs = append(errs, fmt.Errorf("%s.search_phrases is required", prefix))
	}
	if len(item.SearchCity) == 0 {
		errs = append(errs, fmt.Errorf("%s.search_city is required (on the item or its marketplace)", prefix))
	}

	for field, spec := range map[string]interface{ Validate() error }{
		"keywords":               item.Keywords,
		"exclude_keywords":       item.ExcludeKeywords,
		"exclude_by_description": item.ExcludeByDescription,
	} {
		if err := spec.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s.%s: %w", prefix, field, err))
		}
	}

	if item.MinPrice < 0 || item.MaxPrice < 0 {
		errs = append(errs, fmt.Errorf("%s: prices cannot be negative", prefix))
	}
	if item.MaxPrice > 0 && item.MinPrice > item.MaxPrice {
		errs = append(errs, fmt.Errorf("%s.min_price %g is above max_price %g", prefix, item.MinPrice, item.MaxPrice))
	}
	if item.SearchInterval < 0 {
		errs = append(errs, fmt.Errorf("%s.search_interval cannot be negative", prefix))
	}
	if item.MaxSearchInterval < item.SearchInterval {
		errs = append(errs, fmt.Errorf("%s.max_search_interval %s is shorter than search_interval %s",
			prefix, item.MaxSearchInterval.Std(), item.SearchInterval.Std()))
	}
	if item.Rating != 0 && (item.Rating < 1 || item.Rating > 5) {
		errs = append(errs, fmt.Errorf("%s.rating must be between 1 and 5 (got %d)", prefix, item.Rating))
	}
	if item.Schedule != "" {
		if _, err := cron.ParseStandard(item.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("%s.schedule: %w", prefix, err))
		}
	}

	for _, u := range item.Notify {
		if _, ok := cfg.User[u]; !ok {
			errs = append(errs, fmt.Errorf("%s.notify: unknown user %q", prefix, u))
		}
	}
	for _, a := range item.AI {
		if _, ok := cfg.AI[a]; !ok {
			errs = append(errs, fmt.Errorf("%s.ai: unknown ai backend %q", prefix, a))
		}
	}
	return errs
}

// Items returns the enabled items on enabled marketplaces, by name.
func (c *Config) Items() []*domain.Item {
	var out []*domain.Item
	for _, name := range sortedKeys(c.Item) {
		item := c.Item[name]
		if !item.IsEnabled() {
			continue
		}
		if mp, ok := c.Marketplace[item.Marketplace]; ok && !mp.IsEnabled() {
			continue
		}
		out = append(out, item)
	}
	return out
}

// UsersFor returns the users notified about item: its notify list, or
// every user when the list is empty.
func (c *Config) UsersFor(item *domain.Item) []*domain.User {
	names := []string(item.Notify)
	if len(names) == 0 {
		names = sortedKeys(c.User)
	}
	out := make([]*domain.User, 0, len(names))
	for _, n := range names {
		if u, ok := c.User[n]; ok {
			out = append(out, u)
		}
	}
	return out
}

// AIFor returns the enabled AI backends that rate listings of item: its
// ai list, or every backend when the list is empty.
func (c *Config) AIFor(item *domain.Item) []*AIConfig {
	names := []string(item.AI)
	if len(names) == 0 {
		names = sortedKeys(c.AI)
	}
	var out []*AIConfig
	for _, n := range names {
		if a, ok := c.AI[n]; ok && a.IsEnabled() {
			out = append(out, a)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
