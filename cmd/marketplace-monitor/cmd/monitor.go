package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/marketplace-monitor/internal/api"
	"github.com/donaldgifford/marketplace-monitor/internal/config"
	"github.com/donaldgifford/marketplace-monitor/internal/engine"
	"github.com/donaldgifford/marketplace-monitor/internal/marketplace"
	"github.com/donaldgifford/marketplace-monitor/internal/marketplace/facebook"
	"github.com/donaldgifford/marketplace-monitor/internal/store"
	"github.com/donaldgifford/marketplace-monitor/internal/telemetry"
	domain "github.com/donaldgifford/marketplace-monitor/pkg/types"
)

func monitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Search marketplaces and send notifications until interrupted",
		Long: "monitor searches every enabled item when it is due and notifies its users.\n" +
			"The config files are re-read while running; edits take effect on the\n" +
			"next search. Changing the cache backend requires a restart.",
		Args: cobra.NoArgs,
		RunE: runMonitor,
	}
	cmd.Flags().Bool("headless", true, "run the browser without a window")
	cmd.Flags().String("metrics-addr", "", "serve /healthz, /readyz and /metrics on this address")
	cmd.Flags().String("otlp-endpoint", "", "export traces to this OTLP gRPC endpoint")
	for _, name := range []string{"headless", "metrics-addr", "otlp-endpoint"} {
		cobra.CheckErr(viper.BindPFlag(name, cmd.Flags().Lookup(name)))
	}
	return cmd
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// Block until the files are valid, then reload with the configured
	// logger for the rest of the run.
	cfg, _, err := levelReloader{config.NewReloader(configPaths())}.Reload(ctx)
	if err != nil {
		return nil
	}
	log := setupLogger(cfg)
	monitorFlags(&cfg.Monitor)
	reloader := levelReloader{config.NewReloader(configPaths(), config.WithReloadLogger(log))}

	st, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer closeStore(st, log)

	shutdown, err := telemetry.Setup(ctx, cfg.Monitor.OTLPEndpoint,
		telemetry.WithService("marketplace-monitor", Version),
		telemetry.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("flushing traces failed", "error", err)
		}
	}()

	monitor := cfg.Monitor
	eng := engine.NewEngine(st,
		engine.WithLogger(log),
		engine.WithScraperFactory(newScraperFactory(st, monitor, log)),
	)
	defer func() {
		if err := eng.Close(); err != nil {
			log.Warn("closing engine", "error", err)
		}
	}()

	if monitor.MetricsAddr == "" {
		return eng.Run(ctx, reloader)
	}

	srvCtx, stopServer := context.WithCancel(ctx)
	done := make(chan struct{})
	srv := api.NewServer(monitor.MetricsAddr, st, eng.Ready, api.WithLogger(log))
	go func() {
		defer close(done)
		if err := srv.Run(srvCtx); err != nil {
			log.Error("ops server failed", "addr", monitor.MetricsAddr, "error", err)
		}
	}()

	err = eng.Run(ctx, reloader)
	stopServer()
	<-done
	return err
}

// monitorFlags lets flags and MM_ variables override the monitor section.
func monitorFlags(m *config.MonitorConfig) {
	if viper.IsSet("headless") {
		headless := viper.GetBool("headless")
		m.Headless = &headless
	}
	if addr := viper.GetString("metrics-addr"); addr != "" {
		m.MetricsAddr = addr
	}
	if endpoint := viper.GetString("otlp-endpoint"); endpoint != "" {
		m.OTLPEndpoint = endpoint
	}
}

// newScraperFactory builds one browser per marketplace.
func newScraperFactory(st store.Store, m config.MonitorConfig, log *slog.Logger) engine.ScraperFactory {
	return func(name string, mp *config.MarketplaceConfig) (marketplace.Scraper, error) {
		switch name {
		case domain.MarketplaceFacebook:
			browser := marketplace.NewPlaywrightBrowser(marketplace.BrowserOptions{
				Headless:    m.IsHeadless(),
				ProxyServer: m.ProxyServer,
				Logger:      log,
			})
			opts := []facebook.Option{facebook.WithLogger(log)}
			if u := viper.GetString("facebook-url"); u != "" {
				opts = append(opts, facebook.WithBaseURL(strings.TrimSuffix(u, "/")))
			}
			if mp != nil && mp.RateLimit.Std() > 0 {
				opts = append(opts, facebook.WithPageInterval(mp.RateLimit.Std()))
			}
			if mp != nil && mp.Credentials().IsSet() {
				opts = append(opts, facebook.WithLogin(mp.Credentials()))
			}
			return facebook.New(browser, st, opts...), nil
		default:
			return nil, fmt.Errorf("unsupported marketplace %q", name)
		}
	}
}

func closeStore(st store.Store, log *slog.Logger) {
	if err := st.Close(); err != nil {
		log.Warn("closing cache", "error", err)
	}
}
