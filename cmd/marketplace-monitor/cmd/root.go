// Package cmd implements the marketplace-monitor CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/marketplace-monitor/internal/config"
	"github.com/donaldgifford/marketplace-monitor/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "marketplace-monitor",
	Short: "Watch online marketplaces for listings you care about",
	Long: "marketplace-monitor searches online marketplaces on a schedule, filters\n" +
		"listings by keywords, price and seller, optionally rates them with an\n" +
		"AI backend, and notifies users about new, changed or forgotten deals.",
	SilenceUsage: true,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringSlice("config", []string{"config.yaml"}, "config file; repeat to merge several, later files win")
	rootCmd.PersistentFlags().
		String("log-level", "", "override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().
		String("facebook-url", "", "origin facebook searches are sent to (see tools/mock-server)")
	cobra.CheckErr(rootCmd.PersistentFlags().MarkHidden("facebook-url"))

	for _, name := range []string{"config", "log-level", "output", "facebook-url"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}

	rootCmd.AddCommand(monitorCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(cacheCmd())
	rootCmd.AddCommand(versionCommand())
}

func initConfig() {
	viper.SetEnvPrefix("MM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func configPaths() []string {
	return viper.GetStringSlice("config")
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

// loadConfig reads the config files once and sets up the default logger
// from them.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPaths()...)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	overrideLevel(cfg)
	return cfg, setupLogger(cfg), nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)
	return log
}

// overrideLevel applies --log-level on top of the files.
func overrideLevel(cfg *config.Config) {
	if lv := viper.GetString("log-level"); lv != "" {
		cfg.Logging.Level = lv
	}
}

// levelReloader keeps --log-level in force across reloads.
type levelReloader struct {
	*config.Reloader
}

func (r levelReloader) Reload(ctx context.Context) (*config.Config, bool, error) {
	cfg, changed, err := r.Reloader.Reload(ctx)
	if err == nil && changed {
		overrideLevel(cfg)
	}
	return cfg, changed, err
}
