package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/marketplace-monitor/internal/store"
)

// cacheLockNote is appended to the help of commands that open the cache
// next to a possibly running monitor.
const cacheLockNote = "With the default bolt cache backend only one process can open the cache\n" +
	"at a time, so this command fails while monitor is running against the same\n" +
	"cache directory. Stop the monitor first, or set cache.backend to redis to\n" +
	"share the cache between processes."

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the listing and notification cache",
		Long:  "cache inspects or clears the listing and notification cache.\n\n" + cacheLockNote,
	}
	cmd.AddCommand(cacheClearCmd())
	cmd.AddCommand(cacheStatsCmd())
	return cmd
}

func cacheClearCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached entries, all of them or one type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var category store.Category
			if kind != "" {
				c, err := store.ParseCategory(kind)
				if err != nil {
					return err
				}
				category = c
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg.Cache)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			defer closeStore(st, log)

			out := cmd.OutOrStdout()
			if category == "" {
				if err := st.Clear(ctx); err != nil {
					return fmt.Errorf("clearing cache: %w", err)
				}
				fmt.Fprintln(out, "cache cleared")
				return nil
			}
			n, err := st.DeleteCategory(ctx, category)
			if err != nil {
				return fmt.Errorf("clearing %s: %w", category, err)
			}
			fmt.Fprintf(out, "%d %s entries removed\n", n, category)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "",
		"entry type to remove (listing-details, user-notified, searched-listings)")
	return cmd
}

func cacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count cached entries per type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg.Cache)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			defer closeStore(st, log)

			stats, err := store.Stats(ctx, st)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), stats)
			}
			return printStatsTable(cmd.OutOrStdout(), cfg.Cache.Backend, stats)
		},
	}
}
