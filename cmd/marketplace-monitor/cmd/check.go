package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/marketplace-monitor/internal/config"
	"github.com/donaldgifford/marketplace-monitor/internal/engine"
)

func checkCmd() *cobra.Command {
	var (
		itemName string
		opts     engine.CheckOptions
	)

	cmd := &cobra.Command{
		Use:   "check ID_OR_URL...",
		Short: "Explain how listings fare against an item without notifying anyone",
		Long: "check loads the given listings from the cache, runs the item's filters,\n" +
			"optionally rates them with the item's AI backends, and prints what each\n" +
			"user has been told about them. Nothing is sent and nothing is recorded.\n\n" +
			cacheLockNote,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			name, err := pickItem(cfg, itemName)
			if err != nil {
				return err
			}

			st, err := openStore(ctx, cfg.Cache)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			defer closeStore(st, log)

			eng := engine.NewEngine(st,
				engine.WithLogger(log),
				engine.WithScraperFactory(newScraperFactory(st, cfg.Monitor, log)),
			)
			defer func() {
				if err := eng.Close(); err != nil {
					log.Warn("closing engine", "error", err)
				}
			}()

			results, err := eng.Check(ctx, cfg, name, args, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				err = outputJSON(out, toCheckRows(results))
			} else {
				err = printCheckTable(out, results)
			}
			if err != nil {
				return err
			}

			var errs []error
			for _, r := range results {
				if r.Err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", r.Ref, r.Err))
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVar(&itemName, "for", "", "item to check against (required when several are configured)")
	cmd.Flags().BoolVar(&opts.AI, "ai", false, "rate listings that pass the filters with the item's AI backends")
	cmd.Flags().BoolVar(&opts.Fetch, "fetch", false, "load listings missing from the cache from the marketplace")
	return cmd
}

// pickItem resolves --for, defaulting to the only configured item.
func pickItem(cfg *config.Config, name string) (string, error) {
	if name != "" {
		if _, ok := cfg.Item[name]; !ok {
			return "", fmt.Errorf("unknown item %q", name)
		}
		return name, nil
	}
	if len(cfg.Item) == 1 {
		for n := range cfg.Item {
			return n, nil
		}
	}
	return "", errors.New("several items are configured, pick one with --for")
}
