package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// configWatcher is implemented by config stores that can follow file changes.
type configWatcher interface {
	Watch(ctx context.Context, debounce time.Duration, onReload func(error)) error
}

// watchDebounce collapses bursts of file events into one reload.
var watchDebounce = 250 * time.Millisecond

var watchConfig bool

var sourceCmd = &cobra.Command{
	Use:   "source [collection...]",
	Short: "Source collections into nodes",
	Long: `Fetches the configured collections, resolves their include paths and
writes one node record per document.

If collection names are provided, only those collections are sourced, in the
order given. Otherwise all configured collections are sourced in config order.
The run stops at the first collection that fails.

With --watch the command keeps running and sources again whenever the
configuration file changes.`,
	RunE: runSource,
}

func init() {
	sourceCmd.Flags().BoolVarP(&watchConfig, "watch", "w", false, "source again when the config file changes")
	rootCmd.AddCommand(sourceCmd)
}

func runSource(cmd *cobra.Command, args []string) error {
	if sourceOrchestrator == nil {
		return errors.New("source service not configured")
	}
	if err := validateConfig(); err != nil {
		return err
	}

	ctx := cmd.Context()
	out := infoOut(cmd)

	if !watchConfig {
		return sourceCollections(ctx, out, args)
	}

	watcher, ok := configStore.(configWatcher)
	if !ok {
		return errors.New("config store does not support watching")
	}

	if err := sourceCollections(ctx, out, args); err != nil {
		fmt.Fprintf(out, "%v\n", err)
	}
	fmt.Fprintf(out, "Watching %s for changes. Press Ctrl+C to stop.\n", configStore.Path())

	return watcher.Watch(ctx, watchDebounce, func(err error) {
		if err != nil {
			fmt.Fprintf(out, "Reloading configuration failed: %v\n", err)
			return
		}
		if err := validateConfig(); err != nil {
			fmt.Fprintf(out, "Reloaded configuration is invalid: %v\n", err)
			return
		}
		fmt.Fprintln(out, "Configuration changed, sourcing again...")
		if err := sourceCollections(ctx, out, args); err != nil {
			fmt.Fprintf(out, "%v\n", err)
		}
	})
}

// validateConfig rejects a configuration that would fail every run.
func validateConfig() error {
	if configStore == nil {
		return nil
	}
	cfg := configStore.Config()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", configStore.Path(), err)
	}
	return nil
}

func sourceCollections(ctx context.Context, out io.Writer, names []string) error {
	if len(names) == 0 {
		fmt.Fprintln(out, "Sourcing all collections...")

		if err := sourceOrchestrator.SourceAll(ctx); err != nil {
			return fmt.Errorf("source failed: %w", err)
		}

		for _, collection := range sourceOrchestrator.Collections() {
			printStatus(ctx, out, collection.NodeName())
		}
		fmt.Fprintln(out, "All collections sourced successfully.")
		return nil
	}

	for _, name := range names {
		fmt.Fprintf(out, "Sourcing collection: %s...\n", name)

		if err := sourceOrchestrator.Source(ctx, name); err != nil {
			return fmt.Errorf("source failed: %w", err)
		}
		printStatus(ctx, out, name)
	}
	return nil
}

// printStatus prints the counters of a collection's last run.
func printStatus(ctx context.Context, out io.Writer, name string) {
	// Ignore status error - best effort
	status, err := sourceOrchestrator.Status(ctx, name)
	if err != nil || status == nil {
		return
	}

	origin := "fetched"
	if status.CacheHit {
		origin = "cached"
	}
	fmt.Fprintf(out, "  %s: %d documents (%s), %d nodes\n",
		status.Collection, status.DocumentsCollected, origin, status.NodesCreated)
}
