package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ravensource/internal/core/domain"
)

var clearAll bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear cached collections",
	Long: `Each collection node caches its last etag and resolved documents.
Clearing a node forces the next run to fetch and resolve it again.`,
}

var cacheShowCmd = &cobra.Command{
	Use:   "show [node...]",
	Short: "Show cached etags and document counts",
	Long: `Shows the cached etag and document count of the given nodes.
Without arguments every configured collection is shown.`,
	RunE: runCacheShow,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [node...]",
	Short: "Clear the cache of collection nodes",
	RunE:  runCacheClear,
}

func init() {
	cacheClearCmd.Flags().BoolVar(&clearAll, "all", false, "clear every configured collection")
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	nodes := args
	if len(nodes) == 0 {
		var err error
		if nodes, err = configuredNodes(); err != nil {
			return err
		}
	}
	if len(nodes) == 0 {
		cmd.Println("No collections configured.")
		return nil
	}

	ctx := cmd.Context()
	for _, node := range nodes {
		entry, err := cacheService.Inspect(ctx, node)
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Printf("%s: not cached\n", node)
			continue
		}
		if err != nil {
			return fmt.Errorf("inspecting cache: %w", err)
		}
		cmd.Printf("%s: etag %s, %d documents\n", entry.Node, entry.Etag, entry.DocumentCount)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	nodes := args
	if clearAll {
		if len(args) > 0 {
			return errors.New("--all cannot be combined with node names")
		}
		var err error
		if nodes, err = configuredNodes(); err != nil {
			return err
		}
	} else if len(nodes) == 0 {
		return errors.New("no node given; pass node names or --all")
	}

	ctx := cmd.Context()
	for _, node := range nodes {
		if err := cacheService.Clear(ctx, node); err != nil {
			return fmt.Errorf("clearing cache for %s: %w", node, err)
		}
		cmd.Printf("Cleared cache for %s\n", node)
	}
	return nil
}

// configuredNodes returns the node names of the configured collections.
func configuredNodes() ([]string, error) {
	if configStore == nil {
		return nil, errors.New("config store not configured")
	}
	cfg := configStore.Config()
	nodes := make([]string, 0, len(cfg.Collections))
	for _, collection := range cfg.Collections {
		nodes = append(nodes, collection.NodeName())
	}
	return nodes, nil
}
