// Command ravensource sources RavenDB collections into node records.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/ravensource/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ravensource/internal/adapters/driven/nodes/jsonl"
	"github.com/custodia-labs/ravensource/internal/adapters/driven/raven"
	"github.com/custodia-labs/ravensource/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ravensource/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ravensource/internal/adapters/driving/cli"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
	"github.com/custodia-labs/ravensource/internal/core/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetWiring(wire)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// wire builds the services behind the CLI from the global flags.
func wire(opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cache, closeCache, err := openCache(opts)
	if err != nil {
		return nil, err
	}

	freshness := services.NewFreshnessCache(cache)
	collector := services.NewCollector(raven.NewConfiguredClient(configStore), freshness)
	orchestrator := services.NewSourceOrchestrator(
		configStore,
		collector,
		services.NewNodeBuilder(),
		jsonl.NewSink(opts.Output),
	)

	return &cli.Services{
		Source: orchestrator,
		Cache:  services.NewCacheService(freshness),
		Config: configStore,
		Close:  closeCache,
	}, nil
}

// openCache returns the sqlite cache in the data directory, or a
// process-local cache when --in-memory is set.
func openCache(opts cli.Options) (driven.Cache, func() error, error) {
	if opts.InMemory {
		return memory.NewCache(), nil, nil
	}

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	return store.Cache(), store.Close, nil
}
