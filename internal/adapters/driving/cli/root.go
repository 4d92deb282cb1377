// Package cli implements the ravensource command line.
//
// Commands reach the core through package-level driving ports. The binary
// installs a WireFunc that builds them from the global flags before each
// command runs. Tests assign the ports directly and leave the hook unset.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
	"github.com/custodia-labs/ravensource/internal/core/ports/driving"
	"github.com/custodia-labs/ravensource/internal/logger"
)

// version is set at build time.
var version = "dev"

// Driving ports used by the commands.
var (
	sourceOrchestrator driving.SourceOrchestrator
	cacheService       driving.CacheService
	configStore        driven.ConfigStore
)

// Global flags.
var (
	configDir  string
	dataDir    string
	outputPath string
	inMemory   bool
	verbose    bool
)

// Options are the global flag values handed to the wiring hook.
type Options struct {
	// ConfigDir holds ravensource.toml. Empty means the default.
	ConfigDir string

	// DataDir holds the persistent cache. Empty means the default.
	DataDir string

	// Output receives one JSON line per created node.
	Output io.Writer

	// InMemory keeps the cache in memory for this invocation only.
	InMemory bool
}

// Services are the ports built by the wiring hook.
type Services struct {
	Source driving.SourceOrchestrator
	Cache  driving.CacheService
	Config driven.ConfigStore

	// Close releases resources held by the services. Optional.
	Close func() error
}

// WireFunc builds the services for one command invocation.
type WireFunc func(opts Options) (*Services, error)

var (
	wire WireFunc

	// Set up by setup, released by teardown.
	closeServices func() error
	closeOutput   func() error

	// nodesOnStdout is true when node records are written to stdout,
	// in which case human-readable output goes to stderr.
	nodesOnStdout bool
)

// isTerminal reports whether f is attached to a terminal.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// skipWiring marks commands that do not need services.
const skipWiring = "skip-wiring"

var rootCmd = &cobra.Command{
	Use:   "ravensource",
	Short: "Source RavenDB collections into nodes",
	Long: `ravensource fetches the documents of configured RavenDB collections,
embeds the documents they reference through include paths and emits one
node record per document as a JSON line.

Documents are cached per collection together with the collection's etag.
When the server reports the same etag again the cached documents are reused
instead of being resolved anew.

Configuration lives in ravensource.toml inside the config directory.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.ravensource)")
	flags.StringVar(&dataDir, "data-dir", "", "cache directory (default ~/.ravensource/data)")
	flags.StringVarP(&outputPath, "output", "o", "", "write node records to this file instead of stdout")
	flags.BoolVar(&inMemory, "in-memory", false, "keep the cache in memory instead of the data directory")
	flags.BoolVarP(&verbose, "verbose", "v", false, "print debug output")
}

// SetWiring installs the hook that builds services before each command.
func SetWiring(fn WireFunc) {
	wire = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipWiring] == "true" || wire == nil {
		return nil
	}

	output, err := openOutput(cmd)
	if err != nil {
		return err
	}

	services, err := wire(Options{
		ConfigDir: configDir,
		DataDir:   dataDir,
		Output:    output,
		InMemory:  inMemory,
	})
	if err != nil {
		if closeOutput != nil {
			_ = closeOutput()
			closeOutput = nil
		}
		return fmt.Errorf("initialising: %w", err)
	}

	sourceOrchestrator = services.Source
	cacheService = services.Cache
	configStore = services.Config
	closeServices = services.Close
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	var errs []error
	if closeServices != nil {
		errs = append(errs, closeServices())
		closeServices = nil
	}
	if closeOutput != nil {
		errs = append(errs, closeOutput())
		closeOutput = nil
	}
	return errors.Join(errs...)
}

// openOutput resolves where node records go. A terminal gets a summary
// instead of raw records unless --output names a file.
func openOutput(cmd *cobra.Command) (io.Writer, error) {
	nodesOnStdout = false

	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("opening output: %w", err)
		}
		closeOutput = f.Close
		return f, nil
	}

	if isTerminal(os.Stdout) {
		return io.Discard, nil
	}

	nodesOnStdout = true
	return cmd.OutOrStdout(), nil
}

// infoOut returns the writer for human-readable output.
func infoOut(cmd *cobra.Command) io.Writer {
	if nodesOnStdout {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
