package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/routesim/pkg/buildinfo"
	"github.com/matzehuels/routesim/pkg/cache"
	"github.com/matzehuels/routesim/pkg/config"
	"github.com/matzehuels/routesim/pkg/graph"
	"github.com/matzehuels/routesim/pkg/network"
	"github.com/matzehuels/routesim/pkg/pipeline"
	"github.com/matzehuels/routesim/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "routesim computes shortest routes over router topologies",
		Long: `routesim edits small weighted router topologies and computes shortest
routes with a centralized (Dijkstra) or decentralized (Bellman-Ford) solver.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/routesim/config.toml)")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.edgeCommand())
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	c.cfg = &cfg
	return c.cfg, nil
}

// =============================================================================
// Runner and Store Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use. An unavailable cache
// backend is reported and replaced by the null cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	rc, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(rc, nil, c.Logger)
	if cfg.Cache.TTL > 0 {
		runner.TTL = cfg.Cache.TTL
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	rc, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		if cache.IsRetryable(err) {
			c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "err", err)
			return cache.NewNullCache(), nil
		}
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return rc, nil
}

// newStore opens the configured topology store. Remote backends show a
// spinner while connecting.
func (c *CLI) newStore(ctx context.Context) (storage.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	opts := cfg.StoreOptions()
	if opts.Backend != storage.BackendMongo {
		return storage.Open(ctx, opts)
	}

	spinner := newSpinnerWithContext(ctx, "Connecting to MongoDB...")
	spinner.Start()
	store, err := storage.Open(ctx, opts)
	if err != nil {
		spinner.StopWithError("Could not reach MongoDB")
		return nil, fmt.Errorf("open store: %w", err)
	}
	spinner.Stop()
	return store, nil
}

// =============================================================================
// Topology Files
// =============================================================================

// loadNetwork reads a topology file. Files without a matrix get the
// configured capacity.
func (c *CLI) loadNetwork(path string) (*network.Network, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	n, err := graph.ReadNetworkFile(path, graph.ImportOptions{Capacity: cfg.Capacity})
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("topology loaded", "path", path, "routers", n.NodeCount(), "links", n.EdgeCount())
	return n, nil
}

// saveNetwork writes n back to path.
func (c *CLI) saveNetwork(n *network.Network, path string) error {
	if err := graph.WriteNetworkFile(n, path); err != nil {
		return err
	}
	c.Logger.Debug("topology written", "path", path)
	return nil
}

// editNetwork loads path, applies fn and writes the result back.
func (c *CLI) editNetwork(path string, fn func(*network.Network) error) (*network.Network, error) {
	n, err := c.loadNetwork(path)
	if err != nil {
		return nil, err
	}
	if err := fn(n); err != nil {
		return nil, err
	}
	if err := c.saveNetwork(n, path); err != nil {
		return nil, err
	}
	return n, nil
}
