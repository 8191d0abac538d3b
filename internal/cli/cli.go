package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/subway/pkg/buildinfo"
	"github.com/matzehuels/subway/pkg/cache"
	"github.com/matzehuels/subway/pkg/config"
	"github.com/matzehuels/subway/pkg/observability"
	"github.com/matzehuels/subway/pkg/render/nodelink"
	"github.com/matzehuels/subway/pkg/service"
	"github.com/matzehuels/subway/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the binary name used in help text.
const appName = "subway"

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
	storeURL   string
	verbose    bool
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
		Use:               appName,
		Short:             "Subway manages transit lines as ordered chains of stations",
		Long:              `Subway keeps each transit line as a single chain of stations joined by sections with distances. Sections can be added at either end or split into an existing section; removing a station merges its neighbouring sections.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/subway/config.toml)")
	flags.StringVar(&c.storeURL, "store", "", "line store URL (memory:, file://, sqlite://, postgres://, redis://, mongodb://)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.lineCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads configuration and applies global flags before any command runs.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.storeURL != "" {
		cfg.Store.URL = c.storeURL
	}
	c.cfg = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)
	observability.NewLogHooks(c.Logger).Register()

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// settings returns the loaded configuration, falling back to defaults when
// commands are run without the root pre-run (as in tests).
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
		if c.storeURL != "" {
			c.cfg.Store.URL = c.storeURL
		}
	}
	return c.cfg
}

// =============================================================================
// Factories
// =============================================================================

// openService opens the configured store and wraps it in a service.
// The returned function closes the store.
func (c *CLI) openService(ctx context.Context) (*service.Service, func(), error) {
	st, err := store.Open(ctx, c.settings().Store.URL)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("store opened", "url", c.settings().Store.URL)
	closeFn := func() {
		if err := st.Close(); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}
	return service.New(st, c.Logger), closeFn, nil
}

// newCache builds the diagram cache selected by the configuration.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.settings().Cache
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	default:
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, rendering uncached", "dir", cfg.Dir, "err", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// newRenderer builds a diagram renderer on top of the configured cache.
func (c *CLI) newRenderer(ctx context.Context, noCache bool) (*nodelink.Renderer, func(), error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), store.KeyPrefix)
	return nodelink.NewRenderer(ch, keyer, c.settings().Cache.TTL.Duration), func() { ch.Close() }, nil
}

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout
