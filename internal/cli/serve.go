package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/subway/internal/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the line API over HTTP",
		Long: `Serve the line API over HTTP until interrupted.

The store, cache and CORS origins come from the configuration file and
SUBWAY_* environment variables; --addr and --store override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			svc, closeSvc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer closeSvc()

			renderer, closeCache, err := c.newRenderer(ctx, noCache)
			if err != nil {
				return err
			}
			defer closeCache()

			srv := api.NewServer(svc, renderer, c.Logger, api.Options{
				AllowedOrigins: cfg.Server.AllowedOrigins,
				ReadTimeout:    cfg.Server.ReadTimeout.Duration,
				WriteTimeout:   cfg.Server.WriteTimeout.Duration,
			})
			printInfo("Serving %s on %s", StyleHighlight.Render(cfg.Store.URL), StyleLink.Render(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8081)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "render diagrams without caching")
	return cmd
}
