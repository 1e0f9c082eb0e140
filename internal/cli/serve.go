package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/routesim/pkg/api"
	"github.com/matzehuels/routesim/pkg/network"
	"github.com/matzehuels/routesim/pkg/observability"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the HTTP API",
		Long: `Serve the graph edit and compute API over HTTP. The workspace starts
from the given topology file, or from the sample topology when none is given.
Edits made through the API are kept in memory; use GET /export to save them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			n := network.Sample()
			if len(args) == 1 {
				if n, err = c.loadNetwork(args[0]); err != nil {
					return err
				}
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			hooks := newLogHooks(c.Logger)
			observability.SetComputeHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
			defer observability.Reset()

			printInfo("Serving %d routers on %s", n.NodeCount(), addr)
			return api.NewServer(n, runner, c.Logger).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}
