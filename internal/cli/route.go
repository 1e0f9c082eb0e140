package cli

import (
	"context"
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/routesim/pkg/network"
	"github.com/matzehuels/routesim/pkg/pipeline"
	"github.com/matzehuels/routesim/pkg/routing"
)

// routeOpts holds the command-line flags for the route command.
type routeOpts struct {
	source      int
	dest        int
	algorithm   string
	jsonOut     bool
	noCache     bool
	refresh     bool
	interactive bool
}

func (c *CLI) routeCommand() *cobra.Command {
	var opts routeOpts

	cmd := &cobra.Command{
		Use:   "route <file>",
		Short: "Compute a routing table or a single route",
		Long: `Compute shortest routes from a source router.

Without --dest the full routing table is printed: one row per reachable
router with its cost and path. With --dest only that route is printed, or a
notice when the destination cannot be reached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.loadNetwork(args[0])
			if err != nil {
				return err
			}

			popts, err := opts.pipelineOptions(cmd)
			if err != nil {
				return err
			}
			if opts.interactive {
				picked, ok, err := pickRoute(n, popts)
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Cancelled")
					return nil
				}
				popts = picked
			} else if !cmd.Flags().Changed("source") {
				return fmt.Errorf("--source is required unless --interactive is set")
			}

			return c.runRoute(cmd.Context(), n, popts, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.source, "source", "s", 0, "source router")
	cmd.Flags().IntVarP(&opts.dest, "dest", "d", 0, "destination router (default: full table)")
	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "", "centralized (Dijkstra) or decentralized (Bellman-Ford); default from config")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached result exists")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick algorithm, source and destination interactively")

	return cmd
}

func (o routeOpts) pipelineOptions(cmd *cobra.Command) (pipeline.Options, error) {
	popts := pipeline.Options{
		Source:  network.NodeID(o.source),
		Refresh: o.refresh,
	}
	if cmd.Flags().Changed("dest") {
		d := network.NodeID(o.dest)
		popts.Destination = &d
	}
	if o.algorithm != "" {
		alg, err := routing.ParseAlgorithm(o.algorithm)
		if err != nil {
			return popts, err
		}
		popts.Algorithm = alg
	}
	return popts, nil
}

func (c *CLI) runRoute(ctx context.Context, n *network.Network, popts pipeline.Options, opts routeOpts) error {
	if popts.Algorithm == "" {
		cfg, err := c.config()
		if err != nil {
			return err
		}
		popts.Algorithm = cfg.Algorithm
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	res, hit, err := runner.Route(ctx, n, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("%s routes from router %d", popts.Algorithm.Title(), popts.Source), "cached", hit)

	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printRoutes(res)
	printStats(n.NodeCount(), n.EdgeCount(), hit)
	return nil
}

// pickRoute runs the interactive picker seeded with popts. The boolean is
// false when the user quit without choosing.
func pickRoute(n *network.Network, popts pipeline.Options) (pipeline.Options, bool, error) {
	if n.NodeCount() == 0 {
		return popts, false, fmt.Errorf("topology has no routers")
	}
	final, err := tea.NewProgram(newRouteModel(n, popts)).Run()
	if err != nil {
		return popts, false, fmt.Errorf("interactive picker: %w", err)
	}
	m := final.(routeModel)
	if !m.done {
		return popts, false, nil
	}
	return m.options(), true, nil
}
