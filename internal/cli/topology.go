package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/network"
)

// maxRandomWeight bounds the weight picked when a link is created without
// one.
const maxRandomWeight = 20

// randomWeight returns a link weight in [1, maxRandomWeight].
var randomWeight = func() int { return rand.IntN(maxRandomWeight) + 1 }

// =============================================================================
// init
// =============================================================================

type initOpts struct {
	empty    bool
	capacity int
	force    bool
}

func (c *CLI) initCommand() *cobra.Command {
	var opts initOpts

	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Write a new topology file",
		Long: `Write a new topology file. By default the file holds the five-router
sample topology; --empty starts with no routers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInit(args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.empty, "empty", false, "start without routers")
	cmd.Flags().IntVar(&opts.capacity, "capacity", 0, "maximum router count (default from config)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite an existing file")

	return cmd
}

func (c *CLI) runInit(path string, opts initOpts) error {
	if !opts.force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	var n *network.Network
	if opts.empty {
		capacity := opts.capacity
		if capacity <= 0 {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			capacity = cfg.Capacity
		}
		n = network.New(capacity)
	} else {
		if opts.capacity > 0 && opts.capacity != network.DefaultCapacity {
			return apperr.New(apperr.ErrCodeUnsupported, "the sample topology has capacity %d", network.DefaultCapacity)
		}
		n = network.Sample()
	}

	if err := c.saveNetwork(n, path); err != nil {
		return err
	}
	printSuccess("Created topology with %d routers and %d links", n.NodeCount(), n.EdgeCount())
	printFile(path)
	return nil
}

// =============================================================================
// show
// =============================================================================

func (c *CLI) showCommand() *cobra.Command {
	var showMatrix bool

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print the routers, links and matrix of a topology",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.loadNetwork(args[0])
			if err != nil {
				return err
			}

			printKeyValue("Capacity", strconv.Itoa(n.Capacity()))
			printKeyValue("Routers", strconv.Itoa(n.NodeCount()))
			printKeyValue("Links", strconv.Itoa(n.EdgeCount()))
			if n.NodeCount() > 0 {
				printNodes(n)
			}
			if n.EdgeCount() > 0 {
				printEdges(n.Edges())
			}
			if showMatrix {
				fmt.Fprint(stdout, n.Snapshot())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMatrix, "matrix", false, "also print the adjacency matrix")
	return cmd
}

// =============================================================================
// node
// =============================================================================

func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add or remove routers",
	}
	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeRemoveCommand())
	return cmd
}

func (c *CLI) nodeAddCommand() *cobra.Command {
	var link, weight int

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a router, optionally linked to an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			linked := cmd.Flags().Changed("link")
			if linked && !cmd.Flags().Changed("weight") {
				weight = randomWeight()
			}

			var id network.NodeID
			_, err := c.editNetwork(args[0], func(n *network.Network) error {
				var err error
				if linked {
					id, err = n.AddLinkedNode(network.NodeID(link), weight)
				} else {
					id, err = n.AddNode()
				}
				return err
			})
			if err != nil {
				return err
			}

			if linked {
				printSuccess("Added router %d linked to router %d (weight %d)", id, link, weight)
			} else {
				printSuccess("Added router %d", id)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&link, "link", 0, "link the new router to this router")
	cmd.Flags().IntVar(&weight, "weight", 0, "weight of the new link (random 1-20 when omitted)")
	return cmd
}

func (c *CLI) nodeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> <id>",
		Short: "Remove a router and its links",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNodeID(args[1])
			if err != nil {
				return err
			}
			if _, err := c.editNetwork(args[0], func(n *network.Network) error {
				return n.RemoveNode(id)
			}); err != nil {
				return err
			}
			printSuccess("Removed router %d", id)
			return nil
		},
	}
}

// =============================================================================
// edge
// =============================================================================

func (c *CLI) edgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Create, reweight or remove links",
	}
	cmd.AddCommand(c.edgeSetCommand())
	cmd.AddCommand(c.edgeRemoveCommand())
	return cmd
}

func (c *CLI) edgeSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <file> <a> <b> [weight]",
		Short: "Create or reweight the link a-b (random weight 1-20 when omitted)",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b, err := parseLink(args[1], args[2])
			if err != nil {
				return err
			}
			weight := 0
			if len(args) == 4 {
				if weight, err = strconv.Atoi(args[3]); err != nil {
					return apperr.New(apperr.ErrCodeInvalidInput, "weight must be an integer, got %q", args[3])
				}
			} else {
				weight = randomWeight()
			}

			if _, err := c.editNetwork(args[0], func(n *network.Network) error {
				return n.UpsertEdge(a, b, weight)
			}); err != nil {
				return err
			}
			printSuccess("Link %d - %d has weight %d", a, b, weight)
			return nil
		},
	}
}

func (c *CLI) edgeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> <a> <b>",
		Short: "Remove the link a-b",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b, err := parseLink(args[1], args[2])
			if err != nil {
				return err
			}
			var removed bool
			if _, err := c.editNetwork(args[0], func(n *network.Network) error {
				removed = n.RemoveEdge(a, b)
				return nil
			}); err != nil {
				return err
			}
			if removed {
				printSuccess("Removed link %d - %d", a, b)
			} else {
				printInfo("No link between %d and %d", a, b)
			}
			return nil
		},
	}
}

// =============================================================================
// Argument Parsing
// =============================================================================

func parseNodeID(s string) (network.NodeID, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "router id must be an integer, got %q", s)
	}
	return network.NodeID(id), nil
}

func parseLink(sa, sb string) (network.NodeID, network.NodeID, error) {
	a, err := parseNodeID(sa)
	if err != nil {
		return 0, 0, err
	}
	b, err := parseNodeID(sb)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
