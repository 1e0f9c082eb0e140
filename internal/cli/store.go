package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/routesim/pkg/graph"
	"github.com/matzehuels/routesim/pkg/storage"
)

func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Save and load named topologies",
		Long: `Save and load named topologies in the configured store (file, bolt or
mongo, see "routesim config show").`,
	}

	cmd.AddCommand(c.storeSaveCommand())
	cmd.AddCommand(c.storeLoadCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

// withStore opens the store, runs fn and closes the store.
func (c *CLI) withStore(cmd *cobra.Command, fn func(storage.Store) error) error {
	store, err := c.newStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *CLI) storeSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <file>",
		Short: "Save a topology file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.loadNetwork(args[1])
			if err != nil {
				return err
			}
			return c.withStore(cmd, func(store storage.Store) error {
				rec, err := store.Save(cmd.Context(), args[0], graph.FromNetwork(n))
				if err != nil {
					return err
				}
				printSuccess("Saved %s (%d routers, %d links)", rec.Name, rec.NodeCount(), rec.LinkCount())
				printDetail("id: %s", rec.ID)
				return nil
			})
		},
	}
}

func (c *CLI) storeLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load <name> <file>",
		Short: "Write a saved topology to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store storage.Store) error {
				rec, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				// Rebuild through the importer so a damaged record cannot
				// produce an inconsistent file.
				n, err := graph.ToNetwork(rec.Document, graph.ImportOptions{})
				if err != nil {
					return fmt.Errorf("saved topology %s: %w", rec.Name, err)
				}
				if err := c.saveNetwork(n, args[1]); err != nil {
					return err
				}
				printSuccess("Loaded %s", rec.Name)
				printFile(args[1])
				return nil
			})
		},
	}
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved topologies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store storage.Store) error {
				records, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(records) == 0 {
					printInfo("No saved topologies")
					return nil
				}
				t := newTable("Name", "Routers", "Links", "Updated")
				for _, r := range records {
					t.Row(r.Name,
						fmt.Sprint(r.NodeCount()),
						fmt.Sprint(r.LinkCount()),
						formatRelativeTime(r.UpdatedAt))
				}
				fmt.Fprintln(stdout, t.Render())
				return nil
			})
		},
	}
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved topology",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store storage.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

// formatRelativeTime renders t relative to now, falling back to a date for
// anything older than a week.
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
