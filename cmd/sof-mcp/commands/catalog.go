// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sofproj/sof-mcp/internal/sof/catalog"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and inspect pattern catalogs",
	}
	cmd.AddCommand(newCatalogValidateCmd())
	cmd.AddCommand(newCatalogListCmd(a))
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check catalog files against the catalog schema and compile their rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				c, err := catalog.LoadFile(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (version %s, %d rules, %d ports)\n", path, c.Version, len(c.Rules), len(c.Ports))
			}
			return nil
		},
	}
}

func newCatalogListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [FILE]",
		Short: "List the rules of a catalog file, or of the configured catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog(args)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tPHASE\tPRIORITY\tCONFIDENCE\tLABEL")
			for _, r := range c.Rules {
				phase := r.Phase
				if phase == "" {
					phase = catalog.PhasePoint
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%s\n", r.Name, r.Type, phase, r.Priority, r.BaseConfidence, r.Label)
			}
			return w.Flush()
		},
	}
}

// catalog loads the file named in args, else the configured catalog.
func (a *app) catalog(args []string) (*catalog.Catalog, error) {
	path := a.cfg.Extraction.CatalogPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
