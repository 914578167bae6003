package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/five82/alfalfa"
)

func newAliasCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage run aliases",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set ALIAS RUN",
			Short: "Point an alias at a run",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.client.SetAlias(cmd.Context(), args[0], alfalfa.RunID(args[1]))
			},
		},
		&cobra.Command{
			Use:   "get ALIAS",
			Short: "Print the run an alias points at",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				run, err := c.client.Alias(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), run)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List all aliases",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				aliases, err := c.client.Aliases(cmd.Context())
				if err != nil {
					return err
				}
				if len(aliases) == 0 {
					printEmpty(cmd.OutOrStdout(), "aliases")
					return nil
				}
				names := make([]string, 0, len(aliases))
				for n := range aliases {
					names = append(names, n)
				}
				slices.Sort(names)
				t := newTable(cmd.OutOrStdout(), "ALIAS", "RUN")
				for _, n := range names {
					t.AppendRow([]any{n, aliases[n]})
				}
				t.Render()
				return nil
			},
		},
	)
	return cmd
}
