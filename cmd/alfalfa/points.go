package main

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/five82/alfalfa"
)

func newPointsCmd(c *cli) *cobra.Command {
	var types []string
	cmd := &cobra.Command{
		Use:   "points RUN",
		Short: "List the points of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter []alfalfa.PointType
			for _, s := range types {
				pt, err := parsePointType(s)
				if err != nil {
					return err
				}
				filter = append(filter, pt)
			}
			pts, err := c.client.Points(cmd.Context(), alfalfa.RunID(args[0]), filter...)
			if err != nil {
				return err
			}
			if len(pts) == 0 {
				printEmpty(cmd.OutOrStdout(), "points")
				return nil
			}
			slices.SortFunc(pts, func(a, b alfalfa.Point) int {
				return cmp.Compare(a.Name, b.Name)
			})
			t := newTable(cmd.OutOrStdout(), "NAME", "TYPE", "ID")
			for _, pt := range pts {
				t.AppendRow([]any{pt.Name, pt.Type, pt.ID})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "only show points of these types (input, output, bidirectional)")
	return cmd
}

func newInputsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "inputs RUN",
		Short: "List the writable point names of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := c.client.Inputs(cmd.Context(), alfalfa.RunID(args[0]))
			if err != nil {
				return err
			}
			slices.Sort(names)
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newOutputsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "outputs RUN",
		Short: "Show the current output values of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.client.Outputs(cmd.Context(), alfalfa.RunID(args[0]))
			if err != nil {
				return err
			}
			if len(values) == 0 {
				printEmpty(cmd.OutOrStdout(), "outputs")
				return nil
			}
			names := make([]string, 0, len(values))
			for n := range values {
				names = append(names, n)
			}
			slices.Sort(names)
			t := newTable(cmd.OutOrStdout(), "NAME", "VALUE")
			for _, n := range names {
				t.AppendRow([]any{n, formatValue(values[n])})
			}
			t.Render()
			return nil
		},
	}
}

func newSetCmd(c *cli) *cobra.Command {
	var runs []string
	cmd := &cobra.Command{
		Use:   "set RUN NAME=VALUE...",
		Short: "Write input points of a run",
		Long: `Write input points by name. A value of null releases the input back
to the model. Every name is checked before anything is written.

Use --run more than once to write the same inputs to several runs; RUN is
then omitted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(runs) == 0 {
				if len(args) < 2 {
					return fmt.Errorf("set needs a run and at least one name=value")
				}
				runs, args = args[:1], args[1:]
			}
			inputs, err := parseAssignments(args)
			if err != nil {
				return err
			}
			return c.client.SetInputsMany(cmd.Context(), runIDs(runs), inputs)
		},
	}
	cmd.Flags().StringArrayVar(&runs, "run", nil, "run to write to (repeatable)")
	return cmd
}
