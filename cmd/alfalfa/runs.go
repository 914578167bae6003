package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/alfalfa"
	"github.com/five82/alfalfa/internal/app"
	"github.com/five82/alfalfa/internal/logtail"
	"github.com/five82/alfalfa/internal/prefs"
)

func actionOpts(noWait bool, timeout time.Duration) []alfalfa.ActionOption {
	var opts []alfalfa.ActionOption
	if noWait {
		opts = append(opts, alfalfa.NoWait())
	}
	if timeout > 0 {
		opts = append(opts, alfalfa.WaitTimeout(timeout))
	}
	return opts
}

func newSubmitCmd(c *cli) *cobra.Command {
	var (
		noWait  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "submit PATH...",
		Short: "Upload models and create a run for each",
		Long: `Upload each model (a zip file, or a directory that is zipped first),
create a run for it and wait until the run is ready. Run ids are printed one
per line in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := c.client.SubmitMany(cmd.Context(), args, actionOpts(noWait, timeout)...)
			if err != nil {
				return err
			}
			c.updatePrefs(func(p *prefs.Prefs) {
				ids := make([]string, len(runs))
				for i, r := range runs {
					ids[i] = string(r)
				}
				p.RememberRuns(ids...)
			})
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "return once the run is created")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "how long to wait for ready (default from config)")
	return cmd
}

func newStartCmd(c *cli) *cobra.Command {
	var (
		start, end    string
		timescale     float64
		externalClock bool
		realtime      bool
		noWait        bool
		timeout       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "start RUN...",
		Short: "Start runs and wait until they are running",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := alfalfa.StartParams{
				Timescale:     timescale,
				ExternalClock: externalClock,
				Realtime:      realtime,
			}
			var err error
			if params.Start, err = parseSimTime(start); err != nil {
				return err
			}
			if params.End, err = parseSimTime(end); err != nil {
				return err
			}
			return c.client.StartMany(cmd.Context(), runIDs(args), params, actionOpts(noWait, timeout)...)
		},
	}
	f := cmd.Flags()
	f.StringVar(&start, "start", "", "simulation start time, "+alfalfa.TimeLayout)
	f.StringVar(&end, "end", "", "simulation end time, "+alfalfa.TimeLayout)
	f.Float64Var(&timescale, "timescale", alfalfa.DefaultTimescale, "simulated seconds per wall-clock second")
	f.BoolVar(&externalClock, "external-clock", false, "only advance when told to")
	f.BoolVar(&realtime, "realtime", false, "run at wall-clock speed")
	f.BoolVar(&noWait, "no-wait", false, "return once the start is accepted")
	f.DurationVar(&timeout, "timeout", 0, "how long to wait for running (default from config)")
	return cmd
}

func newStopCmd(c *cli) *cobra.Command {
	var (
		noWait  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "stop RUN...",
		Short: "Stop runs and wait until they are complete",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.client.StopMany(cmd.Context(), runIDs(args), actionOpts(noWait, timeout)...)
		},
	}
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "return once the stop is accepted")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "how long to wait for complete (default from config)")
	return cmd
}

func newAdvanceCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "advance RUN...",
		Short: "Advance externally clocked runs by one step",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.client.AdvanceMany(cmd.Context(), runIDs(args))
		},
	}
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status RUN...",
		Short: "Show the status of runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := runIDs(args)
			if len(ids) == 1 {
				status, err := c.client.Status(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), status)
				return nil
			}

			results := c.client.StatusAll(cmd.Context(), ids)
			t := newTable(cmd.OutOrStdout(), "RUN", "STATUS")
			var failed int
			for i, r := range results {
				if r.Err != nil {
					failed++
					t.AppendRow([]any{ids[i], colorStatus(alfalfa.StatusError) + " " + r.Err.Error()})
					continue
				}
				t.AppendRow([]any{ids[i], colorStatus(r.Value)})
			}
			t.Render()
			if failed > 0 {
				return fmt.Errorf("%d of %d runs could not be read", failed, len(ids))
			}
			return nil
		},
	}
}

func newWaitCmd(c *cli) *cobra.Command {
	var (
		status  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "wait RUN...",
		Short: "Block until runs reach a status",
		Long: `Poll each run until it reports the requested status. A run that
enters the error state fails the wait and its error log is printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []alfalfa.ActionOption
			if timeout > 0 {
				opts = append(opts, alfalfa.WaitTimeout(timeout))
			}
			return c.client.WaitMany(cmd.Context(), runIDs(args), status, opts...)
		},
	}
	cmd.Flags().StringVar(&status, "status", alfalfa.StatusRunning, "status to wait for")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "how long to wait (default from config)")
	return cmd
}

func newTimeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "time RUN...",
		Short: "Show the current simulation time of runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := runIDs(args)
			times, err := c.client.SimTimeMany(cmd.Context(), ids)
			if err != nil {
				return err
			}
			if len(ids) == 1 {
				fmt.Fprintln(cmd.OutOrStdout(), times[0].Format(alfalfa.TimeLayout))
				return nil
			}
			t := newTable(cmd.OutOrStdout(), "RUN", "SIM TIME")
			for i, ts := range times {
				t.AppendRow([]any{ids[i], ts.Format(alfalfa.TimeLayout)})
			}
			t.Render()
			return nil
		},
	}
}

func newErrorLogCmd(c *cli) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "errorlog RUN",
		Short: "Print the error log of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := c.client.ErrorLog(cmd.Context(), alfalfa.RunID(args[0]))
			if err != nil {
				return err
			}
			out := logtail.Tail(log, lines)
			if len(out) == 0 {
				printEmpty(cmd.OutOrStdout(), "log lines")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, "\n"))
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "only print the last N lines (0 prints all)")
	return cmd
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remove RUN...",
		Short: "Delete runs from the server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range runIDs(args) {
				if err := c.client.Remove(cmd.Context(), id); err != nil {
					return err
				}
				c.updatePrefs(func(p *prefs.Prefs) { p.ForgetRun(string(id)) })
			}
			return nil
		},
	}
}

func newRecentCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List runs recently submitted from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := prefs.Load(c.prefsPath)
			if err != nil {
				return err
			}
			if len(p.RecentRuns) == 0 {
				printEmpty(cmd.OutOrStdout(), "recent runs")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(p.RecentRuns, "\n"))
			return nil
		},
	}
}

func newWatchCmd(c *cli) *cobra.Command {
	var every time.Duration
	cmd := &cobra.Command{
		Use:   "watch [RUN...]",
		Short: "Open a live dashboard of runs",
		Long: `Open a terminal dashboard showing status and simulation time of the
given runs, or of the recently submitted runs when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _ := prefs.Load(c.prefsPath)
			if len(args) == 0 {
				args = p.RecentRuns
			}
			if !stdoutIsTerminal() {
				return fmt.Errorf("watch needs a terminal")
			}
			return app.Run(cmd.Context(), app.Options{
				Client:    c.client,
				Runs:      runIDs(args),
				Host:      c.cfg.Host,
				PollEvery: every,
				ThemeName: p.Theme,
				PrefsPath: c.prefsPath,
				Logger:    c.logger,
			})
		},
	}
	cmd.Flags().DurationVar(&every, "every", 0, "poll interval (default 2s)")
	return cmd
}
