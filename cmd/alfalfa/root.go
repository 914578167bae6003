package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/alfalfa"
	"github.com/five82/alfalfa/internal/config"
	"github.com/five82/alfalfa/internal/prefs"
)

// cli holds global flags and the state built from them before a
// subcommand runs.
type cli struct {
	configPath string
	prefsPath  string
	host       string
	apiVersion string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
	client *alfalfa.Client

	// newClient is swapped out by tests.
	newClient func(host string, opts ...alfalfa.Option) (*alfalfa.Client, error)
}

func newRootCmd() *cobra.Command {
	c := &cli{newClient: alfalfa.New}

	root := &cobra.Command{
		Use:   "alfalfa",
		Short: "Drive building simulations on an Alfalfa server",
		Long: `alfalfa uploads building models to an Alfalfa server, runs them
and reads or writes their points while they run.

Runs may be named by id or by alias anywhere a RUN argument is taken.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ~/.config/alfalfa/config.toml)")
	flags.StringVar(&c.prefsPath, "prefs", "", "preferences file (default ~/.config/alfalfa/prefs.toml)")
	flags.StringVar(&c.host, "host", "", "server URL (overrides config and "+config.EnvHost+")")
	flags.StringVar(&c.apiVersion, "api-version", "", "server API dialect, v2 or v1")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log requests and status changes to stderr")

	root.AddCommand(
		newSubmitCmd(c),
		newStartCmd(c),
		newStopCmd(c),
		newAdvanceCmd(c),
		newStatusCmd(c),
		newWaitCmd(c),
		newTimeCmd(c),
		newErrorLogCmd(c),
		newRemoveCmd(c),
		newPointsCmd(c),
		newInputsCmd(c),
		newOutputsCmd(c),
		newSetCmd(c),
		newAliasCmd(c),
		newRecentCmd(c),
		newWatchCmd(c),
	)
	return root
}

// setup loads the configuration and builds the logger and client.
func (c *cli) setup(stderr io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.host != "" {
		cfg.Host = c.host
	}
	if c.apiVersion != "" {
		cfg.APIVersion = c.apiVersion
	}
	c.cfg = cfg

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := []alfalfa.Option{
		alfalfa.WithAPIVersion(cfg.APIVersion),
		alfalfa.WithLogger(c.logger),
		alfalfa.WithWorkers(cfg.Workers),
		alfalfa.WithWaitTimeout(cfg.WaitTimeout),
		alfalfa.WithPollInterval(cfg.PollInterval),
		alfalfa.WithRequestTimeout(cfg.RequestTimeout),
	}
	if cfg.Retries > 1 {
		opts = append(opts, alfalfa.WithRetry(cfg.Retries, 0))
	}
	client, err := c.newClient(cfg.Host, opts...)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}

// updatePrefs applies fn to the stored preferences. Failures are logged, not
// returned. A file that cannot be read is left as it is.
func (c *cli) updatePrefs(fn func(*prefs.Prefs)) {
	p, err := prefs.Load(c.prefsPath)
	if err != nil {
		c.logger.Warn("could not load preferences", slog.String("error", err.Error()))
		return
	}
	fn(&p)
	if err := prefs.Save(c.prefsPath, p); err != nil {
		c.logger.Warn("could not save preferences", slog.String("error", err.Error()))
	}
}

func runIDs(args []string) []alfalfa.RunID {
	ids := make([]alfalfa.RunID, len(args))
	for i, a := range args {
		ids[i] = alfalfa.RunID(a)
	}
	return ids
}

func printRuns(w io.Writer, runs []alfalfa.RunID) {
	for _, r := range runs {
		fmt.Fprintln(w, r)
	}
}

func stdoutIsTerminal() bool {
	info, err := os.Stdout.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
