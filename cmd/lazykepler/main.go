package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/fishsicles/lazykepler"
	"github.com/fishsicles/lazykepler/server"
)

var (
	configFile string
	planets    []string
	debug      bool
	timeArg    string

	// Set by the persistent pre-run of every command.
	logger kitlog.Logger
	sess   *session
)

var rootCmd = &cobra.Command{
	Use:   "lazykepler",
	Short: "Where are the planets, roughly?",
	Long: `lazykepler places bodies on fixed Keplerian orbits around a single focus and answers
position, distance, light-delay and acceleration queries at any time.

Without --config, the planets of the solar system (and Pluto) are loaded with J2000
elements in AU and days. Without a subcommand, an interactive prompt is started.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.repl(cmd.InOrStdin())
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive prompt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.repl(cmd.InOrStdin())
	},
}

var whereCmd = &cobra.Command{
	Use:   "where BODY",
	Short: "Print the position of a body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.where(args[0])
	},
}

var distanceCmd = &cobra.Command{
	Use:     "distance A [B]",
	Aliases: []string{"d", "dist"},
	Short:   "Print the distance between two bodies, or from a body to the origin",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.distance(args[0], optional(args, 1))
	},
}

var ctimeCmd = &cobra.Command{
	Use:   "ctime A [B]",
	Short: "Print the lightspeed delay between two bodies, or from a body to the origin",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.ctime(args[0], optional(args, 1))
	},
}

var (
	linkCSV     bool
	linkSamples int
	linkStep    float64
)

var linkCmd = &cobra.Command{
	Use:   "link A [B]",
	Short: "Print the range and range rate between two bodies, or from a body to the origin",
	Long: `Print the range and range rate between two bodies, or from a body to the origin.
With --csv, prints t,range,rangeRate records for --samples times, --step apart,
starting at --time.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if linkCSV {
			return sess.linkCSV(args[0], optional(args, 1), linkSamples, linkStep)
		}
		return sess.link(args[0], optional(args, 1))
	},
}

var accelCmd = &cobra.Command{
	Use:   "accel BODY",
	Short: "Print the gravitational acceleration felt by a body, in g",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.accel(args[0])
	},
}

var bodiesCmd = &cobra.Command{
	Use:   "bodies",
	Short: "List the bodies of the system",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess.bodies()
		return nil
	},
}

var (
	exportDir       string
	exportName      string
	exportSamples   int
	exportFormat    string
	exportTimestamp bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one period of every orbit",
	Long: `Export one period of every orbit, either as a Cosmographia catalog with one
InterpolatedStates file per body (--format cosmographia), or as one t,x,y,z CSV file
per body (--format csv).`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the queries over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(serveAddr, sess.catalog, sess.clock, logger).Run(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "system file (YAML, TOML or JSON); the solar system when empty")
	rootCmd.PersistentFlags().StringSliceVarP(&planets, "planets", "p", nil, "built-in bodies to load, e.g. earth,mars; all of them when empty")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log the loading of the system")
	rootCmd.PersistentFlags().StringVarP(&timeArg, "time", "t", "0", "query time, in the time unit or as a date")

	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "output directory")
	exportCmd.Flags().StringVar(&exportName, "name", "lazykepler", "catalog name, also prefixes every file")
	exportCmd.Flags().IntVar(&exportSamples, "samples", 360, "samples per period")
	exportCmd.Flags().StringVar(&exportFormat, "format", "cosmographia", "cosmographia or csv")
	exportCmd.Flags().BoolVar(&exportTimestamp, "timestamp", false, "add the current time to the file names")

	linkCmd.Flags().BoolVar(&linkCSV, "csv", false, "print CSV records")
	linkCmd.Flags().IntVar(&linkSamples, "samples", 1, "number of CSV records")
	linkCmd.Flags().Float64Var(&linkStep, "step", 1, "time between CSV records, in the time unit")

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")

	rootCmd.AddCommand(replCmd, whereCmd, distanceCmd, ctimeCmd, linkCmd, accelCmd, bodiesCmd, exportCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	logger = lazykepler.NewLogger(os.Stderr, debug)
	if configFile != "" && len(planets) > 0 {
		return errors.New("--planets selects built-in bodies and cannot be used with --config")
	}
	conf := lazykepler.DefaultConfig()
	var err error
	switch {
	case configFile != "":
		conf, err = lazykepler.LoadConfig(configFile, logger)
	case len(planets) > 0:
		conf, err = lazykepler.SolarSystemConfig(planets)
	}
	if err != nil {
		return err
	}
	clock, err := conf.Clock()
	if err != nil {
		return err
	}
	catalog, err := conf.Catalog(logger)
	if catalog == nil {
		return err
	}
	if err != nil {
		level.Warn(logger).Log("message", "some bodies were not loaded", "loaded", catalog.Len(), "requested", len(conf.Orbits))
	}
	if catalog.Len() == 0 {
		return fmt.Errorf("no body could be loaded: %w", err)
	}
	sess = newSession(catalog, clock, cmd.OutOrStdout())
	return sess.setTime(timeArg)
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return err
	}
	switch exportFormat {
	case "cosmographia":
		path, err := lazykepler.ExportCosmographia(sess.catalog, sess.clock, lazykepler.ExportConfig{
			Dir:       exportDir,
			Name:      exportName,
			Samples:   exportSamples,
			Timestamp: exportTimestamp,
		}, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(sess.out, "saved catalog to %s\n", path)
	case "csv":
		for _, name := range sess.catalog.Names() {
			traj, err := sess.catalog.Trajectory(name, exportSamples)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			path := filepath.Join(exportDir, fmt.Sprintf("%s-%s.csv", exportName, name))
			if err := writeCSV(path, traj); err != nil {
				return err
			}
			fmt.Fprintf(sess.out, "saved %s\n", path)
		}
	default:
		return fmt.Errorf("unknown export format `%s`", exportFormat)
	}
	return nil
}

func writeCSV(path string, traj []lazykepler.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := lazykepler.WriteTrajectoryCSV(f, traj); err != nil {
		return err
	}
	return f.Close()
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
