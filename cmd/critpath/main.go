package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ljanicek/critpath/internal/config"
	"github.com/ljanicek/critpath/internal/cpm"
	"github.com/ljanicek/critpath/internal/graph"
	"github.com/ljanicek/critpath/internal/history"
	"github.com/ljanicek/critpath/internal/project"
	"github.com/ljanicek/critpath/internal/reporter"
	"github.com/ljanicek/critpath/internal/ui"
)

var (
	flagConfig    string
	flagFormat    string
	flagDelimiter string
	flagDateMode  string
	flagAnchor    string
	flagJSON      bool
	flagOutput    string
	flagHistoryDB string
	flagNoColor   bool
	flagVerbose   bool
	flagLimit     int
)

var log zerolog.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:   "critpath",
		Short: "Compute project schedules with the Critical Path Method",
		Long: `Critpath reads a project's activities and precedence constraints from a
CSV or JSON file, computes earliest/latest timing with the Critical Path
Method (FS/SS/FF/SF relations with signed lags), and reports per-activity
float and the critical path.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if flagVerbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
				Level(level).With().Timestamp().Logger()
			if flagNoColor {
				ui.Disable()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: critpath.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "Input format: csv or json (default: by file extension)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "Constraint token delimiter: comma or semicolon")
	rootCmd.PersistentFlags().StringVar(&flagDateMode, "date-mode", "", "Calendar date source: computed or supplied")
	rootCmd.PersistentFlags().StringVar(&flagHistoryDB, "history-db", "", "SQLite run history database path")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Debug logging")

	rootCmd.AddCommand(computeCmd())
	rootCmd.AddCommand(ganttCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadOptions merges the config file with command-line overrides.
func loadOptions(cmd *cobra.Command) (cpm.Options, *config.Config, error) {
	cfg := config.Default()
	path := flagConfig
	if path == "" {
		if _, err := os.Stat("critpath.yaml"); err == nil {
			path = "critpath.yaml"
		}
	}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cpm.Options{}, nil, fmt.Errorf("load config: %w", err)
		}
		log.Debug().Str("path", path).Msg("config loaded")
	}

	if cmd.Flags().Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if cmd.Flags().Changed("date-mode") {
		cfg.DateMode = flagDateMode
	}
	if flagHistoryDB == "" {
		flagHistoryDB = cfg.HistoryDB
	}
	if cfg.NoColor {
		ui.Disable()
	}

	opts, err := cfg.Options()
	if err != nil {
		return cpm.Options{}, nil, err
	}
	return opts, cfg, nil
}

// loadRecords reads the input file, choosing the loader by --format or the
// file extension.
func loadRecords(path string) ([]project.Record, error) {
	format := flagFormat
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			format = "json"
		default:
			format = "csv"
		}
	}

	switch format {
	case "csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return project.LoadCSV(f)
	case "json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return project.LoadJSON(data)
	default:
		return nil, fmt.Errorf("unknown format %q (want csv or json)", format)
	}
}

// analyze is the shared pipeline for compute and gantt: load, build,
// validate, run both passes, anchor calendar dates.
func analyze(cmd *cobra.Command, path string) (*cpm.Result, []project.Record, error) {
	opts, _, err := loadOptions(cmd)
	if err != nil {
		return nil, nil, err
	}

	records, err := loadRecords(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}

	g, skipped, err := project.BuildGraph(records, opts)
	if err != nil {
		return nil, nil, describeGraphErr(err)
	}
	if skipped > 0 {
		log.Warn().Int("tokens", skipped).Msg("skipped malformed constraint tokens")
	}

	result, err := cpm.Analyze(g)
	if err != nil {
		return nil, nil, err
	}

	if flagAnchor != "" {
		epoch, err := project.ParseDate(flagAnchor)
		if err != nil {
			return nil, nil, fmt.Errorf("parse --anchor: %w", err)
		}
		result.Anchor(epoch)
	}
	if opts.DateMode == cpm.DateSupplied {
		project.ApplySuppliedDates(result, records)
	}

	return result, records, nil
}

// describeGraphErr keeps the typed construction errors readable at the CLI
// boundary without losing them for errors.As callers.
func describeGraphErr(err error) error {
	var cycle *graph.CycleError
	if errors.As(err, &cycle) {
		return fmt.Errorf("schedule is not acyclic: %s", strings.Join(cycle.Nodes, " -> "))
	}
	return err
}

func computeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute <schedule-file>",
		Short: "Run the full CPM analysis and print the timing table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, _, err := analyze(cmd, args[0])
			if err != nil {
				return err
			}

			if flagHistoryDB != "" {
				if err := recordRun(args[0], result); err != nil {
					log.Warn().Err(err).Msg("run history not recorded")
				}
			}

			rep := reporter.New(result)
			if flagJSON || flagOutput != "" {
				data, err := rep.JSON()
				if err != nil {
					return err
				}
				if flagOutput != "" {
					return os.WriteFile(flagOutput, data, 0644)
				}
				fmt.Println(string(data))
				return nil
			}

			rep.PrintTable(os.Stdout)
			rep.PrintSummary(os.Stdout)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagAnchor, "anchor", "", "Project start date (day-first, e.g. 01/09/2026) for calendar columns")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	cmd.Flags().StringVar(&flagOutput, "output", "", "Write JSON result to file")
	return cmd
}

func ganttCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gantt <schedule-file>",
		Short: "Render the schedule as an ASCII Gantt chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, _, err := analyze(cmd, args[0])
			if err != nil {
				return err
			}
			rep := reporter.New(result)
			rep.PrintGantt(os.Stdout)
			rep.PrintSummary(os.Stdout)
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schedule-file>",
		Short: "Check the schedule's structure without computing timing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := loadOptions(cmd)
			if err != nil {
				return err
			}
			records, err := loadRecords(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			g, skipped, err := project.BuildGraph(records, opts)
			if err != nil {
				return describeGraphErr(err)
			}
			fmt.Printf("%s %d activities, acyclic\n", ui.BoldGreen("✓"), g.Count())
			if skipped > 0 {
				fmt.Printf("%s %d malformed constraint tokens skipped\n", ui.Yellow("!"), skipped)
			}
			return nil
		},
	}
}

func recordRun(source string, result *cpm.Result) error {
	store, err := history.Open(flagHistoryDB, log)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return store.Record(ctx, history.Entry{
		Source:       source,
		Activities:   len(result.Rows),
		Duration:     result.ProjectDuration,
		CriticalPath: result.CriticalPath,
	})
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously recorded analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := loadOptions(cmd); err != nil {
				return err
			}
			if flagHistoryDB == "" {
				return fmt.Errorf("no history database configured (--history-db or history_db in critpath.yaml)")
			}

			store, err := history.Open(flagHistoryDB, log)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			entries, err := store.List(ctx, flagLimit)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println(ui.Dim("no runs recorded"))
				return nil
			}
			for _, e := range entries {
				fmt.Printf("  %s  %-24s %3d activities  %4d days  %s\n",
					ui.Dim(e.ComputedAt.Format("2006-01-02 15:04")),
					ui.BoldMagenta(e.Source),
					e.Activities, e.Duration,
					ui.BoldYellow(strings.Join(e.CriticalPath, " → ")))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flagLimit, "limit", 20, "Max runs to list (0 = all)")
	return cmd
}
