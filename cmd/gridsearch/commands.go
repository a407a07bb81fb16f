package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pdrpinto/gridsearch"
	"github.com/pdrpinto/gridsearch/internal/config"
	"github.com/pdrpinto/gridsearch/internal/telemetry"
)

// mapFlags select and shape the grid. Explicit flags override the map file.
type mapFlags struct {
	path      string
	width     int
	height    int
	obstacles int
	seed      int64
	priority  string
}

type runFlags struct {
	strategy    string
	start       string
	goal        string
	limit       int
	jsonOutput  bool
	verbose     bool
	exporter    string
	metricsFile string
}

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gridsearch",
		Short: "Search paths for a turning agent on a grid",
		Long: `gridsearch explores the states (cell, facing) of an agent that can move
forward or turn a quarter in place, using one of several search strategies.

Subcommands:
  run         - Search a path between two states
  strategies  - List available strategies
  states      - Count valid states of a map`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCommand())
	root.AddCommand(newStrategiesCommand())
	root.AddCommand(newStatesCommand())
	return root
}

func addMapFlags(cmd *cobra.Command, mf *mapFlags) {
	cmd.Flags().StringVar(&mf.path, "map", "",
		"YAML map file (width, height, obstacles, random, costs, priority)")
	cmd.Flags().IntVar(&mf.width, "width", 30,
		"Grid width in cells")
	cmd.Flags().IntVar(&mf.height, "height", 30,
		"Grid height in cells")
	cmd.Flags().IntVar(&mf.obstacles, "obstacles", 100,
		"Number of random obstacles")
	cmd.Flags().Int64Var(&mf.seed, "seed", 1,
		"Seed for random obstacles")
	cmd.Flags().StringVar(&mf.priority, "priority", "",
		"Expansion priority, e.g. north,east,south,west")
}

func newRunCommand() *cobra.Command {
	mf := &mapFlags{}
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search a path between two states",
		Long: `Search a path from --start to --goal. States are written x,y,facing with
facing one of north, east, south, west (or n, e, s, w).

Without --map the grid is width x height with randomly placed obstacles;
start and goal cells are never blocked.

Examples:
  gridsearch run --strategy astar --start 2,5,north --goal 28,28,north
  gridsearch run --strategy dls --limit 20 --map map.yaml
  gridsearch run --strategy bidirectional --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, mf, rf)
		},
	}

	addMapFlags(cmd, mf)
	cmd.Flags().StringVar(&rf.strategy, "strategy", "astar",
		"Search strategy (see 'gridsearch strategies')")
	cmd.Flags().StringVar(&rf.start, "start", "2,5,north",
		"Start state as x,y,facing")
	cmd.Flags().StringVar(&rf.goal, "goal", "28,28,north",
		"Goal state as x,y,facing")
	cmd.Flags().IntVar(&rf.limit, "limit", 10,
		"Cost limit for dls, maximum limit for ids")
	cmd.Flags().BoolVar(&rf.jsonOutput, "json", false,
		"Output as JSON for scripting")
	cmd.Flags().BoolVarP(&rf.verbose, "verbose", "v", false,
		"Log debug records to stderr")
	cmd.Flags().StringVar(&rf.exporter, "telemetry", telemetry.ExporterNone,
		"Telemetry exporter: none, stdout, prometheus")
	cmd.Flags().StringVar(&rf.metricsFile, "metrics-file", "",
		"Prometheus textfile written when --telemetry=prometheus")
	return cmd
}

func newStrategiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List available strategies",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, s := range gridsearch.Strategies() {
				note := ""
				if s.UsesLimit() {
					note = "  (uses --limit)"
				}
				fmt.Fprintf(out, "%-14s %s%s\n", s, s.Name(), note)
			}
		},
	}
}

func newStatesCommand() *cobra.Command {
	mf := &mapFlags{}
	cmd := &cobra.Command{
		Use:   "states",
		Short: "Count valid states of a map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadMap(cmd, mf)
			if err != nil {
				return err
			}
			grid, err := cfg.Build()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "grid %dx%d, %d obstacles, %d valid states\n",
				grid.Width(), grid.Height(), len(grid.Obstacles()), grid.StateCount())
			return nil
		},
	}
	addMapFlags(cmd, mf)
	return cmd
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func runSearch(cmd *cobra.Command, mf *mapFlags, rf *runFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := newLogger(cmd.ErrOrStderr(), rf.verbose)

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Exporter:    rf.exporter,
		Writer:      cmd.ErrOrStderr(),
		MetricsFile: rf.metricsFile,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	strategy, err := gridsearch.ParseStrategy(rf.strategy)
	if err != nil {
		return err
	}
	start, err := parseState(rf.start)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	goal, err := parseState(rf.goal)
	if err != nil {
		return fmt.Errorf("--goal: %w", err)
	}

	cfg, err := loadMap(cmd, mf)
	if err != nil {
		return err
	}
	grid, err := cfg.Build(start.Pos, goal.Pos)
	if err != nil {
		return err
	}
	if err := checkState(grid, "start", start); err != nil {
		return err
	}
	if err := checkState(grid, "goal", goal); err != nil {
		return err
	}

	logger.Debug("grid ready",
		slog.Int("width", grid.Width()),
		slog.Int("height", grid.Height()),
		slog.Int("obstacles", len(grid.Obstacles())),
		slog.Any("priority", grid.ExpansionPriority()),
	)

	engine := gridsearch.NewEngine(grid, gridsearch.WithLogger(logger))
	result, err := engine.Run(ctx, strategy, start, goal, gridsearch.WithLimit(rf.limit))
	if err != nil {
		return err
	}

	if rf.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	writeText(cmd.OutOrStdout(), result)
	return nil
}

// loadMap reads the map file (if any) and applies explicitly set flags. Without
// a map file the flag defaults describe the grid.
func loadMap(cmd *cobra.Command, mf *mapFlags) (config.MapConfig, error) {
	cfg, err := config.Load(mf.path)
	if err != nil {
		return cfg, err
	}

	// Flag defaults stand in for a map file but never beat an environment override.
	useFlag := func(name, env string) bool {
		if cmd.Flags().Changed(name) {
			return true
		}
		return mf.path == "" && (env == "" || os.Getenv(env) == "")
	}
	if useFlag("width", "") {
		cfg.Width = mf.width
	}
	if useFlag("height", "") {
		cfg.Height = mf.height
	}
	useCount, useSeed := useFlag("obstacles", "GRIDSEARCH_OBSTACLES"), useFlag("seed", "GRIDSEARCH_SEED")
	if useCount || useSeed {
		if cfg.Random == nil {
			cfg.Random = &config.RandomConfig{}
		}
		if useCount {
			cfg.Random.Count = mf.obstacles
		}
		if useSeed {
			cfg.Random.Seed = mf.seed
		}
	}
	if mf.priority != "" {
		cfg.Priority = config.SplitList(mf.priority)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger writes text records to a terminal and JSON records otherwise, so
// redirected stderr stays machine readable.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// parseState parses "x,y,facing".
func parseState(s string) (gridsearch.State, error) {
	parts := config.SplitList(s)
	if len(parts) != 3 {
		return gridsearch.State{}, fmt.Errorf("%w: want x,y,facing, got %q", gridsearch.ErrInvalidState, s)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return gridsearch.State{}, fmt.Errorf("%w: x %q is not a number", gridsearch.ErrInvalidState, parts[0])
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return gridsearch.State{}, fmt.Errorf("%w: y %q is not a number", gridsearch.ErrInvalidState, parts[1])
	}
	facing, err := gridsearch.ParseOrientation(parts[2])
	if err != nil {
		return gridsearch.State{}, err
	}
	return gridsearch.State{Pos: gridsearch.Position{X: x, Y: y}, Facing: facing}, nil
}

func checkState(grid *gridsearch.Grid, name string, s gridsearch.State) error {
	p := s.Pos
	if p.X < 0 || p.X >= grid.Width() || p.Y < 0 || p.Y >= grid.Height() {
		return fmt.Errorf("%w: %s %s is outside the %dx%d grid",
			gridsearch.ErrInvalidState, name, p, grid.Width(), grid.Height())
	}
	if !grid.IsValid(p) {
		return fmt.Errorf("%w: %s %s is an obstacle", gridsearch.ErrInvalidState, name, p)
	}
	return nil
}

func formatPath(path gridsearch.Path) string {
	parts := make([]string, len(path))
	for i, s := range path {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}
