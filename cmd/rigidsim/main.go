package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/viz"
)

var (
	dataDir     string
	verbose     bool
	theme       string
	configFile  string
	dt          float64
	duration    float64
	sampleEvery int
	noSave      bool
	jobs        int
	maxPlots    int
	recordPath  string
	column      string
	phase       bool
	svgPath     string
	plotWidth   int
	plotHeight  int
	sweepForce  int
	sweepFrom   float64
	sweepTo     float64
	sweepSteps  int
	trials      int
	perturb     float64
	seed        int64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rigidsim",
		Short:        "2d rigid body simulation lab",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(theme)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigidsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeNames()[0], "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "every", config.DefaultSampleEvery, "record every n-th step")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print results without saving the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results (latest run by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&maxPlots, "max", 5, "maximum number of charts")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [preset]",
		Short: "print a scene as yaml, a starting point for --config",
		Args:  cobra.MaximumNArgs(1),
		RunE:  dumpConfig,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "check a scene file",
		Args:  cobra.ExactArgs(1),
		RunE:  validateConfig,
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scene with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&recordPath, "record", "", "where the g key saves its GIF")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "run a scene at several step sizes in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&jobs, "jobs", 4, "parallel runs")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum and period of a run column",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "", "column to analyze (first moving body x by default)")
	analyzeCmd.Flags().BoolVar(&phase, "phase", false, "also draw the column against its velocity")

	trailsCmd := &cobra.Command{
		Use:   "trails [run_id]",
		Short: "draw the path of every body",
		Args:  cobra.MaximumNArgs(1),
		RunE:  drawTrails,
	}
	trailsCmd.Flags().StringVar(&svgPath, "svg", "", "write the trails to an svg file instead")
	trailsCmd.Flags().IntVar(&plotWidth, "width", 60, "canvas width in cells")
	trailsCmd.Flags().IntVar(&plotHeight, "height", 20, "canvas height in cells")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a scenario file in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "print results without saving the runs")
	scenarioCmd.Flags().IntVar(&jobs, "jobs", 4, "parallel runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a scene across a range of one force constant",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepForce, "force", 0, "index of the force to vary")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 1, "first constant")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 10, "last constant")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&jobs, "jobs", 4, "parallel runs")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "count how many randomly nudged runs stay bounded",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addSceneFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of runs")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 1, "largest velocity change per axis")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	monteCarloCmd.Flags().IntVar(&jobs, "jobs", 4, "parallel runs")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, presetsCmd, dumpCmd, validateCmd,
		liveCmd, benchCmd, analyzeCmd, trailsCmd, scenarioCmd, sweepCmd, monteCarloCmd)
	return rootCmd
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene file (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves the scene for a command: a preset by name, a file from
// --config, or the default scene. Flags the user set override the scene.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "" && len(args) > 0:
		return nil, fmt.Errorf("give either a preset or --config, not both")
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		if cfg.Name == "" {
			base := filepath.Base(configFile)
			cfg.Name = strings.TrimSuffix(base, filepath.Ext(base))
		}
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Lookup("every") != nil && flags.Changed("every") {
		cfg.SampleEvery = sampleEvery
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd.ErrOrStderr())
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	scene, drivers, err := cfg.Build()
	if err != nil {
		return err
	}
	defer scene.Close()

	simulator := sim.New(drivers...).WithLogger(log)
	for _, m := range metrics.ForConfig(cfg, scene) {
		simulator.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %s...\n", cfg.Name)
	start := time.Now()
	result, err := simulator.Run(ctx, scene, cfg.SimConfig())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintf(out, "completed in %v\n", elapsed.Round(time.Millisecond))
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Name, cfg.SimConfig(), cfg.BodyNames(), result)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "run id: %s\n", runID)
	}
	fmt.Fprintf(out, "steps: %d\n", result.StepsTaken)
	fmt.Fprintf(out, "energy drift: %.3e\n", result.EnergyDrift)
	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Fprintf(out, "  %s: %.6g\n", name, result.Metrics[name])
	}
	for _, e := range result.Errors {
		fmt.Fprintf(out, "error: %v\n", e)
	}
	return err
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tMODE\tTIME\tDURATION\tDT\tSTEPS\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%gs\t%d\t%.2e\n",
			run.ID,
			run.Preset,
			run.Mode,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

// resolveRun returns the run named in args, or the latest run.
func resolveRun(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
}

func loadRun(args []string) (*storage.RunMetadata, *storage.Table, error) {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	table, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, table, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args)
	if err != nil {
		return err
	}
	if len(table.Rows) < 2 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "preset: %s\n", meta.Preset)
	fmt.Fprintf(out, "samples: %d\n\n", len(table.Rows))

	type series struct{ column, caption string }
	plots := []series{{"energy", "total energy"}}
	for i, name := range meta.Bodies {
		if i >= table.BodyCount() {
			break
		}
		plots = append(plots,
			series{fmt.Sprintf("b%d_x", i), name + " x"},
			series{fmt.Sprintf("b%d_y", i), name + " y"},
		)
	}
	if len(plots) > maxPlots {
		plots = plots[:maxPlots]
	}

	for _, p := range plots {
		data, ok := table.Column(p.column)
		if !ok {
			continue
		}
		if lo, hi := extent(data); lo == hi {
			fmt.Fprintf(out, "%s: constant %g\n\n", p.caption, lo)
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}
	return nil
}

func extent(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo, hi = min(lo, x), max(hi, x)
	}
	return lo, hi
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRun(args)
	if err != nil {
		return err
	}
	return storage.ExportJSON(cmd.OutOrStdout(), meta, table)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, table, err := loadRun(args)
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteCSV(cmd.OutOrStdout(), table)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODE\tBODIES\tFORCES\tDT\tDURATION")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		kinds := make([]string, len(p.Forces))
		for i, f := range p.Forces {
			kinds[i] = f.Kind
		}
		forces := strings.Join(kinds, ",")
		if forces == "" {
			forces = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%g\t%gs\n", name, p.Mode, len(p.Bodies), forces, p.Dt, p.Duration)
	}
	return w.Flush()
}

func dumpConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		if cfg = config.GetPreset(args[0]); cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			for _, issue := range verr.Issues {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", issue)
			}
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d bodies, %d forces)\n", args[0], len(cfg.Bodies), len(cfg.Forces))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := viz.NewModel(cfg)
	if err != nil {
		return err
	}
	m = m.WithTheme(theme).WithLogger(newLogger(cmd.ErrOrStderr()))
	if recordPath != "" {
		m = m.WithRecordPath(recordPath)
	}
	return viz.Run(m)
}

// benchScene runs the scene at its own step size and at coarser and finer
// ones, reporting how energy drift and run time scale with dt.
func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	factors := []float64{4, 2, 1, 0.5, 0.25}
	cfgs := make([]sim.Config, len(factors))
	for i, f := range factors {
		c := cfg.SimConfig()
		c.Dt *= f
		c.SampleEvery = max(c.Steps()/100, 1)
		cfgs[i] = c
	}

	factory := func() (*physics.Scene, []sim.Driver, error) { return cfg.Build() }
	ens := sim.NewEnsemble(factory, jobs).WithLogger(newLogger(cmd.ErrOrStderr()))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %s\n\n", cfg.Name)
	start := time.Now()
	results, err := ens.Run(cmd.Context(), cfgs)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tENERGY DRIFT\tERRORS")
	total := 0
	for i, r := range results {
		total += r.StepsTaken
		fmt.Fprintf(w, "%g\t%d\t%.3e\t%d\n", cfgs[i].Dt, r.StepsTaken, r.EnergyDrift, len(r.Errors))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d steps in %v (%.0f steps/sec)\n", total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	return nil
}
