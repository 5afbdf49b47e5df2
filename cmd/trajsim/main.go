package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/trajsim/internal/config"
	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/export"
	"github.com/san-kum/trajsim/internal/integrators"
	"github.com/san-kum/trajsim/internal/logging"
	"github.com/san-kum/trajsim/internal/metrics"
	"github.com/san-kum/trajsim/internal/optim"
	"github.com/san-kum/trajsim/internal/physics"
	"github.com/san-kum/trajsim/internal/sim"
	"github.com/san-kum/trajsim/internal/storage"
	"github.com/san-kum/trajsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logFile  string

	configFile string
	preset     string

	elevation    float64
	wind         float64
	caliber      float64
	bc           float64
	dt           float64
	steps        int
	stopAtGround bool
	noValidate   bool
	noSave       bool

	elevations string
	optimize   string
	minimize   bool
	plotXY     bool
	outFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "trajsim",
		Short:         "2D projectile trajectory stepper",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".trajsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, off)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addLaunchFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive launcher with a live trajectory view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addLaunchFlags(liveCmd)
	liveCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (logging is off otherwise)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one simulation per elevation in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addLaunchFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&elevations, "elevations", "15,30,45,60,75", "comma-separated elevations, or from:to:step")
	sweepCmd.Flags().StringVar(&optimize, "optimize", "", "report the elevation with the best value of this metric")
	sweepCmd.Flags().BoolVar(&minimize, "minimize", false, "with --optimize, pick the smallest value instead of the largest")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&plotXY, "xy", false, "plot altitude against downrange distance")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run states as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run's trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addLaunchFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&elevation, "elevation", def.Elevation, "elevation in degrees")
	f.Float64Var(&wind, "wind", def.Env.Wind, "horizontal wind acceleration (m/s²)")
	f.Float64Var(&caliber, "caliber", def.Env.Caliber, "caliber (m)")
	f.Float64Var(&bc, "bc", def.Env.BallisticCoefficient, "ballistic coefficient")
	f.Float64Var(&dt, "dt", def.Dt, "timestep (s)")
	f.IntVar(&steps, "steps", def.Steps, "number of steps")
	f.BoolVar(&stopAtGround, "stop-at-ground", def.StopAtGround, "stop once the projectile drops below y=0")
	f.BoolVar(&noValidate, "no-validate", false, "keep stepping after the state turns non-finite")
}

// loadConfig layers defaults, a preset or config file, then any flags the
// user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("elevation") {
		cfg.Elevation = elevation
	}
	if f.Changed("wind") {
		cfg.Env.Wind = wind
	}
	if f.Changed("caliber") {
		cfg.Env.Caliber = caliber
	}
	if f.Changed("bc") {
		cfg.Env.BallisticCoefficient = bc
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("stop-at-ground") {
		cfg.StopAtGround = stopAtGround
	}
	if f.Changed("no-validate") {
		cfg.ValidateState = !noValidate
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSimulator(log *zap.Logger) *sim.Simulator {
	s := sim.New(integrators.NewSemiImplicitEuler(), log)
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}
	return s
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	result, err := newSimulator(log).Run(cmd.Context(), physics.Launch(cfg.Elevation), cfg.Environment(), cfg.SimConfig())
	if err != nil {
		return err
	}

	final := result.Final()
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("final: pos=(%g, %g) vel=(%g, %g)\n", final.Position.X, final.Position.Y, final.Velocity.X, final.Velocity.Y)
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %-14s %g\n", name, result.Metrics[name])
	}
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	name := cfg.Name
	if name == "" {
		name = "run"
	}
	runID, err := st.Save(storage.RunSpec{
		Name:      name,
		Elevation: cfg.Elevation,
		Env:       cfg.Environment(),
		Dt:        cfg.Dt,
		Steps:     cfg.Steps,
	}, result)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the view, so logs only go to a file.
	log := zap.NewNop()
	if logFile != "" {
		if log, err = logging.New(cfg.LogLevel, logFile); err != nil {
			return err
		}
		defer log.Sync()
	}

	f := cfg.Form()
	session := sim.NewSession(integrators.NewSemiImplicitEuler(), f.Environment(), f.Elevation(), cfg.Dt, log)
	model := viz.NewModel(session, f, nil, log)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	model.Pause()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	elevs, err := parseElevations(elevations)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	newSim := func() *sim.Simulator { return newSimulator(log) }

	var (
		results []sim.SweepResult
		best    optim.Best
	)
	if optimize != "" {
		goal := optim.Maximize
		if minimize {
			goal = optim.Minimize
		}
		best, results, err = optim.GridSearch(cmd.Context(), elevs, cfg.Environment(), cfg.SimConfig(), newSim, optimize, goal)
	} else {
		results, err = sim.Sweep(cmd.Context(), elevs, cfg.Environment(), cfg.SimConfig(), newSim)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ELEV\tSTEPS\tAPEX\tRANGE\tFLIGHT\tMAX SPEED\tVALID")
	for _, r := range results {
		m := r.Result.Metrics
		fmt.Fprintf(w, "%.1f\t%d\t%.2f\t%.2f\t%.2fs\t%.2f\t%.0f%%\n",
			r.Elevation,
			r.Result.StepsTaken,
			m["apex"],
			m["range"],
			m["flight_time"],
			m["max_speed"],
			m["valid_fraction"]*100,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if optimize != "" {
		fmt.Printf("\nbest %s: %g at %.2f°\n", optimize, best.Value, best.Elevation)
	}
	return nil
}

// parseElevations accepts a list ("15,30,45") or a grid ("10:80:5").
func parseElevations(s string) ([]float64, error) {
	if parts := strings.Split(s, ":"); len(parts) == 3 {
		var grid [3]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("elevation grid %q: %w", s, err)
			}
			grid[i] = v
		}
		return optim.ElevationGrid(grid[0], grid[1], grid[2])
	}

	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("elevation %q: %w", part, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no elevations given")
	}
	return out, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tELEV\tSTEPS\tDT\tRANGE\tFINGERPRINT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%d/%d\t%.4fs\t%s\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Spec.Elevation,
			run.StepsTaken,
			run.Spec.Steps,
			run.Spec.Dt,
			metricOrDash(run.Metrics, "range"),
			run.Fingerprint,
		)
	}

	return w.Flush()
}

func metricOrDash(m map[string]float64, name string) string {
	v, ok := m[name]
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	// asciigraph cannot scale through NaN or Inf, so plot the finite prefix.
	finite := states[:0:0]
	for _, s := range states {
		if !s.IsValid() {
			break
		}
		finite = append(finite, s)
	}
	if len(finite) < 2 {
		return fmt.Errorf("run %s has fewer than two finite samples to plot", meta.ID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("elevation: %.1f°\n", meta.Spec.Elevation)
	fmt.Printf("samples: %d (%d finite)\n\n", len(states), len(finite))

	if plotXY {
		fmt.Println(asciigraph.Plot(altitudeByRange(finite, 80),
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("altitude vs downrange (%.4g m to %.4g m)", finite[0].Position.X, finite[len(finite)-1].Position.X)),
		))
		return nil
	}

	x := make([]float64, len(finite))
	y := make([]float64, len(finite))
	for i, s := range finite {
		x[i], y[i] = s.Position.X, s.Position.Y
	}
	fmt.Println(asciigraph.Plot(y, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("altitude (m) vs step")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(x, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("downrange (m) vs step")))
	return nil
}

// altitudeByRange resamples y onto n evenly spaced x columns, taking the
// nearest preceding sample in step order.
func altitudeByRange(states []dynamo.Projectile, n int) []float64 {
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, s := range states {
		minX = math.Min(minX, s.Position.X)
		maxX = math.Max(maxX, s.Position.X)
	}
	out := make([]float64, n)
	if maxX == minX {
		for i := range out {
			out[i] = states[len(states)-1].Position.Y
		}
		return out
	}
	width := (maxX - minX) / float64(n-1)
	filled := make([]bool, n)
	for _, s := range states {
		col := int(math.Round((s.Position.X - minX) / width))
		out[col], filled[col] = s.Position.Y, true
	}
	for i := 1; i < n; i++ {
		if !filled[i] {
			out[i] = out[i-1]
		}
	}
	return out
}

func openOutput() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	out, closeOut, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(out, states, times); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	out, closeOut, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(out, storage.NewExportData(meta, states, times)); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	states, _, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	out, closeOut, err := openOutput()
	if err != nil {
		return err
	}
	if err := export.TrajectorySVG(out, states, export.DefaultSVGOptions()); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tELEV\tWIND\tCALIBER\tBC\tDT\tSTEPS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.1f\t%g\t%g\t%g\t%g\t%d\n",
			name, p.Elevation, p.Env.Wind, p.Env.Caliber, p.Env.BallisticCoefficient, p.Dt, p.Steps)
	}
	return w.Flush()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
