package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/advhover/internal/analysis"
	"github.com/san-kum/advhover/internal/automation"
	"github.com/san-kum/advhover/internal/config"
	"github.com/san-kum/advhover/internal/experiment"
	"github.com/san-kum/advhover/internal/logging"
	"github.com/san-kum/advhover/internal/optim"
	"github.com/san-kum/advhover/internal/sim"
	"github.com/san-kum/advhover/internal/storage"
	"github.com/san-kum/advhover/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir     string
	configFile  string
	preset      string
	seed        uint64
	episodes    int
	maxSteps    int
	workers     int
	policy      string
	integrator  string
	disturbance string
	normalize   bool
	initNoise   float64
	noSave      bool
	logLevel    string
	logFormat   string
	theme       string
	episode     int
	columns     string
	plotHeight  int
	plotWidth   int
	tuneParams  []string
	scales      []float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "advhover",
		Short:        "adversarial quadrotor hover simulator",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".advhover", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	runCmd := &cobra.Command{
		Use:   "run [env]",
		Short: "fly episodes and store the trajectories",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEpisodes,
	}
	addExperimentFlags(runCmd)
	runCmd.Flags().IntVar(&episodes, "episodes", config.DefaultEpisodes, "number of episodes")
	runCmd.Flags().IntVar(&workers, "workers", config.DefaultNumEnvs, "episodes run in parallel")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [env]",
		Short: "fly one episode with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addExperimentFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeNames()[0], "color theme")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot an episode of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&episode, "episode", 0, "episode index")
	plotCmd.Flags().StringVar(&columns, "columns", "z,roll,pitch", "comma separated columns to plot")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export an episode of a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0], episode)
		},
	}
	exportCmd.Flags().IntVar(&episode, "episode", 0, "episode index")

	presetsCmd := &cobra.Command{
		Use:   "presets [env]",
		Short: "list available presets for an environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			envID := config.DefaultEnv
			if len(args) > 0 {
				envID = args[0]
			}
			presets := config.ListPresets(envID)
			if len(presets) == 0 {
				fmt.Printf("no presets for env: %s\n", envID)
				return nil
			}
			fmt.Printf("presets for %s:\n", envID)
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	envsCmd := &cobra.Command{
		Use:   "envs",
		Short: "list environments, policies, integrators and disturbances",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := experiment.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ENVS\t%s\n", strings.Join(r.Envs, ", "))
			fmt.Fprintf(w, "POLICIES\t%s\n", strings.Join(r.Policies, ", "))
			fmt.Fprintf(w, "INTEGRATORS\t%s\n", strings.Join(r.Integrators, ", "))
			fmt.Fprintf(w, "DISTURBANCES\t%s\n", strings.Join(r.Disturbances, ", "))
			return w.Flush()
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "attitude statistics and dominant oscillation of an episode",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&episode, "episode", 0, "episode index")
	analyzeCmd.Flags().StringVar(&columns, "columns", "z,roll,pitch,p,q", "comma separated columns to analyze")

	tuneCmd := &cobra.Command{
		Use:   "tune [env]",
		Short: "grid search pid gains for the best mean return",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneGains,
	}
	addExperimentFlags(tuneCmd)
	tuneCmd.Flags().IntVar(&episodes, "episodes", 4, "episodes per grid point")
	tuneCmd.Flags().IntVar(&workers, "workers", config.DefaultNumEnvs, "episodes run in parallel")
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "gain grid as name=v1,v2,... (repeatable)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of experiments",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [env]",
		Short: "survival against a scaled disturbance bound",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addExperimentFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&episodes, "episodes", 8, "episodes per scale")
	sweepCmd.Flags().IntVar(&workers, "workers", config.DefaultNumEnvs, "episodes run in parallel")
	sweepCmd.Flags().Float64SliceVar(&scales, "scales", []float64{0.5, 1, 2, 4, 8}, "bound multipliers")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd, envsCmd, analyzeCmd, tuneCmd, scenarioCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addExperimentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "base random seed")
	cmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxEpisodeSteps, "control steps per episode")
	cmd.Flags().StringVar(&policy, "policy", "pid", "policy (hover, pid, random)")
	cmd.Flags().StringVar(&integrator, "integrator", "semi_implicit", "integrator")
	cmd.Flags().StringVar(&disturbance, "disturbance", "", "disturbance sampler (uniform, zero, constant)")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "policy acts in [-1, 1]")
	cmd.Flags().Float64Var(&initNoise, "init-noise", 0, "spawn perturbation half-width")
}

// resolveConfig starts from a preset, a config file or the defaults, then
// applies the flags the user set.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	envID := config.DefaultEnv
	if len(args) > 0 {
		envID = args[0]
	}

	var cfg *config.Config
	switch {
	case preset != "":
		p := config.GetPreset(envID, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(envID))
		}
		c := *p
		cfg = &c
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	default:
		cfg = config.DefaultConfig()
	}
	if len(args) > 0 {
		cfg.Env = envID
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("max-steps") {
		cfg.MaxEpisodeSteps = maxSteps
	}
	if flags.Changed("policy") {
		cfg.Policy = policy
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("disturbance") {
		cfg.Disturbance.Kind = disturbance
	}
	if flags.Changed("normalize") {
		cfg.NormalizeActions = normalize
	}
	if flags.Changed("init-noise") {
		cfg.InitNoise = initNoise
	}
	if flags.Changed("episodes") {
		cfg.Episodes = episodes
	}
	if flags.Changed("workers") {
		cfg.NumEnvs = workers
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, cfg.Validate()
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("flying %d episode(s) of %s with %s...\n", cfg.Episodes, cfg.Env, cfg.Policy)
	results, err := exp.Run(ctx, !noSave)
	if err != nil {
		return err
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(exp.Metadata(), results)
		if err != nil {
			return err
		}
		log.Info("run stored", zap.String("id", runID), zap.String("dir", dataDir))
		fmt.Printf("run id: %s\n", runID)
	}

	printSummary(results, cfg.MaxEpisodeSteps)
	return nil
}

func printSummary(results []*sim.Result, maxSteps int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tRETURN\tEND\tPOS RMS\tMAX TILT")
	returns := make([]float64, len(results))
	for i, r := range results {
		returns[i] = r.Return
		end := "running"
		switch {
		case r.Truncated:
			end = "time limit"
		case r.Done:
			end = string(r.Reason)
		}
		fmt.Fprintf(w, "%d\t%d\t%.3f\t%s\t%.4f\t%.1f\n",
			r.Seed, r.Steps, r.Return, end, r.Metrics["position_rms"], r.Metrics["max_tilt_deg"])
	}
	w.Flush()

	sum := sim.Summarize(results)
	fmt.Printf("\nreturn: %.3f ± %.3f\n", sum.MeanReturn, sum.StdReturn)
	fmt.Printf("survival: %s %.0f/%d steps\n",
		viz.ProgressBar(sum.MeanSteps/float64(maxSteps), 20), sum.MeanSteps, maxSteps)
	fmt.Printf("terminated: %d  truncated: %d\n", sum.Terminated, sum.Truncated)
	for reason, n := range sum.Reasons {
		fmt.Printf("  %s: %d\n", reason, n)
	}
	if len(returns) > 1 {
		fmt.Printf("returns: %s\n", viz.Sparkline(returns, 40))
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	// the TUI owns the terminal
	exp, err := experiment.New(cfg, logging.Nop())
	if err != nil {
		return err
	}
	en, pol, err := exp.Build(cfg.Seed)
	if err != nil {
		return err
	}
	m, err := viz.NewModel(en, pol, fmt.Sprintf("%s / %s", cfg.Env, pol.Name()))
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m.WithTheme(theme), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok {
		fmt.Printf("steps: %d  return: %.3f\n", fm.Steps(), fm.Return())
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tENV\tTIME\tPOLICY\tDISTURBANCE\tEPISODES\tMEAN RETURN")
	for _, run := range runs {
		mean := 0.0
		for _, ep := range run.Episodes {
			mean += ep.Return
		}
		if n := len(run.Episodes); n > 0 {
			mean /= float64(n)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.3f\n",
			run.ID,
			run.Env,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Policy,
			run.Disturbance,
			len(run.Episodes),
			mean,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadEpisode(runID, episode)
	if err != nil {
		return err
	}
	if len(traj.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("env: %s  policy: %s\n", meta.Env, meta.Policy)
	if episode < len(meta.Episodes) {
		ep := meta.Episodes[episode]
		fmt.Printf("episode %d: seed %d, %d steps, return %.3f %s\n", episode, ep.Seed, ep.Steps, ep.Return, ep.Reason)
	}
	fmt.Println()

	return viz.PlotEpisode(os.Stdout, traj, strings.Split(columns, ","), plotHeight, plotWidth)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadEpisode(runID, episode)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tMEAN\tSTD\tMIN\tMAX\tRMS\tPEAK HZ")
	for _, col := range strings.Split(columns, ",") {
		data := traj.Column(col)
		if data == nil {
			return fmt.Errorf("no column %q", col)
		}
		d := analysis.Describe(data)
		peak := "-"
		if f, err := analysis.DominantFrequency(data, meta.ControlFrequency); err == nil {
			peak = fmt.Sprintf("%.2f", f)
		}
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%s\n", col, d.Mean, d.StdDev, d.Min, d.Max, d.RMS, peak)
	}
	return w.Flush()
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(tuneParams) == 0 {
		return fmt.Errorf("no --param given (tunable: %v)", optim.Tunable())
	}
	names, ranges, err := parseGrid(tuneParams)
	if err != nil {
		return err
	}
	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("searching %d combinations x %d episodes...\n", grid.Size(), cfg.Episodes)
	res, err := grid.Search(ctx, cfg, optim.MeanReturn, log)
	if err != nil {
		return err
	}
	fmt.Printf("best mean return: %.3f (%d tried)\n", res.Score, res.Tried)
	for _, name := range names {
		fmt.Printf("  %s: %g\n", name, res.Params[name])
	}
	return nil
}

// parseGrid reads name=v1,v2,... specs.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", spec)
		}
		var vals []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in --param %q: %w", spec, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	log, err := logging.New(logLevelOr("info"), logFormatOr("console"))
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := automation.RunScenario(ctx, sc, log)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tENV\tPOLICY\tEPISODES\tMEAN RETURN\tMEAN STEPS\tTERMINATED")
	for _, r := range out {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3f\t%.1f\t%d\n",
			r.Name, r.Config.Env, r.Config.Policy, r.Summary.Episodes,
			r.Summary.MeanReturn, r.Summary.MeanSteps, r.Summary.Terminated)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := automation.RunSweep(ctx, &automation.BoundSweep{Base: cfg, Scales: scales}, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCALE\tBOUND X/Y/Z\tSURVIVAL\tMEAN RETURN")
	for _, r := range res {
		fmt.Fprintf(w, "%.2f\t%.1e/%.1e/%.1e\t%s\t%.3f\n",
			r.Scale, r.Bound[0], r.Bound[1], r.Bound[2],
			viz.ProgressBar(r.Survival(cfg.MaxEpisodeSteps), 20), r.Summary.MeanReturn)
	}
	return w.Flush()
}

func logLevelOr(def string) string {
	if logLevel != "" {
		return logLevel
	}
	return def
}

func logFormatOr(def string) string {
	if logFormat != "" {
		return logFormat
	}
	return def
}
