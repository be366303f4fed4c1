package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/buoy/internal/atmosphere"
	"github.com/san-kum/buoy/internal/config"
	"github.com/san-kum/buoy/internal/flight"
	"github.com/san-kum/buoy/internal/integrators"
	"github.com/san-kum/buoy/internal/log"
	"github.com/san-kum/buoy/internal/metrics"
	"github.com/san-kum/buoy/internal/optim"
	"github.com/san-kum/buoy/internal/report"
	"github.com/san-kum/buoy/internal/storage"
)

var (
	// atmos
	fromAlt float64
	toAlt   float64
	stepAlt float64

	// fly
	configFile  string
	dt          float64
	duration    float64
	integrator  string
	policy      string
	workers     int
	sampleEvery int
	asJSON      bool
	noSave      bool
	showPlot    bool

	// plot
	plotBody int

	// sweep
	sweepParams   []string
	targetAscent  float64
	trialDuration float64

	lg *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "buoy",
		Short:         "high-altitude balloon flight dynamics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			lg = log.New(viper.GetString("log_level"), viper.GetString("log_dir"))
		},
	}

	rootCmd.PersistentFlags().String("data", ".buoy", "data directory")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-dir", "", "log directory (default: user config dir)")
	viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.SetEnvPrefix("buoy")
	viper.AutomaticEnv()

	atmosCmd := &cobra.Command{
		Use:   "atmos",
		Short: "print the standard atmosphere",
		Args:  cobra.NoArgs,
		RunE:  printAtmosphere,
	}
	atmosCmd.Flags().Float64Var(&fromAlt, "from", 0, "first altitude (m)")
	atmosCmd.Flags().Float64Var(&toAlt, "to", 40000, "last altitude (m)")
	atmosCmd.Flags().Float64Var(&stepAlt, "step", 2500, "altitude step (m)")

	gasesCmd := &cobra.Command{
		Use:   "gases",
		Short: "list lift gases",
		Args:  cobra.NoArgs,
		RunE:  listGases,
	}
	gasesCmd.Flags().StringVar(&configFile, "config", "", "config file with extra gases (yaml)")

	flyCmd := &cobra.Command{
		Use:   "fly [preset]",
		Short: "fly a balloon preset or config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  fly,
	}
	flyCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	flyCmd.Flags().Float64Var(&dt, "dt", flight.DefaultDt, "timestep (s)")
	flyCmd.Flags().Float64Var(&duration, "time", flight.DefaultDuration, "duration (s)")
	flyCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator ("+strings.Join(integrators.Names(), ", ")+")")
	flyCmd.Flags().StringVar(&policy, "policy", config.DefaultPolicy, "fault policy (skip, clamp, flag)")
	flyCmd.Flags().IntVar(&workers, "workers", flight.DefaultWorkers, "parallel workers per tick")
	flyCmd.Flags().IntVar(&sampleEvery, "sample-every", 10, "record telemetry every n ticks")
	flyCmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	flyCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run")
	flyCmd.Flags().BoolVar(&showPlot, "plot", false, "plot the first body")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotBody, "body", 0, "body index to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and summaries as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list flight presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(report.Title.Render("presets:"))
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Printf("  %-10s %s\n", name, report.Subtle.Render(describe(p)))
			}
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "grid search balloon parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().Float64Var(&dt, "dt", flight.DefaultDt, "timestep (s)")
	sweepCmd.Flags().Float64Var(&trialDuration, "time", 600, "duration per trial (s)")
	sweepCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	sweepCmd.Flags().StringVar(&policy, "policy", config.DefaultPolicy, "fault policy")
	sweepCmd.Flags().IntVar(&workers, "workers", flight.DefaultWorkers, "parallel workers per tick")
	sweepCmd.Flags().IntVar(&sampleEvery, "sample-every", 10, "record telemetry every n ticks")
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "parameter range, e.g. fill_volume=8:16:1 (repeatable)")
	sweepCmd.Flags().Float64Var(&targetAscent, "target-ascent", 0, "target mean ascent rate (m/s); zero maximizes altitude")
	sweepCmd.MarkFlagRequired("param")

	rootCmd.AddCommand(atmosCmd, gasesCmd, flyCmd, listCmd, plotCmd, exportCmd, presetsCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, report.Bad.Render("error: ")+err.Error())
		if lg != nil {
			lg.Error("command failed", "error", err)
		}
		os.Exit(1)
	}
}

func describe(c *config.Config) string {
	n := 0
	gases := make([]string, 0, len(c.Balloons))
	for _, b := range c.Balloons {
		count := b.Count
		if count == 0 {
			count = 1
		}
		n += count
		gases = append(gases, b.LiftGas)
	}
	return fmt.Sprintf("%d bodies, %s, %s dt=%gs, %s", n, strings.Join(gases, "/"), c.Integrator, c.Dt, report.Seconds(c.Duration))
}

func printAtmosphere(cmd *cobra.Command, args []string) error {
	atm := atmosphere.StandardAtmosphere1976{Log: lg}
	out, err := report.Atmosphere(atm, fromAlt, toAlt, stepAlt)
	if err != nil {
		return err
	}
	fmt.Println(out)
	fmt.Printf("%s %.4f kg/m³   %s %.4f kg/m³\n",
		report.Label.Render("density at STP:"), atmosphere.DensityAtSTP().KilogramsPerCubicMeter(),
		report.Label.Render("sea level:"), atmosphere.SeaLevelDensity().KilogramsPerCubicMeter())
	return nil
}

func listGases(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	fmt.Println(report.Gases(reg.List()))
	return nil
}

// loadFlight resolves the preset or config file, then applies any flags the
// user set explicitly.
func loadFlight(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := ""

	if len(args) == 1 {
		name = args[0]
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		name = cfg.Name
	}

	flags := cmd.Flags()
	if flags.Changed("dt") || len(args) == 0 && configFile == "" {
		cfg.Dt = dt
	}
	if flags.Changed("time") || len(args) == 0 && configFile == "" {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("policy") {
		cfg.Policy = policy
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("sample-every") || cfg.SampleEvery == 0 {
		cfg.SampleEvery = sampleEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func fly(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadFlight(cmd, args)
	if err != nil {
		return err
	}

	bodies, err := cfg.Bodies()
	if err != nil {
		return err
	}
	fc, err := cfg.Flight()
	if err != nil {
		return err
	}
	runner, err := cfg.Runner(lg)
	if err != nil {
		return err
	}
	for _, m := range metrics.Default() {
		runner.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !asJSON {
		fmt.Printf("flying %d bodies (%s, dt=%gs, %s)...\n", len(bodies), cfg.Integrator, cfg.Dt, report.Seconds(cfg.Duration))
	}
	start := time.Now()
	result, err := runner.Run(ctx, bodies, fc)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, report.Warn.Render("flight interrupted: ")+err.Error())
	}
	elapsed := time.Since(start)

	info := storage.RunInfo{
		Preset:     name,
		Integrator: cfg.Integrator,
		Policy:     cfg.Policy,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
	}

	runID := ""
	if !noSave {
		st := storage.New(viper.GetString("data"))
		if err := st.Init(); err != nil {
			return err
		}
		if runID, err = st.Save(info, result); err != nil {
			return err
		}
		lg.Info("run recorded", "run", runID, "dir", st.Dir())
	}

	if asJSON {
		return storage.ExportJSON(os.Stdout, info, result)
	}

	names := make(map[int]string, len(bodies))
	for _, b := range bodies {
		names[b.ID] = b.Name
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	if runID != "" {
		fmt.Printf("run id: %s\n", report.Value.Render(runID))
	}
	fmt.Printf("steps: %d\n\n", result.StepsTaken)
	fmt.Println(report.Summaries(metrics.SummarizeAll(result), names))
	fmt.Println(report.Title.Render("metrics:"))
	fmt.Print(report.Metrics(result.Metrics))
	if out := report.Faults(result.Faults, 10); out != "" {
		fmt.Println()
		fmt.Print(out)
	}
	if showPlot && len(result.Tracks) > 0 {
		fmt.Println()
		fmt.Println(report.Plots(result.Tracks[0]))
	}
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadFlight(cmd, args)
	if err != nil {
		return err
	}
	cfg.Duration = trialDuration

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, p := range sweepParams {
		name, vals, err := optim.ParseParam(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	gs, err := optim.NewGridSearch(names, ranges, lg)
	if err != nil {
		return err
	}

	objective := optim.MaximizeAltitude
	goal := "max altitude"
	if targetAscent > 0 {
		objective = optim.TargetAscentRate(targetAscent)
		goal = fmt.Sprintf("ascent rate %.2f m/s", targetAscent)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s for %s...\n", strings.Join(names, ", "), goal)
	best, trials, err := gs.Search(ctx, cfg, objective)
	for _, t := range trials {
		line := fmt.Sprintf("  %v", t.Params)
		if t.Err != nil {
			fmt.Println(line, report.Bad.Render(t.Err.Error()))
			continue
		}
		fmt.Println(line, report.Value.Render(fmt.Sprintf("%.3f", t.Score)))
	}
	if err != nil {
		return err
	}
	fmt.Printf("\n%s %v (score %.3f)\n", report.Good.Render("best:"), best.Params, best.Score)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(viper.GetString("data"))
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	fmt.Println(report.Runs(runs, time.Now()))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(viper.GetString("data"))
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tracks, err := st.LoadTracks(runID)
	if err != nil {
		return err
	}
	if plotBody < 0 || plotBody >= len(tracks) {
		return fmt.Errorf("no body %d in run %s (%d bodies)", plotBody, runID, len(tracks))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(tracks[plotBody]))
	fmt.Println(report.Plots(tracks[plotBody]))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(viper.GetString("data"))
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	sums, err := st.Summaries(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*storage.RunMetadata
		Summaries []metrics.Summary `json:"summaries"`
	}{meta, sums})
}
