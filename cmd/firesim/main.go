package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/firesim/internal/automation"
	"github.com/san-kum/firesim/internal/config"
	"github.com/san-kum/firesim/internal/control"
	"github.com/san-kum/firesim/internal/experiment"
	"github.com/san-kum/firesim/internal/export"
	"github.com/san-kum/firesim/internal/grid"
	"github.com/san-kum/firesim/internal/metrics"
	"github.com/san-kum/firesim/internal/session"
	"github.com/san-kum/firesim/internal/sim"
	"github.com/san-kum/firesim/internal/storage"
	"github.com/san-kum/firesim/internal/store"
	"github.com/san-kum/firesim/internal/stream"
	"github.com/san-kum/firesim/internal/viz"
)

var (
	configFile  string
	dataDir     string
	streamFile  string
	controlFile string
	logLevel    string
	logFile     string

	// Playback
	speed     float64
	endPolicy string
	tickRate  int
	theme     string
	noArchive bool

	// Launch
	command string
	script  string
	workdir string

	// Run parameters
	width          int
	height         int
	burningTrees   int
	burningGrasses int
	thunder        bool
	thunderPct     float64
	thunderSteps   int
	wind           bool
	windAngle      float64
	windStrength   float64

	// Output
	svgOut      string
	frameSVGOut string
	csvOut      string
	jsonOut     bool
	archiveRun  bool

	// control set
	ctlPaused bool
	ctlStep   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "firesim",
		Short:        "forest fire simulation viewer",
		Long:         "Watch, steer and analyze forest fire simulation runs.\nWithout a subcommand, attaches to the configured stream file.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         watchStream,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "firesim.yaml", "config file path (yaml)")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "run archive directory")
	pf.StringVar(&streamFile, "stream", config.DefaultStreamFile, "simulation stream file")
	pf.StringVar(&controlFile, "control", config.DefaultControlFile, "simulation control file")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", config.DefaultLogFile, "log file used while the UI is open")

	addPlaybackFlags(rootCmd)

	watchCmd := &cobra.Command{
		Use:   "watch [stream]",
		Short: "follow a stream written by a simulation started elsewhere",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchStream,
	}
	addPlaybackFlags(watchCmd)

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "launch a simulation and watch it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addPlaybackFlags(runCmd)
	addLaunchFlags(runCmd)
	addParamFlags(runCmd)

	replayCmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "play back a batch JSON file or a finished stream",
		Args:  cobra.ExactArgs(1),
		RunE:  replayFile,
	}
	addPlaybackFlags(replayCmd)

	statsCmd := &cobra.Command{
		Use:   "stats [stream]",
		Short: "summarize a finished stream",
		Args:  cobra.MaximumNArgs(1),
		RunE:  streamStats,
	}
	statsCmd.Flags().StringVar(&svgOut, "svg", "", "write the category chart to an SVG file")
	statsCmd.Flags().StringVar(&frameSVGOut, "frame-svg", "", "write the last frame to an SVG file")
	statsCmd.Flags().BoolVar(&jsonOut, "json", false, "print the summary as JSON")
	statsCmd.Flags().BoolVar(&archiveRun, "archive", false, "save the stream's stats to the archive")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json <stream> <out>",
		Short: "convert a stream file to a batch JSON file",
		Args:  cobra.ExactArgs(2),
		RunE:  exportJSON,
	}

	controlCmd := &cobra.Command{
		Use:   "control",
		Short: "inspect or change the simulation control file",
	}
	controlShowCmd := &cobra.Command{
		Use:   "show",
		Short: "print the control file",
		Args:  cobra.NoArgs,
		RunE:  controlShow,
	}
	controlSetCmd := &cobra.Command{
		Use:   "set",
		Short: "change control fields; unset flags keep their value",
		Args:  cobra.NoArgs,
		RunE:  controlSet,
	}
	controlSetCmd.Flags().BoolVar(&ctlPaused, "paused", false, "pause the simulation")
	controlSetCmd.Flags().BoolVar(&ctlStep, "step", false, "request one step")
	controlSetCmd.Flags().BoolVar(&thunder, "thunder", false, "enable thunder")
	controlSetCmd.Flags().Float64Var(&thunderPct, "thunder-pct", 0, "thunder percentage")
	controlSetCmd.Flags().BoolVar(&wind, "wind", false, "enable wind")
	controlSetCmd.Flags().Float64Var(&windAngle, "wind-angle", 0, "wind angle in degrees")
	controlSetCmd.Flags().Float64Var(&windStrength, "wind-strength", 0, "wind strength")
	controlCmd.AddCommand(controlShowCmd, controlSetCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot <run_id>",
		Short: "plot an archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "write the chart to an SVG file instead")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list run presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep <scenario.yaml>",
		Short: "run a parameter sweep and report how much burned",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&csvOut, "csv", "", "write results to a CSV file")
	addLaunchFlags(sweepCmd)

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file with the defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}

	rootCmd.AddCommand(watchCmd, runCmd, replayCmd, statsCmd, exportJSONCmd, controlCmd, listCmd, plotCmd, presetsCmd, sweepCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPlaybackFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&speed, "speed", 0.4, "seconds per frame")
	cmd.Flags().StringVar(&endPolicy, "end", "pause", "what playback does at the last frame (pause, loop)")
	cmd.Flags().IntVar(&tickRate, "fps", config.DefaultTickRate, "UI ticks per second")
	cmd.Flags().StringVar(&theme, "theme", "forest", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "do not save the run to the archive on exit")
}

func addLaunchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&command, "command", experiment.DefaultCommand, "interpreter for the launch script")
	cmd.Flags().StringVar(&script, "script", experiment.DefaultScript, "simulation launch script")
	cmd.Flags().StringVar(&workdir, "workdir", "", "working directory of the simulation")
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&width, "width", 20, "grid width")
	cmd.Flags().IntVar(&height, "height", 20, "grid height")
	cmd.Flags().IntVar(&burningTrees, "burning-trees", 15, "initially burning trees")
	cmd.Flags().IntVar(&burningGrasses, "burning-grasses", 20, "initially burning grasses")
	cmd.Flags().BoolVar(&thunder, "thunder", false, "enable thunder")
	cmd.Flags().Float64Var(&thunderPct, "thunder-pct", 0, "thunder percentage")
	cmd.Flags().IntVar(&thunderSteps, "thunder-steps", 1, "steps between thunder strikes")
	cmd.Flags().BoolVar(&wind, "wind", false, "enable wind")
	cmd.Flags().Float64Var(&windAngle, "wind-angle", 0, "wind angle in degrees")
	cmd.Flags().Float64Var(&windStrength, "wind-strength", 0, "wind strength")
}

// loadConfig reads the config file and applies the flags the user set.
// A missing file is only an error when --config was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.LoadOrDefault(configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("stream") {
		cfg.StreamFile = streamFile
	}
	if flags.Changed("control") {
		cfg.ControlFile = controlFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("speed") {
		cfg.Playback.Speed = speed
	}
	if flags.Changed("end") {
		cfg.Playback.EndPolicy = endPolicy
	}
	if flags.Changed("fps") {
		cfg.Playback.TickRate = tickRate
	}
	if flags.Changed("command") {
		cfg.Command = command
	}
	if flags.Changed("script") {
		cfg.Script = script
	}
	if flags.Changed("workdir") {
		cfg.Workdir = workdir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyParamFlags overrides p with the run parameter flags that were set.
func applyParamFlags(cmd *cobra.Command, p experiment.Params) experiment.Params {
	flags := cmd.Flags()
	if flags.Changed("width") {
		p.Width = width
	}
	if flags.Changed("height") {
		p.Height = height
	}
	if flags.Changed("burning-trees") {
		p.BurningTrees = burningTrees
	}
	if flags.Changed("burning-grasses") {
		p.BurningGrasses = burningGrasses
	}
	if flags.Changed("thunder") {
		p.ThunderEnabled = thunder
	}
	if flags.Changed("thunder-pct") {
		p.ThunderPercentage = thunderPct
	}
	if flags.Changed("thunder-steps") {
		p.StepsBetweenThunder = thunderSteps
	}
	if flags.Changed("wind") {
		p.WindEnabled = wind
	}
	if flags.Changed("wind-angle") {
		p.WindAngle = windAngle
	}
	if flags.Changed("wind-strength") {
		p.WindStrength = windStrength
	}
	return p
}

// newLogger logs to the log file while the UI owns the terminal and to
// stderr otherwise. The returned func closes the file.
func newLogger(cfg *config.Config, ui bool) (*slog.Logger, func(), error) {
	if !ui {
		logger := cfg.NewLogger(os.Stderr)
		slog.SetDefault(logger)
		return logger, func() {}, nil
	}
	f, err := cfg.OpenLog()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := cfg.NewLogger(f)
	slog.SetDefault(logger)
	return logger, func() { f.Close() }, nil
}

func newSession(cfg *config.Config, logger *slog.Logger) *session.Session {
	return session.New(session.Config{
		StreamFile:   cfg.StreamFile,
		Control:      control.NewStore(cfg.ControlFile),
		Launcher:     cfg.Launcher(logger),
		PollInterval: cfg.PollInterval,
		Speed:        cfg.Playback.Speed,
		EndPolicy:    cfg.EndPolicy(),
		Logger:       logger,
	})
}

type uiOptions struct {
	title     string
	source    string
	params    experiment.Params
	canLaunch bool
	archive   bool
}

// runUI runs the playback UI until the user quits, then stops the active
// run and archives what was watched.
func runUI(ctx context.Context, cfg *config.Config, logger *slog.Logger, s *session.Session, opts uiOptions) error {
	model := viz.NewModel(viz.Options{
		Session:   s,
		Params:    opts.params,
		CanLaunch: opts.canLaunch,
		Interval:  cfg.TickInterval(),
		Theme:     theme,
		Title:     opts.title,
		Context:   ctx,
		Logger:    logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	s.Close()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	if !opts.archive || noArchive || s.Len() == 0 {
		return nil
	}
	id, err := archive(cfg, opts.source, opts.params, s)
	if err != nil {
		return fmt.Errorf("failed to archive run: %w", err)
	}
	fmt.Printf("run archived: %s (%d frames)\n", id, s.Len())
	return nil
}

func archive(cfg *config.Config, source string, p experiment.Params, s *session.Session) (string, error) {
	meta, _ := s.Metadata()
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.Run{
		Source: source,
		Params: p,
		Meta:   meta,
		Stats:  s.Stats(),
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func watchStream(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.StreamFile = args[0]
	}
	logger, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext()
	defer cancel()

	s := newSession(cfg, logger)
	if err := s.Attach(ctx); err != nil {
		return err
	}
	return runUI(ctx, cfg, logger, s, uiOptions{title: "firesim watch", source: cfg.StreamFile, archive: true})
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	params := cfg.Run
	if len(args) > 0 {
		p, ok := config.GetPreset(args[0])
		if !ok {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		params = p
	}
	params = applyParamFlags(cmd, params)
	if err := params.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext()
	defer cancel()

	s := newSession(cfg, logger)
	if err := s.StartRun(ctx, params); err != nil {
		return err
	}
	return runUI(ctx, cfg, logger, s, uiOptions{title: "firesim run", source: "run", params: params, canLaunch: true, archive: true})
}

func replayFile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	meta, frames, err := loadFrames(args[0], logger)
	if err != nil {
		return err
	}

	s := newSession(cfg, logger)
	s.LoadBatch(meta, frames)

	return runUI(context.Background(), cfg, logger, s, uiOptions{title: "firesim replay", source: args[0]})
}

// loadFrames reads either a batch JSON file or an NDJSON stream, by
// extension.
func loadFrames(path string, logger *slog.Logger) (grid.Metadata, []grid.Frame, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return store.ImportJSON(path)
	}
	rec, err := stream.ReadFile(path, logger)
	if err != nil {
		return grid.Metadata{}, nil, err
	}
	return rec.Meta, rec.Frames, nil
}

func streamStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := cfg.StreamFile
	if len(args) > 0 {
		path = args[0]
	}
	logger, _, _ := newLogger(cfg, false)

	meta, frames, err := loadFrames(path, logger)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("%s: no frames", path)
	}

	stats := metrics.NewStats()
	for _, f := range frames {
		stats.Append(f)
	}
	sum := metrics.Summarize(stats)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	fmt.Printf("stream: %s\n", path)
	fmt.Printf("grid: %dx%d\n", meta.Width, meta.Height)
	printSummary(sum)

	last, _ := stats.Last()
	fmt.Println("\nlast frame:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, c := range grid.Categories() {
		fmt.Fprintf(w, "  %s\t%d\n", c.Label(), last[c])
	}
	w.Flush()
	fmt.Println()

	plotStats(stats)

	if svgOut != "" {
		svg := export.SeriesToSVG(export.CategorySeries(stats.Table(stats.Len()), grid.Categories()), 800, 400)
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("chart written to %s\n", svgOut)
	}
	if frameSVGOut != "" {
		svg := export.FrameToSVG(frames[len(frames)-1], 8)
		if err := os.WriteFile(frameSVGOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("frame written to %s\n", frameSVGOut)
	}

	if archiveRun {
		id, err := storage.New(cfg.DataDir).Save(storage.Run{Source: path, Meta: meta, Stats: stats})
		if err != nil {
			return err
		}
		fmt.Printf("run archived: %s\n", id)
	}
	return nil
}

func printSummary(sum metrics.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "frames:\t%d\n", sum.Frames)
	fmt.Fprintf(w, "initial vegetation:\t%d\n", sum.InitialVegetation)
	fmt.Fprintf(w, "burned:\t%.2f%%\n", sum.BurnedPercent)
	fmt.Fprintf(w, "max burned:\t%.2f%%\n", sum.MaxBurnedPercent)
	fmt.Fprintf(w, "peak fire front:\t%d (frame %d)\n", sum.PeakFront, sum.PeakFrame+1)
	fmt.Fprintf(w, "extinguished:\t%v\n", sum.Extinguished)
	w.Flush()
}

// chartWidth fits charts to the terminal, leaving room for the axis.
func chartWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 30 {
		return w - 15
	}
	return 80
}

func plotStats(stats *metrics.Stats) {
	if stats.Len() < 2 {
		fmt.Println("not enough frames to plot")
		return
	}
	groups := []struct {
		caption string
		cats    []grid.Category
		colors  []asciigraph.AnsiColor
	}{
		{"burning trees / burning grasses", []grid.Category{grid.BurningTrees, grid.BurningGrasses}, []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Orange}},
		{"trees / grasses", []grid.Category{grid.Trees, grid.Grasses}, []asciigraph.AnsiColor{asciigraph.Green, asciigraph.YellowGreen}},
		{"tree ashes / grass ashes", []grid.Category{grid.TreeAshes, grid.GrassAshes}, []asciigraph.AnsiColor{asciigraph.DarkGray, asciigraph.Gray}},
	}
	for _, g := range groups {
		data := make([][]float64, len(g.cats))
		for i, c := range g.cats {
			data[i] = stats.Series(c, stats.Len())
		}
		graph := asciigraph.PlotMany(data,
			asciigraph.Height(10),
			asciigraph.Width(chartWidth()),
			asciigraph.LowerBound(0),
			asciigraph.SeriesColors(g.colors...),
			asciigraph.Caption(g.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, _, _ := newLogger(cfg, false)

	rec, err := stream.ReadFile(args[0], logger)
	if err != nil {
		return err
	}
	if err := store.ExportJSON(args[1], sim.FromFrames(rec.Meta, rec.Frames)); err != nil {
		return err
	}
	fmt.Printf("exported %d frames to %s", len(rec.Frames), args[1])
	if rec.Skipped > 0 {
		fmt.Printf(" (%d malformed lines skipped)", rec.Skipped)
	}
	fmt.Println()
	return nil
}

func controlShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rec, err := control.NewStore(cfg.ControlFile).Read()
	if err != nil {
		return err
	}
	return printJSON(rec)
}

func controlSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var update control.Record
	flags := cmd.Flags()
	if flags.Changed("paused") {
		update.Paused = control.Bool(ctlPaused)
	}
	if flags.Changed("step") {
		update.Step = control.Bool(ctlStep)
	}
	if flags.Changed("thunder") {
		update.ThunderEnabled = control.Bool(thunder)
	}
	if flags.Changed("thunder-pct") {
		update.ThunderPercentage = control.Float(thunderPct)
	}
	if flags.Changed("wind") {
		update.WindEnabled = control.Bool(wind)
	}
	if flags.Changed("wind-angle") {
		update.WindAngle = control.Float(windAngle)
	}
	if flags.Changed("wind-strength") {
		update.WindStrength = control.Float(windStrength)
	}

	rec, err := control.NewStore(cfg.ControlFile).Write(update)
	if err != nil {
		return err
	}
	return printJSON(rec)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runs, err := storage.New(cfg.DataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tGRID\tFRAMES\tBURNED\tMAX\tPEAK")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%.1f%%\t%.1f%%\t%d\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width,
			run.Height,
			run.Frames,
			run.Summary.BurnedPercent,
			run.Summary.MaxBurnedPercent,
			run.Summary.PeakFront,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	if stats.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	if svgOut != "" {
		svg := export.SeriesToSVG(export.CategorySeries(stats.Table(stats.Len()), grid.Categories()), 800, 400)
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("chart written to %s\n", svgOut)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("grid: %dx%d\n", meta.Width, meta.Height)
	printSummary(meta.Summary)
	fmt.Println()
	plotStats(stats)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRID\tFIRES\tTHUNDER\tWIND")
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		thunderDesc := "off"
		if p.ThunderEnabled {
			thunderDesc = fmt.Sprintf("%.1f%% every %d", p.ThunderPercentage, p.StepsBetweenThunder)
		}
		windDesc := "off"
		if p.WindEnabled {
			windDesc = fmt.Sprintf("%.0f° x%.0f", p.WindAngle, p.WindStrength)
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%d trees, %d grasses\t%s\t%s\n",
			name, p.Width, p.Height, p.BurningTrees, p.BurningGrasses, thunderDesc, windDesc)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sweep, err := automation.LoadSweep(args[0])
	if err != nil {
		return err
	}
	logger, _, _ := newLogger(cfg, false)

	ctx, cancel := signalContext()
	defer cancel()

	runner := &automation.Runner{
		Session:      newSession(cfg, logger),
		PollInterval: cfg.PollInterval,
		Logger:       logger,
		OnTrial: func(t automation.Trial) {
			note := ""
			if t.TimedOut {
				note = " (timed out)"
			}
			fmt.Printf("%s=%v #%d: burned %.2f%%, max %.2f%%, %d frames%s\n",
				sweep.Parameter, t.Value, t.Repeat, t.Summary.BurnedPercent, t.Summary.MaxBurnedPercent, t.Summary.Frames, note)
		},
	}

	results, err := runner.RunSweep(ctx, sweep)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tRUNS\tMAX BURNED\tBURNED\tPEAK\n", strings.ToUpper(sweep.Parameter))
	maxBurned := make([]float64, len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%v\t%d\t%.2f%%\t%.2f%%\t%.1f\n", r.Value, r.Runs, r.MaxBurnedPercent, r.BurnedPercent, r.PeakFront)
		maxBurned[i] = r.MaxBurnedPercent
	}
	w.Flush()

	if len(maxBurned) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(maxBurned,
			asciigraph.Height(10),
			asciigraph.Width(chartWidth()),
			asciigraph.Caption("max burned % by "+sweep.Parameter),
		))
	}

	if csvOut != "" {
		f, err := os.Create(csvOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := automation.WriteCSV(f, sweep.Parameter, results); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", csvOut)
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := configFile
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
