// Package main provides the CLI entrypoint for intuit.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/intuit/internal/artifacts"
	"github.com/verte-zerg/intuit/internal/config"
	"github.com/verte-zerg/intuit/internal/history"
	"github.com/verte-zerg/intuit/internal/logging"
	"github.com/verte-zerg/intuit/internal/model"
	"github.com/verte-zerg/intuit/internal/stats"
	"github.com/verte-zerg/intuit/internal/statsui"
	"github.com/verte-zerg/intuit/internal/store"
	"github.com/verte-zerg/intuit/internal/tui"
)

const (
	defaultMode        = string(model.ModeDefault)
	defaultPeriod      = string(model.PeriodAll)
	defaultCurveWindow = 1
)

var (
	playMode         string
	playArtifacts    string
	playArtifactsDir string
	playSound        bool

	statsPeriod string
	statsWindow int
	statsLast   int
	statsPlain  bool

	historyLast    int
	historyPeriod  string
	historyTopN    int
	exportFormat   string
	exportOut      string
	clearConfirmed bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "intuit",
		Short:         "TUI intuition trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playMode, "mode", defaultMode, "game mode: default or blind")
	rootCmd.Flags().StringVar(&playArtifacts, "artifacts", "", "file with one artifact per line")
	rootCmd.Flags().StringVar(&playArtifactsDir, "artifacts-dir", "", "directory artifact files are resolved against")
	rootCmd.Flags().BoolVar(&playSound, "sound", true, "ring the terminal bell on correct guesses")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

// app holds what every command opens: config, logger and the ledger backed
// by the sqlite store.
type app struct {
	paths   config.Paths
	fileCfg config.FileConfig
	log     zerolog.Logger
	logFile io.Closer
	store   *store.Store
	ledger  *history.Ledger
}

// openApp loads config and history. Interactive commands log to a file
// because the TUI owns the terminal; the rest log to stderr.
func openApp(ctx context.Context, interactive bool) (*app, error) {
	config.LoadDotEnv()
	a := &app{paths: config.ResolvePaths()}
	fileCfg, err := config.LoadConfig(a.paths.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a.fileCfg = fileCfg

	level, err := logging.ParseLevel(config.LogLevel(fileCfg))
	if err != nil {
		return nil, err
	}
	if interactive {
		logPath := a.paths.Log
		if fileCfg.Log.File != nil && *fileCfg.Log.File != "" {
			logPath = *fileCfg.Log.File
		}
		log, closer, err := logging.OpenFile(logPath, level)
		if err != nil {
			return nil, err
		}
		a.log, a.logFile = log, closer
	} else {
		a.log = logging.Console(os.Stderr, level)
	}

	st, err := store.Open(a.paths.DB)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	a.store = st
	a.ledger = history.New(history.WithPersister(st), history.WithLogger(a.log))
	if err := a.ledger.Load(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	if a.logFile != nil {
		if cerr := a.logFile.Close(); cerr != nil {
			// Best-effort close for the log file.
			_ = cerr
		}
	}
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	applyStringConfig(cmd, "mode", &playMode, a.fileCfg.Game.Mode)
	applyStringConfig(cmd, "artifacts", &playArtifacts, a.fileCfg.Game.Artifacts)
	applyStringConfig(cmd, "artifacts-dir", &playArtifactsDir, a.fileCfg.Game.ArtifactsDir)
	applyBoolConfig(cmd, "sound", &playSound, a.fileCfg.Game.Sound)

	mode, ok := model.ParseGameMode(playMode)
	if !ok {
		return fmt.Errorf("--mode must be default or blind")
	}
	var list []string
	if playArtifacts != "" {
		list, err = artifacts.Load(playArtifacts)
		if err != nil {
			return fmt.Errorf("failed to load artifacts %s: %w", playArtifacts, err)
		}
	}

	m, err := tui.NewModel(tui.Options{
		Mode:      mode,
		Artifacts: list,
		Resolver:  artifacts.Resolver{Dir: playArtifactsDir},
		Ledger:    a.ledger,
		Sound:     playSound,
		Logger:    a.log,
	})
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	defer m.Close()
	a.log.Info().Str("mode", string(mode)).Int("history", a.ledger.Len()).Msg("starting game")

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	config.LoadDotEnv()
	path := config.ResolvePaths().Config
	if err := config.EnsureFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsPeriod, "period", defaultPeriod, "period: all, today or week")
	cmd.Flags().IntVar(&statsWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit curves to last N games")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print stats instead of opening the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context(), !statsPlain)
	if err != nil {
		return err
	}
	defer a.close()

	applyStringConfig(cmd, "period", &statsPeriod, a.fileCfg.Stats.Period)
	applyIntConfig(cmd, "window", &statsWindow, a.fileCfg.Stats.Window)
	period, ok := model.ParsePeriod(statsPeriod)
	if !ok {
		return fmt.Errorf("--period must be all, today or week")
	}
	if statsWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	if statsPlain {
		return printStats(cmd.OutOrStdout(), a.ledger.FilterByPeriod(period), statsWindow, statsLast)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	m := statsui.NewModel(a.ledger, statsui.Config{
		Period:    period,
		Window:    statsWindow,
		Last:      statsLast,
		ExportDir: cwd,
		Logger:    a.log,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(w io.Writer, entries []model.HistoryEntry, window, last int) error {
	report := stats.BuildReport(entries, last)
	if err := stats.RenderSummary(w, report.Aggregate); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	curve := report.Entries
	if last > 0 && len(curve) > last {
		curve = curve[len(curve)-last:]
	}
	if err := stats.RenderCurves(w, curve, window); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Entries) > 0 {
		if _, err := fmt.Fprintf(w, "Recent: %s\n\n", stats.Sparkline(report.Scores, model.TotalTurns)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if err := stats.RenderDistribution(w, report.Entries, 0); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage game history",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent games",
		Args:  cobra.NoArgs,
		RunE:  runHistoryListCmd,
	}
	listCmd.Flags().IntVar(&historyLast, "last", stats.DefaultListSize, "number of games to show")
	listCmd.Flags().StringVar(&historyPeriod, "period", defaultPeriod, "period: all, today or week")

	topCmd := &cobra.Command{
		Use:   "top",
		Short: "List best games",
		Args:  cobra.NoArgs,
		RunE:  runHistoryTopCmd,
	}
	topCmd.Flags().IntVar(&historyTopN, "n", stats.DefaultListSize, "number of games to show")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export history and stats",
		Args:  cobra.NoArgs,
		RunE:  runHistoryExportCmd,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", string(history.FormatJSON), "format: json or yaml")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default: intuit-history-<date>.<format>, - for stdout)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClearCmd,
	}
	clearCmd.Flags().BoolVar(&clearConfirmed, "yes", false, "confirm deleting all history")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one game",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}

	cmd.AddCommand(listCmd, topCmd, showCmd, exportCmd, clearCmd)
	return cmd
}

func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	period, ok := model.ParsePeriod(historyPeriod)
	if !ok {
		return fmt.Errorf("--period must be all, today or week")
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	if !a.ledger.HasHistory(period) {
		_, err := fmt.Fprintln(out, "No games found.")
		return err
	}
	entries := a.ledger.FilterByPeriod(period)
	if err := stats.RenderSummary(out, stats.Summarize(entries)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderHistoryTable(out, stats.RecentEntries(entries, historyLast)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	savedAt, ok, err := a.store.SavedAt(cmd.Context())
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to read save time")
		return nil
	}
	if ok {
		if _, err := fmt.Fprintf(out, "Last saved: %s\n", savedAt.Local().Format("2006-01-02 15:04:05")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runHistoryTopCmd(cmd *cobra.Command, _ []string) error {
	if historyTopN < 0 {
		return fmt.Errorf("--n must be >= 0")
	}
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := stats.RenderHistoryTable(cmd.OutOrStdout(), a.ledger.TopScores(historyTopN)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	entry, ok := a.ledger.ByID(args[0])
	if !ok {
		return fmt.Errorf("no game with id %q", args[0])
	}
	cells := stats.HistoryRow(entry)
	rows := [][]string{
		{"ID", entry.ID},
		{"Date", cells[0]},
		{"Score", cells[1]},
		{"Correct", cells[2]},
		{"Incorrect", cells[3]},
		{"Passes", cells[4]},
		{"Game Time", cells[5]},
		{"Turn Time", cells[6]},
	}
	for _, line := range stats.FormatTable([]string{"Field", "Value"}, rows, nil) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runHistoryExportCmd(cmd *cobra.Command, _ []string) error {
	format, err := history.ParseFormat(strings.ToLower(strings.TrimSpace(exportFormat)))
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	snapshot := a.ledger.ExportSnapshot()
	if exportOut == "-" {
		return history.WriteExport(cmd.OutOrStdout(), snapshot, format)
	}
	path := exportOut
	if path == "" {
		path = history.ExportFileName(snapshot.ExportDate, format)
	}
	if err := writeExportFile(path, snapshot, format); err != nil {
		return err
	}
	a.log.Info().Str("path", path).Int("entries", len(snapshot.History)).Msg("history exported")
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeExportFile(path string, snapshot history.Export, format history.Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()
	return history.WriteExport(file, snapshot, format)
}

func runHistoryClearCmd(cmd *cobra.Command, _ []string) error {
	if !clearConfirmed {
		return fmt.Errorf("refusing to clear history without --yes")
	}
	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	n := a.ledger.Len()
	if err := a.ledger.Clear(cmd.Context()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d games.\n", n); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
