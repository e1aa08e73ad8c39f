package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/vanderheijden86/packzoom/internal/datasource"
	"github.com/vanderheijden86/packzoom/pkg/analysis"
	"github.com/vanderheijden86/packzoom/pkg/config"
	"github.com/vanderheijden86/packzoom/pkg/debug"
	"github.com/vanderheijden86/packzoom/pkg/export"
	"github.com/vanderheijden86/packzoom/pkg/hooks"
	"github.com/vanderheijden86/packzoom/pkg/layout"
	"github.com/vanderheijden86/packzoom/pkg/metrics"
	"github.com/vanderheijden86/packzoom/pkg/model"
	"github.com/vanderheijden86/packzoom/pkg/ui"
	"github.com/vanderheijden86/packzoom/pkg/version"
	"github.com/vanderheijden86/packzoom/pkg/viewport"
	"github.com/vanderheijden86/packzoom/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"golang.org/x/term"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	sourceFlag := flag.String("source", "", "Dataset name, URL or file path (default: config source, then $PZ_SOURCE)")
	configFlag := flag.String("config", "", "Config file (default: $XDG_CONFIG_HOME/packzoom/config.yaml)")
	exportFlag := flag.String("export", "", "Comma-separated output files (.svg, .png, .sqlite, .db, .json); skips the TUI")
	focusFlag := flag.String("focus", "", "Initial focus path, e.g. 'A/a2'")
	titleFlag := flag.String("title", "", "Caption for exported files (default: root name)")
	watchFlag := flag.Bool("watch", false, "Reload when the source file changes (re-exports with --export)")
	timingsFlag := flag.Bool("timings", false, "Print timing stats to stderr on exit")
	noHooksFlag := flag.Bool("no-hooks", false, "Skip .pz/hooks.yaml pre/post-export hooks")
	statsFlag := flag.Bool("stats", false, "Print a summary of the hierarchy (or the --focus subtree) and exit")
	robotStats := flag.Bool("robot-stats", false, "Output the --stats summary as JSON")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: pz [options]")
		fmt.Println("\nZoomable circle-packing explorer for hierarchical datasets.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("pz %s\n", version.Version)
		os.Exit(0)
	}

	if *timingsFlag {
		defer printTimings(os.Stderr, metrics.AllTimingStats)
	}

	cfg, cfgPath, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(2)
	}
	if *sourceFlag != "" {
		cfg.SetSource(*sourceFlag)
	}
	if cfg.Source.IsZero() {
		fmt.Fprintf(os.Stderr, "No data source. Pass --source, set %s, or add one to %s\n", config.EnvSource, cfgPath)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := loadHierarchy(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", describeSource(cfg.Source), err)
		os.Exit(1)
	}

	if *statsFlag || *robotStats {
		if err := writeStats(os.Stdout, h, *focusFlag, *robotStats); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *exportFlag != "" {
		paths := splitPaths(*exportFlag)
		hookDir := ""
		if !*noHooksFlag {
			hookDir, _ = os.Getwd()
		}
		opts := exportOptions(h, cfg, *titleFlag)
		if err := exportOnce(ctx, opts, *focusFlag, paths, hookDir); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", strings.Join(paths, ", "))
		if !*watchFlag {
			return
		}
		if err := watchExports(ctx, cfg, *titleFlag, *focusFlag, paths, hookDir); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "pz needs a terminal; use --export to write files instead")
		os.Exit(2)
	}

	m := ui.NewModel(h, cfg).WithPersist(func(c config.Config) error {
		return saveBookmarks(cfgPath, c.Bookmarks)
	})
	if *focusFlag != "" {
		id, err := resolveFocus(h, *focusFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		m.Controller().Jump(id)
	}

	if *watchFlag {
		path, err := watchablePath(cfg.Source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		w, err := watcher.New(path, watcher.WithOnError(func(err error) {
			debug.Log("watcher: %v", err)
		}))
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", path, err)
			os.Exit(1)
		}
		defer w.Stop()
		m = m.WithWatcher(w, func() (*model.Hierarchy, error) {
			return loadHierarchy(ctx, cfg)
		})
	}

	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running explorer: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads path, or the XDG config when path is empty, and returns
// the file bookmarks are saved back to.
func loadConfig(path string) (config.Config, string, error) {
	if path == "" {
		cfg, err := config.Load()
		return cfg, config.ConfigPath(), err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return cfg, path, err
	}
	cfg.ApplyEnv()
	return cfg, path, nil
}

// saveBookmarks rewrites only the bookmarks of the file at path, so secrets
// taken from the environment never reach disk.
func saveBookmarks(path string, bookmarks map[int]string) error {
	if path == "" {
		return errors.New("cannot determine config path")
	}
	onDisk, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	onDisk.Bookmarks = bookmarks
	return config.SaveTo(onDisk, path)
}

func layoutOptions(cfg config.Config) layout.Options {
	side := cfg.Layout.Diameter - cfg.Layout.Margin
	return layout.Options{Width: side, Height: side, Padding: cfg.Layout.Padding}
}

// loadHierarchy reads, builds and packs the configured dataset.
func loadHierarchy(ctx context.Context, cfg config.Config) (*model.Hierarchy, error) {
	src := datasource.Source{URL: cfg.Source.URL, Path: cfg.Source.Path, Headers: cfg.Source.Headers}
	root, err := datasource.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	h, err := model.Build(root)
	if err != nil {
		return nil, err
	}
	if err := layout.Pack(h, layoutOptions(cfg)); err != nil {
		return nil, fmt.Errorf("packing: %w", err)
	}
	debug.Log("loaded %d nodes from %s", h.Len(), src)
	return h, nil
}

func describeSource(s config.SourceConfig) string {
	if s.URL != "" {
		return s.URL
	}
	return s.Path
}

func watchablePath(s config.SourceConfig) (string, error) {
	if s.Path == "" {
		return "", fmt.Errorf("--watch needs a file source, not %s", s.URL)
	}
	return s.Path, nil
}

func resolveFocus(h *model.Hierarchy, path string) (model.NodeID, error) {
	id := h.Find(path)
	if id == model.NoNode {
		return model.NoNode, fmt.Errorf("focus %q not found", path)
	}
	return id, nil
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func exportOptions(h *model.Hierarchy, cfg config.Config, title string) export.Options {
	if title == "" {
		title = h.Root().Name()
	}
	return export.Options{
		Snapshot: export.SnapshotOptions{
			Hierarchy: h,
			Focus:     model.RootID,
			Diameter:  cfg.Layout.Diameter,
		},
		Title:   title,
		Version: version.Version,
	}
}

// exportOnce writes paths with the view focused on focusPath (the root when
// empty), wrapped in the hooks found under hookDir. An empty hookDir skips
// hooks.
func exportOnce(ctx context.Context, opts export.Options, focusPath string, paths []string, hookDir string) error {
	if len(paths) == 0 {
		return errors.New("no export paths")
	}
	defer debug.LogEnterExit("export " + strings.Join(paths, ","))()
	h := opts.Snapshot.Hierarchy
	if focusPath != "" {
		id, err := resolveFocus(h, focusPath)
		if err != nil {
			return err
		}
		opts.Snapshot.Focus = id
		opts.Snapshot.Transform = viewport.FocusTransform(h.Nodes[id].Circle, opts.Snapshot.Diameter)
	}

	hc := hooks.ExportContext{
		ExportPaths: paths,
		NodeCount:   h.Len(),
		Focus:       focusPath,
		Timestamp:   time.Now(),
	}
	for _, p := range paths {
		k, _ := export.KindFor(p)
		hc.Formats = append(hc.Formats, string(k))
	}
	executor, err := hooks.RunHooks(hookDir, hc, hookDir == "")
	if err != nil {
		return err
	}
	if executor != nil {
		defer func() {
			if s := executor.Summary(); s != "" {
				fmt.Fprint(os.Stderr, s)
			}
		}()
		if err := executor.RunPreExport(); err != nil {
			return err
		}
	}

	if err := export.ExportAll(ctx, opts, paths...); err != nil {
		return err
	}
	if executor != nil {
		return executor.RunPostExport()
	}
	return nil
}

// watchExports re-exports after every change to the source file until ctx
// is canceled.
func watchExports(ctx context.Context, cfg config.Config, title, focusPath string, paths []string, hookDir string) error {
	path, err := watchablePath(cfg.Source)
	if err != nil {
		return err
	}
	w, err := watcher.New(path, watcher.WithOnError(func(err error) {
		fmt.Fprintf(os.Stderr, "Reload failed: %v\n", err)
	}))
	if err != nil {
		return err
	}
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", path)
	return w.Run(ctx, func() error {
		h, err := loadHierarchy(ctx, cfg)
		if err != nil {
			return err
		}
		if err := exportOnce(ctx, exportOptions(h, cfg, title), focusPath, paths, hookDir); err != nil {
			return err
		}
		fmt.Printf("%s re-exported %d nodes\n", time.Now().Format(time.TimeOnly), h.Len())
		return nil
	})
}

// statsTop is how many of the largest leaves a summary lists.
const statsTop = 10

type robotStatsOutput struct {
	GeneratedAt string         `json:"generated_at"`
	Version     string         `json:"version"`
	Stats       analysis.Stats `json:"stats"`
}

func writeStats(w io.Writer, h *model.Hierarchy, focusPath string, asJSON bool) error {
	id := model.RootID
	if focusPath != "" {
		var err error
		if id, err = resolveFocus(h, focusPath); err != nil {
			return err
		}
	}
	s := analysis.Compute(h, id, statsTop)
	if !asJSON {
		return s.WriteText(w)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(robotStatsOutput{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.Version,
		Stats:       s,
	})
}

func printTimings(w io.Writer, stats func() []metrics.TimingStats) {
	all := stats()
	if len(all) == 0 {
		return
	}
	fmt.Fprintf(w, "%-14s %8s %10s %10s %10s\n", "metric", "count", "total_ms", "avg_ms", "max_ms")
	for _, s := range all {
		fmt.Fprintf(w, "%-14s %8d %10.2f %10.3f %10.3f\n", s.Name, s.Count, s.TotalMs, s.AvgMs, s.MaxMs)
	}
}

func runTUIProgram(m ui.Model) error {
	// The alternate screen owns stderr; send debug output to a file.
	if debug.Enabled() {
		if f, err := os.Create(filepath.Join(os.TempDir(), "pz-debug.log")); err == nil {
			debug.SetOutput(f)
			defer f.Close()
			defer debug.SetOutput(os.Stderr)
		}
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set PZ_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("PZ_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
