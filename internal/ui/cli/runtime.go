package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	coreapp "symindex/internal/core/app"
	"symindex/internal/core/config"
	"symindex/internal/core/watcher"
	"symindex/internal/data/history"
	"symindex/internal/engine/symbols"
	"symindex/internal/engine/traversal"
	"symindex/internal/shared/observability"
	"symindex/internal/shared/util"
)

func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "symindex v%s\n", versionString)
		return 0
	}

	if err := validateModes(opts); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 2
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose, stderr)
	defer cleanupLogs()

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, cfgPath, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	slog.Debug("configuration loaded", "path", cfgPath, "storage_dir", cfg.Index.StorageDir)

	dir := cwd
	if len(opts.args) == 1 {
		dir = opts.args[0]
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	historyStore, err := openHistoryStoreIfEnabled(cfg)
	if err != nil {
		slog.Error("history setup failed", "error", err)
		return 1
	}
	deps := coreapp.Dependencies{Logger: slog.Default()}
	if historyStore != nil {
		defer historyStore.Close()
		deps.Recorder = history.NewAdapter(historyStore)
	}

	idx, err := coreapp.New(cfg, deps)
	if err != nil {
		slog.Error("failed to initialize symbol index", "error", err)
		return 1
	}

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		server := NewObservabilityServer(addr, idx)
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	r := &runner{opts: opts, cfg: cfg, idx: idx, history: historyStore, dir: dir, stdout: stdout, stderr: stderr}
	return r.dispatch(ctx)
}

// runner carries one invocation's collaborators through the selected mode.
type runner struct {
	opts    cliOptions
	cfg     *config.Config
	idx     *coreapp.SymbolIndex
	history *history.Store
	dir     string
	stdout  io.Writer
	stderr  io.Writer
}

func (r *runner) dispatch(ctx context.Context) int {
	switch {
	case r.opts.remove:
		return r.runRemove(ctx)
	case r.opts.history:
		return r.runHistory()
	case r.opts.quick:
		return r.runQuick(ctx)
	case r.opts.target != "":
		return r.runTarget(ctx)
	case r.opts.pending:
		return r.runPending(ctx)
	}

	start := time.Now()
	driver := watcher.NewDriver(r.idx, r.dir, nil, slog.Default())
	if err := driver.Sync(ctx); err != nil {
		r.fail("build failed", err)
		return 1
	}
	elapsed := time.Since(start)

	switch {
	case r.opts.find != "":
		return r.runFind()
	case r.opts.all:
		return r.runAll()
	case r.opts.ui:
		return r.runUI(ctx)
	}

	all, err := r.idx.GetAllSymbols()
	if err != nil {
		r.fail("failed to read symbols", err)
		return 1
	}
	printBuildSummary(r.stdout, buildSummary{
		dir:      r.dir,
		id:       r.idx.DirectoryID(),
		symbols:  len(all),
		pending:  r.idx.PendingFileCount(),
		duration: elapsed,
	})

	if r.opts.watch {
		return r.runWatch(ctx, nil)
	}
	return 0
}

func (r *runner) fail(msg string, err error) {
	fmt.Fprintln(r.stderr, errorStyle.Render(msg+": "+err.Error()))
}

func (r *runner) runFind() int {
	results, err := r.idx.FindSymbol(r.opts.find)
	if err != nil {
		r.fail("lookup failed", err)
		return 1
	}
	printSymbols(r.stdout, fmt.Sprintf("Matches for %q", r.opts.find), results)
	if len(results) == 0 {
		return 1
	}
	return 0
}

func (r *runner) runAll() int {
	all, err := r.idx.GetAllSymbols()
	if err != nil {
		r.fail("failed to read symbols", err)
		return 1
	}
	printSymbols(r.stdout, "Symbols", all)
	return 0
}

func (r *runner) runQuick(ctx context.Context) int {
	start := time.Now()
	if err := r.idx.BuildIndexQuick(ctx, r.dir); err != nil {
		r.fail("quick build failed", err)
		return 1
	}
	all, err := r.idx.GetAllSymbols()
	if err != nil {
		r.fail("failed to read symbols", err)
		return 1
	}
	printBuildSummary(r.stdout, buildSummary{dir: r.dir, id: r.idx.DirectoryID(), symbols: len(all), duration: time.Since(start)})
	return 0
}

// runTarget indexes one path on top of a quick build and prints what it
// contributed.
func (r *runner) runTarget(ctx context.Context) int {
	if err := r.idx.BuildIndexQuick(ctx, r.dir); err != nil {
		r.fail("quick build failed", err)
		return 1
	}
	target := r.opts.target
	if !filepath.IsAbs(target) {
		target = filepath.Join(r.dir, target)
	}
	if err := r.idx.IndexSpecificTarget(ctx, target); err != nil {
		r.fail("failed to index target", err)
		return 1
	}
	all, err := r.idx.GetAllSymbols()
	if err != nil {
		r.fail("failed to read symbols", err)
		return 1
	}
	matched := make([]symbols.Symbol, 0)
	for _, sym := range all {
		if sym.FilePath == target {
			matched = append(matched, sym)
		}
	}
	printSymbols(r.stdout, "Symbols in "+target, matched)
	return 0
}

func (r *runner) runPending(ctx context.Context) int {
	if err := r.idx.BuildIndex(ctx, r.dir); err != nil {
		r.fail("build failed", err)
		return 1
	}
	count := r.idx.PendingFileCount()
	if count == 0 {
		fmt.Fprintln(r.stdout, statusStyle.Render("index complete, nothing pending"))
		return 0
	}
	fmt.Fprintf(r.stdout, "Pending files: %d\n", count)
	return 0
}

func (r *runner) runRemove(ctx context.Context) int {
	if !r.idx.IndexExists(r.dir) {
		fmt.Fprintln(r.stdout, statusStyle.Render("no stored index for "+r.dir))
		return 0
	}
	if err := r.idx.BuildIndexQuick(ctx, r.dir); err != nil {
		r.fail("failed to open index", err)
		return 1
	}
	if err := r.idx.RemoveSymbolIndex(); err != nil {
		r.fail("failed to remove index", err)
		return 1
	}
	fmt.Fprintln(r.stdout, "Removed index for "+r.dir)
	return 0
}

func (r *runner) runHistory() int {
	if r.history == nil {
		fmt.Fprintln(r.stderr, "build history is disabled (history.enabled=false)")
		return 1
	}
	id, ok := r.idx.Registry().LookupID(r.dir)
	if !ok {
		fmt.Fprintln(r.stdout, statusStyle.Render("no stored index for "+r.dir))
		return 0
	}
	runs, err := r.history.Recent(id, r.opts.historyLimit)
	if err != nil {
		r.fail("failed to read build history", err)
		return 1
	}
	printHistory(r.stdout, r.dir, runs)
	return 0
}

// runWatch blocks until ctx ends, rebuilding on filesystem changes. notify,
// when set, runs after every cycle.
func (r *runner) runWatch(ctx context.Context, notify func()) int {
	w, err := r.startWatcher(ctx, notify)
	if err != nil {
		r.fail("failed to start watcher", err)
		return 1
	}
	defer w.Close()

	fmt.Fprintln(r.stdout, statusStyle.Render("watching "+r.dir+" (ctrl+c to stop)"))
	<-ctx.Done()
	return 0
}

func (r *runner) startWatcher(ctx context.Context, notify func()) (*watcher.Watcher, error) {
	classifier, err := traversal.NewClassifier(r.cfg.Exclude.Dirs, r.cfg.Exclude.Files)
	if err != nil {
		return nil, err
	}
	limiter := util.NewLimiter(r.cfg.Watch.Rate, r.cfg.Watch.Burst)
	driver := watcher.NewDriver(r.idx, r.dir, limiter, slog.Default())

	w, err := watcher.NewWatcher(r.cfg.Watch.Debounce, classifier, func(paths []string) {
		driver.Handle(ctx, paths)
		if notify != nil {
			notify()
		}
	})
	if err != nil {
		return nil, err
	}
	w.SetLogger(slog.Default())
	w.Ignore(r.cfg.Index.StorageDir, filepath.Dir(r.cfg.History.Path))
	if err := w.Watch([]string{r.dir}); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func loadConfig(path, cwd string) (*config.Config, string, error) {
	if path != defaultConfigPath {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	for _, candidate := range defaultConfigCandidates(cwd) {
		cfg, err := config.Load(candidate)
		if err == nil {
			return cfg, candidate, nil
		}
		if !os.IsNotExist(err) {
			return nil, "", err
		}
	}
	return config.Default(), "", nil
}

func defaultConfigCandidates(cwd string) []string {
	candidates := []string{filepath.Join(cwd, "symindex.toml")}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "symindex", "symindex.toml"))
	} else if home, err := os.UserHomeDir(); err == nil && home != "" {
		candidates = append(candidates, filepath.Join(home, ".config", "symindex", "symindex.toml"))
	}
	return candidates
}

func openHistoryStoreIfEnabled(cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		if history.IsCorruptError(err) {
			slog.Warn("build history unavailable", "path", cfg.History.Path, "error", err)
			return nil, nil
		}
		return nil, err
	}
	slog.Debug("build history opened", "path", store.Path())
	return store, nil
}

func configureLogging(uiMode, verbose bool, fallback io.Writer) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := fallback
	closeFn := func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "symindex", "symindex.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "symindex", "symindex.log")
	}

	return "symindex.log"
}
