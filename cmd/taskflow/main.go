package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/language"

	"github.com/Joseda-hg/taskflow/internal/api"
	"github.com/Joseda-hg/taskflow/internal/config"
	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/store"
	"github.com/Joseda-hg/taskflow/internal/tui"
	"github.com/Joseda-hg/taskflow/internal/web"
)

type app struct {
	cfg     config.Config
	logger  *slog.Logger
	client  *api.Client
	history *db.Store
	store   *store.Store
	closers []io.Closer
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("taskflow: %v", err))
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("taskflow", flag.ContinueOnError)
	configPathFlag := flags.String("config", "", "config file path")
	dbPathFlag := flags.String("db", "", "sqlite db path")
	apiFlag := flags.String("api", "", "backend base URL")
	webFlag := flags.Bool("web", false, "enable web server")
	webOnlyFlag := flags.Bool("web-only", false, "run web server only")
	portFlag := flags.Int("port", 0, "web server port")
	logLevelFlag := flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "usage: taskflow [flags] [tui|web|list|export|import|history|restore|health|version|env] [args]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	command := "tui"
	rest := flags.Args()
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}
	if *webOnlyFlag {
		command = "web"
	}

	switch command {
	case "version":
		return runVersion()
	case "env":
		fmt.Print(config.Usage())
		return nil
	}

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cfgPath, flagOverrides{
		dbPath:   *dbPathFlag,
		apiURL:   *apiFlag,
		web:      *webFlag,
		port:     *portFlag,
		logLevel: *logLevelFlag,
	})
	if err != nil {
		return err
	}

	a, err := newApp(cfg, command == "tui")
	if err != nil {
		return err
	}
	defer a.close()

	switch command {
	case "tui":
		return a.runTUI()
	case "web":
		return a.runWeb()
	case "list":
		return a.runList(rest)
	case "export":
		return a.runExport(rest)
	case "import":
		return a.runImport(rest)
	case "history":
		return a.runHistory()
	case "restore":
		return a.runRestore(rest)
	case "health":
		return a.runHealth()
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

type flagOverrides struct {
	dbPath   string
	apiURL   string
	web      bool
	port     int
	logLevel string
}

func (o flagOverrides) apply(c *config.Config, cfgPath string) {
	if o.dbPath != "" {
		c.DBPath = o.dbPath
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(filepath.Dir(cfgPath), "taskflow.db")
	}
	if o.apiURL != "" {
		c.APIBaseURL = o.apiURL
	}
	if o.web {
		c.WebEnabled = true
	}
	if o.port != 0 {
		c.WebPort = o.port
	}
	if c.WebPort == 0 {
		c.WebPort = 8080
	}
	if o.logLevel != "" {
		c.LogLevel = o.logLevel
	}
}

// loadConfig returns the effective config (file, environment, flags) and saves
// the file with flag changes only, so TASKFLOW_* overrides stay per run.
func loadConfig(cfgPath string, overrides flagOverrides) (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	stored, err := config.LoadFile(cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	overrides.apply(&cfg, cfgPath)
	overrides.apply(&stored, cfgPath)

	if err := config.Save(cfgPath, stored); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

// newApp wires logging, the snapshot database, the backend client and the store.
// The TUI owns the terminal, so its logs go to a file beside the database.
func newApp(cfg config.Config, logToFile bool) (*app, error) {
	a := &app{cfg: cfg}

	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	var output io.Writer = os.Stderr
	if logToFile {
		if err := config.EnsureDir(cfg.DBPath); err != nil {
			return nil, err
		}
		logPath := filepath.Join(filepath.Dir(cfg.DBPath), "taskflow.log")
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, logFile)
		output = logFile
	}
	a.logger = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	history, err := openHistory(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.history = history
	a.closers = append(a.closers, history.DB)

	collation := language.English
	if tag, err := language.Parse(cfg.Locale); err == nil {
		collation = tag
	} else {
		a.logger.Warn("unknown locale, sorting titles in English", slog.String("locale", cfg.Locale))
	}

	a.client = api.New(cfg.APIBaseURL, cfg.APITimeout(), a.logger)
	a.store = store.New(a.client,
		store.WithLogger(a.logger),
		store.WithSaver(a.history),
		store.WithCollator(collation),
	)
	return a, nil
}

func openHistory(cfg config.Config) (*db.Store, error) {
	if err := config.EnsureDir(cfg.DBPath); err != nil {
		return nil, err
	}
	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	history := db.NewStore(sqlDB)
	if cfg.SnapshotKeep > 0 {
		history.Keep = cfg.SnapshotKeep
	}
	return history, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

// bootstrap loads the session from the backend. When the backend is unreachable
// the last saved snapshot is restored so the session keeps working offline.
func (a *app) bootstrap(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.APITimeout())
	defer cancel()

	if err := a.store.Initialize(ctx); err != nil {
		a.logger.Warn("backend unavailable", slog.Any("err", err))
		a.restoreLatest(ctx)
		return
	}
	if err := a.store.LoadTemplates(ctx); err != nil {
		a.logger.Warn("templates unavailable", slog.Any("err", err))
	}
}

func (a *app) restoreLatest(ctx context.Context) {
	latest, err := a.history.LatestSnapshot(ctx)
	if err != nil {
		if !errors.Is(err, db.ErrNoSnapshot) {
			a.logger.Error("load latest snapshot failed", slog.Any("err", err))
		}
		return
	}
	if !a.store.ImportSnapshot(latest.Payload) {
		a.logger.Error("latest snapshot rejected", slog.Int64("snapshot_id", latest.ID))
		return
	}
	a.logger.Info("restored snapshot", slog.Int64("snapshot_id", latest.ID), slog.Time("saved_at", latest.CreatedAt))
}

func (a *app) runTUI() error {
	a.bootstrap(context.Background())

	if a.cfg.WebEnabled {
		server := a.newWebServer()
		go func() {
			a.logger.Info("web server running", slog.String("addr", "http://localhost"+server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("web server error", slog.Any("err", err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
	}

	return tui.Run(tui.Options{
		Store:    a.store,
		Views:    a.history,
		Settings: a.history,
		Logger:   a.logger,
	})
}

func (a *app) runWeb() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.bootstrap(ctx)
	server := a.newWebServer()

	errs := make(chan error, 1)
	go func() {
		a.logger.Info("web server running", slog.String("addr", "http://localhost"+server.Addr))
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func (a *app) newWebServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.WebPort),
		Handler:           web.NewServer(a.store, a.history, a.logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
