package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/modsync/internal/archive"
	"github.com/desertthunder/modsync/internal/repositories"
	"github.com/desertthunder/modsync/internal/services"
	"github.com/desertthunder/modsync/internal/shared"
	"github.com/desertthunder/modsync/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	store      *repositories.ProfileStore
	catalog    *services.CatalogService
	downloader *services.DownloadService
	archive    *archive.Reader
	db         *sql.DB
	history    *repositories.RunHistory
	engine     *tasks.ModEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration and wires the services from it.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		archive:    archive.NewReader(),
	}
	r.wire()
	return r
}

// wire (re)builds the services from the current config, logger and database.
func (r *Runner) wire() {
	cfg := r.config

	r.store = repositories.NewProfileStore(cfg.ProfilesDir(), shared.WithLogger(r.logger, "component", "store"))
	r.catalog = services.NewCatalogService(services.CatalogOpts{
		HTTPClient: r.httpClient,
		Timeout:    cfg.Catalog.Timeout,
		UserAgent:  cfg.Catalog.UserAgent,
		BaseURL:    cfg.Catalog.BaseURL,
		Logger:     shared.WithLogger(r.logger, "component", "catalog"),
	})
	r.downloader = services.NewDownloadService(services.DownloadOpts{
		HTTPClient:     r.httpClient,
		Timeout:        cfg.Download.Timeout,
		UserAgent:      cfg.Catalog.UserAgent,
		CheckDiskSpace: cfg.Download.CheckDiskSpace,
		Logger:         shared.WithLogger(r.logger, "component", "download"),
	})

	backoff := cfg.Download.RetryBackoff
	if backoff == 0 {
		backoff = -1
	}

	opts := tasks.Options{
		MaxAttempts:  cfg.Download.MaxAttempts,
		RetryBackoff: backoff,
		Limiter:      newLimiter(cfg.Download.PerSecond),
		Logger:       shared.WithLogger(r.logger, "component", "engine"),
	}
	if r.db != nil {
		r.history = repositories.NewRunHistory(repositories.NewSyncRunRepository(r.db), shared.WithLogger(r.logger, "component", "history"))
		opts.Recorder = r.history
	} else {
		r.history = nil
	}
	r.engine = tasks.NewModEngine(r.catalog, r.downloader, r.store, opts)
}

// newLimiter paces downloads at perSecond with no burst. Zero disables pacing.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Before loads the config named by --config, applies the log level and opens the run history database.
//
// A missing config file falls back to defaults. A database that cannot be opened disables history.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
		if _, err := os.Stat(path); err == nil {
			cfg, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			r.config = cfg
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
		}
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("debug") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	if err := r.openHistory(); err != nil {
		r.logger.Warn("run history disabled", "error", err)
	}

	r.wire()
	return ctx, nil
}

// After closes the history database.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.wire()
	return err
}

func (r *Runner) openHistory() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return nil
}

// SetLogger swaps the logger and rewires the services that hold it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.wire()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, profileCommand, syncCommand, catalogCommand, historyCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
