package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"playbridge/internal/repositories"
	"playbridge/internal/services"
	"playbridge/internal/shared"
	"playbridge/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config        *shared.Config
	configPath    string
	registry      *services.Registry
	logger        *log.Logger
	output        io.Writer
	authenticated map[string]bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Registry   *services.Registry
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Registry == nil {
		opts.Registry = services.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:        opts.Config,
		configPath:    opts.ConfigPath,
		registry:      opts.Registry,
		logger:        opts.Logger,
		output:        opts.Output,
		authenticated: map[string]bool{},
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, servicesCommand, playlistsCommand, exportCommand,
		syncCommand, jobsCommand, historyCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// service resolves a registered service and authenticates it on first use.
func (r *Runner) service(ctx context.Context, key string) (services.Service, error) {
	svc, err := r.registry.Get(key)
	if err != nil {
		return nil, err
	}

	if r.authenticated[key] {
		return svc, nil
	}

	switch key {
	case "spotify":
		if refresh := r.config.Credentials.Spotify.RefreshToken; refresh != "" {
			if err := svc.Authenticate(ctx, map[string]string{"refresh_token": refresh}); err != nil {
				return nil, fmt.Errorf("failed to authenticate spotify: %w", err)
			}
		}
	case "applemusic":
		// Token-based, configured at construction.
	}

	r.authenticated[key] = true
	return svc, nil
}

// engineFor resolves a source/destination pair into a sync engine.
func (r *Runner) engineFor(ctx context.Context, source, destination string) (*tasks.PlaylistEngine, services.Service, error) {
	if source == destination {
		return nil, nil, fmt.Errorf("%w: source and destination must differ", shared.ErrInvalidArgument)
	}

	src, err := r.service(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	dst, err := r.service(ctx, destination)
	if err != nil {
		return nil, nil, err
	}

	return tasks.NewPlaylistEngine(src, dst, r.logger), src, nil
}

// database opens the configured SQLite database and applies migrations.
// Returns nil without error when no database path is configured.
func (r *Runner) database() (*sql.DB, error) {
	path := r.config.Database.Path
	if path == "" {
		return nil, nil
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}
	if r.config.Database.MaxOpenConns > 0 {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// history opens the sync run repository, or returns nil when history is not
// configured. The caller must close the returned db when non-nil.
func (r *Runner) history() (*repositories.SyncRunRepository, *sql.DB, error) {
	db, err := r.database()
	if err != nil || db == nil {
		return nil, nil, err
	}
	return repositories.NewSyncRunRepository(db), db, nil
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
