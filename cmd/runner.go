package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/auth"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	palette     *ui.Palette
	service     services.Service
	store       auth.Store
	db          *sql.DB
	openBrowser func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config flag before any command runs. A nil Service
// is built on first use from an authorized YouTube client.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Service     services.Service
	Store       auth.Store
	OpenBrowser func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		palette:     ui.Default(),
		service:     opts.Service,
		store:       opts.Store,
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		buildCommand, resolveCommand, authCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app assembles the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "mixtape",
		Usage:   "Build a duration-bounded YouTube playlist from a list of songs",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("MIXTAPE_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

// Before loads configuration and applies environment overrides.
//
// A missing config file is not an error: defaults are used so setup commands can run.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if r.configPath == "" {
		r.configPath = cmd.String("config")
	}
	if r.config != nil {
		return ctx, nil
	}

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		r.config = shared.DefaultConfig()
	}

	r.config.ApplyEnv(nil)
	return ctx, nil
}

// After releases the database handle, if one was opened.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// database opens and migrates the configured database once per process.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// tokenStore returns the store selected by auth.store.
func (r *Runner) tokenStore() (auth.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	switch r.config.Auth.Store {
	case shared.StoreSQLite:
		db, err := r.database()
		if err != nil {
			return nil, err
		}
		r.store = repositories.NewCredentialRepository(db)
	default:
		r.store = auth.NewFileStore(r.config.Auth.TokenPath)
	}
	return r.store, nil
}

// provider builds the OAuth2 provider from configuration.
func (r *Runner) provider() (*auth.Provider, error) {
	store, err := r.tokenStore()
	if err != nil {
		return nil, err
	}

	google := r.config.Credentials.Google
	return auth.NewProvider(auth.ProviderOpts{
		ClientID:     google.ClientID,
		ClientSecret: google.ClientSecret,
		RedirectURI:  google.RedirectURI,
		Store:        store,
		Logger:       shared.WithLogger(r.logger, "component", "auth"),
		Output:       r.output,
		OpenBrowser:  r.openBrowser,
		Timeout:      r.config.Auth.CallbackTimeout,
		HTTPClient:   r.httpClient,
	})
}

// catalog returns the platform service, authorizing on first use.
func (r *Runner) catalog(ctx context.Context) (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	p, err := r.provider()
	if err != nil {
		return nil, err
	}
	client, err := p.Client(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := services.NewYouTubeService(ctx, services.YouTubeOpts{
		HTTPClient:        client,
		BaseURL:           r.config.YouTube.BaseURL,
		RequestsPerSecond: r.config.YouTube.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}
	r.service = svc
	return svc, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

func (r *Runner) writeHeader(title string) error {
	return r.writePlain("%s\n", r.palette.Title(title))
}

// exitCode maps an error onto the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
