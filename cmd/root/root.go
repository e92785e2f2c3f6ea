// Package root contains the root command and the application wiring shared
// by every subcommand.
package root

import (
	"fmt"

	"findash/internal/aggregate"
	"findash/internal/catalog"
	"findash/internal/config"
	"findash/internal/ingest"
	"findash/internal/logging"
	"findash/internal/profile"
	"findash/internal/rules"
	"findash/internal/service"
	"findash/internal/store"

	"github.com/spf13/cobra"
)

var (
	// Cfg is the resolved configuration, populated before any command runs.
	Cfg *config.Config

	// Log is the shared logger instance for commands.
	Log logging.Logger = logging.NewNopLogger()

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "findash",
		Short: "A personal finance dashboard over bank CSV exports.",
		Long: `findash ingests semicolon-separated bank CSV exports, categorizes
transactions with keyword rules and serves category and cashflow aggregates
over a JSON API.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to findash!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}
			Cfg = cfg
			Log = logging.NewLogrusAdapterFromLogger(config.ConfigureLogging(cfg))
			return nil
		},
	}
)

// App bundles the wired application components a command needs. Commands
// must Close it when done.
type App struct {
	Store   *store.Store
	Service *service.Service
	Catalog *catalog.Catalog
}

// BuildApp opens the database, runs migrations and wires the service stack
// from the resolved configuration.
func BuildApp() (*App, error) {
	prof, err := profile.Lookup(Cfg.Import.Profile)
	if err != nil {
		return nil, fmt.Errorf("resolve import profile: %w", err)
	}

	st, err := store.New(Cfg.Database.Path, Log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	cat := catalog.New(st, Log)
	engine := rules.NewEngine(st, Log)
	importer := ingest.NewImporter(st, engine, prof, Log)
	agg := aggregate.New(prof)

	return &App{
		Store:   st,
		Service: service.New(st, cat, engine, importer, agg, Log),
		Catalog: cat,
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close store")
	}
}
