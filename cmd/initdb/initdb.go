// Package initdb contains the command that bootstraps the database: it runs
// the migrations and seeds the category catalog and the default accounts.
package initdb

import (
	"findash/cmd/root"
	"findash/internal/catalog"
	"findash/internal/logging"

	"github.com/spf13/cobra"
)

var seedFile string

// Cmd is the init command.
var Cmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database schema and seed categories and accounts",
	RunE:  run,
}

func init() {
	Cmd.Flags().StringVar(&seedFile, "seed", "", "category seed YAML (defaults to seed.categories_file from config)")
}

func run(cmd *cobra.Command, args []string) error {
	app, err := root.BuildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	path := seedFile
	if path == "" {
		path = root.Cfg.Seed.CategoriesFile
	}

	seed, err := catalog.LoadSeedFile(path)
	if err != nil {
		return err
	}
	createdCategories, err := app.Catalog.Seed(cmd.Context(), seed)
	if err != nil {
		return err
	}

	createdAccounts, err := catalog.SeedAccounts(cmd.Context(), app.Store, root.Log)
	if err != nil {
		return err
	}

	root.Log.Info("Database initialized",
		logging.F("categories_created", createdCategories),
		logging.F("accounts_created", createdAccounts))
	return nil
}
