// Package importcsv contains the command that ingests a bank CSV export.
package importcsv

import (
	"fmt"
	"os"

	"findash/cmd/root"
	"findash/internal/logging"

	"github.com/spf13/cobra"
)

var (
	file      string
	accountID int64
)

// Cmd is the import command.
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import a bank CSV export into an account",
	RunE:  run,
}

func init() {
	Cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to import")
	Cmd.Flags().Int64VarP(&accountID, "account", "a", 0, "target account id")
	_ = Cmd.MarkFlagRequired("file")
	_ = Cmd.MarkFlagRequired("account")
}

func run(cmd *cobra.Command, args []string) error {
	app, err := root.BuildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open CSV file: %w", err)
	}
	defer f.Close()

	stats, err := app.Service.ImportCSV(cmd.Context(), f, accountID)
	if err != nil {
		return err
	}

	root.Log.Info("Import complete",
		logging.F("total_rows", stats.TotalRows),
		logging.F("imported", stats.Imported),
		logging.F("duplicates", stats.Duplicates),
		logging.F("errors", stats.Errors))
	for _, detail := range stats.ErrorDetails {
		root.Log.Warn(detail)
	}
	return nil
}
