// Package reapply contains the command that re-runs the categorization
// rules over every uncategorized transaction.
package reapply

import (
	"findash/cmd/root"
	"findash/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd is the reapply command.
var Cmd = &cobra.Command{
	Use:   "reapply",
	Short: "Apply the active rules to all uncategorized transactions",
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	app, err := root.BuildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	updated, err := app.Service.ReapplyRules(cmd.Context())
	if err != nil {
		return err
	}

	root.Log.Info("Reapply complete", logging.F("updated", updated))
	return nil
}
