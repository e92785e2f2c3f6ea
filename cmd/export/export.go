// Package export contains the command that writes stored transactions to a
// CSV file.
package export

import (
	"time"

	"findash/cmd/root"
	"findash/internal/apperr"
	"findash/internal/export"

	"github.com/spf13/cobra"
)

var (
	output    string
	startDate string
	endDate   string
	accountID int64
)

// Cmd is the export command.
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions in a date range to CSV",
	RunE:  run,
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "transactions.csv", "output CSV file")
	Cmd.Flags().StringVar(&startDate, "start", "", "range start (YYYY-MM-DD)")
	Cmd.Flags().StringVar(&endDate, "end", "", "range end (YYYY-MM-DD)")
	Cmd.Flags().Int64VarP(&accountID, "account", "a", 0, "optional account id filter")
	_ = Cmd.MarkFlagRequired("start")
	_ = Cmd.MarkFlagRequired("end")
}

func run(cmd *cobra.Command, args []string) error {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return &apperr.ValidationError{Field: "start", Reason: "expected YYYY-MM-DD"}
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return &apperr.ValidationError{Field: "end", Reason: "expected YYYY-MM-DD"}
	}

	app, err := root.BuildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	var account *int64
	if accountID != 0 {
		account = &accountID
	}

	txs, err := app.Service.ListTransactions(cmd.Context(), start, end, account)
	if err != nil {
		return err
	}

	return export.WriteTransactionsToFile(output, txs, root.Log)
}
