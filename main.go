package main

import (
	"fmt"
	"os"

	"findash/cmd/export"
	"findash/cmd/importcsv"
	"findash/cmd/initdb"
	"findash/cmd/reapply"
	"findash/cmd/root"
	"findash/cmd/serve"
)

func init() {
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(importcsv.Cmd)
	root.Cmd.AddCommand(reapply.Cmd)
	root.Cmd.AddCommand(initdb.Cmd)
	root.Cmd.AddCommand(export.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
