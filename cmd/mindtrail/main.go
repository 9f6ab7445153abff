package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	exportcmder "github.com/mindtrailco/mindtrail/cmd/mindtrail/export"
	sessionscmder "github.com/mindtrailco/mindtrail/cmd/mindtrail/sessions"
)

func main() {
	root := &cobra.Command{
		Use:   "mindtrail",
		Short: "Inspect and manage conversations on a mindtrail server",
	}

	root.AddCommand(sessionscmder.NewSessionsCmd())
	root.AddCommand(exportcmder.NewExportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
