package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/rangedex/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(map[string]string{
					"version": version.Version,
					"commit":  version.Commit,
					"date":    version.Date,
				})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "rangectl %s (%s, %s)\n", version.Version, version.Commit, version.Date)
			return err //nolint:wrapcheck // terminal output
		},
	}
}
