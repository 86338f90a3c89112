// Command rangectl rewrites search requests and manages segments against the
// configured segment store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rangectl:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rangectl",
		Short:         "Rewrite range queries and manage segments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("env", "", "logger environment: local, dev or prod (or ENV)")
	cmd.PersistentFlags().String("config-env", "", "config file name under config/ (defaults to --env)")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format: table or json")

	cmd.AddCommand(
		newRewriteCmd(),
		newSegmentCmd(),
		newExtentCmd(),
		newVersionCmd(),
	)
	return cmd
}
