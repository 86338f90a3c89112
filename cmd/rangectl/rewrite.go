package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/rangedex"
)

func newRewriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Rewrite a search request read from --file or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index, _ := cmd.Flags().GetString("index")
			file, _ := cmd.Flags().GetString("file")

			body, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *rangedex.Client) error {
				out, err := c.Rewrite(ctx, index, body)
				if err != nil {
					return err //nolint:wrapcheck // already prefixed
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err //nolint:wrapcheck // terminal output
			})
		},
	}
	cmd.Flags().String("index", "", "index name")
	cmd.Flags().StringP("file", "f", "", "request file (default: stdin)")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "" || file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file) //nolint:gosec // path chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}
