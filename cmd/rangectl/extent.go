package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/rangedex"
)

func newExtentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extent",
		Short: "Show the indexed value range of a field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index, _ := cmd.Flags().GetString("index")
			field, _ := cmd.Flags().GetString("field")
			return withClient(cmd, func(ctx context.Context, c *rangedex.Client) error {
				ext, err := c.Extent(ctx, index, field)
				if err != nil {
					return err //nolint:wrapcheck // already prefixed
				}
				p := newPrinter(cmd)
				if p.isJSON() {
					return p.json(ext)
				}
				p.kv([][2]string{
					{"Field", ext.Field},
					{"Min", formatBound(ext.Min)},
					{"Max", formatBound(ext.Max)},
				})
				return nil
			})
		},
	}
	cmd.Flags().String("index", "", "index name")
	cmd.Flags().String("field", "", "field name")
	_ = cmd.MarkFlagRequired("index")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}
