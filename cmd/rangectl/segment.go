package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/rangedex"
)

func newSegmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Manage segments",
	}
	cmd.PersistentFlags().String("index", "", "index name")
	_ = cmd.MarkPersistentFlagRequired("index")
	cmd.AddCommand(
		newSegmentAddCmd(),
		newSegmentListCmd(),
		newSegmentDropCmd(),
	)
	return cmd
}

func newSegmentAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Seal a JSON array of documents into a new segment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index, _ := cmd.Flags().GetString("index")
			file, _ := cmd.Flags().GetString("file")

			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			var docs []map[string]any
			dec := json.NewDecoder(bytes.NewReader(data))
			dec.UseNumber()
			if err := dec.Decode(&docs); err != nil {
				return fmt.Errorf("documents must be a JSON array of objects: %w", err)
			}

			return withClient(cmd, func(ctx context.Context, c *rangedex.Client) error {
				seg, err := c.AddSegment(ctx, index, docs)
				if err != nil {
					return err //nolint:wrapcheck // already prefixed
				}
				p := newPrinter(cmd)
				if p.isJSON() {
					return p.json(seg)
				}
				p.kv(segmentPairs(seg))
				return nil
			})
		},
	}
	cmd.Flags().StringP("file", "f", "", "documents file (default: stdin)")
	return cmd
}

func newSegmentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List segments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index, _ := cmd.Flags().GetString("index")
			return withClient(cmd, func(ctx context.Context, c *rangedex.Client) error {
				segs, err := c.Segments(ctx, index)
				if err != nil {
					return err //nolint:wrapcheck // already prefixed
				}
				p := newPrinter(cmd)
				if p.isJSON() {
					return p.json(segs)
				}
				rows := make([][]string, len(segs))
				for i, s := range segs {
					rows[i] = []string{s.ID, strconv.Itoa(s.Docs), s.CreatedAt.Format(time.RFC3339)}
				}
				p.table([]string{"ID", "DOCS", "CREATED"}, rows)
				return nil
			})
		},
	}
}

func newSegmentDropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <id>",
		Short: "Drop a segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, _ := cmd.Flags().GetString("index")
			return withClient(cmd, func(ctx context.Context, c *rangedex.Client) error {
				if err := c.DropSegment(ctx, index, args[0]); err != nil {
					return err //nolint:wrapcheck // already prefixed
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Dropped segment %s\n", args[0])
				return nil
			})
		},
	}
}

func segmentPairs(s rangedex.Segment) [][2]string {
	return [][2]string{
		{"ID", s.ID},
		{"Docs", strconv.Itoa(s.Docs)},
		{"Created", s.CreatedAt.Format(time.RFC3339)},
	}
}
