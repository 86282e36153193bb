package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"cognimed-be/internal/service"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newRebuildCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Re-embed every post and replace the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex()
			if err != nil {
				return err
			}
			return runRebuild(cmd, idx, os.Stderr, quiet)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Disable the progress bar")
	return cmd
}

func runRebuild(cmd *cobra.Command, idx service.IIndexService, progressOut io.Writer, quiet bool) error {
	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if quiet || total <= 0 {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(progressOut),
				progressbar.OptionSetDescription("embedding"),
				progressbar.OptionSetWidth(32),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}

	res, err := idx.Rebuild(cmd.Context(), progress)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("✔"), res.Detail)
	return nil
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index backend and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex()
			if err != nil {
				return err
			}
			return runStats(cmd, idx)
		},
	}
}

func runStats(cmd *cobra.Command, idx service.IIndexService) error {
	stats, err := idx.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	label := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", label("backend:  "), stats.Backend)
	fmt.Fprintf(out, "%s %d\n", label("entries:  "), stats.Entries)
	fmt.Fprintf(out, "%s %d\n", label("dimension:"), stats.Dimension)
	fmt.Fprintf(out, "%s %s\n", label("location: "), stats.Location)
	return nil
}

func newSearchCmd() *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a similarity search against the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex()
			if err != nil {
				return err
			}
			return runSearch(cmd, idx, strings.Join(args, " "), k)
		},
	}
	cmd.Flags().IntVarP(&k, "topk", "k", service.DefaultRetrieveK, "Number of hits to return")
	return cmd
}

func runSearch(cmd *cobra.Command, idx service.IIndexService, query string, k int) error {
	hits, err := idx.Search(cmd.Context(), query, k)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(out, color.YellowString("no hits"))
		return nil
	}
	for i, hit := range hits {
		fmt.Fprintf(out, "%s %s %s\n",
			color.CyanString("%2d.", i+1),
			color.New(color.Faint).Sprintf("%.4f", hit.Score),
			hit.Text,
		)
	}
	return nil
}
