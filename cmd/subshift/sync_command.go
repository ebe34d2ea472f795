package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"subshift/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun          bool
		removeSDH       bool
		samples         int
		threshold       float64
		searchWindow    int
		minChars        int
		outlierFilter   string
		uniformVariance float64
	)

	cmd := &cobra.Command{
		Use:   "sync MEDIA SUBTITLE",
		Short: "Correct a subtitle file's timing against its media",
		Long: "Sync extracts audio samples from MEDIA, transcribes them, aligns the\n" +
			"transcripts against SUBTITLE, and rewrites the subtitle file with the\n" +
			"derived time correction. The original file is backed up first.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("similarity-threshold") {
				cfg.Alignment.SimilarityThreshold = threshold
			}
			if flags.Changed("search-window") {
				cfg.Alignment.SearchWindowMinutes = searchWindow
			}
			if flags.Changed("min-chars") {
				cfg.Alignment.MinChars = minChars
			}
			if flags.Changed("outlier-filter") {
				cfg.Correction.OutlierFilter = outlierFilter
			}
			if flags.Changed("uniform-variance") {
				cfg.Correction.UniformVarianceThreshold = uniformVariance
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			runner, cleanup, err := ctx.newSynchronizer()
			if err != nil {
				return err
			}
			defer cleanup()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			result, err := runner.Run(runCtx, syncer.Options{
				MediaPath:      args[0],
				SubtitlePath:   args[1],
				DryRun:         dryRun,
				RemoveSDH:      removeSDH,
				SampleOverride: samples,
			})
			if result != nil {
				printSyncSummary(cmd, result)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Analyze only, leave the subtitle file untouched")
	cmd.Flags().BoolVar(&removeSDH, "remove-sdh", false, "Strip sound descriptions after correction")
	cmd.Flags().IntVar(&samples, "samples", 0, "Initial audio sample count (default from config)")
	cmd.Flags().Float64Var(&threshold, "similarity-threshold", 0, "Similarity a match must reach, 0 to 1")
	cmd.Flags().IntVar(&searchWindow, "search-window", 0, "Search window around each sample, in minutes")
	cmd.Flags().IntVar(&minChars, "min-chars", 0, "Minimum candidate text length in characters")
	cmd.Flags().StringVar(&outlierFilter, "outlier-filter", "", "Offset outlier strategy: adaptive, iqr, or zscore")
	cmd.Flags().Float64Var(&uniformVariance, "uniform-variance", 0, "Offset deviation below which a single shift is applied, in seconds")

	return cmd
}

func printSyncSummary(cmd *cobra.Command, result *syncer.Result) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out)
	if len(result.Matches) > 0 {
		headers := []string{"Sample", "Audio", "Minute", "Subtitle", "Offset", "Similarity", "Match"}
		rows := make([][]string, 0, len(result.Matches))
		for _, match := range result.Matches {
			matched := "no"
			if match.IsMatch {
				matched = "yes"
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", match.SampleIndex),
				formatClock(match.SampleTimestamp),
				fmt.Sprintf("%d", match.SubtitleMinute),
				formatClock(match.SubtitleTimestamp),
				fmt.Sprintf("%+.2fs", match.Offset()),
				fmt.Sprintf("%.0f%%", match.Similarity*100),
				matched,
			})
		}
		fmt.Fprintln(out, reportTable(headers, rows, 0, 1, 2, 3, 4, 5))
	}

	fmt.Fprintln(out, renderStatusLine("Attempts", statusInfo, fmt.Sprintf("%d", result.Attempts), colorize))
	fmt.Fprintln(out, renderStatusLine("Samples used", statusInfo, fmt.Sprintf("%d", result.SamplesUsed), colorize))
	fmt.Fprintln(out, renderStatusLine("Estimated cost", statusInfo, fmt.Sprintf("$%.3f", result.EstimatedCost), colorize))
	if result.Stats.TotalMatches > 0 {
		fmt.Fprintln(out, renderStatusLine("Success rate", statusInfo,
			fmt.Sprintf("%.0f%% (%d/%d)", result.Stats.SuccessRate*100, result.Stats.SuccessfulMatches, result.Stats.TotalMatches), colorize))
		fmt.Fprintln(out, renderStatusLine("Avg similarity", statusInfo, fmt.Sprintf("%.0f%%", result.Stats.AvgSimilarity*100), colorize))
	}

	if result.Correction.Uniform || len(result.Correction.Points) > 0 {
		if result.Correction.Uniform {
			fmt.Fprintln(out, renderStatusLine("Correction", statusOK,
				fmt.Sprintf("uniform shift of %+.2fs", result.Correction.UniformOffset), colorize))
		} else {
			fmt.Fprintln(out, renderStatusLine("Correction", statusOK,
				fmt.Sprintf("interpolated over %d offset points", len(result.Correction.Points)), colorize))
		}
	}
	if result.BackupPath != "" {
		fmt.Fprintln(out, renderStatusLine("Backup", statusOK, result.BackupPath, colorize))
	}
	switch {
	case result.DryRun:
		fmt.Fprintln(out, renderStatusLine("Output", statusWarn, "dry run, no files modified", colorize))
	case result.OutputPath != "":
		fmt.Fprintln(out, renderStatusLine("Output", statusOK, result.OutputPath, colorize))
	}
}
