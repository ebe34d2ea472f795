package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subshift/internal/subtitles"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var showBackups bool

	cmd := &cobra.Command{
		Use:   "inspect SUBTITLE",
		Short: "Show statistics for a subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if err := subtitles.ValidatePath(args[0]); err != nil {
				return err
			}
			entries, err := subtitles.ParseFile(args[0])
			if err != nil {
				return err
			}

			index := subtitles.NewIndex(entries, cfg.Alignment.MinChars)
			stats := index.ComputeStats()

			out := cmd.OutOrStdout()
			headers := []string{"Metric", "Value"}
			rows := [][]string{
				{"Entries", fmt.Sprintf("%d", stats.TotalEntries)},
				{"Duration", formatClock(stats.DurationSeconds)},
				{"Minutes with text", fmt.Sprintf("%d", stats.TotalMinutes)},
				{"Usable minutes", fmt.Sprintf("%d (>= %d chars)", stats.ValidMinutes, stats.MinChars)},
				{"Avg chars per entry", fmt.Sprintf("%.1f", stats.AvgCharsPerEntry)},
			}
			fmt.Fprintln(out, reportTable(headers, rows, 1))

			if showBackups {
				backups, err := ctx.backupManager()
				if err != nil {
					return err
				}
				backupStats, err := backups.Stats()
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Backups in %s: %d (%d small, %d large, %.1f KiB total)\n",
					backups.Dir(),
					backupStats.TotalBackups,
					backupStats.SmallFiles,
					backupStats.LargeFiles,
					float64(backupStats.TotalBytes)/1024,
				)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showBackups, "backups", false, "Also summarize the backup directory")
	return cmd
}
