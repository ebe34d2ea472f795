package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"subshift/internal/subtitles"
)

func newRemoveSDHCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var inPlace bool

	cmd := &cobra.Command{
		Use:   "remove-sdh SUBTITLE",
		Short: "Strip sound descriptions from a subtitle file",
		Long: "Remove-sdh drops entries that only describe sounds, such as bracketed\n" +
			"cues and music markers, and strips inline descriptions from mixed\n" +
			"entries. Remaining entries are renumbered. By default the result is\n" +
			"written next to the input as NAME.no-sdh.srt.",
		Args: cobra.ExactArgs(1),
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

			cleaned := subtitles.RemoveSDH(cmd.Context(), entries, nil)
			removed := len(entries) - len(cleaned)

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "Would remove %d of %d entries\n", removed, len(entries))
				return nil
			}

			target := sdhOutputPath(args[0])
			if inPlace {
				target = args[0]
				if cfg.Backup.Enabled {
					backups, err := ctx.backupManager()
					if err != nil {
						return err
					}
					backupPath, err := backups.Create(args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Backed up original to %s\n", backupPath)
				}
			}

			if err := subtitles.WriteFile(target, cleaned); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %d of %d entries, %d remain: %s\n", removed, len(entries), len(cleaned), target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be removed without writing")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Overwrite the input file instead of writing NAME.no-sdh.srt")
	return cmd
}

func sdhOutputPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".no-sdh" + ext
}
