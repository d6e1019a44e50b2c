package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"overdub/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent translation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limitFlag)
			if err != nil {
				return fmt.Errorf("load run history: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				voiceLabel := run.Voice
				if run.UsedFallbackVoice && voiceLabel != "" {
					voiceLabel += " (fallback)"
				}
				rows = append(rows, []string{
					run.ID[:8],
					filepath.Base(run.SourcePath),
					run.TargetLanguage,
					voiceLabel,
					string(run.Status),
					run.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{
					{Title: "Run"},
					{Title: "Source", MaxWidth: sourcePathWidth},
					{Title: "Lang"},
					{Title: "Voice"},
					{Title: "Status"},
					{Title: "Started", RightAlign: true},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
