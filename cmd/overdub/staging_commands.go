package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"overdub/internal/workspace"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Manage run staging directories",
	}

	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))

	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List leftover run directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dirs, err := listRunDirectories(cfg.Paths.StagingDir)
			if err != nil {
				return fmt.Errorf("list staging directories: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No run directories found")
				return nil
			}

			var totalSize int64
			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				totalSize += dir.size
				rows = append(rows, []string{
					dir.name,
					formatDuration(time.Since(dir.modTime).Truncate(time.Minute)),
					formatBytes(dir.size),
				})
			}
			fmt.Fprintf(out, "Staging directory: %s\n\n", cfg.Paths.StagingDir)
			fmt.Fprintln(out, renderTable(
				[]tableColumn{
					{Title: "Run directory"},
					{Title: "Age", RightAlign: true},
					{Title: "Size", RightAlign: true},
				},
				rows,
			))
			fmt.Fprintf(out, "\nTotal: %d directories, %s\n", len(dirs), formatBytes(totalSize))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove leftover run directories",
		Long: `Remove run directories left behind by interrupted or crashed runs.

By default only directories older than the --older-than cutoff are removed,
so a run in progress keeps its workspace. Pass --older-than 0 to remove
everything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			result := workspace.CleanStale(cmd.Context(), cfg.Paths.StagingDir, olderThan, logger)
			out := cmd.OutOrStdout()
			if len(result.Removed) == 0 && len(result.Errors) == 0 {
				fmt.Fprintln(out, "No run directories to clean")
				return nil
			}
			if len(result.Errors) > 0 {
				fmt.Fprintf(out, "Removed %d run directories, %d errors\n", len(result.Removed), len(result.Errors))
				for _, e := range result.Errors {
					fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
				}
				return nil
			}
			fmt.Fprintf(out, "Removed %d run directories\n", len(result.Removed))
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Only remove directories older than this")
	return cmd
}

type runDirInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func listRunDirectories(stagingDir string) ([]runDirInfo, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	dirs := make([]runDirInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "run-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		var size int64
		_ = filepath.WalkDir(filepath.Join(stagingDir, entry.Name()), func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if fi, ferr := d.Info(); ferr == nil {
				size += fi.Size()
			}
			return nil
		})
		dirs = append(dirs, runDirInfo{name: entry.Name(), size: size, modTime: info.ModTime()})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].modTime.After(dirs[j].modTime) })
	return dirs, nil
}

func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	return fmt.Sprintf("%dd", days)
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
