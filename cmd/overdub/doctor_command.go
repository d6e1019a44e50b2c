package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"overdub/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that required external tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(results))
			missing := 0
			for _, res := range results {
				state := "ok"
				if !res.Available {
					state = "missing"
					if !res.Optional {
						missing++
					}
				}
				detail := res.Detail
				if detail == "" {
					detail = res.Description
				}
				rows = append(rows, []string{res.Name, res.Command, state, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{
					{Title: "Tool"},
					{Title: "Command"},
					{Title: "Status"},
					{Title: "Detail"},
				},
				rows,
			))
			if missing > 0 {
				return fmt.Errorf("%d required tools missing", missing)
			}
			return nil
		},
	}
}
