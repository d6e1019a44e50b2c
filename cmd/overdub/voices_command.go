package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"overdub/internal/language"
	"overdub/internal/services/edgetts"
)

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	var languageFlag string

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List available synthesis voices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			tts := edgetts.NewService(edgetts.Config{
				VoicesURL: cfg.TTS.VoicesURL,
				Timeout:   time.Duration(cfg.TTS.TimeoutSeconds) * time.Second,
			})
			voices, err := tts.ListVoices(cmd.Context())
			if err != nil {
				return fmt.Errorf("list voices: %w", err)
			}

			if filter := strings.TrimSpace(languageFlag); filter != "" {
				primary := language.Primary(filter)
				filtered := voices[:0]
				for _, v := range voices {
					if strings.HasPrefix(strings.ToLower(v.Locale), primary) {
						filtered = append(filtered, v)
					}
				}
				voices = filtered
			}

			if len(voices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No voices found")
				return nil
			}

			sort.Slice(voices, func(i, j int) bool {
				if voices[i].Locale != voices[j].Locale {
					return voices[i].Locale < voices[j].Locale
				}
				return voices[i].ShortName < voices[j].ShortName
			})

			rows := make([][]string, 0, len(voices))
			for _, v := range voices {
				rows = append(rows, []string{v.ShortName, v.Locale, v.Gender})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{
					{Title: "Voice"},
					{Title: "Locale"},
					{Title: "Gender"},
				},
				rows,
			))
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d voices\n", len(voices))
			return nil
		},
	}

	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Only show voices for this language code")
	return cmd
}
