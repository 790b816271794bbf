package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scenecraft/internal/mediaset"
	"scenecraft/internal/services"
)

type matchJSON struct {
	Sets     []setJSON          `json:"sets"`
	Warnings []services.Warning `json:"warnings,omitempty"`
}

type setJSON struct {
	Index      int    `json:"index"`
	Audio      string `json:"audio"`
	Timestamps string `json:"timestamps,omitempty"`
	Visual     string `json:"visual,omitempty"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		audioDir     string
		timestampDir string
		visualDir    string
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Pair numbered audio, timestamp, and visual files into media sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			audio, err := requirePath("audio", audioDir)
			if err != nil {
				return err
			}
			timestamps, err := resolvePath(timestampDir)
			if err != nil {
				return err
			}
			visuals, err := resolvePath(visualDir)
			if err != nil {
				return err
			}
			result, err := mediaset.MatchDirs(audio, timestamps, visuals)
			if err != nil {
				return err
			}
			if jsonOutput {
				payload := matchJSON{Sets: make([]setJSON, 0, len(result.Sets)), Warnings: result.Warnings}
				for _, set := range result.Sets {
					payload.Sets = append(payload.Sets, setJSON{
						Index:      set.Index,
						Audio:      set.AudioPath,
						Timestamps: set.TimestampPath,
						Visual:     set.VisualPath,
					})
				}
				return writeJSON(cmd, payload)
			}
			out := cmd.OutOrStdout()
			if len(result.Sets) == 0 {
				fmt.Fprintln(out, "No media sets matched")
			} else {
				rows := make([][]string, 0, len(result.Sets))
				for _, set := range result.Sets {
					rows = append(rows, []string{
						strconv.Itoa(set.Index),
						set.AudioPath,
						dash(set.TimestampPath),
						dash(set.VisualPath),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Audio", "Timestamps", "Visual"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
			}
			printWarnings(out, result.Warnings)
			return nil
		},
	}

	cmd.Flags().StringVar(&audioDir, "audio", "", "Folder of numbered audio files")
	cmd.Flags().StringVar(&timestampDir, "timestamps", "", "Folder of numbered timestamp files")
	cmd.Flags().StringVar(&visualDir, "visuals", "", "Folder of numbered images or videos")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func dash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
