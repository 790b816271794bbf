package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scenecraft/internal/alignment"
)

type sceneJSON struct {
	Index      int     `json:"index"`
	Text       string  `json:"text"`
	StartMS    int64   `json:"start_ms"`
	EndMS      int64   `json:"end_ms"`
	Words      int     `json:"words"`
	Confidence float64 `json:"confidence"`
	Fallback   bool    `json:"fallback,omitempty"`
}

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var (
		scriptFlag     string
		timestampsFlag string
		maxChars       int
		jsonOutput     bool
	)

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Split a script into timed scenes using ASR word timestamps",
		RunE: func(cmd *cobra.Command, args []string) error {
			scriptPath, err := requirePath("script", scriptFlag)
			if err != nil {
				return err
			}
			timestampsPath, err := requirePath("timestamps", timestampsFlag)
			if err != nil {
				return err
			}
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-chars") {
				runner.Config.Alignment.MaxChars = maxChars
			}
			scenes, err := runner.AlignScript(cmd.Context(), scriptPath, timestampsPath)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, scenesJSON(scenes))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderScenes(scenes))
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptFlag, "script", "", "Plain text script; blank lines separate paragraphs")
	cmd.Flags().StringVar(&timestampsFlag, "timestamps", "", "Word timestamp file (JSON or YAML)")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "Split scenes longer than this many characters (0 disables)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func scenesJSON(scenes []alignment.Scene) []sceneJSON {
	out := make([]sceneJSON, 0, len(scenes))
	for _, s := range scenes {
		out = append(out, sceneJSON{
			Index:      s.Index,
			Text:       s.Text,
			StartMS:    s.StartMS,
			EndMS:      s.EndMS,
			Words:      len(s.Timestamps),
			Confidence: s.Confidence,
			Fallback:   s.Fallback,
		})
	}
	return out
}

func renderScenes(scenes []alignment.Scene) string {
	rows := make([][]string, 0, len(scenes))
	for _, s := range scenes {
		confidence := strconv.FormatFloat(s.Confidence, 'f', 2, 64)
		if s.Fallback {
			confidence += " (fallback)"
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Index + 1),
			formatMS(s.StartMS),
			formatMS(s.EndMS),
			strconv.Itoa(len(s.Timestamps)),
			confidence,
			truncate(s.Text, 60),
		})
	}
	return renderTable(
		[]string{"#", "Start", "End", "Words", "Confidence", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}
