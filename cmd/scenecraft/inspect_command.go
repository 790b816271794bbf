package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scenecraft/internal/project"
)

type inspectJSON struct {
	Path      string              `json:"path"`
	Version   string              `json:"version"`
	Canvas    project.Canvas      `json:"canvas"`
	Files     int                 `json:"files"`
	Scenes    int                 `json:"scenes"`
	Clips     int                 `json:"clips"`
	Words     int                 `json:"words"`
	SpokenMS  int64               `json:"spoken_ms"`
	Assets    int                 `json:"assets"`
	Valid     bool                `json:"valid"`
	Problems  string              `json:"problems,omitempty"`
	Entries   []project.EntryInfo `json:"entries,omitempty"`
	Generator string              `json:"generator,omitempty"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var (
		showEntries bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Summarize and validate a project archive",
		Args:  cobra.ExactArgs(1),
		Annotations: map[string]string{
			"skipConfigLoad": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			doc, err := project.Load(path)
			if err != nil {
				return err
			}
			var entries []project.EntryInfo
			if showEntries {
				if entries, err = project.ListEntries(path); err != nil {
					return err
				}
			}
			validation := doc.Validate()
			words, spokenMS := wordStats(doc)

			if jsonOutput {
				payload := inspectJSON{
					Path:      path,
					Version:   doc.Version,
					Canvas:    doc.Canvas,
					Files:     len(doc.Files),
					Scenes:    len(doc.Scenes),
					Clips:     len(doc.Clips()),
					Words:     words,
					SpokenMS:  spokenMS,
					Assets:    len(doc.Assets),
					Valid:     validation == nil,
					Entries:   entries,
					Generator: doc.Bookkeeping.Generator,
				}
				if validation != nil {
					payload.Problems = validation.Error()
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Version", doc.Version},
				{"Canvas", fmt.Sprintf("%dx%d", doc.Canvas.Width, doc.Canvas.Height)},
				{"Files", strconv.Itoa(len(doc.Files))},
				{"Scenes", strconv.Itoa(len(doc.Scenes))},
				{"Clips", strconv.Itoa(len(doc.Clips()))},
				{"Words", strconv.Itoa(words)},
				{"Spoken", formatMS(spokenMS)},
				{"Assets", strconv.Itoa(len(doc.Assets))},
				{"Generator", dash(doc.Bookkeeping.Generator)},
				{"Valid", yesNo(validation == nil)},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
			if validation != nil {
				fmt.Fprintf(out, "Problems: %v\n", validation)
			}
			if showEntries {
				entryRows := make([][]string, 0, len(entries))
				for _, e := range entries {
					entryRows = append(entryRows, []string{
						e.Name,
						strconv.FormatUint(e.Size, 10),
						strconv.FormatUint(e.CompressedSize, 10),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Member", "Size", "Compressed"},
					entryRows,
					[]columnAlignment{alignLeft, alignRight, alignRight},
				))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showEntries, "entries", false, "List archive members")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// wordStats counts content words and sums their durations. Silence and
// scene_end markers are excluded.
func wordStats(doc *project.Project) (count int, spokenMS int64) {
	for _, clip := range doc.Clips() {
		for _, w := range clip.Words {
			if w.Kind != project.WordContent {
				continue
			}
			count++
			spokenMS += w.DurationMS
		}
	}
	return count, spokenMS
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
