package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scenecraft/internal/history"
	"scenecraft/internal/pipeline"
	"scenecraft/internal/services"
)

type outcomeJSON struct {
	RequestID string             `json:"request_id"`
	Operation string             `json:"operation"`
	Path      string             `json:"path"`
	Scenes    int                `json:"scenes"`
	Clips     int                `json:"clips"`
	Injected  int                `json:"injected,omitempty"`
	Warnings  []services.Warning `json:"warnings,omitempty"`
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		req        pipeline.ScriptRequest
		maxChars   int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a project archive from a script, its timestamps, and one narration track",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.ScriptPath, err = requirePath("script", req.ScriptPath); err != nil {
				return err
			}
			if req.TimestampsPath, err = requirePath("timestamps", req.TimestampsPath); err != nil {
				return err
			}
			if req.AudioPath, err = requirePath("audio", req.AudioPath); err != nil {
				return err
			}
			if req.VisualDir, err = resolvePath(req.VisualDir); err != nil {
				return err
			}
			if req.Output, err = resolvePath(req.Output); err != nil {
				return err
			}
			if req.Output == "" {
				req.Output = ctx.defaultOutput(req.ScriptPath, "")
			}
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-chars") {
				runner.Config.Alignment.MaxChars = maxChars
			}
			outcome, err := runner.BuildFromScript(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printOutcome(cmd, outcome, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&req.ScriptPath, "script", "", "Plain text script; blank lines separate paragraphs")
	cmd.Flags().StringVar(&req.TimestampsPath, "timestamps", "", "Word timestamp file for the narration")
	cmd.Flags().StringVar(&req.AudioPath, "audio", "", "Narration audio or video file")
	cmd.Flags().StringVar(&req.VisualDir, "visuals", "", "Folder of numbered visuals; visual N attaches to scene N")
	cmd.Flags().StringVarP(&req.Output, "output", "o", "", "Archive path (defaults to the output directory)")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "Split scenes longer than this many characters (0 disables)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		req        pipeline.BatchRequest
		maxChars   int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Build a project archive from folders of numbered media sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.AudioDir, err = requirePath("audio", req.AudioDir); err != nil {
				return err
			}
			for _, p := range []*string{&req.TimestampDir, &req.VisualDir, &req.ScriptPath, &req.Output} {
				if *p, err = resolvePath(*p); err != nil {
					return err
				}
			}
			if req.Output == "" {
				req.Output = ctx.defaultOutput(req.AudioDir, "")
			}
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-chars") {
				runner.Config.Alignment.MaxChars = maxChars
			}
			outcome, err := runner.BuildFromSets(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printOutcome(cmd, outcome, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&req.AudioDir, "audio", "", "Folder of numbered audio files")
	cmd.Flags().StringVar(&req.TimestampDir, "timestamps", "", "Folder of numbered timestamp files")
	cmd.Flags().StringVar(&req.VisualDir, "visuals", "", "Folder of numbered images or videos")
	cmd.Flags().StringVar(&req.ScriptPath, "script", "", "Optional script; paragraph N captions media set N")
	cmd.Flags().StringVarP(&req.Output, "output", "o", "", "Archive path (defaults to the output directory)")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "Split scenes longer than this many characters (0 disables)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newAutofillCommand(ctx *commandContext) *cobra.Command {
	var (
		req        pipeline.AutofillRequest
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "autofill <archive> [media...]",
		Short: "Inject numbered images and videos into an existing archive",
		Long: `Inject numbered images and videos into an existing project archive.

Each file's leading number selects the clip it lands on (001 is the first
clip). Files that cannot be placed are reported as warnings and skipped.
The archive is rewritten in place unless --output is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Archive, err = resolvePath(args[0]); err != nil {
				return err
			}
			req.Media = req.Media[:0]
			for _, arg := range args[1:] {
				path, err := resolvePath(arg)
				if err != nil {
					return err
				}
				req.Media = append(req.Media, path)
			}
			if req.MediaDir, err = resolvePath(req.MediaDir); err != nil {
				return err
			}
			if req.Output, err = resolvePath(req.Output); err != nil {
				return err
			}
			if len(req.Media) == 0 && req.MediaDir == "" {
				return services.Wrap(services.ErrInput, "cli", "flags", "provide media files or --media-dir", nil)
			}
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			outcome, err := runner.Autofill(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printOutcome(cmd, outcome, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&req.MediaDir, "media-dir", "", "Folder whose numbered visuals are injected")
	cmd.Flags().StringVarP(&req.Output, "output", "o", "", "Write the result here instead of replacing the archive")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printOutcome(cmd *cobra.Command, outcome pipeline.Outcome, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(cmd, outcomeJSON{
			RequestID: outcome.RequestID,
			Operation: string(outcome.Operation),
			Path:      outcome.Path,
			Scenes:    len(outcome.Scenes),
			Clips:     outcome.Clips,
			Injected:  outcome.Injected,
			Warnings:  outcome.Warnings,
		})
	}
	out := cmd.OutOrStdout()
	if len(outcome.Scenes) > 0 {
		fmt.Fprintln(out, renderScenes(outcome.Scenes))
	}
	fmt.Fprintf(out, "Wrote %s\n", outcome.Path)
	fmt.Fprintf(out, "Clips: %d", outcome.Clips)
	if outcome.Operation == history.OperationAutofill {
		fmt.Fprintf(out, "  Injected: %d", outcome.Injected)
	}
	fmt.Fprintln(out)
	printWarnings(out, outcome.Warnings)
	return nil
}
