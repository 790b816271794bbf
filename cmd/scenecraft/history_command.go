package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

type historyJSON struct {
	ID        int64  `json:"id"`
	RequestID string `json:"request_id"`
	Operation string `json:"operation"`
	Output    string `json:"output"`
	Scenes    int    `json:"scenes"`
	Warnings  int    `json:"warnings"`
	CreatedAt string `json:"created_at"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archives produced by previous runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				payload := make([]historyJSON, 0, len(entries))
				for _, e := range entries {
					payload = append(payload, historyJSON{
						ID:        e.ID,
						RequestID: e.RequestID,
						Operation: string(e.Operation),
						Output:    e.Output,
						Scenes:    e.Scenes,
						Warnings:  e.Warnings,
						CreatedAt: e.CreatedAt.Format(time.RFC3339),
					})
				}
				return writeJSON(cmd, payload)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history entries")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					strconv.FormatInt(e.ID, 10),
					e.CreatedAt.Local().Format("2006-01-02 15:04"),
					string(e.Operation),
					strconv.Itoa(e.Scenes),
					strconv.Itoa(e.Warnings),
					e.Output,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Created", "Operation", "Clips", "Warnings", "Output"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries\n", removed)
			return nil
		},
	})
	return cmd
}
