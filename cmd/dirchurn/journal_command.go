package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dirchurn/internal/api"
	"dirchurn/internal/ipc"
	"dirchurn/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent worker and directory activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Journal(limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Entries)
				}
				out := cmd.OutOrStdout()
				if len(resp.Entries) == 0 {
					fmt.Fprintln(out, "No journal entries")
					return nil
				}
				fmt.Fprint(out, renderTable([]tableColumn{
					{Header: "Time"},
					{Header: "Kind"},
					{Header: "Worker"},
					{Header: "File"},
					{Header: "Outcome"},
					{Header: "Detail", MaxWidth: 60},
				}, journalRows(resp.Entries)))
				fmt.Fprintln(out)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func journalRows(entries []api.JournalEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		stamp := entry.CreatedAt
		if parsed, err := api.ParseTime(entry.CreatedAt); err == nil {
			stamp = parsed.Local().Format("15:04:05")
		}
		outcome := entry.Outcome
		detail := entry.Detail
		if entry.Kind == journal.KindState {
			outcome = entry.State
			detail = strconv.Itoa(entry.FileCount) + " files"
		}
		rows = append(rows, []string{
			stamp,
			entry.Kind,
			entry.Worker,
			entry.File,
			outcome,
			detail,
		})
	}
	return rows
}
