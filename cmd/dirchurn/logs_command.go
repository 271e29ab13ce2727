package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"dirchurn/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var terms []string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the current daemon log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := logs.ResolvePath(filepath.Join(cfg.Paths.LogDir, "dirchurn.log"))
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("no daemon log in %s; start the daemon with `dirchurn start`", cfg.Paths.LogDir)
				}
				return err
			}

			out := cmd.OutOrStdout()
			emit := func(line string) {
				if logs.Match(line, terms...) {
					fmt.Fprintln(out, line)
				}
			}
			tail, offset, err := logs.LastLines(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				emit(line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, emit)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringSliceVar(&terms, "grep", nil, "Only show lines containing every given term")
	return cmd
}
