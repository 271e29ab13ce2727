package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dirchurn/internal/ipc"
)

func newPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path <dir>",
		Short: "Switch the monitored directory (created if missing)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(args[0])
			if target == "" {
				return fmt.Errorf("directory path is required")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.UpdatePath(target)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Monitoring %s\n", resp.Dir)
				if resp.Warning != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "warn: %s\n", resp.Warning)
				}
				return nil
			})
		},
	}
}

func newFilesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List files in the monitored directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CurrentFiles()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Files) == 0 {
					fmt.Fprintf(out, "No files in %s\n", resp.Dir)
					return nil
				}
				for _, name := range resp.Files {
					fmt.Fprintln(out, name)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newEmptyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "empty",
		Short: "Remove every regular file from the monitored directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.EmptyFolder()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d files\n", resp.Removed)
				return nil
			})
		},
	}
}
