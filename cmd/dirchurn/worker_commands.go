package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dirchurn/internal/config"
	"dirchurn/internal/ipc"
)

type workerKind int

const (
	workerCreate workerKind = iota
	workerDelete
)

// workerOps binds a CLI verb to the IPC calls of one worker.
type workerOps struct {
	use         string
	noun        string
	start       func(*ipc.Client) (*ipc.AckResponse, error)
	stop        func(*ipc.Client) (*ipc.AckResponse, error)
	setInterval func(*ipc.Client, int) (*ipc.AckResponse, error)
}

func opsFor(kind workerKind) workerOps {
	if kind == workerDelete {
		return workerOps{
			use:         "delete",
			noun:        "file deletion",
			start:       (*ipc.Client).StartDeleting,
			stop:        (*ipc.Client).StopDeleting,
			setInterval: (*ipc.Client).SetDeletionInterval,
		}
	}
	return workerOps{
		use:         "create",
		noun:        "file creation",
		start:       (*ipc.Client).StartCreating,
		stop:        (*ipc.Client).StopCreating,
		setInterval: (*ipc.Client).SetCreationInterval,
	}
}

func newWorkerCommand(ctx *commandContext, kind workerKind) *cobra.Command {
	ops := opsFor(kind)
	cmd := &cobra.Command{
		Use:   ops.use,
		Short: fmt.Sprintf("Control periodic %s", ops.noun),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: fmt.Sprintf("Start %s", ops.noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := ops.start(client)
				if err != nil {
					return err
				}
				printAck(cmd, resp)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: fmt.Sprintf("Stop %s", ops.noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := ops.stop(client)
				if err != nil {
					return err
				}
				printAck(cmd, resp)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "interval <ms>",
		Short: fmt.Sprintf("Set the %s period in milliseconds (%d-%d)", ops.noun, config.MinIntervalMillis, config.MaxIntervalMillis),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := parseIntervalArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := ops.setInterval(client, ms)
				if err != nil {
					return err
				}
				printAck(cmd, resp)
				return nil
			})
		},
	})

	return cmd
}

func newToggleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Start both workers if neither is running, otherwise stop both",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Toggle()
				if err != nil {
					return err
				}
				if resp.Running {
					fmt.Fprintln(cmd.OutOrStdout(), "Workers started")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Workers stopped")
				}
				return nil
			})
		},
	}
}

// parseIntervalArg rejects values outside the accepted range before any RPC
// is made.
func parseIntervalArg(value string) (int, error) {
	ms, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: expected milliseconds", value)
	}
	if err := config.ValidateIntervalMillis("interval", ms); err != nil {
		return 0, err
	}
	return ms, nil
}

func printAck(cmd *cobra.Command, resp *ipc.AckResponse) {
	if resp == nil {
		return
	}
	if msg := strings.TrimSpace(resp.Message); msg != "" {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
}
