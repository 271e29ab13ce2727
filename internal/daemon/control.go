package daemon

import (
	"context"
	"fmt"

	"dirchurn/internal/api"
)

// Execute applies a control request and returns a short human-readable
// acknowledgement.
func (d *Daemon) Execute(ctx context.Context, req api.ControlRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch req.Command {
	case api.CommandStartCreating:
		if err := d.StartCreating(); err != nil {
			return "", err
		}
		return "file creation started", nil
	case api.CommandStopCreating:
		d.StopCreating()
		return "file creation stopped", nil
	case api.CommandSetCreationInterval:
		if err := d.SetCreationInterval(req.IntervalMillis); err != nil {
			return "", err
		}
		return fmt.Sprintf("creation interval set to %d ms", req.IntervalMillis), nil
	case api.CommandStartDeleting:
		if err := d.StartDeleting(); err != nil {
			return "", err
		}
		return "file deletion started", nil
	case api.CommandStopDeleting:
		d.StopDeleting()
		return "file deletion stopped", nil
	case api.CommandSetDeletionInterval:
		if err := d.SetDeletionInterval(req.IntervalMillis); err != nil {
			return "", err
		}
		return fmt.Sprintf("deletion interval set to %d ms", req.IntervalMillis), nil
	case api.CommandUpdatePath:
		if err := d.UpdatePath(req.Path); err != nil {
			return "", err
		}
		return "monitored directory set to " + d.Dir(), nil
	case api.CommandEmptyFolder:
		removed, err := d.EmptyFolder()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("removed %d files", removed), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownCommand, req.Command)
	}
}

// StatusPayload converts a Status into its API representation.
func StatusPayload(status Status) api.DaemonStatus {
	return api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		RunID:        status.RunID,
		Directory:    api.FromSnapshot(status.Snapshot, status.Dir),
		Producer:     api.FromWorkerStats(status.Producer),
		Consumer:     api.FromWorkerStats(status.Consumer),
		JournalPath:  status.JournalPath,
		LockFilePath: status.LockFilePath,
	}
}
