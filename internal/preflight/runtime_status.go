package preflight

import (
	"fmt"
	"net"
	"time"
)

// CheckDaemonSocket reports whether a daemon is accepting IPC connections at
// socketPath.
func CheckDaemonSocket(socketPath string) Result {
	const name = "Daemon"

	conn, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("not running (%s)", socketPath)}
	}
	_ = conn.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("listening on %s", socketPath)}
}
