// Package preflight runs environment checks before and while the daemon runs:
// directory permissions, free space on the monitored filesystem, the HTTP bind
// address, and whether a daemon is listening on the IPC socket.
package preflight
