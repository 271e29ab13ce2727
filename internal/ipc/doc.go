// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs. Status
// and journal payloads reuse the api package types so the CLI and HTTP
// clients render the same shapes. Command errors (out-of-range intervals,
// blank paths) travel back as RPC errors.
package ipc
