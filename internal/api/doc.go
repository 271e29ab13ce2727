// Package api defines wire-format types and converters shared by the IPC and
// HTTP layers. It translates worker stats, directory snapshots, and journal
// rows into transport-friendly DTOs so clients never couple to internal types.
//
// DTOs use camelCase JSON tags. The control request keeps the snake_case
// interval_ms and path keys accepted by POST /api/control. Timestamps use
// RFC3339 with milliseconds.
package api
