package ipc

import "dirchurn/internal/api"

// ServiceName is the JSON-RPC service name registered by the server.
const ServiceName = "Churn"

// DaemonStatus mirrors the HTTP API status DTO for internal IPC callers.
type DaemonStatus = api.DaemonStatus

// JournalEntry mirrors the HTTP API journal DTO.
type JournalEntry = api.JournalEntry

// WorkerRequest targets the producer ("create") or consumer ("delete")
// scheduling commands that take no arguments.
type WorkerRequest struct{}

// AckResponse reports the outcome of a command.
type AckResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// IntervalRequest changes a worker period in milliseconds.
type IntervalRequest struct {
	IntervalMillis int `json:"interval_ms"`
}

// UpdatePathRequest switches the monitored directory.
type UpdatePathRequest struct {
	Path string `json:"path"`
}

// UpdatePathResponse reports the resolved directory. Warning carries a
// watch registration failure; the path change itself still applied.
type UpdatePathResponse struct {
	Dir     string `json:"dir"`
	Warning string `json:"warning,omitempty"`
}

// CurrentFilesRequest lists the monitored directory.
type CurrentFilesRequest struct{}

// CurrentFilesResponse lists regular files in the monitored directory.
type CurrentFilesResponse struct {
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse wraps the daemon status DTO.
type StatusResponse struct {
	Status DaemonStatus `json:"status"`
}

// EmptyFolderRequest removes all regular files in the monitored directory.
type EmptyFolderRequest struct{}

// EmptyFolderResponse reports how many files were removed.
type EmptyFolderResponse struct {
	Removed int `json:"removed"`
}

// ToggleRequest starts or stops both workers together.
type ToggleRequest struct{}

// ToggleResponse reports whether the workers are running afterwards.
type ToggleResponse struct {
	Running bool `json:"running"`
}

// JournalRequest fetches recent activity entries.
type JournalRequest struct {
	Limit int `json:"limit"`
}

// JournalResponse contains journal entries, newest first.
type JournalResponse struct {
	Entries []JournalEntry `json:"entries"`
}
