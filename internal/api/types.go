package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// WorkerStatus describes one periodic worker.
type WorkerStatus struct {
	Name           string `json:"name"`
	Running        bool   `json:"running"`
	IntervalMillis int    `json:"intervalMs"`
	Counter        int64  `json:"counter"`
	NextFile       string `json:"nextFile"`
	Ticks          uint64 `json:"ticks"`
	Warnings       uint64 `json:"warnings"`
	LastWarning    string `json:"lastWarning,omitempty"`
}

// DirectoryStatus is the latest classification of the monitored directory.
type DirectoryStatus struct {
	Path       string `json:"path"`
	State      string `json:"state"`
	Color      string `json:"color"`
	FileCount  int    `json:"fileCount"`
	StatusLine string `json:"statusLine"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool            `json:"running"`
	PID          int             `json:"pid"`
	RunID        string          `json:"runId,omitempty"`
	Directory    DirectoryStatus `json:"directory"`
	Producer     WorkerStatus    `json:"producer"`
	Consumer     WorkerStatus    `json:"consumer"`
	JournalPath  string          `json:"journalPath,omitempty"`
	LockFilePath string          `json:"lockFilePath"`
}

// FileListResponse lists the regular files in the monitored directory.
type FileListResponse struct {
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

// Control commands accepted by POST /api/control.
const (
	CommandStartCreating       = "start-creating"
	CommandStopCreating        = "stop-creating"
	CommandSetCreationInterval = "set-creation-interval"
	CommandStartDeleting       = "start-deleting"
	CommandStopDeleting        = "stop-deleting"
	CommandSetDeletionInterval = "set-deletion-interval"
	CommandUpdatePath          = "update-path"
	CommandEmptyFolder         = "empty-folder"
)

// ControlRequest is a command sent to the daemon.
type ControlRequest struct {
	Command        string `json:"command"`
	IntervalMillis int    `json:"interval_ms,omitempty"`
	Path           string `json:"path,omitempty"`
}

// AckResponse is returned on successful control execution.
type AckResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// JournalEntry is a transport view of one activity journal row.
type JournalEntry struct {
	ID        int64  `json:"id"`
	RunID     string `json:"runId"`
	Kind      string `json:"kind"`
	Worker    string `json:"worker,omitempty"`
	Counter   int64  `json:"counter"`
	File      string `json:"file,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	State     string `json:"state,omitempty"`
	FileCount int    `json:"fileCount"`
	Dir       string `json:"dir,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"createdAt"`
}
