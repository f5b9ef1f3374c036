package model

// Status represents the lifecycle state of a download
type Status string

const (
	// StatusQueued means the download was accepted but its worker has not started yet
	StatusQueued Status = "Queued"

	// StatusDownloading means the transfer is in progress
	StatusDownloading Status = "Downloading"

	// StatusPaused means the transfer is suspended and can be resumed
	StatusPaused Status = "Paused"

	// StatusCompleted means the download finished successfully
	StatusCompleted Status = "Completed"

	// StatusError means every retrieval strategy failed
	StatusError Status = "Error"

	// StatusCancelled means the download was aborted by the user or shutdown
	StatusCancelled Status = "Cancelled"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition can happen from this state
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// IsActive returns true if the download still has a live worker
func (s Status) IsActive() bool {
	return s == StatusQueued || s == StatusDownloading || s == StatusPaused
}
