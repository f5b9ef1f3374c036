package model

import (
	"strings"
	"time"
)

// Display placeholders used until a strategy reports real values.
const (
	UnknownLabel    = "Unknown"
	PendingFilename = "Pending"
	InitialSpeed    = "0 MB/s"
)

// Download represents one requested retrieval. The URL doubles as the
// identity within a manager instance.
type Download struct {
	URL        string
	Status     Status
	Progress   float64 // 0 to 100, authoritative only while Downloading
	Filename   string  // resolved destination name, PendingFilename until known
	Size       string  // human readable total size (e.g. "12.4 MB")
	Speed      string  // human readable speed (e.g. "1.2 MB/s")
	ETA        string  // "<seconds>s" or UnknownLabel
	LastError  string  // last error message if any
	AddedAt    time.Time
	FinishedAt time.Time // zero until a terminal state is reached
}

// NewDownload creates a queued download with display placeholders set.
func NewDownload(url string) *Download {
	return &Download{
		URL:      url,
		Status:   StatusQueued,
		Filename: PendingFilename,
		Size:     UnknownLabel,
		Speed:    InitialSpeed,
		ETA:      UnknownLabel,
		AddedAt:  time.Now(),
	}
}

// DisplayName returns the resolved filename, falling back to the URL while
// the filename is still pending.
func (d *Download) DisplayName() string {
	if d.Filename != "" && d.Filename != PendingFilename {
		return d.Filename
	}
	return d.URL
}

// ShortURL compacts long URLs for single-line display.
func (d *Download) ShortURL(max int) string {
	return ShortURL(d.URL, max)
}

// ShortURL compacts a URL to at most max characters for single-line display.
func ShortURL(url string, max int) string {
	if max <= 3 || len(url) <= max {
		return url
	}
	return strings.TrimSpace(url[:max-3]) + "..."
}
