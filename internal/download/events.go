package download

import (
	"context"

	"github.com/vget/vget/internal/model"
	"github.com/vget/vget/internal/strategy"
)

// ProgressEvent is one progress observation delivered to the caller's
// reporter.
type ProgressEvent struct {
	URL     string
	Percent float64
	Size    string
	Speed   string
	ETA     string
}

// Reporter receives progress and status notifications from the manager. The
// terminal status change for a URL is always the last notification delivered
// for it. Implementations must not call back into the manager.
type Reporter interface {
	Progress(ev ProgressEvent)
	StatusChanged(url string, status model.Status)
}

// Recorder persists downloads that reached a terminal state.
type Recorder interface {
	Record(ctx context.Context, dl model.Download) error
}

// Internal worker-to-manager events.

type eventKind int

const (
	eventProgress eventKind = iota
	eventDone
)

type event struct {
	kind      eventKind
	url       string
	update    strategy.Update // progress events
	succeeded bool            // done events
	filename  string          // done events, may be empty
	errMsg    string          // done events, last strategy failure
}
