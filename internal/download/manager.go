package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vget/vget/internal/model"
	"github.com/vget/vget/internal/strategy"
)

// DefaultDir is the destination used when none is configured: a "videos"
// subdirectory of the working directory.
const DefaultDir = "videos"

const eventBuffer = 64

var (
	// ErrNoURLs means the input contained nothing but separators and whitespace.
	ErrNoURLs = errors.New("no URLs in input")

	// ErrNotFound means no download with that URL exists.
	ErrNotFound = errors.New("download not found")

	// ErrAlreadyFinished means the download is in a terminal state.
	ErrAlreadyFinished = errors.New("download already finished")

	// ErrShuttingDown means the manager no longer accepts work.
	ErrShuttingDown = errors.New("manager is shutting down")

	// ErrNoStrategies means the manager was built without a fallback chain.
	ErrNoStrategies = errors.New("at least one retrieval strategy is required")
)

// Options configures a Manager.
type Options struct {
	Dir        string // destination directory, DefaultDir when empty
	Strategies []strategy.Strategy
	Reporter   Reporter // optional
	History    Recorder // optional
	Logger     zerolog.Logger
}

type entry struct {
	dl     *model.Download
	worker *worker
}

// Manager owns the set of downloads, keyed by URL. All mutation goes through
// its mutex; workers only feed the event channel consumed by the dispatch
// goroutine.
type Manager struct {
	mu        sync.Mutex
	downloads map[string]*entry
	destDir   string
	closed    bool

	chain    []strategy.Strategy
	reporter Reporter
	history  Recorder
	log      zerolog.Logger

	events       chan event
	wg           sync.WaitGroup
	dispatchDone chan struct{}
}

// NewManager creates a manager and starts its dispatch goroutine.
func NewManager(opts Options) (*Manager, error) {
	if len(opts.Strategies) == 0 {
		return nil, ErrNoStrategies
	}
	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}

	m := &Manager{
		downloads:    make(map[string]*entry),
		destDir:      dir,
		chain:        opts.Strategies,
		reporter:     opts.Reporter,
		history:      opts.History,
		log:          opts.Logger.With().Str("component", "manager").Logger(),
		events:       make(chan event, eventBuffer),
		dispatchDone: make(chan struct{}),
	}
	go m.dispatch()
	return m, nil
}

// SplitInput splits a raw block of text into candidate URLs on commas and
// newlines, trimming whitespace and dropping empties.
func SplitInput(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	urls := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			urls = append(urls, f)
		}
	}
	return urls
}

// Add accepts a raw block of URLs (comma- and newline-delimited), starts a
// worker for each new one, and returns snapshots of the downloads it
// created. URLs already present are skipped: silently while active, and
// until ClearCompleted is called for terminal ones. A destination directory
// that cannot be created fails the whole call synchronously.
func (m *Manager) Add(input string) ([]model.Download, error) {
	urls := SplitInput(input)
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrShuttingDown
	}
	destDir := m.destDir
	m.mu.Unlock()

	// Destination problems surface here, not inside a worker.
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrShuttingDown
	}

	added := make([]model.Download, 0, len(urls))
	for _, u := range urls {
		if existing, ok := m.downloads[u]; ok {
			m.log.Debug().Str("url", u).Str("status", existing.dl.Status.String()).Msg("duplicate URL ignored")
			continue
		}

		dl := model.NewDownload(u)
		w := newWorker(u, destDir, m.chain, m.events, m.log)
		m.downloads[u] = &entry{dl: dl, worker: w}

		dl.Status = model.StatusDownloading
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.run()
		}()

		m.log.Info().Str("url", u).Str("dir", destDir).Msg("download started")
		added = append(added, *dl)
	}
	return added, nil
}

// Pause suspends a downloading URL. The worker blocks at its next poll point.
func (m *Manager) Pause(url string) error {
	m.mu.Lock()
	e, ok := m.downloads[url]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if e.dl.Status.IsTerminal() {
		m.mu.Unlock()
		return ErrAlreadyFinished
	}
	if e.dl.Status != model.StatusDownloading {
		st := e.dl.Status
		m.mu.Unlock()
		return fmt.Errorf("cannot pause download in state %s", st)
	}
	e.worker.pause()
	e.dl.Status = model.StatusPaused
	m.mu.Unlock()

	m.notifyStatus(url, model.StatusPaused)
	return nil
}

// Resume releases a paused URL.
func (m *Manager) Resume(url string) error {
	m.mu.Lock()
	e, ok := m.downloads[url]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if e.dl.Status.IsTerminal() {
		m.mu.Unlock()
		return ErrAlreadyFinished
	}
	if e.dl.Status != model.StatusPaused {
		st := e.dl.Status
		m.mu.Unlock()
		return fmt.Errorf("cannot resume download in state %s", st)
	}
	e.worker.resume()
	e.dl.Status = model.StatusDownloading
	m.mu.Unlock()

	m.notifyStatus(url, model.StatusDownloading)
	return nil
}

// Cancel aborts an active download. The cancelled outcome is recorded
// immediately, so it wins any race against the completing worker.
func (m *Manager) Cancel(url string) error {
	m.mu.Lock()
	e, ok := m.downloads[url]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if e.dl.Status.IsTerminal() {
		m.mu.Unlock()
		return ErrAlreadyFinished
	}
	e.worker.cancel()
	e.dl.Status = model.StatusCancelled
	e.dl.FinishedAt = time.Now()
	snapshot := *e.dl
	m.mu.Unlock()

	m.log.Info().Str("url", url).Msg("download cancelled")
	m.notifyStatus(url, model.StatusCancelled)
	m.record(snapshot)
	return nil
}

// ClearCompleted removes every download in a terminal state and returns the
// number removed. Active downloads are never touched.
func (m *Manager) ClearCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for url, e := range m.downloads {
		if e.dl.Status.IsTerminal() {
			delete(m.downloads, url)
			removed++
		}
	}
	return removed
}

// Get returns a snapshot of one download.
func (m *Manager) Get(url string) (model.Download, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.downloads[url]
	if !ok {
		return model.Download{}, false
	}
	return *e.dl, true
}

// List returns snapshots of all downloads in insertion order.
func (m *Manager) List() []model.Download {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Download, 0, len(m.downloads))
	for _, e := range m.downloads {
		out = append(out, *e.dl)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].URL < out[j].URL
		}
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out
}

// SetDownloadDirectory changes the destination for downloads added from now
// on. In-flight downloads keep the directory they started with.
func (m *Manager) SetDownloadDirectory(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dir != "" {
		m.destDir = dir
	}
}

// Shutdown cancels every active download and waits for all workers to stop,
// bounded by the context. The manager accepts no new work afterwards.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true

	var cancelledNow []model.Download
	for _, e := range m.downloads {
		if !e.dl.Status.IsTerminal() {
			e.worker.cancel()
			e.dl.Status = model.StatusCancelled
			e.dl.FinishedAt = time.Now()
			cancelledNow = append(cancelledNow, *e.dl)
		}
	}
	m.mu.Unlock()

	for _, dl := range cancelledNow {
		m.notifyStatus(dl.URL, model.StatusCancelled)
		m.record(dl)
	}

	stopped := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		return fmt.Errorf("waiting for workers: %w", ctx.Err())
	}

	// All workers have returned; no sender is left on the event channel.
	close(m.events)
	<-m.dispatchDone

	m.log.Info().Int("cancelled", len(cancelledNow)).Msg("manager shut down")
	return nil
}

// dispatch is the single consumer of worker events.
func (m *Manager) dispatch() {
	defer close(m.dispatchDone)
	for ev := range m.events {
		switch ev.kind {
		case eventProgress:
			m.handleProgress(ev)
		case eventDone:
			m.handleDone(ev)
		}
	}
}

func (m *Manager) handleProgress(ev event) {
	m.mu.Lock()
	e, ok := m.downloads[ev.url]
	if !ok || e.dl.Status != model.StatusDownloading {
		// Progress is only authoritative while downloading.
		m.mu.Unlock()
		return
	}
	e.dl.Progress = ev.update.Percent
	e.dl.Size = ev.update.Size
	e.dl.Speed = ev.update.Speed
	e.dl.ETA = ev.update.ETA
	if ev.update.Filename != "" {
		e.dl.Filename = ev.update.Filename
	}
	m.mu.Unlock()

	if m.reporter != nil {
		m.reporter.Progress(ProgressEvent{
			URL:     ev.url,
			Percent: ev.update.Percent,
			Size:    ev.update.Size,
			Speed:   ev.update.Speed,
			ETA:     ev.update.ETA,
		})
	}
}

func (m *Manager) handleDone(ev event) {
	m.mu.Lock()
	e, ok := m.downloads[ev.url]
	if !ok || e.dl.Status.IsTerminal() {
		// Cancel already won the race; keep the recorded outcome.
		m.mu.Unlock()
		return
	}
	if ev.succeeded {
		e.dl.Status = model.StatusCompleted
		if ev.filename != "" {
			e.dl.Filename = ev.filename
		}
	} else {
		e.dl.Status = model.StatusError
		e.dl.LastError = ev.errMsg
		if e.dl.LastError == "" {
			e.dl.LastError = "no retrieval strategy succeeded"
		}
	}
	e.dl.FinishedAt = time.Now()
	st := e.dl.Status
	snapshot := *e.dl
	m.mu.Unlock()

	m.log.Info().Str("url", ev.url).Str("status", st.String()).Msg("download finished")
	m.notifyStatus(ev.url, st)
	m.record(snapshot)
}

func (m *Manager) notifyStatus(url string, st model.Status) {
	if m.reporter != nil {
		m.reporter.StatusChanged(url, st)
	}
}

func (m *Manager) record(dl model.Download) {
	if m.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.history.Record(ctx, dl); err != nil {
		m.log.Warn().Err(err).Str("url", dl.URL).Msg("failed to record download history")
	}
}
