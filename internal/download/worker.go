package download

import (
	"github.com/rs/zerolog"

	"github.com/vget/vget/internal/strategy"
)

// worker drives one URL through the strategy fallback chain. It owns the
// pause/cancel token and is spawned exactly once; it emits zero or more
// progress events followed by exactly one terminal event.
type worker struct {
	url     string
	destDir string
	headers map[string]string
	token   *strategy.Token
	chain   []strategy.Strategy
	events  chan<- event
	log     zerolog.Logger
	done    chan struct{}
}

func newWorker(url, destDir string, chain []strategy.Strategy, events chan<- event, log zerolog.Logger) *worker {
	return &worker{
		url:     url,
		destDir: destDir,
		headers: strategy.DefaultHeaders(url),
		token:   strategy.NewToken(),
		chain:   chain,
		events:  events,
		log:     log.With().Str("component", "worker").Str("url", url).Logger(),
		done:    make(chan struct{}),
	}
}

// run executes the fallback chain. The first successful strategy wins;
// cancellation stops the chain immediately and always beats further
// fallback.
func (w *worker) run() {
	defer close(w.done)

	req := strategy.Request{URL: w.url, DestDir: w.destDir, Headers: w.headers}
	succeeded := false
	filename := ""
	var lastErr error

	for _, s := range w.chain {
		if w.token.IsCancelled() {
			break
		}
		if !s.Applicable(w.url) {
			w.log.Debug().Str("strategy", s.Name()).Msg("strategy not applicable, skipping")
			continue
		}

		w.log.Debug().Str("strategy", s.Name()).Msg("attempting strategy")
		res := s.Fetch(req, w.token, w.emitProgress)

		if res.Outcome == strategy.OutcomeOK {
			succeeded = true
			filename = res.Filename
			break
		}
		if res.Outcome == strategy.OutcomeCancelled {
			w.log.Debug().Str("strategy", s.Name()).Msg("transfer cancelled")
			break
		}
		// Failures are swallowed here; the next strategy gets its turn.
		lastErr = res.Err
		w.log.Warn().Str("strategy", s.Name()).Err(res.Err).Msg("strategy failed, falling back")
	}

	errMsg := ""
	if !succeeded && lastErr != nil {
		errMsg = lastErr.Error()
	}
	w.events <- event{kind: eventDone, url: w.url, succeeded: succeeded, filename: filename, errMsg: errMsg}
}

func (w *worker) emitProgress(u strategy.Update) {
	w.events <- event{kind: eventProgress, url: w.url, update: u}
}

func (w *worker) pause()  { w.token.Pause() }
func (w *worker) resume() { w.token.Resume() }
func (w *worker) cancel() { w.token.Cancel() }
