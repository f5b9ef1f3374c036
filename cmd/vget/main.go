// Command vget downloads videos from the command line. URLs are given as
// arguments; rich pages go through yt-dlp, direct links through plain HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/vget/vget/internal/config"
	"github.com/vget/vget/internal/download"
	"github.com/vget/vget/internal/extractor"
	"github.com/vget/vget/internal/history"
	"github.com/vget/vget/internal/logger"
	"github.com/vget/vget/internal/model"
	"github.com/vget/vget/internal/strategy"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	shutdownTimeout  = 10 * time.Second
	progressInterval = 500 * time.Millisecond
	pollInterval     = 200 * time.Millisecond
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "", "path to config file")
		dir         = flag.String("dir", "", "destination directory (overrides config)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("vget v%s\n", version)
		return 0
	}
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: vget [flags] URL [URL ...]")
		flag.PrintDefaults()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vget: %v\n", err)
		return 1
	}
	if *dir != "" {
		cfg.Downloads.Dir = *dir
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})
	defer log.Close()

	var recorder download.Recorder
	if cfg.Downloads.History {
		store, err := history.Open(cfg.Downloads.DataDir)
		if err != nil {
			log.Warn().Err(err).Msg("history disabled, cannot open store")
		} else {
			defer store.Close()
			recorder = store
		}
	}

	reporter := newConsoleReporter(os.Stdout)
	mgr, err := download.NewManager(download.Options{
		Dir: cfg.Downloads.Dir,
		Strategies: []strategy.Strategy{
			strategy.NewRichExtractor(extractor.New(log.WithComponent("ytdlp")), cfg.Downloads.OutputTemplate, log.WithComponent("rich")),
			strategy.NewChunkedHTTP(log.WithComponent("chunked")),
			strategy.NewSimpleHTTP(log.WithComponent("simple")),
		},
		Reporter: reporter,
		History:  recorder,
		Logger:   log.Logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "vget: %v\n", err)
		return 1
	}

	added, err := mgr.Add(strings.Join(flag.Args(), ","))
	if err != nil {
		fmt.Fprintf(os.Stderr, "vget: %v\n", err)
		return 1
	}
	log.Info().Int("count", len(added)).Str("dir", cfg.Downloads.Dir).Msg("downloads started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	failed := waitForDownloads(mgr, sigCh, log)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := mgr.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown did not complete cleanly")
		return 1
	}

	for _, dl := range mgr.List() {
		reporter.printFinal(dl)
	}
	if failed {
		return 1
	}
	return 0
}

// waitForDownloads blocks until every download is terminal or a signal
// arrives. It reports whether any download ended in error.
func waitForDownloads(mgr *download.Manager, sigCh <-chan os.Signal, log *logger.Logger) bool {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("interrupted, cancelling downloads")
			return anyFailed(mgr)
		case <-ticker.C:
			done := true
			for _, dl := range mgr.List() {
				if !dl.Status.IsTerminal() {
					done = false
					break
				}
			}
			if done {
				return anyFailed(mgr)
			}
		}
	}
}

func anyFailed(mgr *download.Manager) bool {
	for _, dl := range mgr.List() {
		if dl.Status == model.StatusError {
			return true
		}
	}
	return false
}

// consoleReporter prints progress lines to stdout, throttled per URL so fast
// transfers do not flood the terminal.
type consoleReporter struct {
	mu   sync.Mutex
	out  *os.File
	last map[string]time.Time
}

func newConsoleReporter(out *os.File) *consoleReporter {
	return &consoleReporter{out: out, last: make(map[string]time.Time)}
}

func (r *consoleReporter) Progress(ev download.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.last[ev.URL]) < progressInterval && ev.Percent < 100 {
		return
	}
	r.last[ev.URL] = now

	fmt.Fprintf(r.out, "%s  %5.1f%%  %s  %s  ETA %s\n",
		model.ShortURL(ev.URL, 48), ev.Percent, ev.Size, ev.Speed, ev.ETA)
}

func (r *consoleReporter) StatusChanged(url string, st model.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s  %s\n", model.ShortURL(url, 48), st)
}

func (r *consoleReporter) printFinal(dl model.Download) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch dl.Status {
	case model.StatusCompleted:
		fmt.Fprintf(r.out, "done  %s  (%s)\n", dl.DisplayName(), dl.Size)
	case model.StatusError:
		fmt.Fprintf(r.out, "error  %s  %s\n", model.ShortURL(dl.URL, 48), dl.LastError)
	default:
		fmt.Fprintf(r.out, "%s  %s\n", dl.Status, model.ShortURL(dl.URL, 48))
	}
}
