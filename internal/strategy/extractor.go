package strategy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultOutputTemplate names extracted files after the media title with the
// original extension.
const DefaultOutputTemplate = "%(title)s.%(ext)s"

// Extractor is the pluggable rich-extraction backend (yt-dlp or compatible).
// It resolves direct media streams for a URL and downloads them with its own
// internal logic; this package treats it as opaque. It returns the path of
// the downloaded file.
type Extractor interface {
	Download(ctx context.Context, rawURL, outputTemplate string, headers map[string]string, onProgress ProgressFunc) (string, error)
}

// RichExtractor delegates to the extractor backend. It is attempted first
// for every URL; its failures are swallowed so the worker can fall back to
// the HTTP strategies.
type RichExtractor struct {
	extractor Extractor
	template  string
	log       zerolog.Logger
}

// NewRichExtractor creates the extractor-backed strategy. An empty
// outputTemplate selects DefaultOutputTemplate.
func NewRichExtractor(ext Extractor, outputTemplate string, log zerolog.Logger) *RichExtractor {
	if outputTemplate == "" {
		outputTemplate = DefaultOutputTemplate
	}
	return &RichExtractor{
		extractor: ext,
		template:  outputTemplate,
		log:       log.With().Str("component", "extractor-strategy").Logger(),
	}
}

// Name identifies the strategy in logs.
func (s *RichExtractor) Name() string { return "extractor" }

// Applicable always returns true; the extractor is tried first regardless of
// URL shape.
func (s *RichExtractor) Applicable(string) bool { return true }

// Fetch runs the extractor, translating its progress into the shared shape.
// Cancellation is delivered by cancelling the extractor's context; pause is
// mirrored by blocking inside the progress callback.
func (s *RichExtractor) Fetch(req Request, token *Token, onProgress ProgressFunc) Result {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-token.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	template := filepath.Join(req.DestDir, s.template)
	path, err := s.extractor.Download(ctx, req.URL, template, req.Headers, func(u Update) {
		onProgress(u)
		if token.IsPaused() {
			// Cancellation while paused is observed via the context.
			_ = token.AwaitResume()
		}
	})

	if token.IsCancelled() {
		return cancelled()
	}
	if err != nil {
		return extractionFailed(fmt.Errorf("extractor: %w", err))
	}
	return ok(filepath.Base(path))
}
