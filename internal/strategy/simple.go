package strategy

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/vget/vget/internal/progress"
)

// SimpleHTTP is the last-resort strategy: one blocking GET with the whole
// body copied to disk through a counting reader. Progress is coarse, driven
// by whatever read sizes the transport produces, and the cancel flag is
// checked inside the read callback.
type SimpleHTTP struct {
	client *http.Client
	log    zerolog.Logger
}

// NewSimpleHTTP creates the simple HTTP strategy.
func NewSimpleHTTP(log zerolog.Logger) *SimpleHTTP {
	return &SimpleHTTP{
		client: &http.Client{},
		log:    log.With().Str("component", "simple-http").Logger(),
	}
}

// Name identifies the strategy in logs.
func (s *SimpleHTTP) Name() string { return "simple-http" }

// Applicable always returns true; this strategy is the final fallback.
func (s *SimpleHTTP) Applicable(string) bool { return true }

// Fetch saves the whole response body to disk in one copy.
func (s *SimpleHTTP) Fetch(req Request, token *Token, onProgress ProgressFunc) Result {
	httpReq, err := http.NewRequest(http.MethodGet, req.URL, nil)
	if err != nil {
		return transferFailed(fmt.Errorf("build request: %w", err))
	}
	applyHeaders(httpReq, req.Headers)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return transferFailed(fmt.Errorf("request %s: %w", req.URL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return transferFailed(fmt.Errorf("unexpected status %s", resp.Status))
	}

	name := destFilename(req.URL)
	f, err := os.Create(filepath.Join(req.DestDir, name))
	if err != nil {
		return transferFailed(fmt.Errorf("create %s: %w", name, err))
	}
	defer f.Close()

	onProgress(Update{
		Filename: name,
		Size:     progress.FormatSize(resp.ContentLength),
		Speed:    progress.Unknown,
		ETA:      progress.Unknown,
	})

	total := resp.ContentLength
	var downloaded int64
	last := time.Now()

	body := &countingReader{r: resp.Body, cb: func(n int) error {
		if token.IsCancelled() {
			return ErrCancelled
		}
		if token.IsPaused() {
			if err := token.AwaitResume(); err != nil {
				return err
			}
			last = time.Now()
		}
		downloaded += int64(n)

		now := time.Now()
		elapsed := now.Sub(last).Seconds()
		last = now

		var speedBps float64
		if elapsed > 0 {
			speedBps = float64(n) / elapsed
		}
		eta := progress.Unknown
		if total > 0 && speedBps > 0 {
			eta = progress.FormatETA(float64(total-downloaded) / speedBps)
		}
		onProgress(Update{
			Percent:  progress.Percent(downloaded, total),
			Size:     progress.FormatSize(total),
			Speed:    progress.FormatSpeed(speedBps),
			ETA:      eta,
			Filename: name,
		})
		return nil
	}}

	if _, err := io.Copy(f, body); err != nil {
		if errors.Is(err, ErrCancelled) {
			return cancelled()
		}
		return transferFailed(fmt.Errorf("copy body: %w", err))
	}

	s.log.Debug().Str("file", name).Int64("bytes", downloaded).Msg("simple download complete")
	return ok(name)
}

// countingReader invokes cb after every successful read. A non-nil error
// from the callback aborts the surrounding copy.
type countingReader struct {
	r  io.Reader
	cb func(n int) error
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		if cbErr := c.cb(n); cbErr != nil {
			return n, cbErr
		}
	}
	return n, err
}
