package strategy

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/vget/vget/internal/progress"
)

// chunkSize is the read granularity of the chunked strategy. It bounds the
// latency for observing a pause or cancel request mid-transfer.
const chunkSize = 8 * 1024

// ChunkedHTTP downloads direct video links with a streamed GET, recomputing
// percent/speed/ETA after every chunk. It only applies to URLs whose path
// ends in a known video extension.
type ChunkedHTTP struct {
	client *http.Client
	log    zerolog.Logger
}

// NewChunkedHTTP creates the chunked HTTP strategy.
func NewChunkedHTTP(log zerolog.Logger) *ChunkedHTTP {
	return &ChunkedHTTP{
		client: &http.Client{},
		log:    log.With().Str("component", "chunked-http").Logger(),
	}
}

// Name identifies the strategy in logs.
func (s *ChunkedHTTP) Name() string { return "chunked-http" }

// Applicable reports whether the URL looks like a direct video link.
func (s *ChunkedHTTP) Applicable(rawURL string) bool {
	return hasVideoExtension(rawURL)
}

// Fetch streams the URL to disk in fixed-size chunks.
func (s *ChunkedHTTP) Fetch(req Request, token *Token, onProgress ProgressFunc) Result {
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
	if total <= 0 {
		// No content length: write the whole body in one shot, no per-chunk
		// progress (size stays Unknown).
		if _, err := io.Copy(f, resp.Body); err != nil {
			return transferFailed(fmt.Errorf("copy body: %w", err))
		}
		s.log.Debug().Str("file", name).Msg("saved body without content length")
		return ok(name)
	}

	var downloaded int64
	buf := make([]byte, chunkSize)
	last := time.Now()

	for {
		if token.IsCancelled() {
			return cancelled()
		}
		if token.IsPaused() {
			// Block at the chunk boundary; the connection stays open.
			if err := token.AwaitResume(); err != nil {
				return cancelled()
			}
			last = time.Now()
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if token.IsCancelled() {
				return cancelled()
			}
			if _, err := f.Write(buf[:n]); err != nil {
				return transferFailed(fmt.Errorf("write chunk: %w", err))
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
			if speedBps > 0 {
				eta = progress.FormatETA(float64(total-downloaded) / speedBps)
			}
			onProgress(Update{
				Percent:  progress.Percent(downloaded, total),
				Size:     progress.FormatSize(total),
				Speed:    progress.FormatSpeed(speedBps),
				ETA:      eta,
				Filename: name,
			})
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return transferFailed(fmt.Errorf("read body: %w", readErr))
		}
	}

	s.log.Debug().Str("file", name).Int64("bytes", downloaded).Msg("chunked download complete")
	return ok(name)
}
