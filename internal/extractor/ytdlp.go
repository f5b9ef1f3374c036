package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"

	"github.com/vget/vget/internal/progress"
	"github.com/vget/vget/internal/strategy"
)

// How often yt-dlp progress is sampled.
const defaultProgressInterval = 500 * time.Millisecond

// Client runs downloads through yt-dlp via the go-ytdlp bindings. It
// implements strategy.Extractor.
type Client struct {
	progressInterval time.Duration
	log              zerolog.Logger
}

var _ strategy.Extractor = (*Client)(nil)

// New creates a yt-dlp backed extractor client.
func New(log zerolog.Logger) *Client {
	return &Client{
		progressInterval: defaultProgressInterval,
		log:              log.With().Str("component", "ytdlp").Logger(),
	}
}

// Download fetches the URL with yt-dlp, forwarding progress translated into
// the strategy Update shape. It returns the path of the downloaded file.
func (c *Client) Download(ctx context.Context, rawURL, outputTemplate string, headers map[string]string, onProgress strategy.ProgressFunc) (string, error) {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		Output(outputTemplate)

	for k, v := range headers {
		dl = dl.AddHeaders(fmt.Sprintf("%s:%s", k, v))
	}

	dl.ProgressFunc(c.progressInterval, func(update ytdlp.ProgressUpdate) {
		onProgress(translate(update))
	})

	result, err := dl.Run(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("yt-dlp: %w", err)
	}

	path, err := downloadedPath(result)
	if err != nil {
		return "", err
	}
	c.log.Debug().Str("url", rawURL).Str("file", path).Msg("yt-dlp download finished")
	return path, nil
}

// translate maps a yt-dlp progress sample onto the shared update shape.
func translate(update ytdlp.ProgressUpdate) strategy.Update {
	u := strategy.Update{
		Size:  progress.Unknown,
		Speed: progress.Unknown,
		ETA:   progress.Unknown,
	}

	if update.TotalBytes > 0 {
		u.Percent = progress.Percent(int64(update.DownloadedBytes), int64(update.TotalBytes))
		u.Size = progress.FormatSize(int64(update.TotalBytes))
	}

	if !update.Started.IsZero() {
		elapsed := time.Since(update.Started).Seconds()
		if elapsed > 0 {
			u.Speed = progress.FormatSpeed(float64(update.DownloadedBytes) / elapsed)
		}
	}

	if eta := update.ETA(); eta > 0 {
		u.ETA = progress.FormatETA(eta.Seconds())
	}

	return u
}

// downloadedPath pulls the destination file out of the yt-dlp result.
func downloadedPath(result *ytdlp.Result) (string, error) {
	info, err := result.GetExtractedInfo()
	if err != nil {
		return "", fmt.Errorf("extract result info: %w", err)
	}
	if len(info) == 0 || info[0].Filename == nil || *info[0].Filename == "" {
		return "", errors.New("yt-dlp reported no output file")
	}
	return *info[0].Filename, nil
}
