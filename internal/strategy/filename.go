package strategy

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

// Extensions treated as direct video links, eligible for the chunked strategy.
var videoExtensions = []string{".mp4", ".webm", ".mkv", ".avi", ".mov", ".flv"}

// hasVideoExtension reports whether the URL path ends in a known video file
// extension (case-insensitive).
func hasVideoExtension(rawURL string) bool {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.ToLower(p)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// destFilename derives the destination file name from the URL's path
// component, percent-decoded. URLs with no usable basename get a
// timestamp-based name.
func destFilename(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		base := path.Base(u.Path)
		if base != "" && base != "." && base != "/" {
			if decoded, decErr := url.PathUnescape(base); decErr == nil && decoded != "" {
				return decoded
			}
			return base
		}
	}
	return fmt.Sprintf("video_%d.mp4", time.Now().Unix())
}
