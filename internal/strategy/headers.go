package strategy

import "net/http"

// Browser-like header set. Some hosts reject requests without it.
const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	defaultLanguage  = "en-US,en;q=0.5"
)

// DefaultHeaders returns the outbound header set for a download, with the
// Referer pointing back at the target URL.
func DefaultHeaders(rawURL string) map[string]string {
	return map[string]string{
		"User-Agent":      defaultUserAgent,
		"Accept":          defaultAccept,
		"Accept-Language": defaultLanguage,
		"Referer":         rawURL,
	}
}

func applyHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}
