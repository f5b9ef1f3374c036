package strategy

// Outcome classifies the result of one strategy attempt. Failures are
// fallback-eligible; a cancelled outcome stops the chain.
type Outcome int

const (
	// OutcomeOK means the file was fully written to the destination
	OutcomeOK Outcome = iota

	// OutcomeExtractionFailed means the extractor backend could not handle the URL
	OutcomeExtractionFailed

	// OutcomeTransferFailed means an HTTP-layer error (connection, timeout, non-2xx)
	OutcomeTransferFailed

	// OutcomeCancelled means the transfer was aborted on request; not a true error
	OutcomeCancelled
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeExtractionFailed:
		return "extraction failed"
	case OutcomeTransferFailed:
		return "transfer failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of one strategy attempt.
type Result struct {
	Outcome  Outcome
	Filename string // destination file name, set when Outcome is OutcomeOK
	Err      error  // underlying cause for failed outcomes
}

func ok(filename string) Result {
	return Result{Outcome: OutcomeOK, Filename: filename}
}

func cancelled() Result {
	return Result{Outcome: OutcomeCancelled, Err: ErrCancelled}
}

func transferFailed(err error) Result {
	return Result{Outcome: OutcomeTransferFailed, Err: err}
}

func extractionFailed(err error) Result {
	return Result{Outcome: OutcomeExtractionFailed, Err: err}
}

// Update is one progress observation for a transfer in flight.
type Update struct {
	Percent  float64 // 0 to 100
	Size     string  // total size label, progress.Unknown when the server reports none
	Speed    string  // instantaneous speed label
	ETA      string  // "<seconds>s" or progress.Unknown
	Filename string  // resolved destination name, empty if not yet known
}

// ProgressFunc receives progress updates from a running strategy. It is
// invoked synchronously from the transfer loop.
type ProgressFunc func(Update)

// Request describes one fetch attempt.
type Request struct {
	URL     string
	DestDir string
	Headers map[string]string
}

// Strategy is one concrete method of fetching a URL to disk.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Applicable reports whether the strategy should be attempted for the URL.
	Applicable(rawURL string) bool

	// Fetch attempts to retrieve the URL into req.DestDir, reporting progress
	// and honoring the token's pause/cancel signals at bounded intervals.
	Fetch(req Request, token *Token, onProgress ProgressFunc) Result
}
