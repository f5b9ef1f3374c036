// Package progress holds the label formatting shared by the retrieval
// strategies and the CLI reporter. Size and speed use binary megabytes with
// one decimal; the ETA label is "<seconds>s" or "Unknown".
package progress
