// Package strategy implements the retrieval strategies a download worker
// tries in order: the rich extractor backend, a chunked HTTP GET for direct
// video links, and a plain whole-body HTTP GET as the last resort. Every
// strategy honors the same cooperative pause/cancel token and reports
// progress through a shared callback shape.
package strategy
