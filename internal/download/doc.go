// Package download implements the core orchestration engine: one worker per
// URL driving the strategy fallback chain, and a manager owning the download
// set, the pause/resume/cancel protocol, and event routing to the caller's
// reporter. Workers never touch manager state; they communicate through a
// one-way event channel consumed by a single dispatch goroutine.
package download
