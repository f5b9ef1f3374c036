// Package model defines the domain data structures shared across the app:
// the Download record and its status enum. Downloads are keyed by their
// source URL and move through an explicit state machine with three terminal
// states.
package model
