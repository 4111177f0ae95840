package model

import "time"

// Reasons recorded on version entries created by the session itself.
const (
	// ReasonInitialGeneration is the reason of the first entry of every log.
	ReasonInitialGeneration = "Initial Generation"
)

// VersionEntry is one immutable snapshot in a report's edit history.
// Entries are created by the first generation, by every committed edit and
// by every restoration. They are never mutated or removed individually.
type VersionEntry struct {
	// ID uniquely identifies the entry (a UUID string).
	ID string `json:"id"`

	// Timestamp is when the entry was created.
	Timestamp time.Time `json:"timestamp"`

	// Content is the full report text of this version.
	Content string `json:"content"`

	// Reason describes why this version was created.
	Reason string `json:"reason"`
}
