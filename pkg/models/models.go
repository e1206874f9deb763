// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// SentryIssue is the subset of the Sentry issue document the relay reads.
type SentryIssue struct {
	// ID is the numeric issue identifier as a string (e.g., "4512")
	ID string `json:"id"`

	// Title is the issue's headline, usually the exception message
	Title string `json:"title"`

	// Status is the triage state reported by Sentry (e.g., "unresolved")
	Status string `json:"status"`

	// Level is the severity of the issue (e.g., "error", "warning")
	Level string `json:"level"`

	// FirstSeen is the timestamp of the first captured event
	FirstSeen time.Time `json:"firstSeen"`

	// LastSeen is the timestamp of the most recent captured event
	LastSeen time.Time `json:"lastSeen"`

	// Count is the number of events grouped into the issue.
	// Sentry sends it as a string, so it is decoded leniently.
	Count FlexInt `json:"count"`

	// LatestEvent is the raw latest event, if the API embedded one
	LatestEvent map[string]any `json:"latestEvent,omitempty"`
}

// IssueResponse is the simplified issue document returned to relay clients.
type IssueResponse struct {
	Title      string     `json:"title"`
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Level      string     `json:"level"`
	FirstSeen  time.Time  `json:"first_seen"`
	LastSeen   time.Time  `json:"last_seen"`
	Count      int64      `json:"count"`
	Stacktrace Stacktrace `json:"stacktrace"`
}

// Stacktrace is a flattened view of every exception in an event. Frames are
// collected across all exceptions in source order.
type Stacktrace struct {
	Exceptions []ExceptionSummary `json:"exceptions"`
	Frames     []FrameSummary     `json:"frames"`
}

// ExceptionSummary describes one exception value of an event.
type ExceptionSummary struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Module string `json:"module"`
}

// FrameSummary describes one stack frame.
type FrameSummary struct {
	Filename string `json:"filename"`
	Function string `json:"function"`

	// LineNo is copied verbatim from the event; it is usually a number but
	// falls back to the string "?" when the event has none.
	LineNo any `json:"lineno"`

	// Context holds the source context lines exactly as Sentry sent them
	Context []any `json:"context"`

	// Variables holds the frame's local variables
	Variables map[string]any `json:"variables"`
}

// ConfigRequest is the body of POST /config.
type ConfigRequest struct {
	AuthToken *string `json:"auth_token"`
}

// IssueRequest is the body of POST /sentry/issue.
type IssueRequest struct {
	IssueIDOrURL *string `json:"issue_id_or_url"`
}
