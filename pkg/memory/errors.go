package memory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidLimit is returned when a caller asks for a non-positive number
// of results. Rejected before any backend call is attempted.
var ErrInvalidLimit = errors.New("memory: limit must be a positive integer")

// ErrNotInitialized is returned by adapter operations invoked before a
// successful Init.
var ErrNotInitialized = errors.New("memory: adapter is not initialized")

// ConfigError reports a fatal configuration problem: required settings that
// are absent, or a normalization rule file that is present but malformed.
// Callers must not proceed after receiving one.
type ConfigError struct {
	// Missing lists every absent required setting, when the failure is a
	// validation one. Enumerated in full rather than failing on the first.
	Missing []string
	// Path is the offending rule file, when the failure is a rule-load one.
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString("memory: configuration error")
	if len(e.Missing) > 0 {
		missing := make([]string, len(e.Missing))
		copy(missing, e.Missing)
		sort.Strings(missing)
		sb.WriteString(": missing required settings: ")
		sb.WriteString(strings.Join(missing, ", "))
	}
	if e.Path != "" {
		sb.WriteString(fmt.Sprintf(": rule file %s", e.Path))
	}
	if e.Reason != "" {
		sb.WriteString(": " + e.Reason)
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// BackendError wraps any failure from the underlying persistence or
// embedding service. Never converted to an empty result: a failed fetch is
// reported as a failure, empty results are reserved for "no records found".
type BackendError struct {
	Op  string // "store" or "search"
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("memory: backend %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
