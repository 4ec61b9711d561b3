package errors

import (
	"errors"
	"strings"
)

// Aggregate carries an ordered list of validation failures that were
// collected together rather than stopping at the first one. The top-level
// handler prints one diagnostic line per message.
type Aggregate struct {
	Code     ErrorCode
	Source   string // originating source name (e.g. config file), may be empty
	Messages []string
}

// NewAggregate creates an aggregate error from a list of messages
func NewAggregate(code ErrorCode, source string, messages ...string) *Aggregate {
	return &Aggregate{
		Code:     code,
		Source:   source,
		Messages: messages,
	}
}

// Append adds another message to the aggregate
func (e *Aggregate) Append(message string) {
	e.Messages = append(e.Messages, message)
}

// Len returns the number of collected messages
func (e *Aggregate) Len() int {
	return len(e.Messages)
}

// Error implements the error interface
func (e *Aggregate) Error() string {
	if e.Source != "" {
		return e.Source + ": " + strings.Join(e.Messages, "; ")
	}
	return strings.Join(e.Messages, "; ")
}

// Is implements the errors.Is interface
func (e *Aggregate) Is(target error) bool {
	var targetErr *Aggregate
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// Lines returns the messages as individual diagnostic lines, each
// prefixed with the source name when one is set.
func (e *Aggregate) Lines() []string {
	lines := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		if e.Source != "" {
			lines = append(lines, e.Source+": "+m)
		} else {
			lines = append(lines, m)
		}
	}
	return lines
}

// Lines returns the diagnostic lines to print for any error. Aggregates
// expand to one line per collected message; everything else is a single
// line.
func Lines(err error) []string {
	var agg *Aggregate
	if errors.As(err, &agg) {
		return agg.Lines()
	}
	return []string{err.Error()}
}
