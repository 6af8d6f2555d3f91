// Package format provides output formatting for CLI commands: list
// styles for the baseline view and a line renderer for live events.
package format

import (
	"io"

	"github.com/peoplekit/inbox-sync/internal/domain"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// FormatNotifications formats a slice of notifications and writes to the writer.
	FormatNotifications(notifications []domain.Notification, writer io.Writer) error
}

// FormatterType represents the type of formatter to use.
type FormatterType string

const (
	// FormatterTypeSimple displays id, timestamp, status, and title per line.
	FormatterTypeSimple FormatterType = "simple"

	// FormatterTypeTable displays notifications in a table format with headers.
	FormatterTypeTable FormatterType = "table"

	// FormatterTypeCompact displays only titles, one per line.
	FormatterTypeCompact FormatterType = "compact"

	// FormatterTypeJSON displays notifications in JSON format.
	FormatterTypeJSON FormatterType = "json"
)

// NewFormatter creates a new formatter of the specified type.
func NewFormatter(formatterType FormatterType) Formatter {
	switch formatterType {
	case FormatterTypeTable:
		return NewTableFormatter()
	case FormatterTypeCompact:
		return NewCompactFormatter()
	case FormatterTypeJSON:
		return NewJSONFormatter()
	case FormatterTypeSimple:
		return NewSimpleFormatter()
	default:
		return NewTableFormatter()
	}
}
