package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/peoplekit/inbox-sync/internal/colors"
	"github.com/peoplekit/inbox-sync/internal/domain"
)

// SimpleFormatter formats notifications with id, date, status, and title.
type SimpleFormatter struct{}

// NewSimpleFormatter creates a new SimpleFormatter.
func NewSimpleFormatter() *SimpleFormatter {
	return &SimpleFormatter{}
}

// FormatNotifications formats notifications in simple format.
func (f *SimpleFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	for _, n := range notifications {
		title := n.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		_, err := fmt.Fprintf(writer, "%-10s  %-20s  %-6s  %s\n", n.ID, n.CreatedAt, n.Status, title)
		if err != nil {
			return err
		}
	}
	return nil
}

// CompactFormatter formats notifications with only titles, one per line.
type CompactFormatter struct{}

// NewCompactFormatter creates a new CompactFormatter.
func NewCompactFormatter() *CompactFormatter {
	return &CompactFormatter{}
}

// FormatNotifications formats notifications in compact format.
func (f *CompactFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	for _, n := range notifications {
		_, err := fmt.Fprintln(writer, n.Title)
		if err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter formats notifications as a JSON array.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatNotifications formats notifications as indented JSON.
func (f *JSONFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(notifications)
}

// TableFormatter formats notifications in a table format with headers.
type TableFormatter struct{}

// NewTableFormatter creates a new TableFormatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

var tableColumns = []struct {
	name  string
	width int
}{
	{"ID", 10},
	{"DATE", 20},
	{"TYPE", 10},
	{"STATUS", 6},
	{"TITLE", 32},
}

// FormatNotifications formats notifications in table format. Unread
// rows are prefixed with a marker so they stand out in plain output.
func (f *TableFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	if len(notifications) == 0 {
		return nil
	}

	headerColor := colors.Blue
	reset := colors.Reset

	var header, separator strings.Builder
	for i, col := range tableColumns {
		if i > 0 {
			header.WriteString("  ")
			separator.WriteString("  ")
		}
		header.WriteString(padString(col.name, col.width))
		separator.WriteString(strings.Repeat("-", col.width))
	}
	_, err := fmt.Fprintf(writer, "  %s%s%s\n", headerColor, header.String(), reset)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer, "  %s%s%s\n", headerColor, separator.String(), reset)
	if err != nil {
		return err
	}

	for _, n := range notifications {
		marker := " "
		if !n.IsRead() {
			marker = "*"
		}
		_, err := fmt.Fprintf(writer, "%s %s  %s  %s  %s  %s\n",
			marker,
			padString(n.ID, 10),
			padString(n.CreatedAt, 20),
			padString(n.Type, 10),
			padString(string(n.Status), 6),
			truncateString(n.Title, 32),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// padString pads or clips a string to the given width.
func padString(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncateString truncates a string to the specified width, adding "..." if truncated.
func truncateString(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width < 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
