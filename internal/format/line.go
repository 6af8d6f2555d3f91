package format

import (
	"fmt"
	"io"

	"github.com/peoplekit/inbox-sync/internal/colors"
	"github.com/peoplekit/inbox-sync/internal/domain"
)

// WriteLive writes a single live notification line, the style used by
// the follow command. Unread records are highlighted.
func WriteLive(writer io.Writer, n domain.Notification) error {
	color := colors.Green
	if !n.IsRead() {
		color = colors.Yellow
	}
	body := n.Title
	if n.Message != "" {
		body = fmt.Sprintf("%s: %s", n.Title, n.Message)
	}
	_, err := fmt.Fprintf(writer, "%s[%s]%s %s (%s)\n", color, n.CreatedAt, colors.Reset, body, n.ID)
	return err
}

// WriteStatusLine writes a connectivity transition line for the follow
// command.
func WriteStatusLine(writer io.Writer, connected bool) error {
	if connected {
		_, err := fmt.Fprintf(writer, "%s-- live --%s\n", colors.Green, colors.Reset)
		return err
	}
	_, err := fmt.Fprintf(writer, "%s-- offline --%s\n", colors.Yellow, colors.Reset)
	return err
}
