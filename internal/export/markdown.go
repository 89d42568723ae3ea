package export

import (
	"fmt"
	"io"
	"time"

	"github.com/youruser/ragchat/internal/chat"
)

// MarkdownExporter exports the transcript as readable Markdown.
type MarkdownExporter struct{}

// Export writes one section per message with a role heading and relative
// timestamp.
func (e *MarkdownExporter) Export(messages []chat.Message, w io.Writer) error {
	now := time.Now()

	if _, err := fmt.Fprintf(w, "# Chat transcript\n\nExported %s\n", now.Format("2006-01-02 15:04")); err != nil {
		return err
	}

	for _, m := range messages {
		heading := "Assistant"
		if m.Role == chat.RoleUser {
			heading = "You"
		}

		if _, err := fmt.Fprintf(w, "\n## %s — %s\n\n", heading, chat.FormatTimestamp(m.Timestamp, now)); err != nil {
			return err
		}

		content := m.Content
		if m.Failed && content == "" {
			content = "_request failed_"
		} else if m.Failed {
			content += "\n\n_request failed before completing_"
		}

		if _, err := fmt.Fprintf(w, "%s\n", content); err != nil {
			return err
		}
	}

	return nil
}

// Extension returns the file extension for this format.
func (e *MarkdownExporter) Extension() string {
	return "md"
}
