// Package export renders the in-memory conversation log to a writer in a
// chosen format. The log itself is never persisted by the client; export
// only happens when explicitly requested.
package export

import (
	"fmt"
	"io"

	"github.com/youruser/ragchat/internal/chat"
)

// Exporter defines the interface for all transcript formats.
type Exporter interface {
	Export(messages []chat.Message, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, markdown, yaml)", format)
	}
}
