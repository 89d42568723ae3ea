package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/youruser/ragchat/internal/chat"
)

// JSONExporter exports the transcript as pretty-printed JSON.
type JSONExporter struct{}

type jsonTranscript struct {
	ExportedAt string         `json:"exportedAt"`
	Messages   []chat.Message `json:"messages"`
}

// Export writes the transcript as a single JSON document.
func (e *JSONExporter) Export(messages []chat.Message, w io.Writer) error {
	doc := jsonTranscript{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Messages:   messages,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Extension returns the file extension for this format.
func (e *JSONExporter) Extension() string {
	return "json"
}
