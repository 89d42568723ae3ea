package export

import (
	"io"

	"github.com/youruser/ragchat/internal/chat"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports the transcript in YAML format.
type YAMLExporter struct{}

type yamlMessage struct {
	Role      string `yaml:"role"`
	Content   string `yaml:"content"`
	Timestamp string `yaml:"timestamp"`
	Failed    bool   `yaml:"failed,omitempty"`
}

// Export writes the transcript as a YAML sequence of messages.
func (e *YAMLExporter) Export(messages []chat.Message, w io.Writer) error {
	out := make([]yamlMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, yamlMessage{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp,
			Failed:    m.Failed,
		})
	}

	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(out)
}

// Extension returns the file extension for this format.
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
