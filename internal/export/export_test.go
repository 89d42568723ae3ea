package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/youruser/ragchat/internal/chat"
	"gopkg.in/yaml.v3"
)

func sampleLog() []chat.Message {
	return []chat.Message{
		{Role: chat.RoleUser, Content: "what is a marmot?", Timestamp: "2026-08-28T15:04:05Z"},
		{Role: chat.RoleAssistant, Content: "A ground squirrel.", Timestamp: "2026-08-28T15:04:05Z"},
		{Role: chat.RoleUser, Content: "thanks", Timestamp: "2026-08-28T15:05:00Z"},
		{Role: chat.RoleAssistant, Content: "", Timestamp: "2026-08-28T15:05:00Z", Failed: true},
	}
}

func TestNewExporter(t *testing.T) {
	for _, format := range []string{"json", "md", "markdown", "yaml"} {
		if _, err := NewExporter(format); err != nil {
			t.Errorf("NewExporter(%q) failed: %v", format, err)
		}
	}
	if _, err := NewExporter("xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestJSONExportRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleLog(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var doc struct {
		ExportedAt string         `json:"exportedAt"`
		Messages   []chat.Message `json:"messages"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Messages) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(doc.Messages))
	}
	if doc.Messages[0].Content != "what is a marmot?" {
		t.Errorf("messages[0].Content = %q", doc.Messages[0].Content)
	}
	if !doc.Messages[3].Failed {
		t.Error("failed flag lost in export")
	}
}

func TestYAMLExportRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleLog(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var out []struct {
		Role      string `yaml:"role"`
		Content   string `yaml:"content"`
		Timestamp string `yaml:"timestamp"`
		Failed    bool   `yaml:"failed"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
	if out[1].Role != "assistant" || out[1].Content != "A ground squirrel." {
		t.Errorf("out[1] = %+v", out[1])
	}
	if !out[3].Failed {
		t.Error("failed flag lost in export")
	}
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleLog(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"# Chat transcript", "## You —", "## Assistant —", "A ground squirrel.", "_request failed_"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestExtensions(t *testing.T) {
	tests := map[string]string{"json": "json", "markdown": "md", "yaml": "yaml"}
	for format, ext := range tests {
		e, err := NewExporter(format)
		if err != nil {
			t.Fatal(err)
		}
		if e.Extension() != ext {
			t.Errorf("Extension(%s) = %q, want %q", format, e.Extension(), ext)
		}
	}
}
