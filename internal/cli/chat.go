package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/youruser/ragchat/internal/api"
	"github.com/youruser/ragchat/internal/chat"
	"github.com/youruser/ragchat/internal/export"
	"github.com/youruser/ragchat/internal/upload"
	"github.com/youruser/ragchat/internal/watch"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive streaming chat",
	Long: `Start an interactive chat session. Replies stream in as they are
generated. Files dropped into the configured drop directory are uploaded
in the background and attached to the session.

Commands inside the chat:
  /files           list uploaded files and their status
  /save [fmt] [fp] save the transcript (json, markdown, yaml)
  /session         show the current session id
  /quit            exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, sessions, uploads, err := buildCore(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if cfg.DropDir != "" {
			w, err := watch.New(uploads, time.Duration(*cfg.DropSettleMS)*time.Millisecond)
			if err != nil {
				return fmt.Errorf("drop watcher: %w", err)
			}
			defer w.Stop()
			go func() {
				if err := w.Run(ctx, cfg.DropDir); err != nil && !errors.Is(err, context.Canceled) {
					fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("drop watcher stopped: %v", err)))
				}
			}()
			fmt.Println(dimStyle.Render(fmt.Sprintf("Watching %s for dropped files", cfg.DropDir)))
		}

		controller := chat.NewController(chat.NewLog(), sessions, uploads, client)

		fmt.Println(dimStyle.Render("Connected to " + cfg.BaseURL + ". Type /quit to exit."))

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)

		for {
			fmt.Print(userStyle.Render("you") + " > ")
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())

			switch {
			case line == "":
				continue
			case line == "/quit" || line == "/exit":
				return nil
			case line == "/files":
				printFiles(uploads)
				continue
			case line == "/session":
				fmt.Println(dimStyle.Render("session: " + sessions.GetOrCreate(ctx)))
				continue
			case strings.HasPrefix(line, "/save"):
				if err := saveTranscript(controller.Log().Messages(), strings.Fields(line)[1:], cfg.ExportFormat); err != nil {
					fmt.Println(errorStyle.Render("save failed: " + err.Error()))
				}
				continue
			case strings.HasPrefix(line, "/"):
				fmt.Println(dimStyle.Render("unknown command " + line))
				continue
			}

			runTurn(ctx, controller, line)
		}
	},
}

// runTurn submits one prompt and prints the reply as it streams. Only the
// delta beyond what is already on screen is written for each update.
func runTurn(ctx context.Context, controller *chat.Controller, prompt string) {
	fmt.Print(assistantStyle.Render("assistant") + " > ")

	printed := 0
	err := controller.Submit(ctx, prompt, func(m chat.Message) {
		if len(m.Content) > printed {
			fmt.Print(m.Content[printed:])
			printed = len(m.Content)
		}
	})
	fmt.Println()

	if err != nil {
		fmt.Println(errorStyle.Render("request failed: " + err.Error()))
		return
	}

	reply := controller.Log().Get(chat.Handle(controller.Log().Len() - 1))
	if n := api.EstimateTokensSimple(reply.Content); n > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("~%d tokens · %s", n, chat.FormatTimestamp(reply.Timestamp, time.Now()))))
	}
}

func printFiles(uploads *upload.Coordinator) {
	entries := uploads.Entries()
	if len(entries) == 0 {
		fmt.Println(dimStyle.Render("no files uploaded yet"))
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("  %-40s %s", e.FileName, e.Status)
		if e.Status == upload.StatusFailed {
			fmt.Println(errorStyle.Render(line))
		} else {
			fmt.Println(line)
		}
	}
}

// saveTranscript writes the conversation to disk. Usage: /save [format] [path].
// Format defaults to the configured export format, path to
// transcript-<timestamp>.<ext> in the working directory.
func saveTranscript(messages []chat.Message, args []string, defaultFormat string) error {
	if len(messages) == 0 {
		return errors.New("nothing to save")
	}

	format := defaultFormat
	if len(args) > 0 {
		format = args[0]
	}
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("transcript-%s.%s", time.Now().Format("20060102-150405"), exporter.Extension())
	if len(args) > 1 {
		path = args[1]
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := exporter.Export(messages, f); err != nil {
		return err
	}
	fmt.Println(dimStyle.Render("saved " + path))
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
