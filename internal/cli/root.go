// Package cli wires the client core into the ragchat command tree.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/youruser/ragchat/internal/api"
	"github.com/youruser/ragchat/internal/config"
	"github.com/youruser/ragchat/internal/logging"
	"github.com/youruser/ragchat/internal/session"
	"github.com/youruser/ragchat/internal/upload"
)

var (
	cfgPath     string
	baseURLFlag string

	log = logging.Get()
)

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with a document-aware assistant from the terminal",
	Long: `ragchat is a terminal client for a streaming RAG chat backend.

It keeps a single backend session, uploads files you attach (or drop into
a watched directory), and streams assistant replies token by token.

Quick start:
  ragchat chat                    # interactive streaming chat
  ragchat ask "summarize the doc" # one-shot question, no streaming
  ragchat upload notes.pdf        # attach a file to the session
  ragchat session                 # show the current session id`,
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(`{{printf "ragchat %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default ~/.config/ragchat/config.json)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Backend base URL (overrides config)")
}

// loadConfig reads the config file and applies flag overrides. With
// --base-url set, a missing config file is not an error.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgPath != "" {
		cfg, err = config.LoadFrom(cfgPath)
	} else {
		cfg, err = config.Load()
	}

	if err != nil {
		if baseURLFlag != "" && (err == config.ErrNoConfig || err == config.ErrNoBaseURL) {
			s := 30
			ms := 500
			cfg = &config.Config{ExportFormat: "markdown", DropSettleMS: &ms, RequestTimeoutSeconds: &s}
		} else {
			return nil, err
		}
	}

	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	return cfg, nil
}

// buildCore assembles the client, session manager and upload coordinator
// shared by every command.
func buildCore(cfg *config.Config) (*api.Client, *session.Manager, *upload.Coordinator, error) {
	client := api.NewClient(cfg.BaseURL, time.Duration(*cfg.RequestTimeoutSeconds)*time.Second)

	storePath, err := session.DefaultPath()
	if err != nil {
		return nil, nil, nil, err
	}
	sessions := session.NewManager(session.NewFileStore(storePath), client)
	uploads := upload.New(client, sessions)

	return client, sessions, uploads, nil
}
