package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/youruser/ragchat/internal/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask a single question and print the full reply",
	Long: `Send one prompt to the backend and wait for the complete reply
instead of streaming it. Useful in scripts and pipes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, sessions, uploads, err := buildCore(cfg)
		if err != nil {
			return err
		}

		controller := chat.NewController(chat.NewLog(), sessions, uploads, client)

		prompt := strings.Join(args, " ")
		var reply chat.Message
		if err := controller.SubmitWait(cmd.Context(), prompt, func(m chat.Message) {
			reply = m
		}); err != nil {
			return err
		}

		fmt.Println(reply.Content)
		if reply.Timestamp != "" {
			fmt.Println(dimStyle.Render(chat.FormatTimestamp(reply.Timestamp, time.Now())))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
