package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	sessionNew   bool
	sessionCheck bool
	sessionReset bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show or manage the current session",
	Long: `Print the session id shared by chat, ask and upload. The id is
created lazily on first use and persisted under ~/.ragchat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, sessions, _, err := buildCore(cfg)
		if err != nil {
			return err
		}

		if sessionReset {
			if err := sessions.Clear(); err != nil {
				return err
			}
			fmt.Println("session cleared")
			return nil
		}

		if sessionNew {
			if err := sessions.Clear(); err != nil {
				return err
			}
			id, err := sessions.Ensure(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		}

		id, err := sessions.Ensure(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(id)

		if sessionCheck {
			ok, err := client.ValidateSession(cmd.Context(), id)
			if err != nil {
				return err
			}
			if ok {
				fmt.Println("valid")
			} else {
				fmt.Println("not recognized by the backend; run with --new to replace it")
			}
		}
		return nil
	},
}

func init() {
	sessionCmd.Flags().BoolVar(&sessionNew, "new", false, "Discard the stored session and create a fresh one")
	sessionCmd.Flags().BoolVar(&sessionCheck, "check", false, "Ask the backend whether the stored session is still valid")
	sessionCmd.Flags().BoolVar(&sessionReset, "reset", false, "Discard the stored session without creating a new one")
	rootCmd.AddCommand(sessionCmd)
}
