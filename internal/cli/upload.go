package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload files to the current session",
	Long: `Upload one or more files so the assistant can use them as context.
Files are uploaded concurrently; the command waits for all of them and
reports each outcome.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, _, uploads, err := buildCore(cfg)
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		for _, path := range args {
			path := path
			g.Go(func() error {
				return uploads.SubmitFile(ctx, path)
			})
		}
		err = g.Wait()

		for _, e := range uploads.Entries() {
			fmt.Printf("  %-40s %s\n", e.FileName, e.Status)
		}
		if err != nil {
			return fmt.Errorf("not all files uploaded: %w", err)
		}
		log.Info("uploaded %d file(s)", len(args))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
