package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wastats/internal/ingest"
)

func importCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import [path]",
		Short: "Import a chat transcript (.txt, exported .zip, or directory)",
		Long: `Parses the transcript and replaces every stored message with its contents.
Without a path the configured transcript_path is used. An unchanged
transcript is skipped unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			path := cfg.TranscriptPath
			if len(args) == 1 {
				path = args[0]
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			log.Debug().Str("path", path).Str("db", cfg.DBPath).Msg("importing")

			stats, err := ingest.Import(cmd.Context(), db, path, ingest.Options{
				Force:  force,
				Logger: log,
			})
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-import even if the transcript is unchanged")

	return cmd
}
