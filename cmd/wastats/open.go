package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wastats/internal/open"
)

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Open the transcript in $EDITOR at the message's line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			cfg, _, err := setup()
			if err != nil {
				return err
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			return open.OpenMessage(cmd.Context(), db, id)
		},
	}
}
