package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wastats/internal/report"
)

func previewCmd() *cobra.Command {
	var context, width int
	var query string

	cmd := &cobra.Command{
		Use:   "preview <id>",
		Short: "Show a message with the conversation around it",
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

			out, _, err := report.RenderConversation(cmd.Context(), db, id, report.ConversationOptions{
				Context: context,
				Width:   width,
				Query:   query,
			})
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after the hit to show (-1 = all)")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = no wrap)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid message id %q", s)
	}
	return id, nil
}
