package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wastats/internal/report"
	"github.com/Zuo-Peng/wastats/internal/tui"
)

func dashCmd() *cobra.Command {
	var ff filterFlags
	var relative bool
	var limit int

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Interactive dashboard with statistics tabs and a message archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("dash needs a terminal; use 'wastats stats' for piped output")
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := compute(cmd.Context(), cfg, db, ff, log)
			if err != nil {
				return err
			}

			archive, err := archiveOptions(ff, limit)
			if err != nil {
				return err
			}
			opts := tui.Options{SearchOpts: archive}
			if relative {
				opts.Mode = report.Relative
			}
			return tui.Run(cmd.Context(), db, res, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&ff.users, "users", "u", nil, "Only report these senders (comma separated)")
	cmd.Flags().StringVar(&ff.from, "from", "", "Start of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ff.to, "to", "", "End of the period, inclusive (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&relative, "relative", "r", false, "Start in relative mode")
	cmd.Flags().IntVar(&limit, "limit", 200, "Max archive search results")

	return cmd
}
