package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wastats/internal/report"
	"github.com/Zuo-Peng/wastats/internal/store"
)

func statsCmd() *cobra.Command {
	var ff filterFlags
	var relative, tsv bool
	var metric string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print per-sender statistics",
		Long: `Computes every metric over the imported messages and prints one table per
metric. Output is TSV (section, metric, label, value) when stdout is not a
terminal or --tsv is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if errors.Is(err, store.ErrNoData) {
				fmt.Fprintln(os.Stderr, err)
				return nil
			}
			if err != nil {
				return err
			}

			mode := report.Absolute
			if relative {
				mode = report.Relative
			}
			rep := report.Build(res, mode)

			if metric != "" {
				rep, err = only(rep, metric)
				if err != nil {
					return err
				}
			}

			if tsv || !term.IsTerminal(int(os.Stdout.Fd())) {
				return report.RenderTSV(os.Stdout, rep)
			}
			return report.RenderTerminal(os.Stdout, rep)
		},
	}

	cmd.Flags().StringSliceVarP(&ff.users, "users", "u", nil, "Only report these senders (comma separated)")
	cmd.Flags().StringVar(&ff.from, "from", "", "Start of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ff.to, "to", "", "End of the period, inclusive (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&relative, "relative", "r", false, "Show values relative to each sender's message count")
	cmd.Flags().StringVarP(&metric, "metric", "m", "", "Print a single metric table by key")
	cmd.Flags().BoolVar(&tsv, "tsv", false, "Force TSV output")

	return cmd
}

// only narrows rep to the table with the given key.
func only(rep *report.Report, key string) (*report.Report, error) {
	for _, s := range rep.Sections {
		for _, t := range s.Tables {
			if t.Key == key {
				return &report.Report{
					Mode:     rep.Mode,
					Sections: []report.Section{{Title: s.Title, Tables: []report.Table{t}}},
				}, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown metric %q (one of: %s)", key, strings.Join(rep.Keys(), ", "))
}
