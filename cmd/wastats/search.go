package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wastats/internal/search"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorGreen   = "\033[1;32m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func plainSnippet(snippet string) string {
	return strings.NewReplacer(">>>", "", "<<<", "").Replace(snippet)
}

func searchCmd() *cobra.Command {
	var ff filterFlags
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across imported messages",
		Long: `Search message bodies using FTS5. Output is TSV for fzf integration:
  id, timestamp, sender, snippet

Recommended shell function (add to .zshrc):
  wsf() {
    wastats search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=2.. \
      --preview 'wastats preview {1} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(wastats open {1})'
  }`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}

			opts, err := archiveOptions(ff, limit)
			if err != nil {
				return err
			}
			opts.Query = strings.Join(args, " ")

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			results, err := search.Search(cmd.Context(), db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			color := term.IsTerminal(int(os.Stdout.Fd()))
			for _, r := range results {
				snippet := strings.NewReplacer("\t", " ", "\n", " ").Replace(r.Snippet)
				if color {
					fmt.Printf("%d\t%s%s%s\t%s%s%s\t%s\n",
						r.ID,
						sColorDim, r.Timestamp, sColorReset,
						sColorGreen, r.Sender, sColorReset,
						colorizeSnippet(snippet),
					)
					continue
				}
				// first field (id) stays plain for fzf {1}
				fmt.Printf("%d\t%s\t%s\t%s\n", r.ID, r.Timestamp, r.Sender, plainSnippet(snippet))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&ff.users, "users", "u", nil, "Only messages from these senders (comma separated)")
	cmd.Flags().StringVar(&ff.from, "from", "", "Start of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ff.to, "to", "", "End of the period, inclusive (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
