package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wastats/internal/source"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, transcript, DB, FTS5, and show stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, _, err := setup()
			if err != nil {
				return err
			}

			fmt.Println("=== Config ===")
			fmt.Printf("  Latency ceiling:   %s\n", cfg.LatencyCeiling.Duration)
			fmt.Printf("  Revival threshold: %s\n", cfg.RevivalThreshold.Duration)
			if cfg.SwearWordsFile != "" {
				checkFile("  Swear words file", cfg.SwearWordsFile)
			}
			if e, err := newEngine(cfg); err != nil {
				fmt.Printf("  Swear words:       %v\n", err)
			} else {
				words := e.Swears.Words()
				fmt.Printf("  Swear words:       %d %s\n", len(words), firstN(words, 5))
			}

			fmt.Println("\n=== Transcript ===")
			if info, err := source.Stat(cfg.TranscriptPath); err != nil {
				fmt.Printf("  %s (NOT FOUND)\n", cfg.TranscriptPath)
			} else {
				fmt.Printf("  %s (OK, %.1f KB)\n", info.Key(), float64(info.Size)/1024)
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'wastats import' first)")
				return nil
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			count, err := db.Count(ctx)
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}
			fmt.Printf("  Messages: %d\n", count)

			if src, err := db.Source(ctx); err == nil && src != nil {
				fmt.Printf("  Source:   %s\n", src.Key)
				fmt.Printf("  Imported: %s (run %s)\n", src.ImportedAt, src.ImportID)
			}

			senders, err := db.Senders(ctx)
			if err != nil {
				return fmt.Errorf("list senders: %w", err)
			}
			fmt.Printf("  Senders:  %d %s\n", len(senders), firstN(senders, 5))

			fmt.Println("\n=== FTS5 ===")
			ftsCount, err := db.FTSCount(ctx)
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == count {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (messages=%d, fts=%d)\n", count, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkFile(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("%s: %s (NOT FOUND)\n", name, path)
	} else if info.IsDir() {
		fmt.Printf("%s: %s (IS A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("%s: %s (OK)\n", name, path)
	}
}

// firstN lists the first n names in brackets.
func firstN(names []string, n int) string {
	if len(names) == 0 {
		return ""
	}
	if len(names) > n {
		return "[" + strings.Join(names[:n], ", ") + ", ...]"
	}
	return "[" + strings.Join(names, ", ") + "]"
}
