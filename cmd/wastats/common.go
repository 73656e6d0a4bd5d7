package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/wastats/internal/classify"
	"github.com/Zuo-Peng/wastats/internal/config"
	"github.com/Zuo-Peng/wastats/internal/metrics"
	"github.com/Zuo-Peng/wastats/internal/parse"
	"github.com/Zuo-Peng/wastats/internal/search"
	"github.com/Zuo-Peng/wastats/internal/store"
)

// newLogger writes human-readable logs to stderr. --verbose wins over the
// configured level.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
}

// setup loads the config and builds the logger every command starts with.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, newLogger(cfg.LogLevel), nil
}

func openDB(cfg *config.Config) (*store.DB, error) {
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// newEngine applies the configured thresholds and word lists.
func newEngine(cfg *config.Config) (*metrics.Engine, error) {
	e := metrics.NewEngine()
	e.LatencyCeiling = cfg.LatencyCeiling.Duration
	e.RevivalThreshold = cfg.RevivalThreshold.Duration
	e.Stopwords = cfg.StopwordSet()
	if cfg.SwearWordsFile != "" {
		lex, err := classify.LoadLexicon(cfg.SwearWordsFile)
		if err != nil {
			return nil, fmt.Errorf("swear words: %w", err)
		}
		e.Swears = lex
	}
	return e, nil
}

// filterFlags are the selection flags shared by stats, dash and search.
type filterFlags struct {
	users []string
	from  string
	to    string
}

// archiveOptions limits archive search to the same selection the metrics use.
func archiveOptions(ff filterFlags, limit int) (search.Options, error) {
	w, err := parseWindow(ff.from, ff.to)
	if err != nil {
		return search.Options{}, err
	}
	opts := search.Options{Senders: ff.users, Limit: limit}
	if !w.Start.IsZero() {
		opts.Since = w.Start.Format(parse.TimestampLayout)
	}
	if !w.End.IsZero() {
		opts.Until = w.End.Format(parse.TimestampLayout)
	}
	return opts, nil
}

// compute loads the stored records and runs the metric engine over the
// selection. It returns store.ErrNoData when nothing was imported.
func compute(ctx context.Context, cfg *config.Config, db *store.DB, ff filterFlags, log zerolog.Logger) (*metrics.Result, error) {
	window, err := parseWindow(ff.from, ff.to)
	if err != nil {
		return nil, err
	}

	msgs, err := db.Load(ctx)
	if err != nil {
		return nil, err
	}

	if len(ff.users) > 0 {
		known, err := db.Senders(ctx)
		if err != nil {
			return nil, err
		}
		for _, u := range missing(ff.users, known) {
			log.Warn().Str("user", u).Msg("no messages from this sender")
		}
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	seq := metrics.Prepare(msgs, metrics.Filter{Window: window, Senders: ff.users})
	if seq.Skipped > 0 {
		log.Debug().Int("messages", seq.Skipped).Msg("skipped messages without a parseable timestamp")
	}
	log.Debug().Int("messages", seq.Len()).Int("senders", len(seq.Senders())).Msg("computing metrics")
	return engine.Run(seq), nil
}

func missing(want, known []string) []string {
	set := make(map[string]bool, len(known))
	for _, k := range known {
		set[k] = true
	}
	var out []string
	for _, w := range want {
		if !set[w] {
			out = append(out, w)
		}
	}
	return out
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// parseWindow reads --from/--to as naive wall clock, the same way transcript
// timestamps are read. A date-only --to covers that whole day.
func parseWindow(from, to string) (metrics.Window, error) {
	var w metrics.Window
	if from != "" {
		t, _, err := parseDate(from)
		if err != nil {
			return w, fmt.Errorf("--from: %w", err)
		}
		w.Start = t
	}
	if to != "" {
		t, dateOnly, err := parseDate(to)
		if err != nil {
			return w, fmt.Errorf("--to: %w", err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		w.End = t
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		return w, errors.New("--to is before --from")
	}
	return w, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t, true, nil
	}
	t, err := time.ParseInLocation(dateTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("want YYYY-MM-DD or \"YYYY-MM-DD HH:MM\", got %q", s)
	}
	return t, false, nil
}
