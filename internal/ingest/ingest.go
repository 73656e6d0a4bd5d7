package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/wastats/internal/parse"
	"github.com/Zuo-Peng/wastats/internal/source"
	"github.com/Zuo-Peng/wastats/internal/store"
)

type Options struct {
	Force  bool // re-import even if the transcript is unchanged
	Logger zerolog.Logger
}

type Stats struct {
	parse.Stats
	Messages int
	Skipped  bool
	ImportID string
}

func (s Stats) String() string {
	if s.Skipped {
		return "unchanged, skipped"
	}
	return fmt.Sprintf("messages=%d continuations=%d dropped=%d bad_timestamps=%d system=%d media=%d polls=%d",
		s.Messages, s.Continuations, s.Dropped, s.BadTimestamps, s.System, s.Media, s.Polls)
}

// Import parses the transcript at path and replaces the stored record set.
// Nothing is written unless the whole transcript parses.
func Import(ctx context.Context, db *store.DB, path string, opts Options) (Stats, error) {
	var stats Stats
	log := opts.Logger

	info, err := source.Stat(path)
	if err != nil {
		return stats, err
	}
	src := store.SourceInfo{Key: info.Key(), Mtime: info.Mtime, Size: info.Size}

	if !opts.Force {
		needs, err := db.NeedsImport(ctx, src)
		if err != nil {
			return stats, fmt.Errorf("check source: %w", err)
		}
		if !needs {
			stats.Skipped = true
			log.Debug().Str("source", src.Key).Msg("transcript unchanged")
			return stats, nil
		}
	}

	tr, err := source.Read(path)
	if err != nil {
		return stats, err
	}

	res, err := parse.ParseReader(tr.Reader())
	if err != nil {
		return stats, fmt.Errorf("parse %s: %w", tr.Info.Key(), err)
	}
	stats.Stats = res.Stats
	stats.Messages = len(res.Messages)

	if res.Stats.Dropped > 0 {
		log.Warn().Int("lines", res.Stats.Dropped).Msg("dropped continuation lines before the first message")
	}
	if res.Stats.BadTimestamps > 0 {
		log.Warn().Int("messages", res.Stats.BadTimestamps).Msg("kept raw timestamps that did not parse")
	}

	src.ImportID = uuid.NewString()
	src.ImportedAt = time.Now().Format(time.RFC3339)
	if err := db.Replace(ctx, res.Messages, src); err != nil {
		return stats, fmt.Errorf("store: %w", err)
	}
	stats.ImportID = src.ImportID

	log.Info().
		Str("source", src.Key).
		Str("import_id", src.ImportID).
		Int("messages", stats.Messages).
		Msg("import complete")
	return stats, nil
}
