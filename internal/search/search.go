package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/wastats/internal/parse"
	"github.com/Zuo-Peng/wastats/internal/store"
)

type Result struct {
	ID        int64
	Timestamp string
	Sender    string
	Snippet   string
	Rank      float64
}

type Options struct {
	Query   string
	Senders []string // nil = all
	Since   string   // "" = no filter, e.g. "2024-01-01"
	Until   string   // inclusive, compared against "2006-01-02 15:04:05"
	Limit   int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	runes := []rune(text)
	idx := strings.Index(strings.ToLower(text), strings.ToLower(query))
	if idx < 0 || len(strings.ToLower(text)) != len(text) {
		// no match, or case folding shifted byte offsets: return head
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	qLen := len([]rune(query))
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + qLen + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+qLen]) + "<<<" +
		string(runes[runePos+qLen:end])
	return prefix + snippet + suffix
}

// Search finds messages whose body matches opts.Query, best match first.
// System notices are never returned.
func Search(ctx context.Context, db *store.DB, opts Options) ([]Result, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if containsCJK(opts.Query) {
		return searchLike(ctx, db, opts)
	}
	match := ftsQuery(opts.Query)
	if match == "" {
		// only punctuation: nothing for FTS5 to index, so do a contains search
		return searchLike(ctx, db, opts)
	}
	return searchFTS(ctx, db, opts, match)
}

// ftsQuery turns free text into FTS5 phrase tokens so that punctuation and
// operators in the input are searched for instead of parsed. Tokens without a
// letter or digit are dropped.
func ftsQuery(q string) string {
	var parts []string
	for _, tok := range strings.Fields(q) {
		if strings.IndexFunc(tok, isWordRune) < 0 {
			continue
		}
		parts = append(parts, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"`)
	}
	return strings.Join(parts, " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// filters appends the conditions shared by both paths.
func filters(opts Options, conditions []string, args []interface{}) ([]string, []interface{}) {
	conditions = append(conditions, "m.sender != ?")
	args = append(args, parse.SystemSender)

	if len(opts.Senders) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?,", len(opts.Senders)), ",")
		conditions = append(conditions, "m.sender IN ("+marks+")")
		for _, s := range opts.Senders {
			args = append(args, s)
		}
	}
	if opts.Since != "" {
		conditions = append(conditions, "m.timestamp >= ?")
		args = append(args, opts.Since)
	}
	if opts.Until != "" {
		conditions = append(conditions, "m.timestamp <= ?")
		args = append(args, opts.Until)
	}
	if opts.Since != "" || opts.Until != "" {
		// undated rows keep their raw text, which does not compare as a date
		conditions = append(conditions, "m.timestamp GLOB '[0-9][0-9][0-9][0-9]-*'")
	}
	return conditions, args
}

func searchFTS(ctx context.Context, db *store.DB, opts Options, match string) ([]Result, error) {
	conditions, args := filters(opts,
		[]string{"messages_fts MATCH ?"},
		[]interface{}{match},
	)
	where := strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`
		SELECT
			m.id,
			m.timestamp,
			m.sender,
			snippet(messages_fts, 0, '>>>','<<<', '...', 16) as snip,
			bm25(messages_fts) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.id
		WHERE %s
		ORDER BY rank, m.id
		LIMIT ?
	`, where)
	args = append(args, opts.Limit)

	rows, err := db.Raw().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func searchLike(ctx context.Context, db *store.DB, opts Options) ([]Result, error) {
	conditions, args := filters(opts,
		[]string{`m.message_content LIKE ? ESCAPE '\'`},
		[]interface{}{"%" + likeEscaper.Replace(opts.Query) + "%"},
	)
	where := strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`
		SELECT m.id, m.timestamp, m.sender, m.message_content
		FROM messages m
		WHERE %s
		ORDER BY m.id DESC
		LIMIT ?
	`, where)
	args = append(args, opts.Limit)

	rows, err := db.Raw().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var body string
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Sender, &body); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(body, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Sender, &r.Snippet, &r.Rank); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
