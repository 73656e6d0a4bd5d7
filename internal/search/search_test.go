package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wastats/internal/parse"
	"github.com/Zuo-Peng/wastats/internal/store"
)

func seed(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	msgs := []parse.Message{
		{Timestamp: "2023-03-14 09:05:00", Sender: "Alice", Body: "zullen we pizza bestellen", Line: 1},
		{Timestamp: "2023-03-14 09:06:00", Sender: "Bob", Body: "pizza is goed", Line: 2},
		{Timestamp: "2023-03-20 10:00:00", Sender: "Alice", Body: "nog meer pizza vandaag", Line: 3},
		{Timestamp: "2023-03-21 10:00:00", Sender: "Carol", Body: "我们吃饺子吧", Line: 4},
		{Timestamp: "2023-03-21 11:00:00", Sender: parse.SystemSender, Body: "Alice changed the group name to pizza", Line: 5},
		{Timestamp: "2023-03-22 08:00:00", Sender: "Bob", Body: `what? he said "pizza" 100% sure`, Line: 6},
	}
	require.NoError(t, db.Append(context.Background(), msgs))
	return db
}

func TestSearchFTS(t *testing.T) {
	db := seed(t)
	ctx := context.Background()

	res, err := Search(ctx, db, Options{Query: "pizza"})
	require.NoError(t, err)
	require.Len(t, res, 4, "system notices are not searched")
	for _, r := range res {
		assert.Contains(t, r.Snippet, ">>>pizza<<<")
		assert.NotEqual(t, parse.SystemSender, r.Sender)
	}

	res, err = Search(ctx, db, Options{Query: "pizza", Senders: []string{"Alice"}})
	require.NoError(t, err)
	require.Len(t, res, 2)

	res, err = Search(ctx, db, Options{Query: "pizza", Senders: []string{"Alice", "Bob"}})
	require.NoError(t, err)
	require.Len(t, res, 4)

	res, err = Search(ctx, db, Options{Query: "pizza", Since: "2023-03-15", Until: "2023-03-20 23:59:59"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, int64(3), res[0].ID)

	res, err = Search(ctx, db, Options{Query: "pizza", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestSearchCJKFallsBackToLike(t *testing.T) {
	db := seed(t)

	res, err := Search(context.Background(), db, Options{Query: "饺子"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Carol", res[0].Sender)
	assert.Contains(t, res[0].Snippet, ">>>饺子<<<")
}

func TestSearchEmptyQuery(t *testing.T) {
	db := seed(t)
	res, err := Search(context.Background(), db, Options{Query: "  "})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestMakeSnippet(t *testing.T) {
	assert.Equal(t, "...cd>>>EF<<<gh...", makeSnippet("abcdEFghij", "ef", 2))
	assert.Equal(t, "abcd...", makeSnippet("abcdefgh", "zz", 2))
}

func TestSearchPunctuationIsLiteral(t *testing.T) {
	db := seed(t)
	ctx := context.Background()

	for _, q := range []string{"what?", `"pizza"`, "-pizza", "pizza:", "(pizza", "what? pizza"} {
		res, err := Search(ctx, db, Options{Query: q})
		require.NoError(t, err, q)
		assert.NotEmpty(t, res, q)
	}

	res, err := Search(ctx, db, Options{Query: "what?"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, int64(6), res[0].ID)

	res, err = Search(ctx, db, Options{Query: "%"})
	require.NoError(t, err)
	require.Len(t, res, 1, "a lone % is matched literally")
	assert.Equal(t, int64(6), res[0].ID)

	res, err = Search(ctx, db, Options{Query: "?"})
	require.NoError(t, err)
	require.Len(t, res, 1)
}

func TestFTSQuery(t *testing.T) {
	assert.Equal(t, `"what?"`, ftsQuery("what?"))
	assert.Equal(t, `"say" """hi"""`, ftsQuery(`say "hi"`))
	assert.Equal(t, `"a-b" "OR"`, ftsQuery("a-b OR -- "))
	assert.Empty(t, ftsQuery(`" ? !`))
}
