package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wastats/internal/report"
)

func TestParseWindow(t *testing.T) {
	w, err := parseWindow("2023-03-01", "2023-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.True(t, w.Contains(time.Date(2023, 3, 31, 23, 59, 0, 0, time.UTC)), "date-only --to covers the whole day")
	assert.False(t, w.Contains(time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)))

	w, err = parseWindow("", "2023-03-31 12:00")
	require.NoError(t, err)
	assert.True(t, w.Start.IsZero())
	assert.Equal(t, time.Date(2023, 3, 31, 12, 0, 0, 0, time.UTC), w.End)

	_, err = parseWindow("31/03/2023", "")
	assert.Error(t, err)

	_, err = parseWindow("2023-04-01", "2023-03-01")
	assert.Error(t, err)
}

func TestArchiveOptions(t *testing.T) {
	opts, err := archiveOptions(filterFlags{users: []string{"Alice"}, from: "2023-03-01", to: "2023-03-31"}, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, opts.Senders)
	assert.Equal(t, "2023-03-01 00:00:00", opts.Since)
	assert.Equal(t, "2023-03-31 23:59:59", opts.Until)
	assert.Equal(t, 50, opts.Limit)

	opts, err = archiveOptions(filterFlags{}, 0)
	require.NoError(t, err)
	assert.Empty(t, opts.Since)
	assert.Empty(t, opts.Until)
	assert.Nil(t, opts.Senders)

	_, err = archiveOptions(filterFlags{from: "tomorrow"}, 0)
	assert.Error(t, err)
}

func TestMissing(t *testing.T) {
	assert.Equal(t, []string{"Eve"}, missing([]string{"Alice", "Eve"}, []string{"Alice", "Bob"}))
	assert.Empty(t, missing(nil, []string{"Alice"}))
}

func TestOnly(t *testing.T) {
	rep := &report.Report{Sections: []report.Section{
		{Title: "Lab", Tables: []report.Table{{Key: "night"}, {Key: "latency"}}},
	}}

	got, err := only(rep, "latency")
	require.NoError(t, err)
	require.Len(t, got.Sections, 1)
	require.Len(t, got.Sections[0].Tables, 1)
	assert.Equal(t, "Lab", got.Sections[0].Title)

	_, err = only(rep, "bogus")
	assert.ErrorContains(t, err, "night, latency")
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("0")
	assert.Error(t, err)
	_, err = parseID("abc")
	assert.Error(t, err)
}
