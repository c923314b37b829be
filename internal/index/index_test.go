package index

import (
	"path/filepath"
	"testing"

	"github.com/iamNilotpal/ignite/internal/record"
	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIndex() *Index {
	return New(zap.NewNop().Sugar())
}

func TestUpdateGetDelete(t *testing.T) {
	idx := newTestIndex()

	idx.Update("k1", Entry{FilePath: "active.data", ValuePosition: 10, ValueSize: 4, Timestamp: 1})
	entry, ok := idx.Get("k1")
	require.True(t, ok)
	require.Equal(t, int64(10), entry.ValuePosition)

	idx.Delete("k1")
	_, ok = idx.Get("k1")
	require.False(t, ok)

	require.Equal(t, 0, idx.Len())
}

func TestUpdateFilePathRewritesMatchingEntries(t *testing.T) {
	idx := newTestIndex()
	idx.Update("a", Entry{FilePath: "active.data", ValuePosition: 0, ValueSize: 1, Timestamp: 1})
	idx.Update("b", Entry{FilePath: "other.data", ValuePosition: 0, ValueSize: 1, Timestamp: 1})

	idx.UpdateFilePath("active.data", "1700000000.data")

	a, _ := idx.Get("a")
	require.Equal(t, "1700000000.data", a.FilePath)

	b, _ := idx.Get("b")
	require.Equal(t, "other.data", b.FilePath)
}

func writeDataFile(t *testing.T, dir, name string, records []record.Record) segment.Info {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := segment.OpenWritable(path)
	require.NoError(t, err)
	for _, rec := range records {
		_, err := f.Append(rec)
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())
	return segment.Info{Path: path, Kind: segment.ClassifyName(name)}
}

func TestRebuildReplaysDataFilesLastWriterWins(t *testing.T) {
	dir := t.TempDir()

	older := writeDataFile(t, dir, "1000.data", []record.Record{
		{Timestamp: 1, Key: "k", Value: []byte("first")},
	})
	newer := writeDataFile(t, dir, "2000.data", []record.Record{
		{Timestamp: 2, Key: "k", Value: []byte("second")},
	})

	idx := newTestIndex()
	require.NoError(t, idx.Rebuild(nil, []segment.Info{older, newer}))

	entry, ok := idx.Get("k")
	require.True(t, ok)
	require.Equal(t, int64(2), entry.Timestamp)
	require.Equal(t, newer.Path, entry.FilePath)
}

func TestRebuildOlderTimestampDoesNotOverwriteNewer(t *testing.T) {
	dir := t.TempDir()

	newer := writeDataFile(t, dir, "1000.data", []record.Record{
		{Timestamp: 5, Key: "k", Value: []byte("fresh")},
	})
	olderButReplayedSecond := writeDataFile(t, dir, "2000.data", []record.Record{
		{Timestamp: 3, Key: "k", Value: []byte("stale")},
	})

	idx := newTestIndex()
	require.NoError(t, idx.Rebuild(nil, []segment.Info{newer, olderButReplayedSecond}))

	entry, ok := idx.Get("k")
	require.True(t, ok)
	require.Equal(t, int64(5), entry.Timestamp)
}

func TestRebuildTombstoneRemovesKey(t *testing.T) {
	dir := t.TempDir()
	info := writeDataFile(t, dir, "1000.data", []record.Record{
		{Timestamp: 1, Key: "k", Value: []byte("v")},
		{Timestamp: 2, Key: "k", Value: nil},
	})

	idx := newTestIndex()
	require.NoError(t, idx.Rebuild(nil, []segment.Info{info}))

	_, ok := idx.Get("k")
	require.False(t, ok)
}

func TestRebuildHintEntriesPointAtPairedMergedDataFile(t *testing.T) {
	dir := t.TempDir()
	mergedData := writeDataFile(t, dir, "merged-1.data", []record.Record{
		{Timestamp: 1, Key: "k", Value: []byte("merged-value")},
	})

	hintPath := filepath.Join(dir, "merged-1.hint")
	hf, err := segment.OpenWritable(hintPath)
	require.NoError(t, err)
	require.NoError(t, hf.AppendHint(record.HintEntry{
		Timestamp: 1, Key: "k", ValueSize: int64(len("merged-value")), ValuePosition: 13,
	}))
	require.NoError(t, hf.Close())
	hintInfo := segment.Info{Path: hintPath, Kind: segment.KindHint}

	idx := newTestIndex()
	require.NoError(t, idx.Rebuild([]segment.Info{hintInfo}, nil))

	entry, ok := idx.Get("k")
	require.True(t, ok)
	require.Equal(t, mergedData.Path, entry.FilePath)
	require.Equal(t, int64(13), entry.ValuePosition)
}
