package storage

import (
	"testing"

	"github.com/iamNilotpal/ignite/pkg/options"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStorage(t *testing.T, maxFileSize int64) *Storage {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	opts.MaxFileSize = maxFileSize

	s, err := New(Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return s
}

func TestAppendAndGetRoundTrip(t *testing.T) {
	s := newTestStorage(t, options.DefaultMaxFileSize)

	require.NoError(t, s.Append("key1", []byte("value1")))

	value, ok, err := s.Get("key1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("value1"), value)
}

func TestGetMissIsNotAnError(t *testing.T) {
	s := newTestStorage(t, options.DefaultMaxFileSize)

	value, ok, err := s.Get("absent")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, value)
}

func TestLastWriterWins(t *testing.T) {
	s := newTestStorage(t, options.DefaultMaxFileSize)

	require.NoError(t, s.Append("key1", []byte("first_value")))
	require.NoError(t, s.Append("key1", []byte("yet_another_value1")))

	value, ok, err := s.Get("key1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("yet_another_value1"), value)
}

func TestDeleteRemovesKey(t *testing.T) {
	s := newTestStorage(t, options.DefaultMaxFileSize)

	require.NoError(t, s.Append("key1", []byte("value1")))
	require.NoError(t, s.Delete("key1"))

	_, ok, err := s.Get("key1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRolloverSealsActiveFile(t *testing.T) {
	s := newTestStorage(t, 64)

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Append("k", []byte("0123456789")))
	}

	size, err := s.active.Size()
	require.NoError(t, err)
	require.LessOrEqual(t, size, s.maxFileSize+int64(64))

	value, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("0123456789"), value)
}

func TestDurabilityThroughRestart(t *testing.T) {
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	opts.MaxFileSize = 64

	s1, err := New(Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)

	require.NoError(t, s1.Append("key1", []byte("value1")))
	require.NoError(t, s1.Append("key2", []byte("value2")))
	require.NoError(t, s1.Append("key1", []byte("yet_another_value1")))
	require.NoError(t, s1.Delete("key2"))
	require.NoError(t, s1.Close())

	s2, err := New(Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)

	value, ok, err := s2.Get("key1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("yet_another_value1"), value)

	_, ok, err = s2.Get("key2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClearRemovesAllFilesAndIndex(t *testing.T) {
	s := newTestStorage(t, options.DefaultMaxFileSize)
	require.NoError(t, s.Append("key1", []byte("value1")))

	require.NoError(t, s.Clear(false))

	_, ok, err := s.Get("key1")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, s.Index().Len())
}

func TestOperationsFailAfterClose(t *testing.T) {
	s := newTestStorage(t, options.DefaultMaxFileSize)
	require.NoError(t, s.Close())

	err := s.Append("k", []byte("v"))
	require.ErrorIs(t, err, ErrStorageClosed)

	err = s.Close()
	require.ErrorIs(t, err, ErrStorageClosed)
}
