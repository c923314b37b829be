package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRecordRoundTrip(t *testing.T) {
	original := Record{Timestamp: 1_700_000_000, Key: "hello", Value: []byte("world")}

	encoded := EncodeRecord(original)
	assert.Equal(t, original.Size(), len(encoded))

	decoded, n, err := DecodeRecord(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	assert.Equal(t, original.Timestamp, decoded.Timestamp)
	assert.Equal(t, original.Key, decoded.Key)
	assert.Equal(t, original.Value, decoded.Value)
}

func TestEncodeDecodeRecordIgnoresTrailingBytes(t *testing.T) {
	original := Record{Timestamp: 42, Key: "k", Value: []byte("v")}
	encoded := append(EncodeRecord(original), []byte("trailing garbage")...)

	decoded, n, err := DecodeRecord(encoded)
	require.NoError(t, err)
	assert.Equal(t, original.Size(), n)
	assert.Equal(t, original.Key, decoded.Key)
}

func TestDecodeRecordTruncatedHeader(t *testing.T) {
	_, _, err := DecodeRecord([]byte{1, 2, 3})
	require.Error(t, err)
	var malformed *MalformedError
	assert.ErrorAs(t, err, &malformed)
}

func TestDecodeRecordTruncatedBody(t *testing.T) {
	encoded := EncodeRecord(Record{Timestamp: 1, Key: "abcdef", Value: []byte("xyz")})
	_, _, err := DecodeRecord(encoded[:len(encoded)-2])
	require.Error(t, err)
}

func TestTombstoneHasZeroValueSize(t *testing.T) {
	tombstone := Record{Timestamp: 1, Key: "deleted-key", Value: nil}
	assert.True(t, tombstone.Tombstone())

	live := Record{Timestamp: 1, Key: "live-key", Value: []byte("v")}
	assert.False(t, live.Tombstone())
}

func TestValuePositionMatchesHeaderPlusKey(t *testing.T) {
	r := Record{Timestamp: 1, Key: "abc", Value: []byte("defg")}
	assert.Equal(t, DataHeaderSize+3, r.ValuePosition())
	assert.Equal(t, r.ValuePosition(), ValuePositionWithinRecord(len(r.Key)))
}

func TestEncodeDecodeHintRoundTrip(t *testing.T) {
	original := HintEntry{Timestamp: 99, Key: "hkey", ValueSize: 12, ValuePosition: 34}

	encoded := EncodeHint(original)
	assert.Equal(t, original.Size(), len(encoded))

	decoded, n, err := DecodeHint(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	assert.Equal(t, original, decoded)
}

func TestDecodeHintTruncatedHeader(t *testing.T) {
	_, _, err := DecodeHint([]byte{1, 2})
	require.Error(t, err)
}
