// Package record implements the on-disk encoding for Ignite's log entries.
//
// Two record families share the same header philosophy: a fixed-width
// little-endian header followed by variable-length key (and, for data
// records, value) bytes. Data records carry a value; hint records carry
// only the absolute position of a value inside their paired merged data
// file. Both are append-only and never rewritten in place.
//
// A value_size of zero in a data record marks a tombstone: the key was
// deleted at that timestamp. Hint records never represent tombstones
// because the merge worker drops tombstones before it ever emits a hint
// file (see internal/merge).
package record

import (
	"encoding/binary"
	"fmt"

	"github.com/iamNilotpal/ignite/pkg/errors"
)

const (
	// DataHeaderSize is the number of bytes the data-record header occupies:
	// three little-endian int32 fields (timestamp, key_size, value_size).
	DataHeaderSize = 12

	// HintHeaderSize is the number of bytes the hint-record header occupies:
	// four little-endian int32 fields (timestamp, key_size, value_size,
	// value_position).
	HintHeaderSize = 16
)

// Record is the in-memory form of a single data-file entry.
type Record struct {
	Timestamp int64
	Key       string
	Value     []byte
}

// Tombstone reports whether this record marks its key as deleted.
func (r Record) Tombstone() bool {
	return len(r.Value) == 0
}

// Size returns the total number of bytes this record occupies on disk.
func (r Record) Size() int {
	return DataHeaderSize + len(r.Key) + len(r.Value)
}

// ValuePosition returns the offset of the value's first byte relative to
// the start of the encoded record.
func (r Record) ValuePosition() int {
	return ValuePositionWithinRecord(len(r.Key))
}

// ValuePositionWithinRecord returns the offset of a value's first byte
// relative to the start of an encoded record with the given key size. It is
// the single source of truth for this arithmetic; both the active-file
// writer and the merge writer call it instead of recomputing it themselves.
func ValuePositionWithinRecord(keySize int) int {
	return DataHeaderSize + keySize
}

// HintEntry is the in-memory form of a single hint-file entry.
type HintEntry struct {
	Timestamp     int64
	Key           string
	ValueSize     int64
	ValuePosition int64
}

// Size returns the total number of bytes this hint entry occupies on disk.
func (h HintEntry) Size() int {
	return HintHeaderSize + len(h.Key)
}

// MalformedError reports that a byte slice did not decode into a
// well-formed record or hint entry: it was truncated, or it announced a
// negative key/value size.
type MalformedError struct {
	*errors.StorageError
}

func newMalformed(msg string, detail string, value any) *MalformedError {
	return &MalformedError{
		StorageError: errors.NewStorageError(nil, errors.ErrorCodeMalformedRecord, msg).
			WithDetail(detail, value),
	}
}

// EncodeRecord serializes a data record as
// [timestamp][key_size][value_size][key][value], or, for a tombstone,
// [timestamp][key_size][0][key].
func EncodeRecord(r Record) []byte {
	keyBytes := []byte(r.Key)
	valueSize := len(r.Value)

	buf := make([]byte, DataHeaderSize+len(keyBytes)+valueSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(r.Timestamp))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(keyBytes)))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(valueSize))
	copy(buf[DataHeaderSize:], keyBytes)
	copy(buf[DataHeaderSize+len(keyBytes):], r.Value)
	return buf
}

// DecodeRecord parses a data record starting at the beginning of buf. It
// returns the decoded record, the number of bytes it occupied, and a
// *MalformedError if buf is too short for the announced sizes or if the
// announced sizes are negative.
func DecodeRecord(buf []byte) (Record, int, error) {
	if len(buf) < DataHeaderSize {
		return Record{}, 0, newMalformed(
			"data record header truncated", "available", len(buf),
		)
	}

	timestamp := int32(binary.LittleEndian.Uint32(buf[0:4]))
	keySize := int32(binary.LittleEndian.Uint32(buf[4:8]))
	valueSize := int32(binary.LittleEndian.Uint32(buf[8:12]))
	if keySize < 0 || valueSize < 0 {
		return Record{}, 0, newMalformed(
			"data record announced a negative size",
			"keySize/valueSize", fmt.Sprintf("%d/%d", keySize, valueSize),
		)
	}

	total := DataHeaderSize + int(keySize) + int(valueSize)
	if len(buf) < total {
		return Record{}, 0, newMalformed(
			"data record body truncated", "needed/available", fmt.Sprintf("%d/%d", total, len(buf)),
		)
	}

	key := string(buf[DataHeaderSize : DataHeaderSize+int(keySize)])
	value := make([]byte, valueSize)
	copy(value, buf[DataHeaderSize+int(keySize):total])

	return Record{Timestamp: int64(timestamp), Key: key, Value: value}, total, nil
}

// EncodeHint serializes a hint entry as
// [timestamp][key_size][value_size][value_position][key].
func EncodeHint(h HintEntry) []byte {
	keyBytes := []byte(h.Key)

	buf := make([]byte, HintHeaderSize+len(keyBytes))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Timestamp))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(keyBytes)))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.ValueSize))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.ValuePosition))
	copy(buf[HintHeaderSize:], keyBytes)
	return buf
}

// DecodeHint parses a hint entry starting at the beginning of buf, with the
// same truncation and negative-size checks as DecodeRecord.
func DecodeHint(buf []byte) (HintEntry, int, error) {
	if len(buf) < HintHeaderSize {
		return HintEntry{}, 0, newMalformed(
			"hint record header truncated", "available", len(buf),
		)
	}

	timestamp := int32(binary.LittleEndian.Uint32(buf[0:4]))
	keySize := int32(binary.LittleEndian.Uint32(buf[4:8]))
	valueSize := int32(binary.LittleEndian.Uint32(buf[8:12]))
	valuePosition := int32(binary.LittleEndian.Uint32(buf[12:16]))
	if keySize < 0 || valueSize < 0 || valuePosition < 0 {
		return HintEntry{}, 0, newMalformed(
			"hint record announced a negative size/position",
			"keySize/valueSize/valuePosition",
			fmt.Sprintf("%d/%d/%d", keySize, valueSize, valuePosition),
		)
	}

	total := HintHeaderSize + int(keySize)
	if len(buf) < total {
		return HintEntry{}, 0, newMalformed(
			"hint record body truncated", "needed/available", fmt.Sprintf("%d/%d", total, len(buf)),
		)
	}

	key := string(buf[HintHeaderSize:total])

	return HintEntry{
		Timestamp:     int64(timestamp),
		Key:           key,
		ValueSize:     int64(valueSize),
		ValuePosition: int64(valuePosition),
	}, total, nil
}
