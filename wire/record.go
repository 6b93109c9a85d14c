// Package wire implements the binary layout of delegation records and the
// signed instructions that mutate them, plus the deterministic derivation
// of a record's ledger address from its owner key.
package wire

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/fedwallet/walletgate/core"
)

// recordTag identifies a delegation record buffer. First 8 bytes of
// sha256("record:delegation"), computed once at startup.
var recordTag = func() [8]byte {
	sum := sha256.Sum256([]byte("record:delegation"))
	var tag [8]byte
	copy(tag[:], sum[:8])
	return tag
}()

// recordMinLen is the size of a record with an empty endpoint:
// 8-byte tag + 32-byte owner + 4-byte length + 8-byte timestamp + 1-byte bump.
const recordMinLen = 8 + core.PublicKeySize + 4 + 8 + 1

// AppendString appends a length-prefixed UTF-8 string: a 4-byte
// little-endian byte count followed by the bytes.
func AppendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// ReadString decodes a length-prefixed string from the front of buf and
// returns the remaining bytes.
func ReadString(buf []byte) (string, []byte, error) {
	if len(buf) < 4 {
		return "", nil, fmt.Errorf("%w: missing length prefix", core.ErrTruncatedBuffer)
	}
	n := binary.LittleEndian.Uint32(buf)
	buf = buf[4:]
	if uint64(n) > uint64(len(buf)) {
		return "", nil, fmt.Errorf("%w: declared %d bytes, %d remain", core.ErrTruncatedBuffer, n, len(buf))
	}
	return string(buf[:n]), buf[n:], nil
}

// EncodeRecord serializes a delegation record:
// [8-byte tag][32-byte owner][4-byte LE length][endpoint][8-byte LE unix timestamp][1-byte bump].
func EncodeRecord(rec core.DelegationRecord) []byte {
	buf := make([]byte, 0, recordMinLen+len(rec.Endpoint))
	buf = append(buf, recordTag[:]...)
	buf = append(buf, rec.Owner[:]...)
	buf = AppendString(buf, rec.Endpoint)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(rec.UpdatedAt.Unix()))
	buf = append(buf, rec.Bump)
	return buf
}

// DecodeRecord is the exact inverse of EncodeRecord.
func DecodeRecord(buf []byte) (core.DelegationRecord, error) {
	var rec core.DelegationRecord

	if len(buf) < recordMinLen {
		return rec, fmt.Errorf("%w: %d bytes, record needs at least %d", core.ErrTruncatedBuffer, len(buf), recordMinLen)
	}
	if [8]byte(buf[:8]) != recordTag {
		return rec, fmt.Errorf("buffer does not hold a delegation record")
	}
	buf = buf[8:]

	copy(rec.Owner[:], buf[:core.PublicKeySize])
	buf = buf[core.PublicKeySize:]

	endpoint, buf, err := ReadString(buf)
	if err != nil {
		return core.DelegationRecord{}, err
	}
	rec.Endpoint = endpoint

	if len(buf) < 9 {
		return core.DelegationRecord{}, fmt.Errorf("%w: missing timestamp and bump", core.ErrTruncatedBuffer)
	}
	rec.UpdatedAt = time.Unix(int64(binary.LittleEndian.Uint64(buf)), 0).UTC()
	rec.Bump = buf[8]

	return rec, nil
}
