// Package serialization implements the canonical binary codec primitives for
// the node's wire format: fixed-width little-endian integers, length-prefixed
// strings and big integers, opaque unforgeable references, and tagged keys.
//
// A Reader is an explicit cursor over an immutable byte source. Discriminant-
// first formats rely on PeekByte: inspect the tag without advancing, size the
// read from it, then consume the whole value in one operation. Reads never
// truncate or pad; a short source always fails with
// lkerr.KindUnexpectedEndOfInput.
package serialization

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"unicode/utf8"

	"xdao.co/ledgerkeys/keypair"
	"xdao.co/ledgerkeys/lkerr"
	"xdao.co/ledgerkeys/statekey"
)

// URefByteLength is the binary size of an unforgeable reference payload:
// a 32-byte address plus one access-rights byte.
const URefByteLength = 33

// Reader is an explicit cursor {buffer, position} over a byte source.
// It never mutates the buffer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader builds a Reader over data. The buffer is not copied; callers must
// not mutate it while reading.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total buffer length.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int, ruleID, what string) error {
	if r.Remaining() < n {
		return lkerr.New(lkerr.KindUnexpectedEndOfInput, ruleID,
			fmt.Sprintf("reading %s: need %d bytes, have %d", what, n, r.Remaining()))
	}
	return nil
}

// PeekByte returns the next byte without advancing the cursor.
func (r *Reader) PeekByte() (byte, error) {
	if err := r.need(1, "LK-SER-001", "peeked byte"); err != nil {
		return 0, err
	}
	return r.buf[r.pos], nil
}

// ReadByte consumes and returns one byte.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.need(1, "LK-SER-002", "byte"); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes consumes and returns the next n bytes as a fresh slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n, "LK-SER-003", fmt.Sprintf("%d raw bytes", n)); err != nil {
		return nil, err
	}
	out := append([]byte(nil), r.buf[r.pos:r.pos+n]...)
	r.pos += n
	return out, nil
}

// ReadBool consumes one byte that must be 0x00 or 0x01.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	}
	return false, lkerr.New(lkerr.KindInvalidFormat, "LK-SER-004",
		fmt.Sprintf("boolean byte must be 0x00 or 0x01, got 0x%02x", b))
}

// ReadUint32 consumes a little-endian unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need(4, "LK-SER-005", "uint32"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadInt32 consumes a little-endian signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 consumes a little-endian unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.need(8, "LK-SER-006", "uint64"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadInt64 consumes a little-endian signed 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadString consumes a 4-byte little-endian length prefix followed by that
// many bytes of UTF-8.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n), "LK-SER-007", "string payload"); err != nil {
		return "", err
	}
	payload := r.buf[r.pos : r.pos+int(n)]
	if !utf8.Valid(payload) {
		return "", lkerr.New(lkerr.KindInvalidFormat, "LK-SER-008", "string payload is not valid UTF-8")
	}
	r.pos += int(n)
	return string(payload), nil
}

// ReadBigUint consumes a 1-byte length prefix followed by that many magnitude
// bytes in little-endian order: the token-amount convention.
func (r *Reader) ReadBigUint() (*big.Int, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n), "LK-SER-009", "big integer magnitude"); err != nil {
		return nil, err
	}
	le := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)

	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	return new(big.Int).SetBytes(be), nil
}

// ReadURefBytes consumes the 33-byte unforgeable-reference payload
// (32-byte address + 1 access-rights byte) as an opaque unit.
func (r *Reader) ReadURefBytes() ([]byte, error) {
	if err := r.need(URefByteLength, "LK-SER-010", "uref"); err != nil {
		return nil, err
	}
	out := append([]byte(nil), r.buf[r.pos:r.pos+URefByteLength]...)
	r.pos += URefByteLength
	return out, nil
}

// ReadPublicKey peeks the algorithm tag, resolves the key length from the
// registry, and consumes exactly 1 + keyLength bytes.
func (r *Reader) ReadPublicKey() (keypair.PublicKey, error) {
	tag, err := r.PeekByte()
	if err != nil {
		return keypair.PublicKey{}, err
	}
	alg, err := keypair.ResolveAlgorithm(tag)
	if err != nil {
		return keypair.PublicKey{}, err
	}
	data, err := r.ReadBytes(1 + alg.KeyLength())
	if err != nil {
		return keypair.PublicKey{}, err
	}
	return keypair.NewPublicKeyFromBytes(data)
}

// ReadStateKey peeks the discriminant, resolves the variant's total length,
// and consumes exactly that many bytes including the discriminant.
func (r *Reader) ReadStateKey() (statekey.Key, error) {
	tag, err := r.PeekByte()
	if err != nil {
		return statekey.Key{}, err
	}
	resolved, err := statekey.ResolveTag(tag)
	if err != nil {
		return statekey.Key{}, err
	}
	total, err := statekey.TotalLength(resolved)
	if err != nil {
		return statekey.Key{}, err
	}
	data, err := r.ReadBytes(total)
	if err != nil {
		return statekey.Key{}, err
	}
	return statekey.FromBytes(data)
}
