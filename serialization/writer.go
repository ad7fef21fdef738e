package serialization

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"xdao.co/ledgerkeys/keypair"
	"xdao.co/ledgerkeys/lkerr"
	"xdao.co/ledgerkeys/statekey"
)

// Writer builds a canonical byte sequence. Each Write mirrors the Reader's
// corresponding Read so that write-then-read round trips are byte-exact.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns a copy of everything written so far.
func (w *Writer) Bytes() []byte { return append([]byte(nil), w.buf...) }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

// WriteU8 appends one byte.
func (w *Writer) WriteU8(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBytes appends raw bytes with no prefix.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteBool appends 0x01 for true, 0x00 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(0x01)
		return
	}
	w.WriteU8(0x00)
}

// WriteUint32 appends a little-endian unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteInt32 appends a little-endian signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteUint64 appends a little-endian unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteInt64 appends a little-endian signed 64-bit integer.
func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteString appends a 4-byte little-endian length prefix followed by the
// string's UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteBigUint appends a 1-byte length prefix followed by the minimal
// little-endian magnitude: the token-amount convention. Negative values and
// magnitudes over 255 bytes are rejected.
func (w *Writer) WriteBigUint(v *big.Int) error {
	if v.Sign() < 0 {
		return lkerr.New(lkerr.KindInvalidFormat, "LK-SER-101", "big integer must be unsigned")
	}
	be := v.Bytes()
	if len(be) > 255 {
		return lkerr.New(lkerr.KindInvalidLength, "LK-SER-102",
			fmt.Sprintf("big integer magnitude is %d bytes, limit 255", len(be)))
	}
	w.WriteU8(byte(len(be)))
	for i := len(be) - 1; i >= 0; i-- {
		w.buf = append(w.buf, be[i])
	}
	return nil
}

// WriteURefBytes appends the 33-byte unforgeable-reference payload.
func (w *Writer) WriteURefBytes(data []byte) error {
	if len(data) != URefByteLength {
		return lkerr.New(lkerr.KindInvalidLength, "LK-SER-103",
			fmt.Sprintf("uref payload must be %d bytes, got %d", URefByteLength, len(data)))
	}
	w.WriteBytes(data)
	return nil
}

// WritePublicKey appends the tagged binary form of a public key.
func (w *Writer) WritePublicKey(p keypair.PublicKey) {
	w.WriteBytes(p.Bytes())
}

// WriteStateKey appends the tagged binary form of a global-state key.
func (w *Writer) WriteStateKey(k statekey.Key) {
	w.WriteBytes(k.Bytes())
}
