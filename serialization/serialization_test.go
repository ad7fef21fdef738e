package serialization

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"xdao.co/ledgerkeys/keypair"
	"xdao.co/ledgerkeys/lkerr"
	"xdao.co/ledgerkeys/statekey"
)

func TestReader_PeekDiscipline(t *testing.T) {
	r := NewReader([]byte{0x2a, 0x01})

	a, err := r.PeekByte()
	if err != nil {
		t.Fatalf("PeekByte: %v", err)
	}
	b, err := r.PeekByte()
	if err != nil {
		t.Fatalf("PeekByte (second): %v", err)
	}
	if a != b || a != 0x2a {
		t.Fatalf("peeks returned %#02x and %#02x, want 0x2a twice", a, b)
	}
	if r.Pos() != 0 {
		t.Fatalf("peek advanced the cursor to %d", r.Pos())
	}

	c, err := r.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if c != 0x2a || r.Pos() != 1 {
		t.Fatalf("read %#02x at pos %d, want 0x2a at 1", c, r.Pos())
	}
}

func TestWriterReader_ScalarRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU8(0xfe)
	w.WriteBool(true)
	w.WriteBool(false)
	w.WriteUint32(0xdeadbeef)
	w.WriteInt32(-7)
	w.WriteUint64(0x0123456789abcdef)
	w.WriteInt64(-42)
	w.WriteString("héllo")

	r := NewReader(w.Bytes())
	if v, err := r.ReadByte(); err != nil || v != 0xfe {
		t.Fatalf("ReadByte = %#02x, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || !v {
		t.Fatalf("ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || v {
		t.Fatalf("ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 0xdeadbeef {
		t.Fatalf("ReadUint32 = %#x, %v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -7 {
		t.Fatalf("ReadInt32 = %d, %v", v, err)
	}
	if v, err := r.ReadUint64(); err != nil || v != 0x0123456789abcdef {
		t.Fatalf("ReadUint64 = %#x, %v", v, err)
	}
	if v, err := r.ReadInt64(); err != nil || v != -42 {
		t.Fatalf("ReadInt64 = %d, %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "héllo" {
		t.Fatalf("ReadString = %q, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("%d bytes left unread", r.Remaining())
	}
}

func TestLittleEndianLayout(t *testing.T) {
	w := NewWriter()
	w.WriteUint32(1)
	if !bytes.Equal(w.Bytes(), []byte{0x01, 0x00, 0x00, 0x00}) {
		t.Fatalf("uint32(1) = %x, want 01000000", w.Bytes())
	}

	w = NewWriter()
	w.WriteString("ab")
	if !bytes.Equal(w.Bytes(), []byte{0x02, 0x00, 0x00, 0x00, 'a', 'b'}) {
		t.Fatalf("string(ab) = %x", w.Bytes())
	}
}

func TestBigUint_RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "255", "256", "1311768467294899695", "340282366920938463463374607431768211455"} {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			t.Fatalf("bad decimal in test: %s", s)
		}
		w := NewWriter()
		if err := w.WriteBigUint(v); err != nil {
			t.Fatalf("WriteBigUint(%s): %v", s, err)
		}
		r := NewReader(w.Bytes())
		got, err := r.ReadBigUint()
		if err != nil {
			t.Fatalf("ReadBigUint(%s): %v", s, err)
		}
		if got.Cmp(v) != 0 {
			t.Fatalf("big uint round trip: got %s, want %s", got, s)
		}
		if r.Remaining() != 0 {
			t.Fatalf("%s: %d bytes left unread", s, r.Remaining())
		}
	}
}

func TestBigUint_MagnitudeIsLittleEndian(t *testing.T) {
	w := NewWriter()
	if err := w.WriteBigUint(big.NewInt(256)); err != nil {
		t.Fatalf("WriteBigUint: %v", err)
	}
	if !bytes.Equal(w.Bytes(), []byte{0x02, 0x00, 0x01}) {
		t.Fatalf("256 = %x, want 020001", w.Bytes())
	}
}

func TestWriteBigUint_Negative(t *testing.T) {
	w := NewWriter()
	err := w.WriteBigUint(big.NewInt(-1))
	if !lkerr.IsKind(err, lkerr.KindInvalidFormat) {
		t.Fatalf("expected KindInvalidFormat, got %v", err)
	}
}

func TestURefBytes_RoundTrip(t *testing.T) {
	payload := make([]byte, URefByteLength)
	for i := range payload {
		payload[i] = byte(i)
	}
	w := NewWriter()
	if err := w.WriteURefBytes(payload); err != nil {
		t.Fatalf("WriteURefBytes: %v", err)
	}
	r := NewReader(w.Bytes())
	got, err := r.ReadURefBytes()
	if err != nil {
		t.Fatalf("ReadURefBytes: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("uref round trip differs")
	}

	if err := NewWriter().WriteURefBytes(payload[:32]); !lkerr.IsKind(err, lkerr.KindInvalidLength) {
		t.Fatalf("short uref: expected KindInvalidLength, got %v", err)
	}
}

func TestReadPublicKey_PeeksThenConsumesDeclaredLength(t *testing.T) {
	priv, err := keypair.GeneratePrivateKey(keypair.ED25519)
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	pub, err := priv.PublicKey(context.Background())
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}

	w := NewWriter()
	w.WritePublicKey(pub)
	w.WriteU8(0x99) // trailing data must survive the read

	r := NewReader(w.Bytes())
	got, err := r.ReadPublicKey()
	if err != nil {
		t.Fatalf("ReadPublicKey: %v", err)
	}
	if !got.Equal(pub) {
		t.Fatalf("public key round trip differs")
	}
	if r.Pos() != 1+keypair.ED25519.KeyLength() {
		t.Fatalf("cursor at %d, want %d", r.Pos(), 1+keypair.ED25519.KeyLength())
	}
	if trailer, err := r.ReadByte(); err != nil || trailer != 0x99 {
		t.Fatalf("trailer = %#02x, %v", trailer, err)
	}
}

func TestReadStateKey_AllVariants(t *testing.T) {
	var h [statekey.HashLength]byte
	for i := range h {
		h[i] = byte(0xf0 - i)
	}
	keys := []statekey.Key{
		statekey.NewAccountKey(h),
		statekey.NewHashKey(h),
		statekey.NewURef(h, statekey.AccessRead),
		statekey.NewTransferKey(h),
		statekey.NewDeployInfoKey(h),
		statekey.NewEraInfoKey(9000),
		statekey.NewBalanceKey(h),
		statekey.NewBidKey(h),
		statekey.NewWithdrawKey(h),
		statekey.NewDictionaryKey(h),
	}

	w := NewWriter()
	for _, k := range keys {
		w.WriteStateKey(k)
	}

	r := NewReader(w.Bytes())
	for _, want := range keys {
		got, err := r.ReadStateKey()
		if err != nil {
			t.Fatalf("ReadStateKey(%#02x): %v", byte(want.Tag()), err)
		}
		if !got.Equal(want) {
			t.Fatalf("state key %#02x round trip differs", byte(want.Tag()))
		}
	}
	if r.Remaining() != 0 {
		t.Fatalf("%d bytes left unread", r.Remaining())
	}
}

func TestReadStateKey_UnknownDiscriminantLeavesCursor(t *testing.T) {
	r := NewReader([]byte{0x7f, 0x00})
	_, err := r.ReadStateKey()
	if !lkerr.IsKind(err, lkerr.KindUnknownKeyVariant) {
		t.Fatalf("expected KindUnknownKeyVariant, got %v", err)
	}
	if r.Pos() != 0 {
		t.Fatalf("failed peek advanced the cursor to %d", r.Pos())
	}
}

func TestReader_EndOfInput(t *testing.T) {
	r := NewReader(nil)
	if _, err := r.PeekByte(); !lkerr.IsKind(err, lkerr.KindUnexpectedEndOfInput) {
		t.Fatalf("PeekByte: expected KindUnexpectedEndOfInput, got %v", err)
	}
	if _, err := r.ReadUint64(); !lkerr.IsKind(err, lkerr.KindUnexpectedEndOfInput) {
		t.Fatalf("ReadUint64: expected KindUnexpectedEndOfInput, got %v", err)
	}

	// A length prefix that extends past the source fails, not truncates.
	w := NewWriter()
	w.WriteUint32(10)
	w.WriteBytes([]byte("short"))
	r = NewReader(w.Bytes())
	if _, err := r.ReadString(); !lkerr.IsKind(err, lkerr.KindUnexpectedEndOfInput) {
		t.Fatalf("ReadString: expected KindUnexpectedEndOfInput, got %v", err)
	}
}

func TestReadBool_InvalidByte(t *testing.T) {
	r := NewReader([]byte{0x02})
	_, err := r.ReadBool()
	if !lkerr.IsKind(err, lkerr.KindInvalidFormat) {
		t.Fatalf("expected KindInvalidFormat, got %v", err)
	}
}

func TestReadString_InvalidUTF8(t *testing.T) {
	w := NewWriter()
	w.WriteUint32(2)
	w.WriteBytes([]byte{0xff, 0xfe})
	r := NewReader(w.Bytes())
	_, err := r.ReadString()
	if !lkerr.IsKind(err, lkerr.KindInvalidFormat) {
		t.Fatalf("expected KindInvalidFormat, got %v", err)
	}
}
