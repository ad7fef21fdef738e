package keypair

import (
	"bytes"
	"fmt"

	"xdao.co/ledgerkeys/checksum"
	"xdao.co/ledgerkeys/lkerr"
)

// Signature is an immutable algorithm-tagged signature.
//
// Construction mirrors PublicKey with the algorithm's signature length in
// place of its key length. Signatures carry no hashing operation.
type Signature struct {
	alg Algorithm
	raw []byte
}

// NewSignatureFromRaw builds a Signature from raw bytes for a known algorithm.
func NewSignatureFromRaw(alg Algorithm, raw []byte) (Signature, error) {
	if len(raw) != alg.SignatureLength() {
		return Signature{}, lkerr.New(lkerr.KindInvalidLength, "LK-SIG-201",
			fmt.Sprintf("%s signature must be %d bytes, got %d", alg, alg.SignatureLength(), len(raw)))
	}
	return Signature{alg: alg, raw: append([]byte(nil), raw...)}, nil
}

// NewSignatureFromBytes builds a Signature from its tagged binary form.
func NewSignatureFromBytes(data []byte) (Signature, error) {
	if len(data) == 0 {
		return Signature{}, lkerr.New(lkerr.KindInvalidLength, "LK-SIG-202", "empty signature bytes")
	}
	alg, err := ResolveAlgorithm(data[0])
	if err != nil {
		return Signature{}, err
	}
	if len(data) != 1+alg.SignatureLength() {
		return Signature{}, lkerr.New(lkerr.KindInvalidLength, "LK-SIG-203",
			fmt.Sprintf("%s signature must be %d bytes including tag, got %d",
				alg, 1+alg.SignatureLength(), len(data)))
	}
	return NewSignatureFromRaw(alg, data[1:])
}

// NewSignatureFromHex parses the tagged hex form. Mixed-case input is treated
// as checksummed and must verify. As with public keys, the checksum covers
// the raw signature portion only.
func NewSignatureFromHex(text string) (Signature, error) {
	if len(text) < 2 {
		return Signature{}, lkerr.New(lkerr.KindInvalidFormat, "LK-SIG-101",
			"signature hex is missing its algorithm tag prefix")
	}
	tag, err := checksum.Decode(text[:2])
	if err != nil {
		return Signature{}, err
	}
	alg, err := ResolveAlgorithm(tag[0])
	if err != nil {
		return Signature{}, err
	}
	if len(text) != 2+2*alg.SignatureLength() {
		return Signature{}, lkerr.New(lkerr.KindInvalidFormat, "LK-SIG-102",
			fmt.Sprintf("%s signature hex must be %d characters, got %d",
				alg, 2+2*alg.SignatureLength(), len(text)))
	}
	if checksum.HasChecksum(text[2:]) {
		ok, err := checksum.Verify(text[2:])
		if err != nil {
			return Signature{}, err
		}
		if !ok {
			return Signature{}, lkerr.New(lkerr.KindChecksumMismatch, "LK-SIG-103",
				"signature hex checksum mismatch")
		}
	}
	raw, err := checksum.Decode(text[2:])
	if err != nil {
		return Signature{}, err
	}
	return NewSignatureFromRaw(alg, raw)
}

// Algorithm returns the signature's scheme.
func (s Signature) Algorithm() Algorithm { return s.alg }

// RawBytes returns a copy of the raw signature bytes (no tag).
func (s Signature) RawBytes() []byte { return append([]byte(nil), s.raw...) }

// Bytes returns the tagged binary form: tag byte followed by the raw bytes.
func (s Signature) Bytes() []byte {
	out := make([]byte, 1+len(s.raw))
	out[0] = byte(s.alg)
	copy(out[1:], s.raw)
	return out
}

// Hex returns the tagged hex form: two tag characters followed by the
// checksummed hex of the raw signature bytes.
func (s Signature) Hex() string {
	return fmt.Sprintf("%02x", byte(s.alg)) + checksum.Encode(s.raw)
}

// Equal reports whether two signatures have the same algorithm and raw bytes.
func (s Signature) Equal(o Signature) bool {
	return s.alg == o.alg && bytes.Equal(s.raw, o.raw)
}
