package keypair

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/blake2b"

	"xdao.co/ledgerkeys/checksum"
	"xdao.co/ledgerkeys/lkerr"
)

// AccountHashLength is the size of a derived account hash in bytes.
const AccountHashLength = 32

// PublicKey is an immutable algorithm-tagged public key.
//
// The zero value is not valid; construct through the factories.
type PublicKey struct {
	alg Algorithm
	raw []byte
}

// NewPublicKeyFromRaw builds a PublicKey from raw curve bytes for a known
// algorithm.
func NewPublicKeyFromRaw(alg Algorithm, raw []byte) (PublicKey, error) {
	if len(raw) != alg.KeyLength() {
		return PublicKey{}, lkerr.New(lkerr.KindInvalidLength, "LK-KEY-201",
			fmt.Sprintf("%s public key must be %d bytes, got %d", alg, alg.KeyLength(), len(raw)))
	}
	return PublicKey{alg: alg, raw: append([]byte(nil), raw...)}, nil
}

// NewPublicKeyFromBytes builds a PublicKey from its tagged binary form:
// one algorithm tag byte followed by the raw key. The binary form carries no
// checksum.
func NewPublicKeyFromBytes(data []byte) (PublicKey, error) {
	if len(data) == 0 {
		return PublicKey{}, lkerr.New(lkerr.KindInvalidLength, "LK-KEY-202", "empty public key bytes")
	}
	alg, err := ResolveAlgorithm(data[0])
	if err != nil {
		return PublicKey{}, err
	}
	if len(data) != 1+alg.KeyLength() {
		return PublicKey{}, lkerr.New(lkerr.KindInvalidLength, "LK-KEY-203",
			fmt.Sprintf("%s public key must be %d bytes including tag, got %d",
				alg, 1+alg.KeyLength(), len(data)))
	}
	return NewPublicKeyFromRaw(alg, data[1:])
}

// NewPublicKeyFromHex parses the account-hex form: two tag characters followed
// by the raw key in hex. A mixed-case string is treated as checksummed and must
// verify; an all-lowercase or all-uppercase string is accepted unchecked. The
// checksum covers the raw key portion only; the tag characters are decimal
// digits and sit outside it.
func NewPublicKeyFromHex(text string) (PublicKey, error) {
	if len(text) < 2 {
		return PublicKey{}, lkerr.New(lkerr.KindInvalidFormat, "LK-KEY-101",
			"public key hex is missing its algorithm tag prefix")
	}
	tag, err := checksum.Decode(text[:2])
	if err != nil {
		return PublicKey{}, err
	}
	alg, err := ResolveAlgorithm(tag[0])
	if err != nil {
		return PublicKey{}, err
	}
	if len(text) != 2+2*alg.KeyLength() {
		return PublicKey{}, lkerr.New(lkerr.KindInvalidFormat, "LK-KEY-102",
			fmt.Sprintf("%s public key hex must be %d characters, got %d",
				alg, 2+2*alg.KeyLength(), len(text)))
	}
	if checksum.HasChecksum(text[2:]) {
		ok, err := checksum.Verify(text[2:])
		if err != nil {
			return PublicKey{}, err
		}
		if !ok {
			return PublicKey{}, lkerr.New(lkerr.KindChecksumMismatch, "LK-KEY-103",
				"public key hex checksum mismatch")
		}
	}
	raw, err := checksum.Decode(text[2:])
	if err != nil {
		return PublicKey{}, err
	}
	return NewPublicKeyFromRaw(alg, raw)
}

// Algorithm returns the key's signature scheme.
func (p PublicKey) Algorithm() Algorithm { return p.alg }

// RawBytes returns a copy of the raw curve bytes (no tag).
func (p PublicKey) RawBytes() []byte { return append([]byte(nil), p.raw...) }

// Bytes returns the tagged binary form: tag byte followed by the raw key.
// This is the canonical form used for hashing and binary serialization.
func (p PublicKey) Bytes() []byte {
	out := make([]byte, 1+len(p.raw))
	out[0] = byte(p.alg)
	copy(out[1:], p.raw)
	return out
}

// AccountHex returns the human-readable account identifier: two tag
// characters followed by the checksummed hex of the raw key bytes.
func (p PublicKey) AccountHex() string {
	return fmt.Sprintf("%02x", byte(p.alg)) + checksum.Encode(p.raw)
}

// AccountHash derives the canonical 32-byte account identifier:
// blake2b-256 of lowercase(algorithmName) || 0x00 || rawKeyBytes.
func (p PublicKey) AccountHash() [AccountHashLength]byte {
	name := p.alg.String()
	preimage := make([]byte, 0, len(name)+1+len(p.raw))
	preimage = append(preimage, name...)
	preimage = append(preimage, 0x00)
	preimage = append(preimage, p.raw...)
	return blake2b.Sum256(preimage)
}

// Equal reports whether two public keys have the same algorithm and raw bytes.
func (p PublicKey) Equal(o PublicKey) bool {
	return p.alg == o.alg && bytes.Equal(p.raw, o.raw)
}

// VerifySignature verifies sig over message with this key.
//
// A signature of the wrong length is a structural error (KindInvalidLength);
// a well-formed but cryptographically wrong signature returns (false, nil).
func (p PublicKey) VerifySignature(message, sig []byte) (bool, error) {
	if len(sig) != p.alg.SignatureLength() {
		return false, lkerr.New(lkerr.KindInvalidLength, "LK-KEY-401",
			fmt.Sprintf("%s signature must be %d bytes, got %d",
				p.alg, p.alg.SignatureLength(), len(sig)))
	}
	switch p.alg {
	case ED25519:
		return ed25519.Verify(ed25519.PublicKey(p.raw), message, sig), nil
	case SECP256K1:
		pub, err := secp256k1.ParsePubKey(p.raw)
		if err != nil {
			return false, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-KEY-402",
				"secp256k1 public key does not parse", err)
		}
		var r, s secp256k1.ModNScalar
		if overflow := r.SetByteSlice(sig[:32]); overflow {
			return false, nil
		}
		if overflow := s.SetByteSlice(sig[32:]); overflow {
			return false, nil
		}
		digest := sha256.Sum256(message)
		return secpecdsa.NewSignature(&r, &s).Verify(digest[:], pub), nil
	}
	panic("keypair: verify with unregistered algorithm")
}
