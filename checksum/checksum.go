// Package checksum implements the case-patterned checksummed hex encoding
// used for account identifiers and global-state addresses.
//
// The letter case of each hex digit carries one bit of a checksum derived
// from the blake2b-512 digest of the encoded bytes, so a single-character
// case flip is detectable without adding characters to the string. Decimal
// digits have no case and carry no bits.
package checksum

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	"xdao.co/ledgerkeys/lkerr"
)

// SmallBytesCount is the largest input that gets a checksummed encoding.
// Longer inputs encode as plain lowercase hex and always verify.
const SmallBytesCount = 75

const hexDigits = "0123456789abcdef"

// bitCycle yields the bits of a digest LSB-first per byte, cycling forever.
type bitCycle struct {
	bytes []byte
	pos   int
}

func (b *bitCycle) next() bool {
	byteIdx := (b.pos / 8) % len(b.bytes)
	bitIdx := b.pos % 8
	b.pos++
	return (b.bytes[byteIdx]>>uint(bitIdx))&1 == 1
}

// Encode returns the checksummed hex encoding of input.
//
// One checksum bit is consumed per alphabetic hex digit; a set bit makes the
// digit uppercase. Inputs longer than SmallBytesCount are encoded plain
// lowercase.
func Encode(input []byte) string {
	if len(input) > SmallBytesCount {
		return hex.EncodeToString(input)
	}
	digest := blake2b.Sum512(input)
	bits := &bitCycle{bytes: digest[:]}

	out := make([]byte, 0, len(input)*2)
	for _, b := range input {
		for _, nibble := range [2]byte{b >> 4, b & 0x0f} {
			c := hexDigits[nibble]
			// Short-circuit matters: a bit is consumed only for letters.
			if c >= 'a' && bits.next() {
				c -= 'a' - 'A'
			}
			out = append(out, c)
		}
	}
	return string(out)
}

// Decode decodes text as hex, ignoring the checksum case pattern.
func Decode(text string) ([]byte, error) {
	b, err := hex.DecodeString(strings.ToLower(text))
	if err != nil {
		return nil, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-HEX-001", "invalid hex string", err)
	}
	return b, nil
}

// HasChecksum reports whether text mixes upper and lower case among its
// alphabetic digits. All-lowercase and all-uppercase strings are defined as
// unchecksummed.
func HasChecksum(text string) bool {
	var hasUpper, hasLower bool
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'f':
			hasLower = true
		case c >= 'A' && c <= 'F':
			hasUpper = true
		}
	}
	return hasUpper && hasLower
}

// Verify reports whether the case pattern of text matches the checksum of its
// decoded bytes. Unchecksummed strings (all-lower, all-upper, or longer than
// SmallBytesCount bytes) verify as true. Decoding failures are returned as
// errors, not as a false verdict.
func Verify(text string) (bool, error) {
	decoded, err := Decode(text)
	if err != nil {
		return false, err
	}
	if !HasChecksum(text) {
		return true, nil
	}
	if len(decoded) > SmallBytesCount {
		return true, nil
	}
	return Encode(decoded) == text, nil
}
