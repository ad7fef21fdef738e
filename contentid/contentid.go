// Package contentid derives content identifiers for canonical key material.
package contentid

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// blake2b256 is the multihash code for a 256-bit blake2b digest, the chain's
// native hash.
const blake2b256 = multihash.BLAKE2B_MIN + 31

// Fingerprint returns a CIDv1 string using the "raw" multicodec and a
// blake2b-256 multihash.
func Fingerprint(data []byte) string {
	sum, err := multihash.Sum(data, blake2b256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with blake2b-256 and
		// -1 length, this should be unreachable.
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}

// FingerprintCID returns a CIDv1 (raw + blake2b-256) derived from data.
func FingerprintCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, blake2b256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}
