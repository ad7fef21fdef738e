// Package keypair implements the multi-algorithm public key, signature and
// private key value types used to identify accounts and prove ownership of
// global-state entities.
//
// All values are immutable once constructed and safe for concurrent use.
// Construction goes through validating factories only: a factory either
// returns a fully valid value or a structured lkerr error.
package keypair

import (
	"fmt"

	"xdao.co/ledgerkeys/lkerr"
)

// Algorithm identifies a signature scheme by its one-byte wire tag.
//
// The algorithm table is a process-wide constant: entries are never added or
// removed at runtime, and lookups need no synchronization.
type Algorithm byte

const (
	// ED25519 is the Ed25519 scheme: 32-byte raw keys, 64-byte signatures.
	ED25519 Algorithm = 0x01
	// SECP256K1 is ECDSA over secp256k1 with compressed 33-byte raw keys
	// and 64-byte compact signatures.
	SECP256K1 Algorithm = 0x02
)

// ResolveAlgorithm maps a wire tag byte to an Algorithm.
func ResolveAlgorithm(tag byte) (Algorithm, error) {
	switch Algorithm(tag) {
	case ED25519, SECP256K1:
		return Algorithm(tag), nil
	default:
		return 0, lkerr.New(lkerr.KindUnknownAlgorithm, "LK-ALG-001",
			fmt.Sprintf("unknown algorithm tag 0x%02x", tag))
	}
}

// KeyLength returns the raw public key length in bytes.
//
// Panics on a value that is not one of the two registered algorithms; that is
// programmer misuse, not malformed input.
func (a Algorithm) KeyLength() int {
	switch a {
	case ED25519:
		return 32
	case SECP256K1:
		return 33
	}
	panic(fmt.Sprintf("keypair: key length of unregistered algorithm 0x%02x", byte(a)))
}

// SignatureLength returns the raw signature length in bytes.
func (a Algorithm) SignatureLength() int {
	switch a {
	case ED25519, SECP256K1:
		return 64
	}
	panic(fmt.Sprintf("keypair: signature length of unregistered algorithm 0x%02x", byte(a)))
}

// String returns the lowercase curve name used in the account-hash preimage.
func (a Algorithm) String() string {
	switch a {
	case ED25519:
		return "ed25519"
	case SECP256K1:
		return "secp256k1"
	}
	panic(fmt.Sprintf("keypair: name of unregistered algorithm 0x%02x", byte(a)))
}
