package keypair

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"xdao.co/ledgerkeys/lkerr"
)

// Signer produces signatures under a single public key. It is implemented by
// PrivateKey locally and by the remotesign client over gRPC.
type Signer interface {
	PublicKey(ctx context.Context) (PublicKey, error)
	Sign(ctx context.Context, message []byte) (Signature, error)
}

// secretLength is the secret scalar/seed size for both registered algorithms.
const secretLength = 32

// PrivateKey is an immutable signing key: an ed25519 seed or a secp256k1
// scalar, tagged with its algorithm.
type PrivateKey struct {
	alg    Algorithm
	secret []byte
}

// GeneratePrivateKey creates a fresh private key for the given algorithm.
func GeneratePrivateKey(alg Algorithm) (PrivateKey, error) {
	switch alg {
	case ED25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return PrivateKey{}, lkerr.Wrap(lkerr.KindIO, "LK-PRV-001", "ed25519 key generation failed", err)
		}
		return PrivateKey{alg: alg, secret: append([]byte(nil), priv.Seed()...)}, nil
	case SECP256K1:
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return PrivateKey{}, lkerr.Wrap(lkerr.KindIO, "LK-PRV-002", "secp256k1 key generation failed", err)
		}
		return PrivateKey{alg: alg, secret: priv.Serialize()}, nil
	}
	panic("keypair: generate with unregistered algorithm")
}

// NewPrivateKeyFromRaw builds a PrivateKey from a 32-byte ed25519 seed or
// secp256k1 scalar.
func NewPrivateKeyFromRaw(alg Algorithm, secret []byte) (PrivateKey, error) {
	if len(secret) != secretLength {
		return PrivateKey{}, lkerr.New(lkerr.KindInvalidLength, "LK-PRV-101",
			fmt.Sprintf("%s secret must be %d bytes, got %d", alg, secretLength, len(secret)))
	}
	if alg == SECP256K1 {
		priv := secp256k1.PrivKeyFromBytes(secret)
		if priv.Key.IsZero() {
			return PrivateKey{}, lkerr.New(lkerr.KindInvalidFormat, "LK-PRV-102",
				"secp256k1 secret scalar is zero")
		}
	}
	return PrivateKey{alg: alg, secret: append([]byte(nil), secret...)}, nil
}

// Algorithm returns the key's signature scheme.
func (k PrivateKey) Algorithm() Algorithm { return k.alg }

// PublicKey derives the tagged public key. The context is accepted for Signer
// conformance; derivation never blocks.
func (k PrivateKey) PublicKey(_ context.Context) (PublicKey, error) {
	switch k.alg {
	case ED25519:
		priv := ed25519.NewKeyFromSeed(k.secret)
		pub := priv.Public().(ed25519.PublicKey)
		return NewPublicKeyFromRaw(ED25519, pub)
	case SECP256K1:
		priv := secp256k1.PrivKeyFromBytes(k.secret)
		return NewPublicKeyFromRaw(SECP256K1, priv.PubKey().SerializeCompressed())
	}
	panic("keypair: public key of unregistered algorithm")
}

// Sign signs message under the key's algorithm: ed25519 signs the message
// bytes directly, secp256k1 signs sha256(message) as a 64-byte compact
// signature. The inverse of PublicKey.VerifySignature.
func (k PrivateKey) Sign(_ context.Context, message []byte) (Signature, error) {
	switch k.alg {
	case ED25519:
		priv := ed25519.NewKeyFromSeed(k.secret)
		return NewSignatureFromRaw(ED25519, ed25519.Sign(priv, message))
	case SECP256K1:
		priv := secp256k1.PrivKeyFromBytes(k.secret)
		digest := sha256.Sum256(message)
		compact := secpecdsa.SignCompact(priv, digest[:], true)
		// SignCompact prepends a recovery code byte; the wire form is r || s.
		return NewSignatureFromRaw(SECP256K1, compact[1:])
	}
	panic("keypair: sign with unregistered algorithm")
}

var _ Signer = PrivateKey{}
