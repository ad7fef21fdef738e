package keypair

import (
	stded25519 "crypto/ed25519"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"xdao.co/ledgerkeys/lkerr"
)

// PEM block types. Ed25519 keys use the standard PKIX/PKCS#8 containers;
// secp256k1 private keys use the SEC1 EC container because stdlib x509 does
// not know the curve.
const (
	pemTypePublic    = "PUBLIC KEY"
	pemTypePKCS8     = "PRIVATE KEY"
	pemTypeECPrivate = "EC PRIVATE KEY"
)

var (
	oidPublicKeyECDSA = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidCurveSecp256k1 = asn1.ObjectIdentifier{1, 3, 132, 0, 10}
	oidEd25519        = asn1.ObjectIdentifier{1, 3, 101, 112}
)

// subjectPublicKeyInfo is the PKIX SubjectPublicKeyInfo structure.
type subjectPublicKeyInfo struct {
	Algorithm pkix.AlgorithmIdentifier
	PublicKey asn1.BitString
}

// ecPrivateKey is the SEC1 ECPrivateKey structure.
type ecPrivateKey struct {
	Version       int
	PrivateKey    []byte
	NamedCurveOID asn1.ObjectIdentifier `asn1:"optional,explicit,tag:0"`
	PublicKey     asn1.BitString        `asn1:"optional,explicit,tag:1"`
}

// PemBytes returns the PEM-wrapped SubjectPublicKeyInfo encoding.
func (p PublicKey) PemBytes() ([]byte, error) {
	var der []byte
	var err error
	switch p.alg {
	case ED25519:
		der, err = x509.MarshalPKIXPublicKey(stded25519.PublicKey(p.raw))
		if err != nil {
			return nil, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-PEM-001", "ed25519 DER encoding failed", err)
		}
	case SECP256K1:
		params, merr := asn1.Marshal(oidCurveSecp256k1)
		if merr != nil {
			return nil, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-PEM-002", "secp256k1 curve OID encoding failed", merr)
		}
		der, err = asn1.Marshal(subjectPublicKeyInfo{
			Algorithm: pkix.AlgorithmIdentifier{
				Algorithm:  oidPublicKeyECDSA,
				Parameters: asn1.RawValue{FullBytes: params},
			},
			PublicKey: asn1.BitString{Bytes: p.raw, BitLength: len(p.raw) * 8},
		})
		if err != nil {
			return nil, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-PEM-003", "secp256k1 DER encoding failed", err)
		}
	default:
		panic("keypair: pem encoding of unregistered algorithm")
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypePublic, Bytes: der}), nil
}

// WriteToPem writes the public key as a PEM-wrapped SubjectPublicKeyInfo.
func (p PublicKey) WriteToPem(path string) error {
	data, err := p.PemBytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return lkerr.Wrap(lkerr.KindIO, "LK-PEM-004", fmt.Sprintf("write %s", path), err)
	}
	return nil
}

// NewPublicKeyFromPem reads a PEM-wrapped public key from path.
func NewPublicKeyFromPem(path string) (PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PublicKey{}, lkerr.Wrap(lkerr.KindIO, "LK-PEM-101", fmt.Sprintf("read %s", path), err)
	}
	return ParsePublicKeyPem(data)
}

// ParsePublicKeyPem parses a PEM-wrapped public key from memory.
func ParsePublicKeyPem(data []byte) (PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return PublicKey{}, lkerr.New(lkerr.KindInvalidFormat, "LK-PEM-102", "no PEM block found")
	}
	if block.Type != pemTypePublic {
		return PublicKey{}, lkerr.New(lkerr.KindInvalidFormat, "LK-PEM-103",
			fmt.Sprintf("unexpected PEM block type %q", block.Type))
	}
	var spki subjectPublicKeyInfo
	if rest, err := asn1.Unmarshal(block.Bytes, &spki); err != nil || len(rest) != 0 {
		return PublicKey{}, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-PEM-104", "malformed SubjectPublicKeyInfo", err)
	}
	switch {
	case spki.Algorithm.Algorithm.Equal(oidEd25519):
		return NewPublicKeyFromRaw(ED25519, spki.PublicKey.Bytes)
	case spki.Algorithm.Algorithm.Equal(oidPublicKeyECDSA):
		var curve asn1.ObjectIdentifier
		if _, err := asn1.Unmarshal(spki.Algorithm.Parameters.FullBytes, &curve); err != nil {
			return PublicKey{}, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-PEM-105", "malformed EC curve parameters", err)
		}
		if !curve.Equal(oidCurveSecp256k1) {
			return PublicKey{}, lkerr.New(lkerr.KindInvalidFormat, "LK-PEM-106",
				fmt.Sprintf("unsupported EC curve %v", curve))
		}
		point := spki.PublicKey.Bytes
		if len(point) == 65 {
			// Uncompressed point; normalize to the 33-byte wire form.
			pub, err := secp256k1.ParsePubKey(point)
			if err != nil {
				return PublicKey{}, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-PEM-107", "invalid secp256k1 point", err)
			}
			point = pub.SerializeCompressed()
		}
		return NewPublicKeyFromRaw(SECP256K1, point)
	default:
		return PublicKey{}, lkerr.New(lkerr.KindInvalidFormat, "LK-PEM-108",
			fmt.Sprintf("unsupported key algorithm %v", spki.Algorithm.Algorithm))
	}
}

// PemBytes returns the PEM encoding: PKCS#8 for ed25519, SEC1 for secp256k1.
func (k PrivateKey) PemBytes() ([]byte, error) {
	switch k.alg {
	case ED25519:
		der, err := x509.MarshalPKCS8PrivateKey(stded25519.NewKeyFromSeed(k.secret))
		if err != nil {
			return nil, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-PEM-201", "ed25519 PKCS#8 encoding failed", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: pemTypePKCS8, Bytes: der}), nil
	case SECP256K1:
		priv := secp256k1.PrivKeyFromBytes(k.secret)
		pub := priv.PubKey().SerializeCompressed()
		der, err := asn1.Marshal(ecPrivateKey{
			Version:       1,
			PrivateKey:    k.secret,
			NamedCurveOID: oidCurveSecp256k1,
			PublicKey:     asn1.BitString{Bytes: pub, BitLength: len(pub) * 8},
		})
		if err != nil {
			return nil, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-PEM-202", "secp256k1 SEC1 encoding failed", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: pemTypeECPrivate, Bytes: der}), nil
	}
	panic("keypair: pem encoding of unregistered algorithm")
}

// WriteToPem writes the private key with owner-only permissions.
func (k PrivateKey) WriteToPem(path string) error {
	data, err := k.PemBytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return lkerr.Wrap(lkerr.KindIO, "LK-PEM-203", fmt.Sprintf("write %s", path), err)
	}
	return nil
}

// NewPrivateKeyFromPem reads a PEM-wrapped private key from path. The PEM
// block type selects the container: PKCS#8 for ed25519, SEC1 for secp256k1.
func NewPrivateKeyFromPem(path string) (PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PrivateKey{}, lkerr.Wrap(lkerr.KindIO, "LK-PEM-301", fmt.Sprintf("read %s", path), err)
	}
	return ParsePrivateKeyPem(data)
}

// ParsePrivateKeyPem parses a PEM-wrapped private key from memory.
func ParsePrivateKeyPem(data []byte) (PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return PrivateKey{}, lkerr.New(lkerr.KindInvalidFormat, "LK-PEM-302", "no PEM block found")
	}
	switch block.Type {
	case pemTypePKCS8:
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return PrivateKey{}, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-PEM-303", "malformed PKCS#8 key", err)
		}
		edKey, ok := parsed.(stded25519.PrivateKey)
		if !ok {
			return PrivateKey{}, lkerr.New(lkerr.KindInvalidFormat, "LK-PEM-304",
				fmt.Sprintf("unsupported PKCS#8 key type %T", parsed))
		}
		return NewPrivateKeyFromRaw(ED25519, edKey.Seed())
	case pemTypeECPrivate:
		var ec ecPrivateKey
		if rest, err := asn1.Unmarshal(block.Bytes, &ec); err != nil || len(rest) != 0 {
			return PrivateKey{}, lkerr.Wrap(lkerr.KindInvalidFormat, "LK-PEM-305", "malformed SEC1 key", err)
		}
		if len(ec.NamedCurveOID) != 0 && !ec.NamedCurveOID.Equal(oidCurveSecp256k1) {
			return PrivateKey{}, lkerr.New(lkerr.KindInvalidFormat, "LK-PEM-306",
				fmt.Sprintf("unsupported EC curve %v", ec.NamedCurveOID))
		}
		return NewPrivateKeyFromRaw(SECP256K1, ec.PrivateKey)
	default:
		return PrivateKey{}, lkerr.New(lkerr.KindInvalidFormat, "LK-PEM-307",
			fmt.Sprintf("unexpected PEM block type %q", block.Type))
	}
}
