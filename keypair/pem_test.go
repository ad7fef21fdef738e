package keypair

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"xdao.co/ledgerkeys/lkerr"
)

func TestPem_PublicKeyRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, alg := range []Algorithm{ED25519, SECP256K1} {
		priv, err := GeneratePrivateKey(alg)
		if err != nil {
			t.Fatalf("%s: GeneratePrivateKey: %v", alg, err)
		}
		pub, err := priv.PublicKey(ctx)
		if err != nil {
			t.Fatalf("%s: PublicKey: %v", alg, err)
		}
		path := filepath.Join(dir, alg.String()+"_public.pem")
		if err := pub.WriteToPem(path); err != nil {
			t.Fatalf("%s: WriteToPem: %v", alg, err)
		}
		again, err := NewPublicKeyFromPem(path)
		if err != nil {
			t.Fatalf("%s: NewPublicKeyFromPem: %v", alg, err)
		}
		if !pub.Equal(again) {
			t.Fatalf("%s: PEM round trip differs: %s vs %s", alg, pub.AccountHex(), again.AccountHex())
		}
	}
}

func TestPem_PrivateKeyRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, alg := range []Algorithm{ED25519, SECP256K1} {
		priv, err := GeneratePrivateKey(alg)
		if err != nil {
			t.Fatalf("%s: GeneratePrivateKey: %v", alg, err)
		}
		path := filepath.Join(dir, alg.String()+"_secret.pem")
		if err := priv.WriteToPem(path); err != nil {
			t.Fatalf("%s: WriteToPem: %v", alg, err)
		}
		again, err := NewPrivateKeyFromPem(path)
		if err != nil {
			t.Fatalf("%s: NewPrivateKeyFromPem: %v", alg, err)
		}
		wantPub, err := priv.PublicKey(ctx)
		if err != nil {
			t.Fatalf("%s: PublicKey: %v", alg, err)
		}
		gotPub, err := again.PublicKey(ctx)
		if err != nil {
			t.Fatalf("%s: PublicKey(reloaded): %v", alg, err)
		}
		if !wantPub.Equal(gotPub) {
			t.Fatalf("%s: reloaded key derives a different public key", alg)
		}
	}
}

func TestPem_PrivateKeyFileMode(t *testing.T) {
	priv, err := GeneratePrivateKey(ED25519)
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	path := filepath.Join(t.TempDir(), "secret.pem")
	if err := priv.WriteToPem(path); err != nil {
		t.Fatalf("WriteToPem: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("secret key mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestPem_MissingFile(t *testing.T) {
	_, err := NewPublicKeyFromPem(filepath.Join(t.TempDir(), "nope.pem"))
	if !lkerr.IsKind(err, lkerr.KindIO) {
		t.Fatalf("expected KindIO, got %v", err)
	}
	_, err = NewPrivateKeyFromPem(filepath.Join(t.TempDir(), "nope.pem"))
	if !lkerr.IsKind(err, lkerr.KindIO) {
		t.Fatalf("expected KindIO, got %v", err)
	}
}

func TestPem_MalformedData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.pem")
	if err := os.WriteFile(path, []byte("not a pem block"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ParsePublicKeyPem([]byte("not a pem block")); !lkerr.IsKind(err, lkerr.KindInvalidFormat) {
		t.Fatalf("public parse: expected KindInvalidFormat, got %v", err)
	}
	if _, err := ParsePrivateKeyPem([]byte("not a pem block")); !lkerr.IsKind(err, lkerr.KindInvalidFormat) {
		t.Fatalf("private parse: expected KindInvalidFormat, got %v", err)
	}
	if _, err := NewPublicKeyFromPem(path); !lkerr.IsKind(err, lkerr.KindInvalidFormat) {
		t.Fatalf("public load: expected KindInvalidFormat, got %v", err)
	}
}
