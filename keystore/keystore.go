// Package keystore provides a local filesystem store for named PEM keypairs.
//
// Layout: <root>/<name>/secret.pem (0600) and <root>/<name>/public.pem.
// Secret files are created with O_EXCL unless the caller forces an overwrite.
// This is a local-first convenience surface, not a protocol contract.
package keystore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"xdao.co/ledgerkeys/contentid"
	"xdao.co/ledgerkeys/keypair"
)

const (
	secretFileName = "secret.pem"
	publicFileName = "public.pem"
)

// Store is a directory-rooted key store.
type Store struct {
	Directory string
}

// Entry describes one stored keypair.
type Entry struct {
	Name       string
	AccountHex string
}

// GetDefaultDirectory returns the per-user store root.
func GetDefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".xdao", "ledger-keys"), nil
}

// Create opens a store rooted at directory, defaulting to the per-user root.
func Create(directory string) (*Store, error) {
	if directory == "" {
		var err error
		directory, err = GetDefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Directory: directory}, nil
}

// CheckKeyName validates a store entry name.
func CheckKeyName(name string) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in name", char)
	}
	return nil
}

func (s *Store) secretPath(name string) string {
	return filepath.Join(s.Directory, name, secretFileName)
}

func (s *Store) publicPath(name string) string {
	return filepath.Join(s.Directory, name, publicFileName)
}

func writeFileExclusive(path string, data []byte, mode os.FileMode, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.Write(data); err != nil {
		return err
	}
	return file.Close()
}

// Init generates a fresh keypair under name and returns its account hex and
// the secret file path.
func (s *Store) Init(name string, alg keypair.Algorithm, overwrite bool) (accountHex string, secretPath string, err error) {
	if err := CheckKeyName(name); err != nil {
		return "", "", err
	}
	priv, err := keypair.GeneratePrivateKey(alg)
	if err != nil {
		return "", "", err
	}
	pub, err := priv.PublicKey(context.Background())
	if err != nil {
		return "", "", err
	}

	secretPem, err := priv.PemBytes()
	if err != nil {
		return "", "", err
	}
	publicPem, err := pub.PemBytes()
	if err != nil {
		return "", "", err
	}

	secretPath = s.secretPath(name)
	if err := writeFileExclusive(secretPath, secretPem, 0o600, overwrite); err != nil {
		return "", "", err
	}
	if err := writeFileExclusive(s.publicPath(name), publicPem, 0o644, overwrite); err != nil {
		return "", "", err
	}
	return pub.AccountHex(), secretPath, nil
}

// Load reads the named private key.
func (s *Store) Load(name string) (keypair.PrivateKey, error) {
	if err := CheckKeyName(name); err != nil {
		return keypair.PrivateKey{}, err
	}
	return keypair.NewPrivateKeyFromPem(s.secretPath(name))
}

// PublicKey reads the named public key without touching the secret file.
func (s *Store) PublicKey(name string) (keypair.PublicKey, error) {
	if err := CheckKeyName(name); err != nil {
		return keypair.PublicKey{}, err
	}
	return keypair.NewPublicKeyFromPem(s.publicPath(name))
}

// Export returns the checksummed account hex of the named key.
func (s *Store) Export(name string) (string, error) {
	pub, err := s.PublicKey(name)
	if err != nil {
		return "", err
	}
	return pub.AccountHex(), nil
}

// Fingerprint returns the content identifier of the named key's canonical
// tagged bytes.
func (s *Store) Fingerprint(name string) (string, error) {
	pub, err := s.PublicKey(name)
	if err != nil {
		return "", err
	}
	return contentid.Fingerprint(pub.Bytes()), nil
}

// List returns every stored keypair, sorted by name. Entries whose public
// file cannot be read are skipped.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var result []Entry
	for _, name := range names {
		hex, err := s.Export(name)
		if err != nil {
			continue
		}
		result = append(result, Entry{Name: name, AccountHex: hex})
	}
	return result, nil
}
