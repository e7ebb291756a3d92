package wallet

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/oasisprotocol/deoxysii"
	"golang.org/x/crypto/argon2"
)

const (
	fileExtension = ".wallet"

	stateKeySize   = 32
	stateNonceSize = 32
	kdfSaltSize    = 32
)

type secretState struct {
	// Algorithm is the cryptographic algorithm used by the account.
	Algorithm string `json:"algorithm"`

	// Data is the secret data used to derive the private key.
	Data string `json:"data"`
}

func (s *secretState) Seal(passphrase string) (*secretStateEnvelope, error) {
	var nonce [stateNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}

	var salt [kdfSaltSize]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}

	envelope := &secretStateEnvelope{
		KDF: secretStateKDF{
			Argon2: &kdfArgon2{
				Salt:    salt[:],
				Time:    1,
				Memory:  64 * 1024,
				Threads: 4,
			},
		},
		Nonce: nonce[:],
	}
	key, err := envelope.deriveKey(passphrase)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	// Initialize a Deoxys-II instance with the provided key and encrypt.
	aead, err := deoxysii.New(key)
	if err != nil {
		return nil, err
	}
	envelope.Data = aead.Seal(nil, envelope.Nonce[:aead.NonceSize()], data, nil)

	return envelope, nil
}

type secretStateEnvelope struct {
	KDF   secretStateKDF `json:"kdf"`
	Nonce []byte         `json:"nonce"`
	Data  []byte         `json:"data"`
}

type secretStateKDF struct {
	Argon2 *kdfArgon2 `json:"argon2,omitempty"`
}

type kdfArgon2 struct {
	Salt    []byte `json:"salt"`
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"`
	Threads uint8  `json:"threads"`
}

func (k *kdfArgon2) deriveKey(passphrase string) []byte {
	return argon2.IDKey([]byte(passphrase), k.Salt, k.Time, k.Memory, k.Threads, stateKeySize)
}

func (e *secretStateEnvelope) deriveKey(passphrase string) ([]byte, error) {
	switch {
	case e.KDF.Argon2 != nil:
		return e.KDF.Argon2.deriveKey(passphrase), nil
	default:
		return nil, fmt.Errorf("unsupported key derivation algorithm")
	}
}

func (e *secretStateEnvelope) Open(passphrase string) (*secretState, error) {
	// Derive key.
	key, err := e.deriveKey(passphrase)
	if err != nil {
		return nil, err
	}

	// Initialize a Deoxys-II instance with the provided key and decrypt.
	aead, err := deoxysii.New(key)
	if err != nil {
		return nil, err
	}
	if len(e.Nonce) < aead.NonceSize() {
		return nil, fmt.Errorf("malformed nonce")
	}
	pt, err := aead.Open(nil, e.Nonce[:aead.NonceSize()], e.Data, nil)
	if err != nil {
		return nil, err
	}

	// Deserialize the inner state.
	var state secretState
	if err := json.Unmarshal(pt, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

// Store is a directory of passphrase-protected account files.
type Store struct {
	dir string
}

// NewStore creates a store in the given directory, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create wallet directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DecodeConfig decodes a raw account configuration as stored in the CLI config file.
func DecodeConfig(raw map[string]interface{}) (*AccountConfig, error) {
	var cfg AccountConfig
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) filename(name string) string {
	return filepath.Join(s.dir, name+fileExtension)
}

func (s *Store) save(name, passphrase string, state *secretState) error {
	if _, err := os.Stat(s.filename(name)); err == nil {
		return fmt.Errorf("account '%s' already exists", name)
	}

	// Seal state.
	envelope, err := state.Seal(passphrase)
	if err != nil {
		return fmt.Errorf("failed to seal state: %w", err)
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err = os.WriteFile(s.filename(name), raw, 0o600); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Create generates a new mnemonic-backed account.
func (s *Store) Create(name, passphrase string, cfg *AccountConfig) (Account, error) {
	if cfg.Algorithm != AlgorithmSecp256k1Bip44 {
		return nil, fmt.Errorf("algorithm '%s' does not support generating accounts", cfg.Algorithm)
	}
	mnemonic, err := NewMnemonic()
	if err != nil {
		return nil, err
	}
	return s.Import(name, passphrase, &ImportSource{Kind: ImportKindMnemonic, Data: mnemonic}, cfg.Number)
}

// Import creates a new account from imported key material.
func (s *Store) Import(name, passphrase string, src *ImportSource, number uint32) (Account, error) {
	acc, err := Import(src, number)
	if err != nil {
		return nil, err
	}

	state := &secretState{
		Algorithm: src.Kind.Algorithm(),
		Data:      src.Data,
	}
	if err = s.save(name, passphrase, state); err != nil {
		return nil, err
	}
	return acc, nil
}

// Load loads an existing account.
func (s *Store) Load(name, passphrase string, cfg *AccountConfig) (Account, error) {
	// Load state from encrypted file.
	raw, err := os.ReadFile(s.filename(name))
	if err != nil {
		return nil, fmt.Errorf("failed to load account state: %w", err)
	}

	var envelope secretStateEnvelope
	if err = json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to load account state: %w", err)
	}

	var state *secretState
	if state, err = envelope.Open(passphrase); err != nil {
		return nil, fmt.Errorf("failed to open account state (maybe incorrect passphrase?)")
	}

	if state.Algorithm != cfg.Algorithm {
		return nil, fmt.Errorf("account '%s' uses algorithm '%s', not '%s'", name, state.Algorithm, cfg.Algorithm)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return newAccount(state.Data, cfg)
}

// Remove removes an existing account.
func (s *Store) Remove(name string) error {
	return os.Remove(s.filename(name))
}

// Rename renames an existing account.
func (s *Store) Rename(old, new string) error {
	if _, err := os.Stat(s.filename(new)); err == nil {
		return fmt.Errorf("account '%s' already exists", new)
	}
	return os.Rename(s.filename(old), s.filename(new))
}

// List returns the names of all stored accounts.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExtension) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExtension))
	}
	sort.Strings(names)
	return names, nil
}
