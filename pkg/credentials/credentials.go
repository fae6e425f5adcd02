package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/99designs/keyring"

	"github.com/Saad0095/leaders-tax-cli/pkg/config"
)

// TokenKey is the key the session token is stored under in every backend.
const TokenKey = "token"

const serviceName = "leaders-tax-cli"

// TokenStore persists the opaque session token between runs. Token returns
// an empty string and no error when nobody is logged in.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

// Credentials is the on-disk shape of the file backend.
type Credentials struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// Open returns the store selected by the auth.store config key.
func Open() (TokenStore, error) {
	switch config.GetString("auth.store") {
	case "keyring":
		ring, err := openKeyring()
		if err != nil {
			return nil, err
		}
		return NewKeyringStore(ring), nil
	default:
		return NewFileStore(config.GetCredentialsPath()), nil
	}
}

// FileStore keeps the token in a JSON file readable only by the owner.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed token store
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load loads credentials from disk
func (s *FileStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("reading credentials %s: %w", s.path, err)
	}

	return &creds, nil
}

// Token returns the stored token, if any
func (s *FileStore) Token() (string, error) {
	creds, err := s.Load()
	if err != nil || creds == nil {
		return "", err
	}
	return creds.Token, nil
}

// SetToken saves the token to disk
func (s *FileStore) SetToken(token string) error {
	data, err := json.MarshalIndent(&Credentials{Token: token, SavedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}

	// Write with restricted permissions (owner read/write only)
	return os.WriteFile(s.path, data, 0600)
}

// Clear deletes the credentials file
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// KeyringStore keeps the token in the system keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore wraps an opened keyring
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(config.GetConfigDir(), "keyring"),
		FilePasswordFunc:         keyring.FixedStringPrompt(serviceName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Token retrieves the token from the keyring
func (s *KeyringStore) Token() (string, error) {
	item, err := s.ring.Get(TokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("getting credential %q: %w", TokenKey, err)
	}
	return string(item.Data), nil
}

// SetToken stores the token in the keyring
func (s *KeyringStore) SetToken(token string) error {
	err := s.ring.Set(keyring.Item{
		Key:   TokenKey,
		Data:  []byte(token),
		Label: "Leaders Tax session",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", TokenKey, err)
	}
	return nil
}

// Clear removes the token from the keyring
func (s *KeyringStore) Clear() error {
	if err := s.ring.Remove(TokenKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", TokenKey, err)
	}
	return nil
}
