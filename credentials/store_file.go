package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/jrsteele09/go-flexcrew-dashboard/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

var _ Store = (*FileStore)(nil)

// FileStore persists the credential slots as a JSON object in a single file.
// When created with a key the file is sealed with XChaCha20-Poly1305 and laid out
// as nonce || ciphertext.
type FileStore struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// NewFileStore creates a store backed by path. hexKey may be empty for an
// unsealed file, otherwise it must decode to 32 bytes.
func NewFileStore(path, hexKey string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("[FileStore New] path is required")
	}

	var key []byte
	if hexKey != "" {
		k, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("[FileStore New] decode key: %w", apperrors.ErrInvalidKey)
		}
		if len(k) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("[FileStore New] key must be %d bytes: %w", chacha20poly1305.KeySize, apperrors.ErrInvalidKey)
		}
		key = k
	}

	return &FileStore{path: path, key: key}, nil
}

// Path returns the file the store writes to
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.read()
	if err != nil {
		return Record{}, err
	}
	return recordFromSlots(slots), nil
}

func (s *FileStore) Save(record Record) error {
	if !record.Complete() {
		return fmt.Errorf("[FileStore Save] %w", apperrors.ErrIncompleteCredentials)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.read()
	if err != nil {
		slots = make(map[string]string)
	}
	for slot, value := range record.slots() {
		slots[slot] = value
	}
	return s.write(slots)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.read()
	if err != nil {
		slots = make(map[string]string)
	}
	for _, slot := range Slots {
		delete(slots, slot)
	}
	if len(slots) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("[FileStore Clear] %w: %v", apperrors.ErrCredentialStore, err)
		}
		return nil
	}
	return s.write(slots)
}

func (s *FileStore) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.read()
	if err != nil {
		return err
	}
	if token == "" {
		delete(slots, SlotToken)
	} else {
		slots[SlotToken] = token
	}
	return s.write(slots)
}

// read returns the slot map; a missing file is an empty map.
func (s *FileStore) read() (map[string]string, error) {
	slots := make(map[string]string)

	blob, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return slots, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[FileStore read] %w: %v", apperrors.ErrCredentialStore, err)
	}
	if len(blob) == 0 {
		return slots, nil
	}

	if s.key != nil {
		blob, err = s.open(blob)
		if err != nil {
			return nil, err
		}
	}

	if err := json.Unmarshal(blob, &slots); err != nil {
		return nil, fmt.Errorf("[FileStore read] decode: %w: %v", apperrors.ErrCredentialStore, err)
	}
	return slots, nil
}

func (s *FileStore) write(slots map[string]string) error {
	blob, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileStore write] encode: %w: %v", apperrors.ErrCredentialStore, err)
	}

	if s.key != nil {
		blob, err = s.seal(blob)
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[FileStore write] %w: %v", apperrors.ErrCredentialStore, err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("[FileStore write] %w: %v", apperrors.ErrCredentialStore, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileStore write] %w: %v", apperrors.ErrCredentialStore, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileStore write] %w: %v", apperrors.ErrCredentialStore, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[FileStore write] %w: %v", apperrors.ErrCredentialStore, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("[FileStore write] %w: %v", apperrors.ErrCredentialStore, err)
	}
	return nil
}

func (s *FileStore) seal(plain []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("[FileStore seal] %w: %v", apperrors.ErrInvalidKey, err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("[FileStore seal] nonce: %w: %v", apperrors.ErrCredentialStore, err)
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

func (s *FileStore) open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("[FileStore open] %w: %v", apperrors.ErrInvalidKey, err)
	}
	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("[FileStore open] sealed file too short: %w", apperrors.ErrCredentialStore)
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("[FileStore open] %w: %v", apperrors.ErrCredentialStore, err)
	}
	return plain, nil
}
