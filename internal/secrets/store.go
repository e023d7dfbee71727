// Package secrets keeps backend API tokens in a per-user file (0600) sealed with
// AES-GCM. The key is derived from the machine and user names, so this only keeps
// tokens out of plain-text config; it is not a keychain.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const fileName = "tokens.json"

// ErrNotFound is returned when no token is stored for a backend.
var ErrNotFound = errors.New("secrets: token not found")

type secretFile struct {
	Tokens map[string]string `json:"tokens"` // backend host -> base64(ciphertext)
}

// Store is a token file in Dir.
type Store struct {
	Dir string
}

// NewStore uses the user config directory.
func NewStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{Dir: filepath.Join(dir, "photobooth")}, nil
}

// Put seals token for the backend at baseURL.
func (s *Store) Put(baseURL, token string) error {
	host, err := hostKey(baseURL)
	if err != nil {
		return err
	}
	sf, err := s.load()
	if err != nil {
		return err
	}
	if sf.Tokens == nil {
		sf.Tokens = map[string]string{}
	}
	ct, err := encrypt([]byte(strings.TrimSpace(token)))
	if err != nil {
		return err
	}
	sf.Tokens[host] = base64.StdEncoding.EncodeToString(ct)
	return s.save(sf)
}

// Get returns the token for the backend at baseURL.
func (s *Store) Get(baseURL string) (string, error) {
	host, err := hostKey(baseURL)
	if err != nil {
		return "", err
	}
	sf, err := s.load()
	if err != nil {
		return "", err
	}
	enc, ok := sf.Tokens[host]
	if !ok {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

func (s *Store) Delete(baseURL string) error {
	host, err := hostKey(baseURL)
	if err != nil {
		return err
	}
	sf, err := s.load()
	if err != nil {
		return err
	}
	delete(sf.Tokens, host)
	return s.save(sf)
}

// hostKey normalizes a base URL to its lower-cased host[:port].
func hostKey(baseURL string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", fmt.Errorf("secrets: backend url required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("secrets: invalid backend url %q", baseURL)
	}
	return strings.ToLower(u.Host), nil
}

func (s *Store) path() (string, error) {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil { // restrict directory
		return "", err
	}
	return filepath.Join(s.Dir, fileName), nil
}

func (s *Store) load() (secretFile, error) {
	var sf secretFile
	path, err := s.path()
	if err != nil {
		return sf, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return secretFile{}, nil
		}
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, err
	}
	return sf, nil
}

func (s *Store) save(sf secretFile) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func masterKey() []byte {
	host, _ := os.Hostname()
	base := fmt.Sprintf("photobooth-%s-%s-%s", runtime.GOOS, os.Getenv("USER"), host)
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("secrets: ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
