// Package cryptox implements per-note password encryption.
//
// A note body is sealed with ChaCha20-Poly1305 under a 256-bit key derived
// from the note password with PBKDF2-HMAC-SHA256. The stored form is
//
//	base64(salt) ":" base64(nonce) ":" base64(ciphertext)
//
// Re-encrypting with the salt taken from the previous ciphertext yields the
// same key, so the derived key can be served from cache and repeated saves
// do not pay for key derivation again.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/writer/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 310000
	SaltSize          = 32
	KeySize           = chacha20poly1305.KeySize
	NonceSize         = chacha20poly1305.NonceSize

	separator = ":"
)

// Cipher encrypts and decrypts note bodies. It is safe for concurrent use.
type Cipher struct {
	iterations int

	mu   sync.Mutex
	keys map[string][]byte
}

type Option func(*Cipher)

// WithIterations overrides the PBKDF2 iteration count. Tests use small values.
func WithIterations(n int) Option {
	return func(c *Cipher) {
		if n > 0 {
			c.iterations = n
		}
	}
}

func NewCipher(opts ...Option) *Cipher {
	c := &Cipher{iterations: DefaultIterations, keys: make(map[string][]byte)}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewSalt returns a fresh random salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// cacheKey binds the cache entry to both salt and password, so a wrong
// password never hits the key derived from the right one.
func cacheKey(password, salt []byte) string {
	h := sha256.Sum256(password)
	return string(salt) + string(h[:])
}

func (c *Cipher) key(password, salt []byte) []byte {
	ck := cacheKey(password, salt)

	c.mu.Lock()
	defer c.mu.Unlock()

	if k, ok := c.keys[ck]; ok {
		return k
	}
	k := pbkdf2.Key(password, salt, c.iterations, KeySize, sha256.New)
	c.keys[ck] = k
	return k
}

func (c *Cipher) forget(password, salt []byte) {
	ck := cacheKey(password, salt)
	c.mu.Lock()
	defer c.mu.Unlock()
	if k, ok := c.keys[ck]; ok {
		common.WipeByteArray(k)
		delete(c.keys, ck)
	}
}

// ClearKeys wipes every cached key.
func (c *Cipher) ClearKeys() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ck, k := range c.keys {
		common.WipeByteArray(k)
		delete(c.keys, ck)
	}
}

// Encrypt seals plaintext under password. A nil salt means a fresh one;
// otherwise the given salt is reused.
func (c *Cipher) Encrypt(plaintext string, password, salt []byte) (string, error) {
	if len(salt) == 0 {
		salt = NewSalt()
	}
	aead, err := chacha20poly1305.New(c.key(password, salt))
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ct := aead.Seal(nil, nonce, []byte(plaintext), nil)

	enc := base64.StdEncoding
	return enc.EncodeToString(salt) + separator + enc.EncodeToString(nonce) + separator + enc.EncodeToString(ct), nil
}

type sealed struct {
	salt, nonce, ct []byte
}

func parse(data string) (*sealed, error) {
	parts := strings.Split(data, separator)
	if len(parts) != 3 {
		return nil, common.ErrInvalidCiphertext
	}
	var s sealed
	var err error
	enc := base64.StdEncoding
	if s.salt, err = enc.DecodeString(parts[0]); err != nil || len(s.salt) == 0 {
		return nil, common.ErrInvalidCiphertext
	}
	if s.nonce, err = enc.DecodeString(parts[1]); err != nil || len(s.nonce) != NonceSize {
		return nil, common.ErrInvalidCiphertext
	}
	if s.ct, err = enc.DecodeString(parts[2]); err != nil || len(s.ct) < chacha20poly1305.Overhead {
		return nil, common.ErrInvalidCiphertext
	}
	return &s, nil
}

// Decrypt opens data with password. Authentication failure is reported as
// common.ErrWrongPassword and evicts the cached key.
func (c *Cipher) Decrypt(data string, password []byte) (string, error) {
	s, err := parse(data)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.New(c.key(password, s.salt))
	if err != nil {
		return "", err
	}
	pt, err := aead.Open(nil, s.nonce, s.ct, nil)
	if err != nil {
		c.forget(password, s.salt)
		return "", common.ErrWrongPassword
	}
	return string(pt), nil
}

// ExtractSalt returns the salt embedded in data.
func ExtractSalt(data string) ([]byte, error) {
	s, err := parse(data)
	if err != nil {
		return nil, err
	}
	return s.salt, nil
}

// IsSealed reports whether data looks like output of Encrypt.
func IsSealed(data string) bool {
	_, err := parse(data)
	return err == nil
}

// IsWrongPassword is a convenience for callers that only care about
// authentication failures.
func IsWrongPassword(err error) bool {
	return errors.Is(err, common.ErrWrongPassword)
}
