// Package cryptox turns a JSON-serializable value plus a user password into
// an opaque, self-describing bundle safe to store on a third-party server,
// and reverses that transform.
//
// Bundle layout: base64(salt) ":" base64(iv) ":" base64(ciphertext+tag),
// with a random 16-byte salt and 12-byte IV generated per call. The bundle
// carries its own key-derivation salt, so any holder of the correct password
// can decrypt without external key material. Loss of the password makes
// existing bundles permanently unrecoverable; there is no reset path.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/assemblysync/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	nonceSize  = 12
	keySize    = 32
	iterations = 100_000
)

// DeriveKey derives a 256-bit AES key from a password and salt using
// PBKDF2-SHA256. Deterministic for identical inputs.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, iterations, keySize, sha256.New)
}

// Encrypt serializes data to JSON and seals it with AES-256-GCM under a key
// derived from password. An empty password is refused: absence of a password
// is an explicit "do not encrypt" choice made elsewhere, never a silent
// fallback here.
//
// Two calls with identical inputs produce different bundles (fresh salt and
// IV per call), so bundles must never be compared for equality.
func Encrypt(data any, password string) (string, error) {
	if password == "" {
		return "", common.ErrEmptyPassword
	}

	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("serializing payload: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	aesgcm, err := newGCM(DeriveKey([]byte(password), salt))
	if err != nil {
		return "", err
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	b64 := base64.StdEncoding
	return b64.EncodeToString(salt) + ":" + b64.EncodeToString(nonce) + ":" + b64.EncodeToString(ciphertext), nil
}

// Decrypt parses a bundle produced by Encrypt, re-derives the key from the
// supplied password and the bundle's own salt, opens the ciphertext and
// unmarshals the plaintext JSON into v.
//
// A wrong password or corrupted ciphertext fails authentication and is
// reported as common.ErrWrongPassword — never as silently garbled JSON. A
// bundle with the wrong field count or undecodable fields is reported as
// common.ErrMalformedBundle.
func Decrypt(bundle string, password string, v any) error {
	if password == "" {
		return common.ErrEmptyPassword
	}
	if bundle == "" {
		return common.ErrMalformedBundle
	}

	parts := strings.Split(bundle, ":")
	if len(parts) != 3 {
		return common.ErrMalformedBundle
	}

	b64 := base64.StdEncoding
	salt, err := b64.DecodeString(parts[0])
	if err != nil || len(salt) != saltSize {
		return common.ErrMalformedBundle
	}
	nonce, err := b64.DecodeString(parts[1])
	if err != nil || len(nonce) != nonceSize {
		return common.ErrMalformedBundle
	}
	ciphertext, err := b64.DecodeString(parts[2])
	if err != nil {
		return common.ErrMalformedBundle
	}

	aesgcm, err := newGCM(DeriveKey([]byte(password), salt))
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// GCM authentication failure: wrong password or tampered data.
		return common.ErrWrongPassword
	}

	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
