package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/scrypt"
)

// saltKey is the reserved inner key holding the scrypt salt.
const saltKey = "__mtdash_salt"

var _ Store = (*EncryptedStore)(nil)

// EncryptedStore wraps another Store and encrypts values with AES-GCM using
// a scrypt-derived key. It is used for the on-disk identity session so the
// refresh token never lands on disk in the clear. Decryption failures
// (wrong passphrase, tampered value) read as a miss.
type EncryptedStore struct {
	inner Store
	aead  cipher.AEAD
}

// NewEncryptedStore derives an encryption key from passphrase and wraps
// inner. The salt is generated once and kept in the inner store; if key
// derivation fails the store still satisfies the try-contract and every
// read misses.
func NewEncryptedStore(inner Store, passphrase string) *EncryptedStore {
	s := &EncryptedStore{inner: inner}

	salt, ok := inner.TryGet(saltKey)
	if !ok {
		raw := make([]byte, 16)
		if _, err := io.ReadFull(rand.Reader, raw); err != nil {
			return s
		}
		salt = base64.StdEncoding.EncodeToString(raw)
		inner.TrySet(saltKey, salt)
	}
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return s
	}

	key, err := scrypt.Key([]byte(passphrase), rawSalt, 1<<15, 8, 1, 32)
	if err != nil {
		return s
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return s
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return s
	}
	s.aead = aead
	return s
}

func (e *EncryptedStore) TryGet(key string) (string, bool) {
	if e.aead == nil {
		return "", false
	}
	sealed, ok := e.inner.TryGet(key)
	if !ok {
		return "", false
	}
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(data) < e.aead.NonceSize() {
		return "", false
	}
	nonce, ciphertext := data[:e.aead.NonceSize()], data[e.aead.NonceSize():]
	plain, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", false
	}
	return string(plain), true
}

func (e *EncryptedStore) TrySet(key, value string) {
	if e.aead == nil {
		return
	}
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(value), nil)
	e.inner.TrySet(key, base64.StdEncoding.EncodeToString(sealed))
}

func (e *EncryptedStore) TryDelete(key string) {
	e.inner.TryDelete(key)
}
