// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// At-rest encryption for locally stored preference payloads.
//
// Encryption Algorithm:
//   - AES-256-GCM (authenticated encryption)
//   - 12-byte random nonce per value
//   - Key derived from the configured secret using HKDF-SHA256
//
// Keys stay in the clear so the deployed key layout remains inspectable;
// only values are sealed. Reads of legacy plaintext values fall through
// unchanged, so enabling encryption on an existing store is safe.

package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// encryptionSalt binds derived keys to this use case.
	encryptionSalt = "movierec-local-preferences"

	// encryptionInfo is the HKDF info parameter for key derivation.
	encryptionInfo = "preference-encryption-v1"

	// aesKeySize is the AES key size in bytes (256 bits).
	aesKeySize = 32

	// gcmNonceSize is the GCM nonce size in bytes.
	gcmNonceSize = 12
)

// sealedPrefix marks encrypted values so plaintext legacy values can be
// distinguished on read. Not secret, purely a format tag.
var sealedPrefix = []byte("enc1:")

var (
	// ErrEmptySecret is returned when an empty encryption secret is provided.
	ErrEmptySecret = errors.New("encryption secret cannot be empty")

	// ErrDecryptionFailed is returned when a sealed value fails to open
	// (wrong secret or tampered data).
	ErrDecryptionFailed = errors.New("decryption failed: invalid ciphertext or authentication tag")
)

// EncryptedStore wraps a Store and transparently seals values with
// AES-256-GCM. The wrapped store sees only ciphertext.
type EncryptedStore struct {
	inner Store
	aead  cipher.AEAD
}

// NewEncrypted wraps inner with value encryption keyed off secret.
func NewEncrypted(inner Store, secret string) (*EncryptedStore, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	key, err := deriveKey(secret)
	if err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &EncryptedStore{inner: inner, aead: aead}, nil
}

// Get returns the decrypted value for key. Values without the sealed
// prefix are returned as-is (legacy plaintext written before encryption
// was enabled).
func (s *EncryptedStore) Get(key string) ([]byte, bool, error) {
	raw, found, err := s.inner.Get(key)
	if err != nil || !found {
		return nil, found, err
	}
	if !bytes.HasPrefix(raw, sealedPrefix) {
		return raw, true, nil
	}

	data := raw[len(sealedPrefix):]
	if len(data) < gcmNonceSize+s.aead.Overhead() {
		return nil, false, ErrDecryptionFailed
	}

	nonce := data[:gcmNonceSize]
	plaintext, err := s.aead.Open(nil, nonce, data[gcmNonceSize:], nil)
	if err != nil {
		return nil, false, ErrDecryptionFailed
	}
	return plaintext, true, nil
}

// Set seals value and stores the ciphertext under key.
func (s *EncryptedStore) Set(key string, value []byte) error {
	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, value, nil)
	out := make([]byte, 0, len(sealedPrefix)+len(sealed))
	out = append(out, sealedPrefix...)
	out = append(out, sealed...)
	return s.inner.Set(key, out)
}

// Delete removes key from the wrapped store.
func (s *EncryptedStore) Delete(key string) error {
	return s.inner.Delete(key)
}

// Close closes the wrapped store.
func (s *EncryptedStore) Close() error {
	return s.inner.Close()
}

// deriveKey derives a 256-bit AES key from the secret using HKDF-SHA256.
func deriveKey(secret string) ([]byte, error) {
	reader := hkdf.New(sha256.New, []byte(secret), []byte(encryptionSalt), []byte(encryptionInfo))
	key := make([]byte, aesKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}
