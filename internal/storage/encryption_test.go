// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package storage

import (
	"bytes"
	"testing"
)

func TestEncryptedStoreRoundTrip(t *testing.T) {
	enc, err := NewEncrypted(NewMemory(), "test-secret")
	if err != nil {
		t.Fatalf("NewEncrypted() error: %v", err)
	}

	payload := []byte(`{"genreRatings":{"28":5}}`)
	if err := enc.Set("userPrefs_u1", payload); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, found, err := enc.Get("userPrefs_u1")
	if err != nil || !found {
		t.Fatalf("Get() = found=%v, err=%v", found, err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Get() = %s, want original payload", got)
	}
}

func TestEncryptedStoreCiphertextOnDisk(t *testing.T) {
	inner := NewMemory()
	enc, err := NewEncrypted(inner, "test-secret")
	if err != nil {
		t.Fatalf("NewEncrypted() error: %v", err)
	}

	payload := []byte("plainly readable")
	if err := enc.Set("k", payload); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	raw, _, _ := inner.Get("k")
	if bytes.Contains(raw, payload) {
		t.Error("Expected wrapped store to hold ciphertext, found plaintext")
	}
	if !bytes.HasPrefix(raw, sealedPrefix) {
		t.Error("Expected sealed prefix on stored value")
	}
}

func TestEncryptedStoreLegacyPlaintextReadable(t *testing.T) {
	inner := NewMemory()
	if err := inner.Set("k", []byte("legacy")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	enc, err := NewEncrypted(inner, "test-secret")
	if err != nil {
		t.Fatalf("NewEncrypted() error: %v", err)
	}

	got, found, err := enc.Get("k")
	if err != nil || !found {
		t.Fatalf("Get() = found=%v, err=%v", found, err)
	}
	if string(got) != "legacy" {
		t.Errorf("Get() = %s, want legacy plaintext passthrough", got)
	}
}

func TestEncryptedStoreWrongSecret(t *testing.T) {
	inner := NewMemory()
	enc1, _ := NewEncrypted(inner, "secret-a")
	if err := enc1.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	enc2, _ := NewEncrypted(inner, "secret-b")
	if _, _, err := enc2.Get("k"); err == nil {
		t.Error("Expected decryption failure with wrong secret")
	}
}

func TestNewEncryptedRequiresSecret(t *testing.T) {
	if _, err := NewEncrypted(NewMemory(), ""); err == nil {
		t.Error("Expected error for empty secret")
	}
}
