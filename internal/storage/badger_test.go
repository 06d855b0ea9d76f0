// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package storage

import (
	"bytes"
	"testing"
)

func openTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return s
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set("userPrefs_u1", []byte(`{"userId":"u1"}`)); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	value, found, err := s.Get("userPrefs_u1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !found {
		t.Fatal("Expected key to be found")
	}
	if !bytes.Equal(value, []byte(`{"userId":"u1"}`)) {
		t.Errorf("Get() = %s, want original value", value)
	}
}

func TestBadgerStoreMissingKey(t *testing.T) {
	s := openTestStore(t)

	value, found, err := s.Get("nope")
	if err != nil {
		t.Fatalf("Get() on missing key error: %v", err)
	}
	if found || value != nil {
		t.Error("Expected missing key to report not found without error")
	}
}

func TestBadgerStoreDelete(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, found, _ := s.Get("k"); found {
		t.Error("Expected key to be gone after delete")
	}

	// Deleting an absent key is not an error.
	if err := s.Delete("absent"); err != nil {
		t.Errorf("Delete() on absent key error: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Error("Expected error when neither path nor in-memory is set")
	}
}

func TestKeyLayout(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{UserPrefsKey("u1"), "userPrefs_u1"},
		{QuestionnaireCompletedKey("u1"), "questionnaire_completed_u1"},
		{ConflictResolutionKey("u1"), "conflict_resolution_u1"},
		{SyncStatusKey("u1"), "sync_status_u1"},
		{KeySyncQueue, "bg_sync_queue"},
		{KeyConnectivityHistory, "connectivity_history"},
		{KeySyncStatistics, "sync_statistics"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}

	keys := UserKeys("u1")
	if len(keys) != 4 {
		t.Errorf("UserKeys() returned %d keys, want 4", len(keys))
	}
}
