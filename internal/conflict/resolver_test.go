// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package conflict

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/movierec/internal/models"
	"github.com/tomtom215/movierec/internal/storage"
)

func TestResolveAbsentSide(t *testing.T) {
	r := NewResolver(storage.NewMemory())
	record := &models.PreferenceRecord{UserID: "u1"}

	if got := r.Resolve(nil, record); got != record {
		t.Error("Expected local to win when cloud is absent")
	}
	if got := r.Resolve(record, nil); got != record {
		t.Error("Expected cloud to win when local is absent")
	}
	if got := r.Resolve(nil, nil); got != nil {
		t.Error("Expected nil for two absent records")
	}
}

func TestResolveTimestampAuthority(t *testing.T) {
	r := NewResolver(storage.NewMemory())
	now := time.Now()

	cloud := &models.PreferenceRecord{
		UserID:                 "u1",
		GenreRatings:           map[string]int{"28": 5},
		QuestionnaireCompleted: true,
		UpdatedAt:              now,
		DeviceID:               "device-cloud",
	}
	local := &models.PreferenceRecord{
		UserID:                 "u1",
		FavoriteGenres:         []string{"12", "16"},
		QuestionnaireCompleted: true,
		UpdatedAt:              now.Add(-10 * time.Second),
		DeviceID:               "device-local",
	}

	got := r.Resolve(cloud, local)
	if !reflect.DeepEqual(got, cloud) {
		t.Errorf("Expected the newer record verbatim, got %+v", got)
	}

	// Flip recency: local should win verbatim.
	local.UpdatedAt = now.Add(10 * time.Second)
	got = r.Resolve(cloud, local)
	if !reflect.DeepEqual(got, local) {
		t.Errorf("Expected the newer record verbatim, got %+v", got)
	}
}

func TestResolveMergeCorroboratedCompletion(t *testing.T) {
	r := NewResolver(storage.NewMemory())
	now := time.Now()

	cloud := &models.PreferenceRecord{
		UserID:                 "u1",
		GenreRatings:           map[string]int{"28": 5, "12": 4, "16": 3},
		QuestionnaireCompleted: true,
		UpdatedAt:              now,
	}
	local := &models.PreferenceRecord{
		UserID:                 "u1",
		QuestionnaireCompleted: true, // claims completion with zero genres
		UpdatedAt:              now.Add(2 * time.Second),
	}

	got := r.Resolve(cloud, local)
	if !got.QuestionnaireCompleted {
		t.Error("Expected merged record to stay completed via cloud corroboration")
	}
	if !reflect.DeepEqual(got.GenreRatings, cloud.GenreRatings) {
		t.Errorf("Expected cloud genre data to win, got %+v", got.GenreRatings)
	}
	if !got.ConflictResolved {
		t.Error("Expected conflictResolved stamp on merge")
	}
	if !got.UpdatedAt.After(now) && !got.UpdatedAt.Equal(now) {
		t.Error("Expected merge to restamp updatedAt")
	}
}

func TestResolveMergeLocalCorroborated(t *testing.T) {
	r := NewResolver(storage.NewMemory())
	now := time.Now()

	cloud := &models.PreferenceRecord{
		UserID:                 "u1",
		QuestionnaireCompleted: true, // uncorroborated
		UpdatedAt:              now,
	}
	local := &models.PreferenceRecord{
		UserID:                 "u1",
		FavoriteGenres:         []string{"28"},
		QuestionnaireCompleted: true,
		UpdatedAt:              now.Add(time.Second),
	}

	got := r.Resolve(cloud, local)
	if !got.QuestionnaireCompleted {
		t.Error("Expected local corroborated completion to hold")
	}
	if len(got.FavoriteGenres) != 1 || got.FavoriteGenres[0] != "28" {
		t.Errorf("Expected local genre data, got %+v", got.FavoriteGenres)
	}
}

func TestResolveMergeNeitherCorroborated(t *testing.T) {
	r := NewResolver(storage.NewMemory())
	now := time.Now()

	cloud := &models.PreferenceRecord{UserID: "u1", QuestionnaireCompleted: true, UpdatedAt: now}
	local := &models.PreferenceRecord{UserID: "u1", QuestionnaireCompleted: true, UpdatedAt: now.Add(time.Second)}

	got := r.Resolve(cloud, local)
	if got.QuestionnaireCompleted {
		t.Error("Expected completion cleared when neither claim is corroborated")
	}
}

func TestResolvePersistsDiagnostics(t *testing.T) {
	store := storage.NewMemory()
	r := NewResolver(store)
	now := time.Now()

	cloud := &models.PreferenceRecord{UserID: "u1", GenreRatings: map[string]int{"28": 5}, UpdatedAt: now}
	local := &models.PreferenceRecord{UserID: "u1", UpdatedAt: now.Add(-time.Minute)}
	r.Resolve(cloud, local)

	raw, found, err := store.Get(storage.ConflictResolutionKey("u1"))
	if err != nil || !found {
		t.Fatalf("Expected diagnostics to be persisted, found=%v err=%v", found, err)
	}

	var diag Diagnostics
	if err := json.Unmarshal(raw, &diag); err != nil {
		t.Fatalf("Diagnostics unmarshal error: %v", err)
	}
	if diag.Outcome != OutcomeCloudWins {
		t.Errorf("Expected outcome %s, got %s", OutcomeCloudWins, diag.Outcome)
	}
	if diag.CloudGenreCount != 1 || diag.LocalGenreCount != 0 {
		t.Errorf("Unexpected genre counts in diagnostics: %+v", diag)
	}
}

// failingStore errors on every write to prove diagnostics are best-effort.
type failingStore struct{ storage.MemoryStore }

func (f *failingStore) Set(key string, value []byte) error {
	return errors.New("disk full")
}

func TestResolveSurvivesDiagnosticsFailure(t *testing.T) {
	r := NewResolver(&failingStore{})
	now := time.Now()

	cloud := &models.PreferenceRecord{UserID: "u1", GenreRatings: map[string]int{"28": 5}, UpdatedAt: now}
	local := &models.PreferenceRecord{UserID: "u1", UpdatedAt: now.Add(-time.Minute)}

	got := r.Resolve(cloud, local)
	if got == nil || got.UserID != "u1" {
		t.Error("Expected resolution to succeed despite diagnostics persist failure")
	}
}
