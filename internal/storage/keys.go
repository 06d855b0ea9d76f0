// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package storage

// Key layout of the durable local store. These strings are shared with
// already-deployed clients and must stay byte-for-byte identical.
const (
	userPrefsPrefix              = "userPrefs_"
	questionnaireCompletedPrefix = "questionnaire_completed_"
	conflictResolutionPrefix     = "conflict_resolution_"
	syncStatusPrefix             = "sync_status_"

	// KeySyncQueue holds the persisted sync queue snapshot.
	KeySyncQueue = "bg_sync_queue"

	// KeyConnectivityHistory holds the persisted connectivity transitions.
	KeyConnectivityHistory = "connectivity_history"

	// KeySyncStatistics holds cumulative queue processing statistics.
	KeySyncStatistics = "sync_statistics"
)

// UserPrefsKey returns the key for a user's serialized preference record.
func UserPrefsKey(userID string) string {
	return userPrefsPrefix + userID
}

// QuestionnaireCompletedKey returns the key for the literal "true"/"false"
// completion flag.
func QuestionnaireCompletedKey(userID string) string {
	return questionnaireCompletedPrefix + userID
}

// ConflictResolutionKey returns the key for conflict resolution diagnostics.
func ConflictResolutionKey(userID string) string {
	return conflictResolutionPrefix + userID
}

// SyncStatusKey returns the key for per-user sync status bookkeeping.
func SyncStatusKey(userID string) string {
	return syncStatusPrefix + userID
}

// UserKeys returns every user-scoped key, in the order they are cleared.
func UserKeys(userID string) []string {
	return []string{
		UserPrefsKey(userID),
		QuestionnaireCompletedKey(userID),
		ConflictResolutionKey(userID),
		SyncStatusKey(userID),
	}
}
