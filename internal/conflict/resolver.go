// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package conflict

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/movierec/internal/logging"
	"github.com/tomtom215/movierec/internal/metrics"
	"github.com/tomtom215/movierec/internal/models"
	"github.com/tomtom215/movierec/internal/storage"
)

// TimestampAuthorityWindow is the maximum clock skew treated as a real
// divergence. Records further apart than this are resolved purely by
// recency; records within it are presumed to reflect the same save seen
// from both sides and are merged instead.
const TimestampAuthorityWindow = 5 * time.Second

// Resolver reconciles a cloud and a local copy of the same logical
// preference record into one authoritative record.
//
// Naive last-write-wins would let a device holding a stale completion flag
// silently erase a more complete remote profile. The resolver therefore
// only honors a completion claim corroborated by actual genre content.
type Resolver struct {
	store storage.Store

	// now is replaceable in tests.
	now func() time.Time
}

// NewResolver creates a resolver that persists resolution diagnostics to
// the given store.
func NewResolver(store storage.Store) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// Diagnostics records how a resolution was decided. Persisted under
// conflict_resolution_<userId> for debugging cross-device disputes.
type Diagnostics struct {
	ResolvedAt      time.Time `json:"resolvedAt"`
	CloudUpdatedAt  time.Time `json:"cloudUpdatedAt"`
	LocalUpdatedAt  time.Time `json:"localUpdatedAt"`
	CloudGenreCount int       `json:"cloudGenreCount"`
	LocalGenreCount int       `json:"localGenreCount"`
	Outcome         string    `json:"outcome"`
}

// Resolution outcomes recorded in diagnostics and metrics.
const (
	OutcomeCloudWins = "cloud_wins"
	OutcomeLocalWins = "local_wins"
	OutcomeMerged    = "merged"
)

// Resolve produces the authoritative record from the two candidates.
//
// Rules, in order:
//  1. One side absent: the other wins unmodified.
//  2. Timestamps more than 5s apart: the newer record wins verbatim.
//  3. Near-simultaneous: merge, honoring only corroborated completion
//     claims (cloud checked first, then local, else not completed).
//
// Diagnostics persistence is best-effort; a storage failure never aborts
// the resolution itself.
func (r *Resolver) Resolve(cloud, local *models.PreferenceRecord) *models.PreferenceRecord {
	if cloud == nil {
		return local
	}
	if local == nil {
		return cloud
	}

	cloudCount := cloud.GenreCount()
	localCount := local.GenreCount()
	diag := Diagnostics{
		ResolvedAt:      r.now(),
		CloudUpdatedAt:  cloud.UpdatedAt,
		LocalUpdatedAt:  local.UpdatedAt,
		CloudGenreCount: cloudCount,
		LocalGenreCount: localCount,
	}

	delta := cloud.UpdatedAt.Sub(local.UpdatedAt)
	if delta < 0 {
		delta = -delta
	}

	var resolved *models.PreferenceRecord
	if delta > TimestampAuthorityWindow {
		// Timestamp authority: the more recent record wins outright,
		// field-for-field, with nothing added.
		if cloud.UpdatedAt.After(local.UpdatedAt) {
			resolved = cloud
			diag.Outcome = OutcomeCloudWins
		} else {
			resolved = local
			diag.Outcome = OutcomeLocalWins
		}
	} else {
		resolved = r.merge(cloud, local, cloudCount, localCount)
		diag.Outcome = OutcomeMerged
	}

	r.persistDiagnostics(resolved.UserID, local.UserID, diag)
	metrics.ConflictResolutions.WithLabelValues(diag.Outcome).Inc()

	logging.Debug().
		Str("outcome", diag.Outcome).
		Int("cloud_genres", cloudCount).
		Int("local_genres", localCount).
		Dur("delta", delta).
		Msg("Preference conflict resolved")

	return resolved
}

// merge combines near-simultaneous records: start from local, overlay
// cloud provenance, then resolve the completion flag against actual genre
// content. The corroborated side also contributes the genre data.
func (r *Resolver) merge(cloud, local *models.PreferenceRecord, cloudCount, localCount int) *models.PreferenceRecord {
	merged := local.Clone()
	if cloud.UserID != "" {
		merged.UserID = cloud.UserID
	}
	if cloud.DeviceID != "" {
		merged.DeviceID = cloud.DeviceID
	}
	if cloud.SaveType != "" {
		merged.SaveType = cloud.SaveType
	}

	switch {
	case cloud.QuestionnaireCompleted && cloudCount > 0:
		merged.QuestionnaireCompleted = true
		copyGenres(merged, cloud)
	case local.QuestionnaireCompleted && localCount > 0:
		merged.QuestionnaireCompleted = true
		// Genre data already local's via the clone.
	default:
		// Neither completion claim is corroborated by content. Cloud
		// genre data still overlays local when present, mirroring the
		// plain field overlay.
		merged.QuestionnaireCompleted = false
		if cloudCount > 0 {
			copyGenres(merged, cloud)
		}
	}

	merged.UpdatedAt = r.now()
	merged.ConflictResolved = true
	return merged
}

// copyGenres replaces all three genre shapes on dst with src's.
func copyGenres(dst, src *models.PreferenceRecord) {
	c := src.Clone()
	dst.GenreRatings = c.GenreRatings
	dst.FavoriteGenres = c.FavoriteGenres
	dst.GenrePreferences = c.GenrePreferences
}

// persistDiagnostics writes the resolution metadata, best-effort.
func (r *Resolver) persistDiagnostics(userID, fallbackUserID string, diag Diagnostics) {
	if r.store == nil {
		return
	}
	if userID == "" {
		userID = fallbackUserID
	}
	if userID == "" {
		return
	}

	data, err := json.Marshal(diag)
	if err != nil {
		logging.Warn().Err(err).Msg("Conflict diagnostics marshal failed")
		return
	}
	if err := r.store.Set(storage.ConflictResolutionKey(userID), data); err != nil {
		logging.Warn().Err(err).Str("user", userID).Msg("Conflict diagnostics persist failed")
	}
}
