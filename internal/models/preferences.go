// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package models

import (
	"time"
)

// SaveType identifies the provenance of a preference record.
type SaveType string

const (
	// SaveTypeComplete marks an explicit, user-initiated save.
	SaveTypeComplete SaveType = "complete"

	// SaveTypePartial marks an autosave of an in-progress questionnaire.
	SaveTypePartial SaveType = "partial"
)

// PreferenceRecord is the user's saved genre preferences plus a completion
// flag. Three historical wire shapes exist for the genre data; at most one
// shape is authoritative per record, detected by presence:
//
//   - GenreRatings: genre ID -> rating (current shape)
//   - FavoriteGenres: list of genre IDs (intermediate shape)
//   - GenrePreferences: genre ID -> like/dislike (legacy shape)
//
// UpdatedAt is the primary conflict-resolution signal. DeviceID and SaveType
// are advisory provenance metadata, never required for correctness.
type PreferenceRecord struct {
	UserID string `json:"userId,omitempty"`

	GenreRatings     map[string]int    `json:"genreRatings,omitempty"`
	FavoriteGenres   []string          `json:"favoriteGenres,omitempty"`
	GenrePreferences map[string]string `json:"genrePreferences,omitempty"`

	QuestionnaireCompleted bool `json:"questionnaireCompleted"`

	UpdatedAt time.Time `json:"updatedAt"`

	DeviceID string   `json:"deviceId,omitempty"`
	SaveType SaveType `json:"saveType,omitempty"`

	// ConflictResolved is stamped by the conflict resolver when this record
	// is the product of a merge rather than a plain save.
	ConflictResolved bool `json:"conflictResolved,omitempty"`
}

// GenreCount returns the number of genre entries in whichever historical
// shape is present. Checks GenreRatings keys first, then FavoriteGenres
// length, then GenrePreferences keys, else 0.
func (r *PreferenceRecord) GenreCount() int {
	if r == nil {
		return 0
	}
	if len(r.GenreRatings) > 0 {
		return len(r.GenreRatings)
	}
	if len(r.FavoriteGenres) > 0 {
		return len(r.FavoriteGenres)
	}
	if len(r.GenrePreferences) > 0 {
		return len(r.GenrePreferences)
	}
	return 0
}

// Valid reports whether the record satisfies the completion invariant:
// QuestionnaireCompleted may be true only if the genre count is positive.
func (r *PreferenceRecord) Valid() bool {
	if r == nil {
		return false
	}
	if r.QuestionnaireCompleted && r.GenreCount() == 0 {
		return false
	}
	return true
}

// Sanitize returns a copy with an uncorroborated completion claim cleared.
// A record claiming completed=true with zero genre entries is treated as
// completed=false; everything else passes through unchanged.
func (r *PreferenceRecord) Sanitize() *PreferenceRecord {
	if r == nil {
		return nil
	}
	out := r.Clone()
	if out.QuestionnaireCompleted && out.GenreCount() == 0 {
		out.QuestionnaireCompleted = false
	}
	return out
}

// Clone returns a deep copy of the record. The genre maps and slice are
// copied so mutations on the clone never leak back into the original.
func (r *PreferenceRecord) Clone() *PreferenceRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.GenreRatings != nil {
		out.GenreRatings = make(map[string]int, len(r.GenreRatings))
		for k, v := range r.GenreRatings {
			out.GenreRatings[k] = v
		}
	}
	if r.FavoriteGenres != nil {
		out.FavoriteGenres = append([]string(nil), r.FavoriteGenres...)
	}
	if r.GenrePreferences != nil {
		out.GenrePreferences = make(map[string]string, len(r.GenrePreferences))
		for k, v := range r.GenrePreferences {
			out.GenrePreferences[k] = v
		}
	}
	return &out
}

// GenreShape identifies which historical wire shape carries the genre data.
type GenreShape int

const (
	// GenreShapeNone means no genre data is present.
	GenreShapeNone GenreShape = iota

	// GenreShapeRatings is the current genreRatings map shape.
	GenreShapeRatings

	// GenreShapeFavorites is the intermediate favoriteGenres list shape.
	GenreShapeFavorites

	// GenreShapeLegacy is the oldest genrePreferences map shape.
	GenreShapeLegacy
)

// String returns the shape name for logging.
func (s GenreShape) String() string {
	switch s {
	case GenreShapeRatings:
		return "ratings"
	case GenreShapeFavorites:
		return "favorites"
	case GenreShapeLegacy:
		return "legacy"
	default:
		return "none"
	}
}

// GenreProfile is the normalized view of the genre data, computed once on
// load instead of re-detecting the wire shape on every read. Ratings is
// always populated for non-empty profiles; shapes without explicit ratings
// map to a neutral rating.
type GenreProfile struct {
	Shape   GenreShape     `json:"shape"`
	Ratings map[string]int `json:"ratings,omitempty"`
}

// neutralRating is assigned to genres from shapes that carry no rating value.
const neutralRating = 3

// Normalize collapses the three historical genre shapes into a single
// GenreProfile. The stored wire shapes are untouched; this is a read-side
// view only, so the on-disk layout stays compatible with deployed clients.
func (r *PreferenceRecord) Normalize() GenreProfile {
	if r == nil {
		return GenreProfile{Shape: GenreShapeNone}
	}
	switch {
	case len(r.GenreRatings) > 0:
		ratings := make(map[string]int, len(r.GenreRatings))
		for k, v := range r.GenreRatings {
			ratings[k] = v
		}
		return GenreProfile{Shape: GenreShapeRatings, Ratings: ratings}
	case len(r.FavoriteGenres) > 0:
		ratings := make(map[string]int, len(r.FavoriteGenres))
		for _, g := range r.FavoriteGenres {
			ratings[g] = neutralRating
		}
		return GenreProfile{Shape: GenreShapeFavorites, Ratings: ratings}
	case len(r.GenrePreferences) > 0:
		ratings := make(map[string]int, len(r.GenrePreferences))
		for g, p := range r.GenrePreferences {
			if p == "dislike" {
				ratings[g] = 1
			} else {
				ratings[g] = neutralRating
			}
		}
		return GenreProfile{Shape: GenreShapeLegacy, Ratings: ratings}
	default:
		return GenreProfile{Shape: GenreShapeNone}
	}
}
