// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package preferences

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/movierec/internal/cache"
	"github.com/tomtom215/movierec/internal/conflict"
	"github.com/tomtom215/movierec/internal/connectivity"
	"github.com/tomtom215/movierec/internal/logging"
	"github.com/tomtom215/movierec/internal/metrics"
	"github.com/tomtom215/movierec/internal/models"
	"github.com/tomtom215/movierec/internal/retry"
	"github.com/tomtom215/movierec/internal/session"
	"github.com/tomtom215/movierec/internal/storage"
	"github.com/tomtom215/movierec/internal/syncqueue"
)

// cacheKind namespaces preference records in the shared cache.
const cacheKind = "preferences"

// Notifier publishes engine events to interested observers (the websocket
// hub in production). A nil Notifier is valid and silently drops events.
type Notifier interface {
	Publish(event string, payload interface{})
}

// Config holds preference service configuration.
type Config struct {
	// CacheTTL bounds how long a loaded record is served without
	// consulting any store. Default: 10m
	CacheTTL time.Duration

	// DeviceID stamps saves with this device's identity for
	// cross-device conflict diagnostics.
	DeviceID string

	// Retry overrides the remote call retry policy when non-zero.
	Retry retry.Policy
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{CacheTTL: 10 * time.Minute, Retry: retry.DefaultPolicy()}
}

// Service is the single entry point for preference reads and writes.
//
// Every mutation follows the same local-first discipline: the durable
// local store is written before any network is attempted, so user input
// is never lost to a dead connection. The remote store is then updated
// synchronously when reachable, or via the sync queue when not.
//
// Read priority is cache, then remote store reconciled against local,
// then local alone. A populated cache answers without touching either
// store.
//
// Writes for the same user are serialized through a per-user mutex so a
// save and a sync arriving together cannot interleave their
// read-modify-write cycles. Different users never contend.
type Service struct {
	cfg      Config
	store    storage.Store
	cache    *cache.Cache
	cloud    CloudClient
	monitor  *connectivity.Monitor
	resolver *conflict.Resolver
	sessions session.Accessor
	events   Notifier
	policy   retry.Policy

	queueMu sync.RWMutex
	queue   *syncqueue.Queue

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	// now is replaceable in tests.
	now func() time.Time
}

// NewService wires the preference service. The sync queue is attached
// separately via AttachQueue because the queue's executor is the service
// itself.
func NewService(cfg Config, store storage.Store, c *cache.Cache, cloud CloudClient,
	monitor *connectivity.Monitor, resolver *conflict.Resolver, sessions session.Accessor,
	events Notifier) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	policy := cfg.Retry
	if policy.Attempts == 0 {
		policy = retry.DefaultPolicy()
	}
	return &Service{
		cfg:      cfg,
		store:    store,
		cache:    c,
		cloud:    cloud,
		monitor:  monitor,
		resolver: resolver,
		sessions: sessions,
		events:   events,
		policy:   policy,
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

// AttachQueue connects the sync queue used for deferred cloud writes.
func (s *Service) AttachQueue(q *syncqueue.Queue) {
	s.queueMu.Lock()
	s.queue = q
	s.queueMu.Unlock()
}

// lockUser serializes operations per user and returns the unlock func.
func (s *Service) lockUser(userID string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[userID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// resolveSession returns the session or a ready-to-return failure result.
func (s *Service) resolveSession(ctx context.Context) (*session.Session, *models.Result) {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		r := models.Failure(models.CodeAuthError, "Authentication required")
		return nil, &r
	}
	if sess.UserID == "" {
		r := models.Failure(models.CodeNoUserID, "No user ID in session")
		return nil, &r
	}
	return sess, nil
}

// publish sends an engine event if a notifier is attached.
func (s *Service) publish(event string, payload interface{}) {
	if s.events != nil {
		s.events.Publish(event, payload)
	}
}

// savePayload is the queued form of a deferred cloud save.
type savePayload struct {
	UserID string                   `json:"userId"`
	Token  string                   `json:"token"`
	Record *models.PreferenceRecord `json:"record"`
}

// syncPayload is the queued form of a deferred full reconcile.
type syncPayload struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// SavePreferences persists the record locally, then to the remote store.
//
// The local write happens unconditionally first. If the remote store is
// unreachable or the write fails transiently, the operation still
// succeeds with Source=local, a user-facing Warning, and a queued
// background sync. Only an authentication rejection or a double failure
// (local and cloud both down) produces a failed Result.
//
// A completion claim with no genre data is rejected with
// VALIDATION_ERROR before anything is written.
//
// partial marks an in-progress questionnaire autosave; partial saves
// queue at normal priority while explicit saves queue high. A
// non-partial save always marks the questionnaire finished.
func (s *Service) SavePreferences(ctx context.Context, record *models.PreferenceRecord, partial bool) models.Result {
	sess, failure := s.resolveSession(ctx)
	if failure != nil {
		metrics.RecordPreferenceOperation("save", false, "")
		return *failure
	}
	if record == nil {
		metrics.RecordPreferenceOperation("save", false, "")
		return models.Failure(models.CodeValidationError, "No preferences provided")
	}

	if !record.Valid() {
		metrics.RecordPreferenceOperation("save", false, "")
		return models.Failure(models.CodeValidationError,
			"Completed preferences must include genre data")
	}

	unlock := s.lockUser(sess.UserID)
	defer unlock()

	record = record.Clone()
	// An explicit save marks the questionnaire finished; an autosave
	// keeps whatever the record claims.
	record.QuestionnaireCompleted = !partial || record.QuestionnaireCompleted
	record.UserID = sess.UserID
	record.UpdatedAt = s.now()
	record.DeviceID = s.cfg.DeviceID
	if partial {
		record.SaveType = models.SaveTypePartial
	} else {
		record.SaveType = models.SaveTypeComplete
	}

	localErr := s.persistLocal(record)
	if localErr != nil {
		logging.Error().Err(localErr).Str("user", sess.UserID).Msg("Local preference save failed")
	} else {
		s.cacheSet(sess.UserID, record)
	}

	if !s.monitor.IsOnline() {
		if localErr != nil {
			metrics.RecordPreferenceOperation("save", false, "")
			return models.Failure(models.CodeLocalSaveError, "Could not save preferences")
		}
		s.enqueueSave(sess, record, partial)
		s.writeSyncStatus(sess.UserID, models.SourceLocal)
		metrics.RecordPreferenceOperation("save", true, string(models.SourceLocal))
		return models.Result{
			Success: true,
			Data:    record,
			Source:  models.SourceLocal,
			Message: "Preferences saved",
			Warning: "You appear to be offline. Preferences were saved locally and will sync automatically.",
		}
	}

	var authErr error
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		saveErr := s.cloud.Save(ctx, sess.Token, record, "")
		var httpErr *HTTPError
		if errors.As(saveErr, &httpErr) && httpErr.Auth() {
			// Permanent rejection; retrying cannot help.
			authErr = saveErr
			return nil
		}
		return saveErr
	})

	if authErr != nil {
		metrics.RecordPreferenceOperation("save", false, "")
		return models.Failure(models.CodeAuthError, "Session expired, please sign in again")
	}
	if err != nil {
		logging.Warn().Err(err).Str("user", sess.UserID).Msg("Cloud preference save failed, queueing")
		if localErr != nil {
			metrics.RecordPreferenceOperation("save", false, "")
			return models.Failure(models.CodeCloudSaveError, "Could not save preferences")
		}
		s.noteCloudUnreachable(err)
		s.enqueueSave(sess, record, partial)
		s.writeSyncStatus(sess.UserID, models.SourceLocal)
		metrics.RecordPreferenceOperation("save", true, string(models.SourceLocal))
		return models.Result{
			Success: true,
			Data:    record,
			Source:  models.SourceLocal,
			Message: "Preferences saved",
			Warning: "Could not reach the server. Preferences were saved locally and will sync automatically.",
		}
	}

	s.writeSyncStatus(sess.UserID, models.SourceCloud)
	s.publish("preferences.saved", record)
	metrics.RecordPreferenceOperation("save", true, string(models.SourceCloud))
	return models.Result{
		Success: true,
		Data:    record,
		Source:  models.SourceCloud,
		Message: "Preferences saved",
	}
}

// LoadPreferences returns the user's preferences, preferring cache, then
// the remote store reconciled against local, then local alone.
//
// forceCloud bypasses the cache and goes straight to the remote store,
// used after cross-device changes are suspected.
func (s *Service) LoadPreferences(ctx context.Context, forceCloud bool) models.Result {
	sess, failure := s.resolveSession(ctx)
	if failure != nil {
		metrics.RecordPreferenceOperation("load", false, "")
		return *failure
	}

	if !forceCloud {
		if cached, ok := s.cacheGet(sess.UserID); ok {
			metrics.RecordPreferenceOperation("load", true, string(models.SourceCache))
			return models.Result{Success: true, Data: cached, Source: models.SourceCache}
		}
	}

	unlock := s.lockUser(sess.UserID)
	defer unlock()

	local, localFound, localErr := s.loadLocal(sess.UserID)
	if localErr != nil {
		logging.Warn().Err(localErr).Str("user", sess.UserID).Msg("Local preference read failed")
	}

	if !s.monitor.IsOnline() {
		if localFound {
			s.cacheSet(sess.UserID, local)
			metrics.RecordPreferenceOperation("load", true, string(models.SourceLocal))
			return models.Result{
				Success: true,
				Data:    local,
				Source:  models.SourceLocal,
				Warning: "You appear to be offline. Showing locally saved preferences.",
			}
		}
		metrics.RecordPreferenceOperation("load", false, "")
		return models.Failure(models.CodeNoDataFound, "No preferences found")
	}

	cloudRecord, err := retry.DoValue(ctx, s.policy, func(ctx context.Context) (*models.PreferenceRecord, error) {
		record, fetchErr := s.cloud.Fetch(ctx, sess.Token)
		var httpErr *HTTPError
		if errors.As(fetchErr, &httpErr) && httpErr.Auth() {
			return nil, fetchErr // surfaces below without further retries
		}
		return record, fetchErr
	})

	switch {
	case err == nil:
		resolved := s.resolver.Resolve(cloudRecord.Sanitize(), local)
		if persistErr := s.persistLocal(resolved); persistErr != nil {
			logging.Warn().Err(persistErr).Str("user", sess.UserID).Msg("Persisting fetched preferences failed")
		}
		s.cacheSet(sess.UserID, resolved)
		s.writeSyncStatus(sess.UserID, models.SourceCloud)
		metrics.RecordPreferenceOperation("load", true, string(models.SourceCloud))
		return models.Result{Success: true, Data: resolved, Source: models.SourceCloud}

	case errors.Is(err, ErrNoRecord):
		if localFound {
			// The remote store has never seen this user; seed it in the
			// background from the local copy.
			s.enqueueSave(sess, local, true)
			s.cacheSet(sess.UserID, local)
			metrics.RecordPreferenceOperation("load", true, string(models.SourceLocal))
			return models.Result{Success: true, Data: local, Source: models.SourceLocal}
		}
		metrics.RecordPreferenceOperation("load", false, "")
		return models.Failure(models.CodeNoDataFound, "No preferences found")

	default:
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Auth() {
			metrics.RecordPreferenceOperation("load", false, "")
			return models.Failure(models.CodeAuthError, "Session expired, please sign in again")
		}
		s.noteCloudUnreachable(err)
		if localFound {
			s.cacheSet(sess.UserID, local)
			metrics.RecordPreferenceOperation("load", true, string(models.SourceLocal))
			return models.Result{
				Success: true,
				Data:    local,
				Source:  models.SourceLocal,
				Warning: "Could not reach the server. Showing locally saved preferences.",
			}
		}
		metrics.RecordPreferenceOperation("load", false, "")
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Failure(models.CodeTimeoutError, "Loading preferences timed out")
		}
		return models.Failure(models.CodeCloudFetchError, "Could not load preferences")
	}
}

// HasCompletedQuestionnaire reports whether the user finished the genre
// questionnaire. The answer comes from a forced fresh load so a stale
// cache can never hide a completion recorded on another device, and the
// claim only counts when corroborated by genre data.
func (s *Service) HasCompletedQuestionnaire(ctx context.Context) (bool, models.Source, error) {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return false, "", err
	}
	if sess.UserID == "" {
		return false, "", errors.New("preferences: no user id in session")
	}

	result := s.LoadPreferences(ctx, true)
	if !result.Success {
		if result.Code == models.CodeNoDataFound {
			return false, models.SourceLocal, nil
		}
		return false, "", fmt.Errorf("preferences: completion check failed: %s", result.Error)
	}

	record := result.Data
	return record.QuestionnaireCompleted && record.GenreCount() > 0, result.Source, nil
}

// SyncPreferences forces a full reconcile between the local and remote
// stores and pushes the resolved record back to both.
func (s *Service) SyncPreferences(ctx context.Context) models.Result {
	sess, failure := s.resolveSession(ctx)
	if failure != nil {
		metrics.RecordPreferenceOperation("sync", false, "")
		return *failure
	}

	unlock := s.lockUser(sess.UserID)
	defer unlock()

	local, localFound, _ := s.loadLocal(sess.UserID)

	if !s.monitor.IsOnline() {
		s.enqueueSync(sess)
		metrics.RecordPreferenceOperation("sync", true, string(models.SourceLocal))
		return models.Result{
			Success: true,
			Data:    local,
			Source:  models.SourceLocal,
			Warning: "You appear to be offline. Sync will run automatically once reconnected.",
		}
	}

	cloudRecord, err := s.cloud.Fetch(ctx, sess.Token)
	switch {
	case err == nil:
		cloudRecord = cloudRecord.Sanitize()
	case errors.Is(err, ErrNoRecord):
		cloudRecord = nil
	default:
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Auth() {
			metrics.RecordPreferenceOperation("sync", false, "")
			return models.Failure(models.CodeAuthError, "Session expired, please sign in again")
		}
		s.noteCloudUnreachable(err)
		s.enqueueSync(sess)
		metrics.RecordPreferenceOperation("sync", true, string(models.SourceLocal))
		return models.Result{
			Success: true,
			Data:    local,
			Source:  models.SourceLocal,
			Warning: "Could not reach the server. Sync was queued and will retry automatically.",
		}
	}

	if cloudRecord == nil && !localFound {
		metrics.RecordPreferenceOperation("sync", false, "")
		return models.Failure(models.CodeNoDataFound, "No preferences found")
	}

	resolved := s.resolver.Resolve(cloudRecord, local)
	if persistErr := s.persistLocal(resolved); persistErr != nil {
		logging.Warn().Err(persistErr).Str("user", sess.UserID).Msg("Persisting synced preferences failed")
	}
	s.cacheSet(sess.UserID, resolved)

	if saveErr := s.cloud.Save(ctx, sess.Token, resolved, ""); saveErr != nil {
		logging.Warn().Err(saveErr).Str("user", sess.UserID).Msg("Pushing resolved preferences failed, queueing")
		s.enqueueSave(sess, resolved, true)
		s.writeSyncStatus(sess.UserID, models.SourceLocal)
		metrics.RecordPreferenceOperation("sync", true, string(models.SourceLocal))
		return models.Result{
			Success: true,
			Data:    resolved,
			Source:  models.SourceLocal,
			Warning: "Preferences were reconciled locally; the upload was queued.",
		}
	}

	s.writeSyncStatus(sess.UserID, models.SourceCloud)
	s.publish("preferences.synced", resolved)
	metrics.RecordPreferenceOperation("sync", true, string(models.SourceCloud))
	return models.Result{
		Success: true,
		Data:    resolved,
		Source:  models.SourceCloud,
		Message: "Preferences synced",
	}
}

// ClearPreferences removes every locally held trace of the user's
// preferences: the record, the completion flag, sync bookkeeping and the
// cache entry. The remote store is untouched.
func (s *Service) ClearPreferences(ctx context.Context) models.Result {
	sess, failure := s.resolveSession(ctx)
	if failure != nil {
		metrics.RecordPreferenceOperation("clear", false, "")
		return *failure
	}

	unlock := s.lockUser(sess.UserID)
	defer unlock()

	for _, key := range storage.UserKeys(sess.UserID) {
		if err := s.store.Delete(key); err != nil {
			metrics.RecordPreferenceOperation("clear", false, "")
			return models.Failure(models.CodeLocalSaveError, "Could not clear preferences")
		}
	}
	s.cache.Delete(cache.Key(cacheKind, sess.UserID))
	s.publish("preferences.cleared", map[string]string{"userId": sess.UserID})
	metrics.RecordPreferenceOperation("clear", true, string(models.SourceLocal))
	return models.Result{Success: true, Source: models.SourceLocal, Message: "Preferences cleared"}
}

// Execute implements syncqueue.Executor: it replays queued operations
// against the remote store. Errors propagate so the queue applies its
// retry and drop policy.
func (s *Service) Execute(ctx context.Context, op *syncqueue.Operation) error {
	switch op.Kind {
	case syncqueue.KindSavePreferences:
		var payload savePayload
		if err := op.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("decode save payload: %w", err)
		}
		if payload.Record == nil {
			return errors.New("queued save has no record")
		}
		if err := s.cloud.Save(ctx, payload.Token, payload.Record, op.IdempotencyKey); err != nil {
			return err
		}
		s.writeSyncStatus(payload.UserID, models.SourceCloud)
		s.publish("preferences.saved", payload.Record)
		return nil

	case syncqueue.KindSyncPreferences:
		var payload syncPayload
		if err := op.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("decode sync payload: %w", err)
		}
		return s.backgroundSync(ctx, payload)

	default:
		return fmt.Errorf("unknown queued operation kind %q", op.Kind)
	}
}

// backgroundSync is the queued variant of SyncPreferences: same
// reconcile, no Result shaping, errors propagate to the queue.
func (s *Service) backgroundSync(ctx context.Context, payload syncPayload) error {
	unlock := s.lockUser(payload.UserID)
	defer unlock()

	local, localFound, _ := s.loadLocal(payload.UserID)

	cloudRecord, err := s.cloud.Fetch(ctx, payload.Token)
	switch {
	case err == nil:
		cloudRecord = cloudRecord.Sanitize()
	case errors.Is(err, ErrNoRecord):
		cloudRecord = nil
	default:
		return err
	}

	if cloudRecord == nil && !localFound {
		return nil // nothing anywhere; the sync is vacuously complete
	}

	resolved := s.resolver.Resolve(cloudRecord, local)
	if persistErr := s.persistLocal(resolved); persistErr != nil {
		logging.Warn().Err(persistErr).Str("user", payload.UserID).Msg("Persisting background sync result failed")
	}
	s.cacheSet(payload.UserID, resolved)

	if err := s.cloud.Save(ctx, payload.Token, resolved, ""); err != nil {
		return err
	}
	s.writeSyncStatus(payload.UserID, models.SourceCloud)
	s.publish("preferences.synced", resolved)
	return nil
}

// SyncStatus returns the persisted per-user sync bookkeeping.
func (s *Service) SyncStatus(ctx context.Context) (*models.SyncStatus, error) {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if sess.UserID == "" {
		return nil, errors.New("preferences: no user id in session")
	}

	raw, found, err := s.store.Get(storage.SyncStatusKey(sess.UserID))
	if err != nil {
		return nil, err
	}
	if !found {
		return &models.SyncStatus{}, nil
	}
	var status models.SyncStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("decode sync status: %w", err)
	}
	return &status, nil
}

// enqueueSave defers a cloud save to the queue. Explicit saves queue at
// high priority so they outrank background reconciles.
func (s *Service) enqueueSave(sess *session.Session, record *models.PreferenceRecord, partial bool) {
	s.queueMu.RLock()
	q := s.queue
	s.queueMu.RUnlock()
	if q == nil {
		return
	}

	priority := syncqueue.PriorityNormal
	if !partial {
		priority = syncqueue.PriorityHigh
	}
	payload := savePayload{UserID: sess.UserID, Token: sess.Token, Record: record}
	if _, err := q.Enqueue(syncqueue.KindSavePreferences, payload, priority); err != nil {
		logging.Error().Err(err).Str("user", sess.UserID).Msg("Could not enqueue deferred save")
	}
}

// enqueueSync defers a full reconcile to the queue.
func (s *Service) enqueueSync(sess *session.Session) {
	s.queueMu.RLock()
	q := s.queue
	s.queueMu.RUnlock()
	if q == nil {
		return
	}

	payload := syncPayload{UserID: sess.UserID, Token: sess.Token}
	if _, err := q.Enqueue(syncqueue.KindSyncPreferences, payload, syncqueue.PriorityNormal); err != nil {
		logging.Error().Err(err).Str("user", sess.UserID).Msg("Could not enqueue deferred sync")
	}
}

// noteCloudUnreachable feeds a transport-level failure to the
// connectivity monitor. HTTP status errors are not transport failures
// and are deliberately excluded: the server answered.
func (s *Service) noteCloudUnreachable(err error) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return
	}
	s.monitor.NotifyOffline()
}

// loadLocal reads the user's record from the durable local store.
func (s *Service) loadLocal(userID string) (*models.PreferenceRecord, bool, error) {
	raw, found, err := s.store.Get(storage.UserPrefsKey(userID))
	if err != nil || !found {
		return nil, false, err
	}
	var record models.PreferenceRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		// A corrupt local record is treated as absent; the cloud copy
		// will repopulate it on the next load.
		logging.Warn().Err(err).Str("user", userID).Msg("Local preference record unreadable, ignoring")
		return nil, false, nil
	}
	return record.Sanitize(), true, nil
}

// persistLocal writes the record and its derived completion flag. The
// flag is the literal string "true"/"false" for compatibility with
// deployed readers of the key.
func (s *Service) persistLocal(record *models.PreferenceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal preference record: %w", err)
	}
	if err := s.store.Set(storage.UserPrefsKey(record.UserID), data); err != nil {
		return fmt.Errorf("persist preference record: %w", err)
	}

	flag := "false"
	if record.QuestionnaireCompleted {
		flag = "true"
	}
	if err := s.store.Set(storage.QuestionnaireCompletedKey(record.UserID), []byte(flag)); err != nil {
		return fmt.Errorf("persist completion flag: %w", err)
	}
	return nil
}

// writeSyncStatus stamps the per-user sync bookkeeping, best-effort.
func (s *Service) writeSyncStatus(userID string, source models.Source) {
	status := models.SyncStatus{
		LastSync: s.now(),
		Status:   "synced",
		Source:   source,
	}
	data, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := s.store.Set(storage.SyncStatusKey(userID), data); err != nil {
		logging.Warn().Err(err).Str("user", userID).Msg("Sync status persist failed")
	}
}

// cacheGet returns the cached record for the user, if present.
func (s *Service) cacheGet(userID string) (*models.PreferenceRecord, bool) {
	v, ok := s.cache.Get(cache.Key(cacheKind, userID))
	if !ok {
		return nil, false
	}
	record, ok := v.(*models.PreferenceRecord)
	return record, ok
}

// cacheSet stores the record under the user's cache key.
func (s *Service) cacheSet(userID string, record *models.PreferenceRecord) {
	s.cache.SetWithTTL(cache.Key(cacheKind, userID), record, s.cfg.CacheTTL)
}
