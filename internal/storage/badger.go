// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

package storage

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/movierec/internal/logging"
)

// Store is the durable local key/value store shared by the cache backfill,
// the sync queue and the connectivity monitor. It is the engine's analog of
// browser localStorage: fallible, non-suspending, whole-value replacement.
//
// Get reports presence explicitly; a missing key is (nil, false, nil), not
// an error. Writers always replace whole values, so last-write-wins at this
// layer is acceptable.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Config holds local store configuration.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory runs Badger without touching disk. Used by tests and
	// ephemeral sessions.
	InMemory bool

	// SyncWrites forces fsync on every write. Durable but slower;
	// preference payloads are tiny so the cost is acceptable.
	SyncWrites bool
}

// BadgerStore implements Store on BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// Open creates (or opens) the local store at the configured path.
func Open(cfg Config) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("storage: path required unless in-memory")
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.InMemory = cfg.InMemory
	opts.SyncWrites = cfg.SyncWrites
	// Badger's own logger is noisy at INFO; route nothing through it.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Local store opened")

	return &BadgerStore{db: db}, nil
}

// Get returns the value for key, reporting presence explicitly.
func (s *BadgerStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *BadgerStore) Set(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *BadgerStore) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Close shuts down the underlying BadgerDB.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
