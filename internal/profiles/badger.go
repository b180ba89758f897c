// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package profiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lodestar/internal/metrics"
	"github.com/tomtom215/lodestar/internal/recommend"
)

const (
	profileKeyPrefix = "profile:"
	badgerLabel      = "badger"
)

// BadgerConfig configures the durable profile store.
type BadgerConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory (tests and demos).
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// MaxViews caps the view history applied on read.
	MaxViews int
}

// BadgerStore implements recommend.ProfileStore using BadgerDB for durable storage.
type BadgerStore struct {
	db       *badger.DB
	maxViews int
	logger   zerolog.Logger
	now      func() time.Time
}

// OpenBadger opens (or creates) a BadgerDB-backed profile store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadger(cfg BadgerConfig, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	return NewBadgerStore(db, cfg.MaxViews, logger), nil
}

// NewBadgerStore wraps an already open database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerStore(db *badger.DB, maxViews int, logger zerolog.Logger) *BadgerStore {
	return &BadgerStore{
		db:       db,
		maxViews: maxViews,
		logger:   logger.With().Str("component", "profile_store").Str("backend", badgerLabel).Logger(),
		now:      time.Now,
	}
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func profileKey(userID string) []byte {
	return []byte(profileKeyPrefix + userID)
}

// GetProfile implements recommend.ProfileStore. A missing profile yields a
// fresh default profile, which is not persisted until SaveProfile. Records in
// the legacy layout are converted and rewritten.
func (s *BadgerStore) GetProfile(ctx context.Context, userID string) (profile *recommend.UserProfile, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery(badgerLabel, "get_profile", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey(userID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return recommend.NewProfile(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}

	profile, migrated, err := decodeProfile(userID, data, s.maxViews)
	if err != nil {
		return nil, err
	}

	if migrated {
		switch werr := s.rewriteMigrated(profile, data); {
		case errors.Is(werr, errRecordChanged):
			s.logger.Debug().Str("user_id", userID).Msg("Profile changed since read, skipping migration rewrite")
		case werr != nil:
			s.logger.Warn().Err(werr).Str("user_id", userID).Msg("Failed to rewrite migrated profile")
		default:
			s.logger.Debug().Str("user_id", userID).Msg("Profile migrated to canonical layout")
		}
	}
	return profile, nil
}

// errRecordChanged reports that a stored record no longer holds the bytes a
// migration was derived from.
var errRecordChanged = errors.New("profile record changed")

// rewriteMigrated stores p only while the key still holds original. A save
// that lands between the read and the rewrite wins.
func (s *BadgerStore) rewriteMigrated(p *recommend.UserProfile, original []byte) error {
	data, err := encodeProfile(p)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey(p.UserID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errRecordChanged
		}
		if err != nil {
			return err
		}
		current, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if !bytes.Equal(current, original) {
			return errRecordChanged
		}
		return txn.Set(profileKey(p.UserID), data)
	})
	if errors.Is(err, badger.ErrConflict) {
		return errRecordChanged
	}
	return err
}

// SaveProfile implements recommend.ProfileStore.
func (s *BadgerStore) SaveProfile(ctx context.Context, profile *recommend.UserProfile) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery(badgerLabel, "save_profile", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if profile == nil || profile.UserID == "" {
		return fmt.Errorf("save profile: user id is required")
	}

	p := profile.Clone()
	canonicalize(p, s.maxViews)
	p.UpdatedAt = s.now().UTC()
	return s.write(p)
}

func (s *BadgerStore) write(p *recommend.UserProfile) error {
	data, err := encodeProfile(p)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(profileKey(p.UserID), data); err != nil {
			return fmt.Errorf("set profile %s: %w", p.UserID, err)
		}
		return nil
	})
}

// ListUserIDs implements recommend.ProfileStore. IDs are sorted.
func (s *BadgerStore) ListUserIDs(ctx context.Context) (ids []string, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery(badgerLabel, "list_users", time.Since(start), err) }()

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(profileKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	sort.Strings(ids)
	return ids, nil
}

// RunValueLogGC reclaims value log space until nothing is left to collect.
func (s *BadgerStore) RunValueLogGC(discardRatio float64) error {
	collected := 0
	for {
		err := s.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			break
		}
		if err != nil {
			return fmt.Errorf("value log GC: %w", err)
		}
		collected++
	}
	if collected > 0 {
		s.logger.Debug().Int("files", collected).Msg("Value log GC completed")
	}
	return nil
}

var _ recommend.ProfileStore = (*BadgerStore)(nil)
