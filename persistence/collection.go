// Package persistence stores whole record collections as versioned JSON documents
// on top of a store.Store, optionally going to a remote API first.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/junaidrashid-git/swiftcart-api/store"
	"go.uber.org/zap"
)

const keyPrefix = "swiftcart"

var (
	// ErrSkipWrite tells Mutate that fn made no change and nothing should be written.
	ErrSkipWrite = errors.New("persistence: skip write")
	// ErrNewerSchema means the stored document was written by a newer build.
	ErrNewerSchema = errors.New("persistence: stored schema is newer than supported")
)

const defaultMutateAttempts = 8

// Migration upgrades the records of schema version n to n+1.
// Version 0 is the bare JSON array written under the old versioned keys.
type Migration func(records json.RawMessage) (json.RawMessage, error)

type Options struct {
	Name           string   // collection name, e.g. "orders"
	Version        string   // current key version, e.g. "v1"
	LegacyVersions []string // older key versions, newest first
	SchemaVersion  int
	Migrations     map[int]Migration
	RemotePath     string // GET path for remote-first reads; empty disables
}

// Key builds the storage key of a collection version, e.g. swiftcart_orders_v1.
func Key(name, version string) string {
	return keyPrefix + "_" + name + "_" + version
}

type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Records       json.RawMessage `json:"records"`
}

type Collection[T any] struct {
	opts   Options
	key    string
	store  store.Store
	remote *Remote
	log    *zap.Logger
}

func NewCollection[T any](st store.Store, remote *Remote, log *zap.Logger, opts Options) *Collection[T] {
	return &Collection[T]{
		opts:   opts,
		key:    Key(opts.Name, opts.Version),
		store:  st,
		remote: remote,
		log:    log.With(zap.String("collection", opts.Name)),
	}
}

func (c *Collection[T]) Key() string { return c.key }

// Load returns every record. With the remote enabled it tries the remote first and
// falls back to local storage on any failure; the failure is logged, never returned.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	if c.remote.Enabled() && c.opts.RemotePath != "" {
		var out []T
		err := c.remote.Do(ctx, http.MethodGet, c.opts.RemotePath, nil, &out)
		if err == nil {
			if out == nil {
				out = []T{}
			}
			return out, nil
		}
		c.log.Warn("remote read failed, using local store", zap.Error(err))
	}
	records, _, err := c.Snapshot(ctx)
	return records, err
}

// RemoteEnabled reports whether writes to this collection go to the remote API first.
func (c *Collection[T]) RemoteEnabled() bool { return c.remote.Enabled() }

// TryRemote performs a remote write and reports whether it succeeded.
// False means the caller must apply the change locally.
func (c *Collection[T]) TryRemote(ctx context.Context, method, path string, body, out interface{}) bool {
	if !c.remote.Enabled() {
		return false
	}
	if err := c.remote.Do(ctx, method, path, body, out); err != nil {
		c.log.Warn("remote write failed, using local store",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

// Snapshot reads the local collection together with its revision.
// An empty current key is filled from the newest legacy key, migrated.
func (c *Collection[T]) Snapshot(ctx context.Context) ([]T, int64, error) {
	entry, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", c.key, err)
	}
	if entry.Exists() {
		records, err := c.decode(entry.Value)
		if err != nil {
			return nil, 0, err
		}
		return records, entry.Revision, nil
	}

	for _, version := range c.opts.LegacyVersions {
		legacyKey := Key(c.opts.Name, version)
		old, err := c.store.Get(ctx, legacyKey)
		if err != nil {
			return nil, 0, fmt.Errorf("read %s: %w", legacyKey, err)
		}
		if !old.Exists() {
			continue
		}
		records, err := c.decode(old.Value)
		if err != nil {
			return nil, 0, fmt.Errorf("migrate %s: %w", legacyKey, err)
		}
		rev, err := c.SaveIf(ctx, records, 0)
		if errors.Is(err, store.ErrConflict) {
			return c.Snapshot(ctx)
		}
		if err != nil {
			return nil, 0, err
		}
		c.log.Info("migrated legacy collection", zap.String("from", legacyKey), zap.String("to", c.key), zap.Int("records", len(records)))
		return records, rev, nil
	}
	return []T{}, 0, nil
}

// Save overwrites the whole collection without checking for concurrent writers.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	data, err := c.encode(records)
	if err != nil {
		return err
	}
	if _, err := c.store.Put(ctx, c.key, data); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}

// SaveIf overwrites the collection only if it is still at revision.
func (c *Collection[T]) SaveIf(ctx context.Context, records []T, revision int64) (int64, error) {
	data, err := c.encode(records)
	if err != nil {
		return 0, err
	}
	rev, err := c.store.PutIf(ctx, c.key, data, revision)
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", c.key, err)
	}
	return rev, nil
}

// Mutate applies fn to the current records and writes the result conditionally,
// re-reading and re-applying fn when another writer got there first.
func (c *Collection[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) ([]T, error) {
	for attempt := 0; attempt < defaultMutateAttempts; attempt++ {
		records, rev, err := c.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		next, err := fn(records)
		if errors.Is(err, ErrSkipWrite) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		_, err = c.SaveIf(ctx, next, rev)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, err
		}
		c.log.Debug("collection changed concurrently, retrying", zap.Int("attempt", attempt+1))
	}
	return nil, fmt.Errorf("mutate %s: %w", c.key, store.ErrConflict)
}

func (c *Collection[T]) encode(records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.key, err)
	}
	return json.Marshal(envelope{SchemaVersion: c.opts.SchemaVersion, Records: raw})
}

func (c *Collection[T]) decode(data []byte) ([]T, error) {
	version, raw := 0, json.RawMessage(data)
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.key, err)
		}
		version, raw = env.SchemaVersion, env.Records
	}
	if version > c.opts.SchemaVersion {
		return nil, fmt.Errorf("%s at schema %d: %w", c.key, version, ErrNewerSchema)
	}

	for ; version < c.opts.SchemaVersion; version++ {
		migrate, ok := c.opts.Migrations[version]
		if !ok {
			continue
		}
		var err error
		if raw, err = migrate(raw); err != nil {
			return nil, fmt.Errorf("migrate %s from schema %d: %w", c.key, version, err)
		}
	}

	records := []T{}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return records, nil
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return records, nil
}
