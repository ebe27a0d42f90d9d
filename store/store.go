// Package store is the durable key-value layer under the collections.
//
// Every key carries a revision that starts at 1 and grows by one on each write.
// Put overwrites unconditionally; PutIf only writes when the stored revision
// still equals the one the caller read, which is what makes read-modify-write
// of a collection safe against concurrent writers.
package store

import (
	"context"
	"errors"
)

var (
	// ErrConflict is returned by PutIf when the key was written since it was read.
	ErrConflict = errors.New("store: revision conflict")
	// ErrUnknownDriver is returned by Open for an unsupported STORE_DRIVER.
	ErrUnknownDriver = errors.New("store: unknown driver")
)

// Entry is a stored value. A missing key is the zero Entry.
type Entry struct {
	Value    []byte
	Revision int64
}

func (e Entry) Exists() bool { return e.Revision > 0 }

type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	// Put overwrites key and returns the new revision.
	Put(ctx context.Context, key string, value []byte) (int64, error)
	// PutIf writes key only if its current revision equals revision
	// (0 meaning the key must not exist yet) and returns the new revision.
	PutIf(ctx context.Context, key string, value []byte, revision int64) (int64, error)
	Close() error
}
