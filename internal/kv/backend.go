// Package kv provides the key-value namespaces the event store persists into.
//
// Every table lives under a single key as one encoded document, so a backend
// only needs point reads and an atomic multi-key write.
package kv

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a backend after Close.
var ErrClosed = errors.New("kv: backend closed")

// Write is a single key update inside an Apply batch. A nil Value deletes the key.
type Write struct {
	Key   string
	Value []byte
}

// Put builds a Write that stores value under key.
func Put(key string, value []byte) Write {
	return Write{Key: key, Value: value}
}

// Delete builds a Write that removes key.
func Delete(key string) Write {
	return Write{Key: key}
}

// Backend is a flat key-value namespace.
type Backend interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Apply performs all writes or none of them.
	Apply(ctx context.Context, writes ...Write) error
	Close() error
}
