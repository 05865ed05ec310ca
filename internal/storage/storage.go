// Package storage provides the durable key/value slots that back persisted
// client state, plus the gate deciding whether durable storage exists at all.
package storage

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrUnavailable is returned by Open when the process has no durable
	// storage. The returned backend is still usable and keeps nothing.
	ErrUnavailable = errors.New("durable storage unavailable")

	// ErrInvalidKey is returned for slot keys that cannot name a slot.
	ErrInvalidKey = errors.New("invalid storage key")
)

// Storage is a flat namespace of string slots.
type Storage interface {
	// Get returns the slot value and whether the slot exists.
	Get(key string) (string, bool, error)

	// Set overwrites the slot.
	Set(key, value string) error

	// Delete removes the slot. Deleting a missing slot is not an error.
	Delete(key string) error
}

// ValidateKey rejects keys that are empty or could escape a directory.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Persistent reports whether writes to s survive the process.
func Persistent(s Storage) bool {
	switch b := s.(type) {
	case nil, Noop, *Noop, *Memory:
		return false
	case *Layered:
		return Persistent(b.durable)
	default:
		return true
	}
}

// Location describes where s keeps its slots: a directory, a database file,
// "memory", or "" when nothing is kept.
func Location(s Storage) string {
	switch b := s.(type) {
	case *File:
		return b.Dir()
	case *SQLite:
		return b.Path()
	case *Layered:
		return Location(b.durable)
	case *Memory:
		return "memory"
	default:
		return ""
	}
}

// Close releases resources held by s, if any.
func Close(s Storage) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
