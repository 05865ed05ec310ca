package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/findings/internal/model"
)

// PrerenderEnv marks a headless execution (build, prerender, CI render)
// where no durable client storage may be touched.
const PrerenderEnv = "FINDINGS_PRERENDER"

// SQLiteFile is the database file name inside the state dir.
const SQLiteFile = "state.db"

// Environment reports whether the process runs as an interactive client.
type Environment interface {
	Interactive() bool
}

// EnvironmentFunc adapts a plain function to Environment.
type EnvironmentFunc func() bool

// Interactive calls f.
func (f EnvironmentFunc) Interactive() bool { return f() }

// DetectEnvironment treats the process as an interactive client unless
// PrerenderEnv is set to a non-empty value.
func DetectEnvironment(getenv func(string) string) Environment {
	return EnvironmentFunc(func() bool {
		return strings.TrimSpace(getenv(PrerenderEnv)) == ""
	})
}

// Open is the single gate in front of durable storage. It always returns a
// usable backend: when storage cannot be provided the backend is Noop and
// the error explains why (wrapping ErrUnavailable when it is a matter of
// environment or I/O rather than configuration).
func Open(cfg model.StorageConfig, env Environment) (Storage, error) {
	if env != nil && !env.Interactive() {
		return Noop{}, fmt.Errorf("%w: not an interactive client", ErrUnavailable)
	}

	var durable Storage
	switch strings.ToLower(cfg.Backend) {
	case model.BackendNone:
		return Noop{}, fmt.Errorf("%w: disabled by configuration", ErrUnavailable)

	case model.BackendMemory:
		return NewMemory(), nil

	case model.BackendFile, "":
		if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
			return Noop{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		durable = NewFile(cfg.Dir)

	case model.BackendSQLite:
		db, err := OpenSQLite(filepath.Join(cfg.Dir, SQLiteFile))
		if err != nil {
			return Noop{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		durable = db

	default:
		return Noop{}, fmt.Errorf("unknown storage backend %q (supported: file, sqlite, memory, none)", cfg.Backend)
	}

	if cfg.Cache {
		return NewLayered(durable), nil
	}
	return durable, nil
}
