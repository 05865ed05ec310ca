// Package buildinfo stamps a version identifier into static assets at build
// time and reports the version of the running binary.
package buildinfo

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultPlaceholder is the literal token replaced in the asset.
	DefaultPlaceholder = "GIT_HASH_PLACEHOLDER"
	// DefaultVersionEnv names the variable holding the version.
	DefaultVersionEnv = "PUBLIC_GIT_HASH"
	// DevelopmentVersion is used when no version is provided.
	DevelopmentVersion = "development"
)

// Version is the binary version, overridden with
// -ldflags "-X github.com/ppiankov/findings/internal/buildinfo.Version=...".
var Version = DevelopmentVersion

// ErrPlaceholderNotFound is returned when the asset has no placeholder left.
var ErrPlaceholderNotFound = errors.New("placeholder not found")

// ResolveVersion reads the version from envVar; unset and empty both fall
// back to DevelopmentVersion.
func ResolveVersion(getenv func(string) string, envVar string) string {
	if envVar == "" {
		envVar = DefaultVersionEnv
	}
	if v := strings.TrimSpace(getenv(envVar)); v != "" {
		return v
	}
	return DevelopmentVersion
}

// Replace substitutes the first occurrence of placeholder with version.
func Replace(content, placeholder, version string) (string, bool) {
	if placeholder == "" || !strings.Contains(content, placeholder) {
		return content, false
	}
	return strings.Replace(content, placeholder, version, 1), true
}

// Inject rewrites the asset at path in place. The file is left untouched
// when it does not contain the placeholder.
func Inject(path, placeholder, version string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat asset: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read asset: %w", err)
	}

	out, ok := Replace(string(data), placeholder, version)
	if !ok {
		return fmt.Errorf("%s in %s: %w", placeholder, path, ErrPlaceholderNotFound)
	}

	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write asset: %w", err)
	}
	return nil
}
