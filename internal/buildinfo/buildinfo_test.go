package buildinfo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveVersion(t *testing.T) {
	env := map[string]string{"PUBLIC_GIT_HASH": "a1b2c3", "EMPTY": "  "}
	getenv := func(k string) string { return env[k] }

	tests := []struct {
		envVar string
		want   string
	}{
		{"PUBLIC_GIT_HASH", "a1b2c3"},
		{"", "a1b2c3"},
		{"EMPTY", DevelopmentVersion},
		{"MISSING", DevelopmentVersion},
	}

	for _, tt := range tests {
		if got := ResolveVersion(getenv, tt.envVar); got != tt.want {
			t.Errorf("ResolveVersion(%q) = %q, want %q", tt.envVar, got, tt.want)
		}
	}
}

func TestReplace_FirstOccurrenceOnly(t *testing.T) {
	in := `<meta name="version" content="GIT_HASH_PLACEHOLDER"><!-- GIT_HASH_PLACEHOLDER -->`

	out, ok := Replace(in, DefaultPlaceholder, "a1b2c3")
	if !ok {
		t.Fatal("expected replacement")
	}
	want := `<meta name="version" content="a1b2c3"><!-- GIT_HASH_PLACEHOLDER -->`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	if _, ok := Replace("no token here", DefaultPlaceholder, "x"); ok {
		t.Error("expected no replacement")
	}
	if _, ok := Replace("anything", "", "x"); ok {
		t.Error("empty placeholder must not match")
	}
}

func TestInject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.html")
	if err := os.WriteFile(path, []byte("<html>GIT_HASH_PLACEHOLDER</html>"), 0o640); err != nil {
		t.Fatal(err)
	}

	if err := Inject(path, DefaultPlaceholder, "deadbeef"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "<html>deadbeef</html>" {
		t.Errorf("unexpected content: %s", data)
	}

	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o640 {
		t.Errorf("expected mode preserved, got %v", info.Mode().Perm())
	}

	// Second run finds nothing to replace and leaves the file alone
	err := Inject(path, DefaultPlaceholder, "other")
	if !errors.Is(err, ErrPlaceholderNotFound) {
		t.Errorf("expected ErrPlaceholderNotFound, got %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "<html>deadbeef</html>" {
		t.Errorf("file modified on failed injection: %s", data)
	}
}

func TestInject_MissingFile(t *testing.T) {
	err := Inject(filepath.Join(t.TempDir(), "missing.html"), DefaultPlaceholder, "x")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
