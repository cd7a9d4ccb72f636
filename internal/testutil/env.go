// Package testutil provides utilities for testing texloader in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// EnvPrefix matches config.EnvPrefix; duplicated to keep testutil free of
// internal imports.
const EnvPrefix = "TEXLOADER_"

// SetupTestEnv isolates a test from the developer's environment:
//   - every TEXLOADER_* variable is unset
//   - HOME points at a fresh temp directory
//   - the working directory is unchanged
//
// It returns the isolated home directory. Everything is restored when the
// test ends.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	for _, kv := range os.Environ() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		// t.Setenv registers the restore; then drop the variable entirely
		t.Setenv(name, "")
		if err := os.Unsetenv(name); err != nil {
			t.Fatalf("unset %s: %v", name, err)
		}
	}

	home := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(home, 0o750); err != nil {
		t.Fatalf("failed to create test home %s: %v", home, err)
	}
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	return home
}
