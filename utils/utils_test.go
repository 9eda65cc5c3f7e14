package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("UTILS_TEST_KEY", "configured")
	if got := GetEnv("UTILS_TEST_KEY", "fallback"); got != "configured" {
		t.Errorf("expected configured value, got %q", got)
	}
	if got := GetEnv("UTILS_TEST_MISSING_KEY", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for unset variable, got %q", got)
	}
	t.Setenv("UTILS_TEST_EMPTY_KEY", "")
	if got := GetEnv("UTILS_TEST_EMPTY_KEY", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for empty variable, got %q", got)
	}
}

func TestCreateFolder(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := CreateFolder(dir); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat created folder: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", dir)
	}

	// Creating an existing folder is not an error.
	if err := CreateFolder(dir); err != nil {
		t.Errorf("CreateFolder on existing dir: %v", err)
	}
}

func TestGenerateUniqueID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateUniqueID()
		if id == "" {
			t.Fatal("empty id generated")
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}
