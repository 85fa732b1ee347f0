package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir == "" {
		t.Fatal("cacheDir() returned empty string")
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}
	if filepath.Base(dir) != "flowplan" {
		t.Errorf("cacheDir() = %q, should end with 'flowplan'", dir)
	}
	if !strings.Contains(dir, ".cache") {
		t.Errorf("cacheDir() = %q, should contain '.cache'", dir)
	}
}

func TestCacheDirStable(t *testing.T) {
	a, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	b, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("cacheDir() not stable: %q vs %q", a, b)
	}
}
