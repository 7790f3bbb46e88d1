package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docmill/internal/testsupport"
)

func TestCheckInputDirPasses(t *testing.T) {
	result := CheckInputDir(t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckInputDirMissing(t *testing.T) {
	result := CheckInputDir(filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Errorf("Detail = %q, want existence error", result.Detail)
	}
}

func TestCheckInputDirNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckInputDir(path)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if !strings.Contains(result.Detail, "not a directory") {
		t.Errorf("Detail = %q, want directory error", result.Detail)
	}
}

func TestCheckOutputDirCreatesMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested")
	result := CheckOutputDir(path)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Fatalf("output dir not created: %v", err)
	}
}

func TestCheckOutputDirBlockedByFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "out")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckOutputDir(filepath.Join(blocker, "nested"))
	if result.Passed {
		t.Fatal("expected failure when a file blocks the output path")
	}
}

func TestRunIncludesScratchWhenConfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.InputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := New(cfg).Run(cfg.Paths.InputDir, cfg.Paths.OutputDir)

	var names []string
	for _, result := range results {
		names = append(names, result.Name)
	}
	want := []string{"Input directory", "Output directory", "Scratch directory", "Output free space"}
	if len(names) != len(want) {
		t.Fatalf("got checks %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("check[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if Failed(results) {
		t.Errorf("expected all checks to pass, got %+v", results)
	}
}

func TestRunSkipsScratchAndFloorWhenUnset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.ScratchDir = ""
	cfg.Convert.MinFreeMiB = 0
	if err := os.MkdirAll(cfg.Paths.InputDir, 0o755); err != nil {
		t.Fatal(err)
	}

	results := New(cfg).Run(cfg.Paths.InputDir, cfg.Paths.OutputDir)
	if len(results) != 2 {
		t.Fatalf("got %d checks, want 2: %+v", len(results), results)
	}
}

func TestCheckFreeSpaceBelowFloor(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Convert.MinFreeMiB = 64
	checker := New(cfg)
	checker.statfs = func(string) (uint64, uint64, error) {
		return 1 << 30, 1 << 20, nil
	}

	result := checker.checkFreeSpace(t.TempDir())
	if result.Passed {
		t.Fatal("expected failure below the free-space floor")
	}
	if !strings.Contains(result.Detail, "need") {
		t.Errorf("Detail = %q, want required amount", result.Detail)
	}
}

func TestCheckFreeSpaceStatfsError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Convert.MinFreeMiB = 64
	checker := New(cfg)
	checker.statfs = func(string) (uint64, uint64, error) {
		return 0, 0, errors.New("no such filesystem")
	}

	result := checker.checkFreeSpace(t.TempDir())
	if result.Passed {
		t.Fatal("expected failure when statfs fails")
	}
}

func TestFailed(t *testing.T) {
	passing := []Result{{Name: "a", Passed: true}, {Name: "b", Passed: true}}
	if Failed(passing) {
		t.Error("Failed = true for all-passing results")
	}
	mixed := append(passing, Result{Name: "c"})
	if !Failed(mixed) {
		t.Error("Failed = false with a failing result")
	}
	if Failed(nil) {
		t.Error("Failed = true for empty results")
	}
}
