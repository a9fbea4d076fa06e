package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"webgif/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckBrowserBinary(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "chrome-stub")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if result := CheckBrowserBinary(stub); !result.Passed || result.Detail != stub {
		t.Fatalf("expected stub to pass, got %#v", result)
	}
	if result := CheckBrowserBinary(filepath.Join(dir, "missing")); result.Passed {
		t.Fatal("expected missing browser to fail")
	}
}

func TestCheckHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	if result := CheckHistory(path); !result.Passed {
		t.Fatalf("expected history check to pass, got %s", result.Detail)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfg.Capture.Output = filepath.Join(base, "web.gif")
	stub := filepath.Join(base, "chrome-stub")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg.Browser.ExecPath = stub
	return &cfg
}

func TestRunAll(t *testing.T) {
	cfg := testConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := RunAll(context.Background(), cfg, Options{})
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d: %#v", len(results), results)
	}
	if n := Failed(results); n != 0 {
		t.Fatalf("expected all checks to pass, %d failed: %#v", n, results)
	}
}

func TestRunAllReportsMissingDirectories(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Enabled = false
	results := RunAll(context.Background(), cfg, Options{})
	if len(results) != 5 {
		t.Fatalf("expected 5 results without history, got %d", len(results))
	}
	if n := Failed(results); n != 2 {
		t.Fatalf("expected work and log dir checks to fail, %d failed: %#v", n, results)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Options{}); results != nil {
		t.Fatalf("expected nil results, got %#v", results)
	}
}
