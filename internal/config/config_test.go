package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"webgif/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tempHome, ".cache"))
	t.Setenv("WEBGIF_BROWSER", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "webgif", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "webgif", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.WorkDir != filepath.Join(tempHome, ".cache", "webgif", "work") {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	if cfg.Capture.FrameCount != 150 {
		t.Fatalf("unexpected frame count: %d", cfg.Capture.FrameCount)
	}
	if cfg.Capture.FrameDelayMS != 150 || cfg.Capture.SettleDelayMS != 1000 {
		t.Fatalf("unexpected delays: frame=%d settle=%d", cfg.Capture.FrameDelayMS, cfg.Capture.SettleDelayMS)
	}
	if cfg.Capture.Quality != 25 {
		t.Fatalf("unexpected quality: %d", cfg.Capture.Quality)
	}
	if cfg.Capture.Viewport != 480 {
		t.Fatalf("unexpected viewport: %d", cfg.Capture.Viewport)
	}
	if cfg.Capture.Type != config.OutputGIF {
		t.Fatalf("unexpected output type: %q", cfg.Capture.Type)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.HistoryDB)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "webgif.toml")

	type payload struct {
		Capture struct {
			URL        string `toml:"url"`
			FrameCount int    `toml:"frame_count"`
			Type       string `toml:"type"`
		} `toml:"capture"`
		Paths struct {
			WorkDir string `toml:"work_dir"`
		} `toml:"paths"`
	}
	custom := payload{}
	custom.Capture.URL = "https://example.com"
	custom.Capture.FrameCount = 3
	custom.Capture.Type = " PNG "
	custom.Paths.WorkDir = filepath.Join(tempDir, "work")

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Capture.URL != "https://example.com" {
		t.Fatalf("unexpected url: %q", cfg.Capture.URL)
	}
	if cfg.Capture.FrameCount != 3 {
		t.Fatalf("unexpected frame count: %d", cfg.Capture.FrameCount)
	}
	if cfg.Capture.Type != config.OutputPNG {
		t.Fatalf("expected type normalized to png, got %q", cfg.Capture.Type)
	}
	if cfg.Paths.WorkDir != filepath.Join(tempDir, "work") {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	if cfg.Capture.Quality != config.Default().Capture.Quality {
		t.Fatalf("expected default quality to survive partial config, got %d", cfg.Capture.Quality)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "webgif.toml")
	if err := os.WriteFile(configPath, []byte("[capture]\nframez = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestBrowserExecPathFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WEBGIF_BROWSER", "")
	t.Setenv("CHROME_PATH", "/opt/chrome/chrome")
	os.Unsetenv("WEBGIF_BROWSER")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Browser.ExecPath != "/opt/chrome/chrome" {
		t.Fatalf("expected exec path from CHROME_PATH, got %q", cfg.Browser.ExecPath)
	}
}

func TestCaptureValidate(t *testing.T) {
	base := config.Default().Capture
	tests := []struct {
		name   string
		mutate func(*config.Capture)
		want   string
	}{
		{name: "zero frames", mutate: func(c *config.Capture) { c.FrameCount = 0 }, want: "frame_count"},
		{name: "negative frame delay", mutate: func(c *config.Capture) { c.FrameDelayMS = -1 }, want: "frame_delay_ms"},
		{name: "negative settle delay", mutate: func(c *config.Capture) { c.SettleDelayMS = -5 }, want: "settle_delay_ms"},
		{name: "quality too low", mutate: func(c *config.Capture) { c.Quality = 0 }, want: "quality"},
		{name: "quality too high", mutate: func(c *config.Capture) { c.Quality = 31 }, want: "quality"},
		{name: "bad type", mutate: func(c *config.Capture) { c.Type = "webp" }, want: "capture.type"},
		{name: "empty output", mutate: func(c *config.Capture) { c.Output = " " }, want: "capture.output"},
		{name: "zero viewport", mutate: func(c *config.Capture) { c.Viewport = 0 }, want: "viewport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := base
			tt.mutate(&capture)
			err := capture.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("default capture should validate: %v", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Capture.URL != config.Default().Capture.URL {
		t.Fatalf("unexpected sample url: %q", cfg.Capture.URL)
	}

	rendered, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(rendered, "frame_count = 150") {
		t.Fatalf("expected rendered config to include frame_count, got:\n%s", rendered)
	}
}
