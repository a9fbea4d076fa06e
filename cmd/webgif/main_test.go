package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"webgif/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	workDir    string
	browser    *testsupport.FakeBrowser
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("WEBGIF_BROWSER", "")
	t.Setenv("CHROME_PATH", "")
	t.Chdir(base)

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "webgif.toml"),
		workDir:    filepath.Join(base, "work"),
		browser:    &testsupport.FakeBrowser{},
	}
	content := fmt.Sprintf(`[paths]
work_dir = %q
log_dir = %q
history_db = %q

[capture]
frame_delay_ms = 0
settle_delay_ms = 0
viewport = 16
url = "https://example.test/"

[logging]
level = "error"
`, env.workDir, filepath.Join(base, "logs"), filepath.Join(base, "history.db"))
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	previous := launchBrowser
	launchBrowser = env.browser.Launcher()
	t.Cleanup(func() { launchBrowser = previous })
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func TestCapturePNGScenario(t *testing.T) {
	env := setupCLITestEnv(t)
	out := filepath.Join(env.baseDir, "out")

	stdout, stderr, err := runCLI(t, []string{"--duration", "3", "--type", "png", "--output", out}, env.configPath)
	if err != nil {
		t.Fatalf("capture failed: %v\nstderr: %s", err, stderr)
	}
	for i := 1; i <= 3; i++ {
		requireExists(t, filepath.Join(out, fmt.Sprintf("%d.png", i)))
	}
	requireExists(t, out+".png")
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(entries))
	}
	requireContains(t, stdout, "Capture complete")
	requireContains(t, stderr, "Taking screenshots: ...")
}

func TestCaptureGIFScenario(t *testing.T) {
	env := setupCLITestEnv(t)
	out := filepath.Join(env.baseDir, "out")

	stdout, stderr, err := runCLI(t, []string{"-d", "2", "-o", out + ".gif"}, env.configPath)
	if err != nil {
		t.Fatalf("capture failed: %v\nstderr: %s", err, stderr)
	}
	requireExists(t, out+".gif")
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("gif mode must not leave %s, stat err=%v", out, err)
	}
	requireContains(t, stdout, out+".gif")
}

func TestCaptureClosedPageFails(t *testing.T) {
	env := setupCLITestEnv(t)
	env.browser.CloseAfter = 1
	out := filepath.Join(env.baseDir, "broken")

	_, _, err := runCLI(t, []string{"-d", "4", "-o", out}, env.configPath)
	if err == nil {
		t.Fatal("expected capture error")
	}
	requireContains(t, err.Error(), "capture error")
	if _, statErr := os.Stat(out + ".gif"); !os.IsNotExist(statErr) {
		t.Fatalf("no gif may be written, stat err=%v", statErr)
	}
}

func TestCaptureRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	tests := [][]string{
		{"--quality", "0"},
		{"--duration", "0"},
		{"--type", "webp"},
		{"--frames", "-1"},
	}
	for _, args := range tests {
		if _, _, err := runCLI(t, args, env.configPath); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
	if env.browser.Launches() != 0 {
		t.Fatal("browser must not launch for invalid settings")
	}
}

func TestVersionFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, []string{"-V"}, env.configPath)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, stdout, "webgif version "+version)
	if env.browser.Launches() != 0 {
		t.Fatal("version must not start a capture")
	}
}

func TestCaptureFlagDefaults(t *testing.T) {
	cmd := newRootCommand()
	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"url", "u", "https://giphy.com/search/lol"},
		{"duration", "d", "150"},
		{"delay", "l", "1000"},
		{"frames", "f", "150"},
		{"quality", "q", "25"},
		{"output", "o", "./web.gif"},
		{"type", "t", "gif"},
		{"version", "V", "false"},
	}
	for _, tt := range tests {
		flag := cmd.Flags().Lookup(tt.name)
		if flag == nil {
			t.Fatalf("missing flag --%s", tt.name)
		}
		if flag.Shorthand != tt.shorthand {
			t.Errorf("--%s: expected shorthand -%s, got -%s", tt.name, tt.shorthand, flag.Shorthand)
		}
		if flag.DefValue != tt.def {
			t.Errorf("--%s: expected default %q, got %q", tt.name, tt.def, flag.DefValue)
		}
	}
}

func TestFlagsOverrideConfigOnlyWhenSet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Capture.Quality = 5
	cfg.Capture.FrameCount = 9

	cmd := &cobra.Command{Use: "capture"}
	var flags captureFlags
	bindCaptureFlags(cmd, &flags)
	if err := cmd.ParseFlags([]string{"--url", "example.org", "-d", "4"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	flags.apply(cmd, cfg)

	if cfg.Capture.URL != "example.org" || cfg.Capture.FrameCount != 4 {
		t.Fatalf("expected explicit flags applied, got url=%q frames=%d", cfg.Capture.URL, cfg.Capture.FrameCount)
	}
	if cfg.Capture.Quality != 5 {
		t.Fatalf("unset --quality must keep config value, got %d", cfg.Capture.Quality)
	}
}

func TestConfigInitValidateShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireExists(t, target)

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "viewport = 16")
	requireContains(t, out, "exists: yes")
}

func TestHistoryAfterCapture(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, stderr, err := runCLI(t, []string{"-d", "2", "-o", filepath.Join(env.baseDir, "h")}, env.configPath); err != nil {
		t.Fatalf("capture failed: %v\nstderr: %s", err, stderr)
	}
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "succeeded")
	requireContains(t, out, "https://example.test/")
	requireContains(t, out, "2/2")
}

func TestCleanRemovesStaleWorkDirs(t *testing.T) {
	env := setupCLITestEnv(t)
	stale := filepath.Join(env.workDir, "webgif-old-123")
	fresh := filepath.Join(env.workDir, "webgif-new-456")
	for _, dir := range []string{stale, fresh} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	old := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	out, _, err := runCLI(t, []string{"clean"}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Removed 1 work directory")
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale dir removed, stat err=%v", err)
	}
	requireExists(t, fresh)
}

func TestDoctorReportsMissingBrowser(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("WEBGIF_BROWSER", filepath.Join(env.baseDir, "no-such-chrome"))

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatal("expected doctor to fail without a browser")
	}
	requireContains(t, err.Error(), "checks failed")
	requireContains(t, out, "Browser binary")
	requireContains(t, out, "FAIL")
	requireContains(t, out, "Work directory")
}

func TestLogsFiltersByRun(t *testing.T) {
	env := setupCLITestEnv(t)
	logDir := filepath.Join(env.baseDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	content := `{"level":"info","msg":"capture started","run_id":"aaaa1111"}
{"level":"info","msg":"other run","run_id":"bbbb2222"}
{"level":"info","msg":"capture finished","run_id":"aaaa1111"}
`
	if err := os.WriteFile(filepath.Join(logDir, "webgif.log"), []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--run", "aaaa"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "capture started")
	requireContains(t, out, "capture finished")
	if strings.Contains(out, "other run") {
		t.Fatalf("expected other run filtered out, got %q", out)
	}

	out, _, err = runCLI(t, []string{"logs", "-n", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one line, got %q", out)
	}
}
