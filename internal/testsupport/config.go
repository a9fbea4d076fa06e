package testsupport

import (
	"path/filepath"
	"testing"

	"webgif/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Capture defaults are shrunk so runs against a fake browser finish quickly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "history", "webgif.db")
	cfgVal.Capture.URL = "https://example.test/"
	cfgVal.Capture.FrameCount = 3
	cfgVal.Capture.FrameDelayMS = 0
	cfgVal.Capture.SettleDelayMS = 0
	cfgVal.Capture.Viewport = 16
	cfgVal.Capture.Output = filepath.Join(base, "out", "web.gif")
	cfgVal.Browser.ExecPath = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFrames sets the capture frame count.
func WithFrames(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Capture.FrameCount = n
	}
}

// WithType sets the output type and points the output stem at <base>/out/<name>.
func WithType(kind string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Capture.Type = kind
		b.cfg.Capture.Output = filepath.Join(b.baseDir, "out", "web")
	}
}

// WithOutput overrides the output stem relative to the test base directory.
func WithOutput(rel string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Capture.Output = filepath.Join(b.baseDir, rel)
	}
}

// WithKeepFrames keeps the GIF work directory after success.
func WithKeepFrames() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Capture.KeepFrames = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
