package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCapture()
	if err := c.normalizeBrowser(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir()
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeCapture() {
	c.Capture.URL = strings.TrimSpace(c.Capture.URL)
	if c.Capture.URL == "" {
		c.Capture.URL = defaultURL
	}
	c.Capture.Output = strings.TrimSpace(c.Capture.Output)
	if c.Capture.Output == "" {
		c.Capture.Output = defaultOutput
	}
	c.Capture.Type = strings.ToLower(strings.TrimSpace(c.Capture.Type))
	if c.Capture.Type == "" {
		c.Capture.Type = defaultOutputType
	}
}

func (c *Config) normalizeBrowser() error {
	c.Browser.ExecPath = strings.TrimSpace(c.Browser.ExecPath)
	if c.Browser.ExecPath == "" {
		if value, ok := os.LookupEnv("WEBGIF_BROWSER"); ok {
			c.Browser.ExecPath = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("CHROME_PATH"); ok {
			c.Browser.ExecPath = strings.TrimSpace(value)
		}
	}
	if strings.ContainsAny(c.Browser.ExecPath, "/\\") || strings.HasPrefix(c.Browser.ExecPath, "~") {
		expanded, err := expandPath(c.Browser.ExecPath)
		if err != nil {
			return fmt.Errorf("browser.exec_path: %w", err)
		}
		c.Browser.ExecPath = expanded
	}
	c.Browser.UserAgent = strings.TrimSpace(c.Browser.UserAgent)
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
