package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// browserCandidates is the lookup order chromedp uses when no exec path is
// configured, limited to names that resolve on Linux and macOS.
var browserCandidates = []string{
	"headless_shell",
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"google-chrome-beta",
	"google-chrome-unstable",
	"/usr/bin/google-chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
}

// Source records where a browser path came from.
type Source string

const (
	SourceConfig Source = "config"
	SourceSearch Source = "search"
)

// Browser is the outcome of a browser lookup.
type Browser struct {
	// Path is the resolved executable, or the name that failed to resolve.
	Path   string
	Source Source
	Found  bool
	Detail string
}

// FindBrowser resolves the browser a capture would launch. A configured
// path or command name wins; otherwise browserCandidates are tried in order.
func FindBrowser(configured string) Browser {
	if configured = strings.TrimSpace(configured); configured != "" {
		resolved, err := exec.LookPath(configured)
		if err != nil {
			return Browser{
				Path:   configured,
				Source: SourceConfig,
				Detail: fmt.Sprintf("configured browser %q not found", configured),
			}
		}
		return Browser{Path: resolved, Source: SourceConfig, Found: true}
	}
	for _, candidate := range browserCandidates {
		if resolved, err := exec.LookPath(candidate); err == nil {
			return Browser{Path: resolved, Source: SourceSearch, Found: true}
		}
	}
	return Browser{
		Path:   "google-chrome",
		Source: SourceSearch,
		Detail: "no Chrome or Chromium executable on PATH",
	}
}

// ResolveBrowserPath is FindBrowser reduced to the path and whether it
// resolved.
func ResolveBrowserPath(configured string) (string, bool) {
	b := FindBrowser(configured)
	return b.Path, b.Found
}
