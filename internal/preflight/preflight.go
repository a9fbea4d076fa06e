package preflight

import (
	"context"
	"path/filepath"

	"webgif/internal/config"
	"webgif/internal/session"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects optional checks.
type Options struct {
	// Launch starts the browser once to prove it runs.
	Launch bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckBrowserBinary(cfg.Browser.ExecPath))
	if opts.Launch {
		results = append(results, CheckBrowserLaunch(ctx, cfg.Browser))
	}

	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if sess, err := session.New(cfg.Capture); err != nil {
		results = append(results, Result{Name: "Capture settings", Detail: err.Error()})
	} else {
		results = append(results, Result{Name: "Capture settings", Passed: true, Detail: sess.URL})
		results = append(results, CheckDirectoryAccess("Output directory", filepath.Dir(sess.OutputStem)))
	}

	if cfg.History.Enabled {
		results = append(results, CheckHistory(cfg.Paths.HistoryDB))
	}
	return results
}

// Failed counts results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
