package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"webgif/internal/browser"
	"webgif/internal/config"
	"webgif/internal/deps"
	"webgif/internal/history"
	"webgif/internal/logging"
)

// launchTimeout bounds the browser launch probe.
const launchTimeout = 30 * time.Second

// CheckBrowserBinary verifies a Chrome/Chromium executable can be found.
func CheckBrowserBinary(configured string) Result {
	const name = "Browser binary"
	found := deps.FindBrowser(configured)
	if !found.Found {
		return Result{Name: name, Detail: found.Detail + " (set browser.exec_path or WEBGIF_BROWSER)"}
	}
	return Result{Name: name, Passed: true, Detail: found.Path}
}

// CheckBrowserLaunch starts the browser, opens a blank page and closes it.
// It uses a 30-second timeout and a single attempt.
func CheckBrowserLaunch(ctx context.Context, cfg config.Browser) Result {
	const name = "Browser launch"

	checkCtx, cancel := context.WithTimeout(ctx, launchTimeout)
	defer cancel()

	b, err := browser.Launch(checkCtx, browser.Options{
		ExecPath:  cfg.ExecPath,
		Headless:  cfg.Headless,
		UserAgent: cfg.UserAgent,
	}, logging.NewNop())
	if err != nil {
		return Result{Name: name, Detail: summarizeLaunchError(err)}
	}
	defer b.Close()

	page, err := b.NewPage(checkCtx, 64, 64)
	if err != nil {
		return Result{Name: name, Detail: summarizeLaunchError(err)}
	}
	defer page.Close()

	if err := page.Navigate(checkCtx, "about:blank"); err != nil {
		return Result{Name: name, Detail: summarizeLaunchError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "started and navigated"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckHistory opens the run ledger to verify its schema.
func CheckHistory(path string) Result {
	const name = "History database"
	store, err := history.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	_ = store.Close()
	return Result{Name: name, Passed: true, Detail: path}
}

func summarizeLaunchError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "browser did not start within " + launchTimeout.String()
	}
	return err.Error()
}
