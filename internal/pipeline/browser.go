package pipeline

import (
	"context"
	"log/slog"

	"webgif/internal/browser"
)

// Page is the page surface a run drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Browser opens pages.
type Browser interface {
	NewPage(ctx context.Context, width, height int) (Page, error)
	Close() error
}

// Launcher starts a browser.
type Launcher func(ctx context.Context, opts browser.Options, logger *slog.Logger) (Browser, error)

// ChromeLauncher starts headless Chrome through chromedp.
func ChromeLauncher(ctx context.Context, opts browser.Options, logger *slog.Logger) (Browser, error) {
	b, err := browser.Launch(ctx, opts, logger)
	if err != nil {
		return nil, err
	}
	return chromeBrowser{b}, nil
}

type chromeBrowser struct {
	*browser.Browser
}

func (c chromeBrowser) NewPage(ctx context.Context, width, height int) (Page, error) {
	page, err := c.Browser.NewPage(ctx, width, height)
	if err != nil {
		return nil, err
	}
	return page, nil
}
